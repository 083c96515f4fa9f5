package data

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/stockhistory/internal/common"
	"github.com/bobmcallan/stockhistory/internal/interfaces"
	"github.com/bobmcallan/stockhistory/internal/models"
	"github.com/bobmcallan/stockhistory/internal/storage"
	tcommon "github.com/bobmcallan/stockhistory/tests/common"
	"github.com/shopspring/decimal"
)

// testStore opens a HistoryStore on the shared SurrealDB container with a
// unique database per test for isolation.
func testStore(t *testing.T) interfaces.HistoryStore {
	t.Helper()

	sc := tcommon.StartSurrealDB(t)

	cfg := common.StorageConfig{
		Backend:   common.BackendSurrealDB,
		Address:   sc.Address(),
		Namespace: "stockhistory_data_test",
		Database:  fmt.Sprintf("d_%s_%d", strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()), time.Now().UnixNano()%100000),
		Username:  "root",
		Password:  "root",
		PageSize:  2,
	}

	store, err := storage.NewHistoryStore(context.Background(), common.NewSilentLogger(), cfg)
	if err != nil {
		t.Fatalf("open history store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// stubClient answers every quote with a fixed price and every search with
// the upper-cased query.
type stubClient struct {
	price string
	fail  map[string]bool
}

func (c *stubClient) GetQuote(_ context.Context, symbol string) (*models.Quote, error) {
	if c.fail[symbol] {
		return nil, fmt.Errorf("quote %s: %w", symbol, models.ErrNotFound)
	}
	p := decimal.RequireFromString(c.price)
	return &models.Quote{CurrentPrice: p, HighPrice: p, LowPrice: p, OpenPrice: p, PreviousClosePrice: p}, nil
}

func (c *stubClient) SearchSymbols(_ context.Context, query string) (*models.SearchResponse, error) {
	sym := strings.ToUpper(query)
	return &models.SearchResponse{Count: 1, Result: []models.SearchResultItem{{Symbol: sym, DisplaySymbol: sym}}}, nil
}
