package quote

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/stockhistory/internal/common"
	"github.com/bobmcallan/stockhistory/internal/models"
)

// --- Mocks ---

type mockClient struct {
	quote       *models.Quote
	search      *models.SearchResponse
	err         error
	quoteCalls  int
	searchCalls int
}

func (m *mockClient) GetQuote(_ context.Context, _ string) (*models.Quote, error) {
	m.quoteCalls++
	return m.quote, m.err
}

func (m *mockClient) SearchSymbols(_ context.Context, _ string) (*models.SearchResponse, error) {
	m.searchCalls++
	return m.search, m.err
}

type mockStore struct {
	histories map[string]*models.StockHistory
	err       error
	getCalls  int
}

func (m *mockStore) ListAll(_ context.Context) ([]*models.StockHistory, error) {
	return nil, nil
}

func (m *mockStore) GetByID(_ context.Context, symbol string) (*models.StockHistory, error) {
	m.getCalls++
	if m.err != nil {
		return nil, m.err
	}
	h, ok := m.histories[symbol]
	if !ok {
		return nil, models.ErrNotFound
	}
	return h, nil
}

func (m *mockStore) Create(_ context.Context, _ *models.StockHistory) (models.WriteResult, error) {
	return models.WriteResult{}, nil
}

func (m *mockStore) Replace(_ context.Context, _ *models.StockHistory) (models.WriteResult, error) {
	return models.WriteResult{}, nil
}

func (m *mockStore) Close() error { return nil }

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func historyWithQuotes(symbol string, closes ...string) *models.StockHistory {
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	h := models.NewStockHistory(symbol, start)
	for i, c := range closes {
		day := start.AddDate(0, 0, i)
		h.AppendQuote(models.Quote{CurrentPrice: price(c), PreviousClosePrice: price(c), Date: day}, day)
	}
	return h
}

// --- Tests ---

func TestGetHistory_EmptySymbolSkipsStore(t *testing.T) {
	store := &mockStore{}
	svc := NewService(&mockClient{}, store, common.NewSilentLogger())

	if h := svc.GetHistory(context.Background(), ""); h != nil {
		t.Errorf("expected nil history, got %+v", h)
	}
	if store.getCalls != 0 {
		t.Errorf("expected no store calls, got %d", store.getCalls)
	}
}

func TestGetHistory_NotFoundIsNil(t *testing.T) {
	svc := NewService(&mockClient{}, &mockStore{}, common.NewSilentLogger())

	if h := svc.GetHistory(context.Background(), "AAPL"); h != nil {
		t.Errorf("expected nil history, got %+v", h)
	}
}

func TestGetHistory_StoreFailureIsNil(t *testing.T) {
	svc := NewService(&mockClient{}, &mockStore{err: errors.New("connection reset")}, common.NewSilentLogger())

	if h := svc.GetHistory(context.Background(), "AAPL"); h != nil {
		t.Errorf("expected nil history, got %+v", h)
	}
}

func TestGetHistory_Found(t *testing.T) {
	store := &mockStore{histories: map[string]*models.StockHistory{"AAPL": historyWithQuotes("AAPL", "229.10")}}
	svc := NewService(&mockClient{}, store, common.NewSilentLogger())

	h := svc.GetHistory(context.Background(), "AAPL")
	if h == nil {
		t.Fatal("expected history")
	}
	if h.ID != "AAPL" || len(h.QuoteHistory) != 1 {
		t.Errorf("unexpected history: %+v", h)
	}
}

func TestGetCurrentQuote(t *testing.T) {
	client := &mockClient{quote: &models.Quote{CurrentPrice: price("229.10")}}
	svc := NewService(client, &mockStore{}, common.NewSilentLogger())

	q := svc.GetCurrentQuote(context.Background(), "AAPL")
	if q == nil {
		t.Fatal("expected quote")
	}
	if !q.CurrentPrice.Equal(price("229.1")) {
		t.Errorf("expected 229.1, got %s", q.CurrentPrice)
	}
}

func TestGetCurrentQuote_EmptyOrFailure(t *testing.T) {
	client := &mockClient{err: errors.New("502 bad gateway")}
	svc := NewService(client, &mockStore{}, common.NewSilentLogger())

	if q := svc.GetCurrentQuote(context.Background(), " "); q != nil {
		t.Errorf("expected nil for empty symbol, got %+v", q)
	}
	if client.quoteCalls != 0 {
		t.Errorf("expected no client calls for empty symbol, got %d", client.quoteCalls)
	}
	if q := svc.GetCurrentQuote(context.Background(), "AAPL"); q != nil {
		t.Errorf("expected nil on fetch failure, got %+v", q)
	}
}

func TestSearchSymbols(t *testing.T) {
	client := &mockClient{search: &models.SearchResponse{Count: 1, Result: []models.SearchResultItem{{Symbol: "AAPL"}}}}
	svc := NewService(client, &mockStore{}, common.NewSilentLogger())

	res := svc.SearchSymbols(context.Background(), "apple")
	if res == nil || res.FirstSymbol() != "AAPL" {
		t.Errorf("unexpected search response: %+v", res)
	}

	client.err = errors.New("timeout")
	if res := svc.SearchSymbols(context.Background(), "apple"); res != nil {
		t.Errorf("expected nil on failure, got %+v", res)
	}
}

func TestRenderHistoryChart(t *testing.T) {
	store := &mockStore{histories: map[string]*models.StockHistory{
		"AAPL": historyWithQuotes("AAPL", "225.00", "227.50", "229.10"),
		"NEW":  historyWithQuotes("NEW", "10.00"),
	}}
	svc := NewService(&mockClient{}, store, common.NewSilentLogger())

	png, err := svc.RenderHistoryChart(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("expected PNG signature")
	}

	if _, err := svc.RenderHistoryChart(context.Background(), "NEW"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound for short history, got %v", err)
	}
	if _, err := svc.RenderHistoryChart(context.Background(), "MISSING"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing history, got %v", err)
	}
	if _, err := svc.RenderHistoryChart(context.Background(), ""); !errors.Is(err, models.ErrEmptySymbol) {
		t.Errorf("expected ErrEmptySymbol, got %v", err)
	}
}
