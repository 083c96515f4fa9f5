package surrealdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bobmcallan/stockhistory/internal/common"
	"github.com/bobmcallan/stockhistory/internal/interfaces"
	"github.com/bobmcallan/stockhistory/internal/models"
	"github.com/shopspring/decimal"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

const defaultPageSize = 100

// quoteRecord is the stored form of a quote. Prices are kept as numbers so
// documents stay readable from SurrealQL; Exact carries the decimal text,
// which float64 cannot hold beyond ~15 significant digits.
type quoteRecord struct {
	C     float64     `json:"c"`
	H     float64     `json:"h"`
	L     float64     `json:"l"`
	O     float64     `json:"o"`
	PC    float64     `json:"pc"`
	Date  time.Time   `json:"date"`
	Exact exactPrices `json:"exact"`
}

type exactPrices struct {
	C  string `json:"c,omitempty"`
	H  string `json:"h,omitempty"`
	L  string `json:"l,omitempty"`
	O  string `json:"o,omitempty"`
	PC string `json:"pc,omitempty"`
}

// storedPrice prefers the exact text and falls back to the number, which is
// all that documents written by other tools carry.
func storedPrice(exact string, number float64) decimal.Decimal {
	if exact != "" {
		if d, err := decimal.NewFromString(exact); err == nil {
			return d
		}
	}
	return decimal.NewFromFloat(number)
}

// historyRecord is the stored form of a stock history. The record id is the
// symbol; the symbol is duplicated in a field for ordering and the unique index.
type historyRecord struct {
	Symbol            string        `json:"symbol"`
	IsActivelyTracked bool          `json:"IsActivelyTracked"`
	CreatedOn         time.Time     `json:"CreatedOn"`
	LastUpdated       time.Time     `json:"LastUpdated"`
	QuoteHistory      []quoteRecord `json:"QuoteHistory"`
	Version           int           `json:"version"`
}

func toRecord(h *models.StockHistory) historyRecord {
	rec := historyRecord{
		Symbol:            h.ID,
		IsActivelyTracked: h.IsActivelyTracked,
		CreatedOn:         h.CreatedOn,
		LastUpdated:       h.LastUpdated,
		QuoteHistory:      make([]quoteRecord, len(h.QuoteHistory)),
		Version:           h.Version,
	}
	for i, q := range h.QuoteHistory {
		rec.QuoteHistory[i] = quoteRecord{
			C:    q.CurrentPrice.InexactFloat64(),
			H:    q.HighPrice.InexactFloat64(),
			L:    q.LowPrice.InexactFloat64(),
			O:    q.OpenPrice.InexactFloat64(),
			PC:   q.PreviousClosePrice.InexactFloat64(),
			Date: q.Date,
			Exact: exactPrices{
				C:  q.CurrentPrice.String(),
				H:  q.HighPrice.String(),
				L:  q.LowPrice.String(),
				O:  q.OpenPrice.String(),
				PC: q.PreviousClosePrice.String(),
			},
		}
	}
	return rec
}

func (r *historyRecord) toModel() *models.StockHistory {
	h := &models.StockHistory{
		ID:                r.Symbol,
		IsActivelyTracked: r.IsActivelyTracked,
		CreatedOn:         r.CreatedOn.UTC(),
		LastUpdated:       r.LastUpdated.UTC(),
		QuoteHistory:      make([]models.Quote, len(r.QuoteHistory)),
		Version:           r.Version,
	}
	for i, q := range r.QuoteHistory {
		h.QuoteHistory[i] = models.Quote{
			CurrentPrice:       storedPrice(q.Exact.C, q.C),
			HighPrice:          storedPrice(q.Exact.H, q.H),
			LowPrice:           storedPrice(q.Exact.L, q.L),
			OpenPrice:          storedPrice(q.Exact.O, q.O),
			PreviousClosePrice: storedPrice(q.Exact.PC, q.PC),
			Date:               q.Date.UTC(),
		}
	}
	return h
}

// HistoryStore implements interfaces.HistoryStore using SurrealDB.
type HistoryStore struct {
	db       *surrealdb.DB
	logger   *common.Logger
	pageSize int
	ownsDB   bool
}

// NewHistoryStore creates a HistoryStore on an existing connection.
func NewHistoryStore(db *surrealdb.DB, logger *common.Logger, pageSize int) *HistoryStore {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &HistoryStore{db: db, logger: logger, pageSize: pageSize}
}

func rid(symbol string) surrealmodels.RecordID {
	return surrealmodels.NewRecordID(historyTable, symbol)
}

// ListAll pages through the table in symbol order until a short page is returned.
func (s *HistoryStore) ListAll(ctx context.Context) ([]*models.StockHistory, error) {
	histories := []*models.StockHistory{}

	for start := 0; ; start += s.pageSize {
		sql := fmt.Sprintf("SELECT * FROM %s ORDER BY symbol ASC LIMIT %d START %d", historyTable, s.pageSize, start)
		results, err := surrealdb.Query[[]historyRecord](ctx, s.db, sql, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to list stock histories: %w", err)
		}

		var page []historyRecord
		if results != nil && len(*results) > 0 {
			page = (*results)[0].Result
		}
		for i := range page {
			histories = append(histories, page[i].toModel())
		}

		s.logger.Trace().Int("start", start).Int("records", len(page)).Msg("Stock history page read")

		if len(page) < s.pageSize {
			break
		}
	}

	return histories, nil
}

func (s *HistoryStore) GetByID(ctx context.Context, symbol string) (*models.StockHistory, error) {
	if symbol == "" {
		return nil, models.ErrEmptySymbol
	}
	rec, err := surrealdb.Select[historyRecord](ctx, s.db, rid(symbol))
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("stock history %s: %w", symbol, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to select stock history: %w", err)
	}
	if rec == nil || rec.Symbol == "" {
		return nil, fmt.Errorf("stock history %s: %w", symbol, models.ErrNotFound)
	}
	return rec.toModel(), nil
}

func (s *HistoryStore) Create(ctx context.Context, history *models.StockHistory) (models.WriteResult, error) {
	start := time.Now()

	rec := toRecord(history)
	rec.Version = 1

	sql := "CREATE $rid CONTENT $record"
	vars := map[string]any{"rid": rid(history.ID), "record": rec}

	if _, err := surrealdb.Query[[]historyRecord](ctx, s.db, sql, vars); err != nil {
		if isAlreadyExistsError(err) {
			return models.WriteResult{StatusCode: http.StatusConflict, RequestCost: elapsedMS(start)},
				fmt.Errorf("stock history %s: %w", history.ID, models.ErrConflict)
		}
		return models.WriteResult{StatusCode: http.StatusInternalServerError, RequestCost: elapsedMS(start)},
			fmt.Errorf("failed to create stock history: %w", err)
	}

	history.Version = rec.Version
	return models.WriteResult{StatusCode: http.StatusCreated, RequestCost: elapsedMS(start)}, nil
}

// Replace overwrites the record only when the stored version matches.
func (s *HistoryStore) Replace(ctx context.Context, history *models.StockHistory) (models.WriteResult, error) {
	start := time.Now()

	expected := history.Version
	rec := toRecord(history)
	rec.Version = expected + 1

	// Documents written without a version count as version 0.
	sql := "UPDATE $rid CONTENT $record WHERE (version ?? 0) = $expected"
	vars := map[string]any{"rid": rid(history.ID), "record": rec, "expected": expected}

	results, err := surrealdb.Query[[]historyRecord](ctx, s.db, sql, vars)
	if err != nil {
		return models.WriteResult{StatusCode: http.StatusInternalServerError, RequestCost: elapsedMS(start)},
			fmt.Errorf("failed to replace stock history: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		// Nothing matched: either the record is gone or someone else wrote first.
		if _, getErr := s.GetByID(ctx, history.ID); errors.Is(getErr, models.ErrNotFound) {
			return models.WriteResult{StatusCode: http.StatusNotFound, RequestCost: elapsedMS(start)}, getErr
		}
		return models.WriteResult{StatusCode: http.StatusPreconditionFailed, RequestCost: elapsedMS(start)},
			fmt.Errorf("stock history %s at version %d: %w", history.ID, expected, models.ErrVersionMismatch)
	}

	history.Version = rec.Version
	return models.WriteResult{StatusCode: http.StatusOK, RequestCost: elapsedMS(start)}, nil
}

func (s *HistoryStore) Close() error {
	if s.ownsDB {
		s.db.Close(context.Background())
	}
	return nil
}

func elapsedMS(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

// Compile-time check
var _ interfaces.HistoryStore = (*HistoryStore)(nil)
