package models

import (
	"slices"
	"time"
)

// StockHistory is the per-symbol time series of quotes. The symbol is the key.
type StockHistory struct {
	ID                string    `json:"id"`
	IsActivelyTracked bool      `json:"IsActivelyTracked"`
	CreatedOn         time.Time `json:"CreatedOn"`
	LastUpdated       time.Time `json:"LastUpdated"`
	QuoteHistory      []Quote   `json:"QuoteHistory"`
	Version           int       `json:"version,omitempty"`
}

// NewStockHistory creates an actively tracked history with no quotes yet.
func NewStockHistory(symbol string, today time.Time) *StockHistory {
	return &StockHistory{
		ID:                symbol,
		IsActivelyTracked: true,
		CreatedOn:         today,
		LastUpdated:       today,
		QuoteHistory:      []Quote{},
	}
}

// NewStockHistoryWithQuote creates an actively tracked history seeded with its first quote.
func NewStockHistoryWithQuote(symbol string, first Quote, today time.Time) *StockHistory {
	h := NewStockHistory(symbol, today)
	h.QuoteHistory = append(h.QuoteHistory, first)
	return h
}

// AppendQuote adds q to the end of the series and advances LastUpdated.
// LastUpdated never moves backwards and never precedes the quote's date.
func (h *StockHistory) AppendQuote(q Quote, today time.Time) {
	h.QuoteHistory = append(h.QuoteHistory, q)
	for _, t := range []time.Time{today, q.Date} {
		if t.After(h.LastUpdated) {
			h.LastUpdated = t
		}
	}
}

// IsStale reports whether the history needs a fresh quote for today.
// Histories that have never received a quote are always stale.
func (h *StockHistory) IsStale(today time.Time) bool {
	return len(h.QuoteHistory) == 0 || h.LastUpdated.Before(today)
}

// LatestQuote returns the most recent quote, if any.
func (h *StockHistory) LatestQuote() (Quote, bool) {
	if len(h.QuoteHistory) == 0 {
		return Quote{}, false
	}
	return h.QuoteHistory[len(h.QuoteHistory)-1], true
}

// Clone returns a deep copy so callers can mutate without aliasing the source.
func (h *StockHistory) Clone() *StockHistory {
	if h == nil {
		return nil
	}
	c := *h
	c.QuoteHistory = slices.Clone(h.QuoteHistory)
	if c.QuoteHistory == nil {
		c.QuoteHistory = []Quote{}
	}
	return &c
}

// TrackedSymbols returns the ids of the given histories, in order.
// When activeOnly is set, untracked histories are skipped.
func TrackedSymbols(histories []*StockHistory, activeOnly bool) []string {
	symbols := make([]string, 0, len(histories))
	for _, h := range histories {
		if activeOnly && !h.IsActivelyTracked {
			continue
		}
		symbols = append(symbols, h.ID)
	}
	return symbols
}
