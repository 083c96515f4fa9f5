package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Finnhub responses and stored documents carry prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Quote is a point-in-time price snapshot for one symbol.
// Field names follow the Finnhub wire format.
type Quote struct {
	CurrentPrice       decimal.Decimal `json:"c"`
	HighPrice          decimal.Decimal `json:"h"`
	LowPrice           decimal.Decimal `json:"l"`
	OpenPrice          decimal.Decimal `json:"o"`
	PreviousClosePrice decimal.Decimal `json:"pc"`
	Date               time.Time       `json:"date"` // calendar day, midnight UTC
}

// HasPrice reports whether the quote carries any price data. Finnhub answers
// unknown symbols with an all-zero quote.
func (q Quote) HasPrice() bool {
	return q.CurrentPrice.IsPositive() || q.PreviousClosePrice.IsPositive()
}

// Validate checks that no price field is negative.
func (q Quote) Validate() error {
	for _, p := range []decimal.Decimal{q.CurrentPrice, q.HighPrice, q.LowPrice, q.OpenPrice, q.PreviousClosePrice} {
		if p.IsNegative() {
			return ErrInvalidQuote
		}
	}
	return nil
}
