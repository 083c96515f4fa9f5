// Package interfaces defines service contracts for stockhistory
package interfaces

import (
	"context"

	"github.com/bobmcallan/stockhistory/internal/models"
)

// QuoteFetcher fetches the current quote for a single symbol.
type QuoteFetcher interface {
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// SymbolSearcher looks up candidate ticker symbols for free-text input.
type SymbolSearcher interface {
	SearchSymbols(ctx context.Context, query string) (*models.SearchResponse, error)
}

// MarketDataClient is the external market-data API (Finnhub).
type MarketDataClient interface {
	QuoteFetcher
	SymbolSearcher
}
