// Package quote provides read-side lookups over the market data client and the
// history store. Lookup failures are logged and returned as nil results.
package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/stockhistory/internal/common"
	"github.com/bobmcallan/stockhistory/internal/interfaces"
	"github.com/bobmcallan/stockhistory/internal/models"
)

// Service implements QueryService.
type Service struct {
	client interfaces.MarketDataClient
	store  interfaces.HistoryStore
	logger *common.Logger
}

// NewService creates a new query service.
func NewService(client interfaces.MarketDataClient, store interfaces.HistoryStore, logger *common.Logger) *Service {
	return &Service{
		client: client,
		store:  store,
		logger: logger,
	}
}

// GetCurrentQuote fetches a live quote, bypassing storage.
func (s *Service) GetCurrentQuote(ctx context.Context, symbol string) *models.Quote {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil
	}
	q, err := s.client.GetQuote(ctx, symbol)
	if err != nil {
		s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Failed to fetch current quote")
		return nil
	}
	return q
}

// GetHistory returns the stored history for symbol, or nil when absent.
func (s *Service) GetHistory(ctx context.Context, symbol string) *models.StockHistory {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil
	}
	h, err := s.store.GetByID(ctx, symbol)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Failed to read stock history")
		}
		return nil
	}
	return h
}

// SearchSymbols looks up candidate symbols for free text.
func (s *Service) SearchSymbols(ctx context.Context, query string) *models.SearchResponse {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	res, err := s.client.SearchSymbols(ctx, query)
	if err != nil {
		s.logger.Warn().Str("query", query).Err(err).Msg("Symbol search failed")
		return nil
	}
	return res
}

// RenderHistoryChart renders the stored close-price series for symbol as a PNG.
// Returns an error wrapping ErrNotFound when the history is missing or too short.
func (s *Service) RenderHistoryChart(ctx context.Context, symbol string) ([]byte, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, models.ErrEmptySymbol
	}
	h := s.GetHistory(ctx, symbol)
	if h == nil {
		return nil, fmt.Errorf("stock history %s: %w", symbol, models.ErrNotFound)
	}
	if len(h.QuoteHistory) < 2 {
		return nil, fmt.Errorf("stock history %s has %d quotes, need at least 2: %w", symbol, len(h.QuoteHistory), models.ErrNotFound)
	}
	return RenderHistoryChart(h)
}

// Compile-time check
var _ interfaces.QueryService = (*Service)(nil)
