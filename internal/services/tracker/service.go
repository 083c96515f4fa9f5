// Package tracker manages which symbols have stock histories maintained.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/stockhistory/internal/common"
	"github.com/bobmcallan/stockhistory/internal/interfaces"
	"github.com/bobmcallan/stockhistory/internal/models"
)

// Compile-time interface check
var _ interfaces.TrackerService = (*Service)(nil)

// Service implements TrackerService
type Service struct {
	store    interfaces.HistoryStore
	searcher interfaces.SymbolSearcher
	logger   *common.Logger
	location *time.Location
	now      func() time.Time
}

// NewService creates a new tracker service. loc selects the calendar day used
// for CreatedOn; nil means UTC.
func NewService(store interfaces.HistoryStore, searcher interfaces.SymbolSearcher, logger *common.Logger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:    store,
		searcher: searcher,
		logger:   logger,
		location: loc,
		now:      time.Now,
	}
}

// AddSymbol resolves userText to the first matching symbol and starts tracking
// it. An inactive record for the symbol is re-activated with its history intact.
func (s *Service) AddSymbol(ctx context.Context, userText string) (string, error) {
	query := strings.TrimSpace(userText)
	if query == "" {
		return "", models.ErrEmptySymbol
	}

	results, err := s.searcher.SearchSymbols(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to search for %q: %w", query, err)
	}
	symbol := results.FirstSymbol()
	if symbol == "" {
		return "", fmt.Errorf("no symbol matches %q: %w", query, models.ErrNotFound)
	}

	existing, err := s.store.GetByID(ctx, symbol)
	switch {
	case err == nil && existing.IsActivelyTracked:
		return "", fmt.Errorf("%s: %w", symbol, models.ErrAlreadyTracked)

	case err == nil:
		existing.IsActivelyTracked = true
		res, err := s.store.Replace(ctx, existing)
		if err != nil {
			return "", fmt.Errorf("failed to re-activate %s: %w", symbol, err)
		}
		event := s.logger.Info().
			Str("symbol", symbol).
			Int("status", res.StatusCode).
			Float64("request_cost", res.RequestCost).
			Int("quotes", len(existing.QuoteHistory))
		if last, ok := existing.LatestQuote(); ok {
			event = event.Str("last_quote", last.Date.Format("2006-01-02"))
		}
		event.Msg("Symbol tracking re-activated")
		return symbol, nil

	case !errors.Is(err, models.ErrNotFound):
		return "", fmt.Errorf("failed to look up %s: %w", symbol, err)
	}

	history := models.NewStockHistory(symbol, common.CalendarDay(s.now(), s.location))
	res, err := s.store.Create(ctx, history)
	if err != nil {
		return "", fmt.Errorf("failed to create history for %s: %w", symbol, err)
	}

	s.logger.Info().
		Str("symbol", symbol).
		Str("query", query).
		Int("status", res.StatusCode).
		Float64("request_cost", res.RequestCost).
		Msg("Symbol added")
	return symbol, nil
}

// RemoveSymbol marks the symbol as no longer tracked. The history is kept.
func (s *Service) RemoveSymbol(ctx context.Context, symbol string) error {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return models.ErrEmptySymbol
	}

	history, err := s.store.GetByID(ctx, symbol)
	if err != nil {
		return fmt.Errorf("failed to get history for %s: %w", symbol, err)
	}

	history.IsActivelyTracked = false
	res, err := s.store.Replace(ctx, history)
	if err != nil {
		return fmt.Errorf("failed to stop tracking %s: %w", symbol, err)
	}

	s.logger.Info().
		Str("symbol", symbol).
		Int("status", res.StatusCode).
		Float64("request_cost", res.RequestCost).
		Msg("Symbol no longer tracked")
	return nil
}

// TrackedSymbols lists stored symbols in store order, optionally only active ones.
func (s *Service) TrackedSymbols(ctx context.Context, activeOnly bool) ([]string, error) {
	histories, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock histories: %w", err)
	}
	return models.TrackedSymbols(histories, activeOnly), nil
}
