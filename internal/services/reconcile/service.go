// Package reconcile refreshes stale stock histories with fresh quotes.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/stockhistory/internal/common"
	"github.com/bobmcallan/stockhistory/internal/interfaces"
	"github.com/bobmcallan/stockhistory/internal/models"
)

// errAlreadyCurrent marks a symbol that became current after the snapshot.
var errAlreadyCurrent = errors.New("history already updated today")

// Service implements interfaces.ReconcileService.
type Service struct {
	store       interfaces.HistoryStore
	fetcher     interfaces.QuoteFetcher
	logger      *common.Logger
	location    *time.Location
	concurrency int
	now         func() time.Time // injectable clock for testing

	mu   sync.RWMutex
	last *models.ReconcileReport
}

// Option configures the Service.
type Option func(*Service)

// WithConcurrency bounds how many symbols are fetched and written at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLocation sets the timezone whose calendar day counts as "today".
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// NewService creates a reconciler. Defaults: sequential, UTC.
func NewService(store interfaces.HistoryStore, fetcher interfaces.QuoteFetcher, logger *common.Logger, opts ...Option) *Service {
	s := &Service{
		store:       store,
		fetcher:     fetcher,
		logger:      logger,
		location:    time.UTC,
		concurrency: 1,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReconcileDaily runs one pass and returns the number of symbols updated.
func (s *Service) ReconcileDaily(ctx context.Context) (int, error) {
	report, err := s.Reconcile(ctx)
	if report == nil {
		return 0, err
	}
	return report.Updated, err
}

// Reconcile loads every history once, refreshes the active stale ones, and
// returns a report. Per-symbol failures are recorded and never abort the pass.
// Only a failed initial load or cancellation is returned as an error.
func (s *Service) Reconcile(ctx context.Context) (*models.ReconcileReport, error) {
	started := s.now()
	today := common.CalendarDay(started, s.location)
	report := &models.ReconcileReport{
		RunID:     uuid.New().String()[:8],
		StartedAt: started,
		Today:     today,
	}

	s.logger.Info().Str("run_id", report.RunID).Str("today", today.Format("2006-01-02")).Msg("Reconciliation pass starting")

	histories, err := s.store.ListAll(ctx)
	if err != nil {
		s.finish(report)
		return report, fmt.Errorf("failed to load stock histories: %w", err)
	}

	snapshot := make(map[string]*models.StockHistory, len(histories))
	var stale []string
	for _, h := range histories {
		snapshot[h.ID] = h
		if !h.IsActivelyTracked {
			continue
		}
		report.Checked++
		if h.IsStale(today) {
			stale = append(stale, h.ID)
		}
	}
	report.Stale = len(stale)

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		sem      = make(chan struct{}, s.concurrency)
		fatalErr error
	)

loop:
	for _, symbol := range stale {
		if ctx.Err() != nil {
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break loop
		}
		if ctx.Err() != nil {
			<-sem
			break
		}

		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			defer func() { <-sem }()

			stage, err := s.reconcileSymbol(ctx, symbol, snapshot, today)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				report.Updated++
				return
			}
			if errors.Is(err, errAlreadyCurrent) {
				report.Skipped++
				s.logger.Debug().Str("run_id", report.RunID).Str("symbol", symbol).Msg("Stock history already updated today")
				return
			}
			if isCancellation(err) {
				if fatalErr == nil {
					fatalErr = err
				}
				return
			}
			report.Failures = append(report.Failures, models.SymbolFailure{
				Symbol: symbol,
				Stage:  stage,
				Error:  err.Error(),
			})
			s.logger.Warn().Str("run_id", report.RunID).Str("symbol", symbol).Str("stage", stage).Err(err).Msg("Failed to reconcile symbol")
		}(symbol)
	}
	wg.Wait()

	if fatalErr == nil {
		fatalErr = ctx.Err()
	}
	if fatalErr != nil {
		report.Cancelled = true
	}

	s.finish(report)

	s.logger.Info().
		Str("run_id", report.RunID).
		Int("checked", report.Checked).
		Int("stale", report.Stale).
		Int("updated", report.Updated).
		Int("skipped", report.Skipped).
		Int("failed", len(report.Failures)).
		Bool("cancelled", report.Cancelled).
		Int64("duration_ms", report.DurationMS).
		Msg("Reconciliation pass complete")

	if fatalErr != nil {
		return report, fmt.Errorf("reconciliation cancelled after %d updates: %w", report.Updated, fatalErr)
	}
	return report, nil
}

// LastReport returns a copy of the most recent pass's report.
func (s *Service) LastReport() *models.ReconcileReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	r := *s.last
	r.Failures = append([]models.SymbolFailure(nil), s.last.Failures...)
	return &r
}

func (s *Service) finish(report *models.ReconcileReport) {
	report.CompletedAt = s.now()
	report.DurationMS = report.CompletedAt.Sub(report.StartedAt).Milliseconds()

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()
}

// reconcileSymbol fetches and records one quote, returning the failing stage on error.
func (s *Service) reconcileSymbol(ctx context.Context, symbol string, snapshot map[string]*models.StockHistory, today time.Time) (string, error) {
	quote, err := s.fetcher.GetQuote(ctx, symbol)
	if err != nil {
		return models.StageFetch, err
	}
	if quote == nil {
		return models.StageFetch, fmt.Errorf("no quote returned for %s: %w", symbol, models.ErrNotFound)
	}
	q := *quote
	if q.Date.IsZero() {
		q.Date = today
	}

	if _, err := s.upsert(ctx, symbol, q, snapshot, today); err != nil {
		return models.StageUpsert, err
	}
	return "", nil
}

// upsert creates the history when the snapshot has none, otherwise re-reads the
// stored record, appends the quote, and replaces it.
func (s *Service) upsert(ctx context.Context, symbol string, quote models.Quote, snapshot map[string]*models.StockHistory, today time.Time) (models.WriteResult, error) {
	if _, ok := snapshot[symbol]; !ok {
		history := models.NewStockHistoryWithQuote(symbol, quote, today)
		res, err := s.store.Create(ctx, history)
		if err != nil {
			return res, fmt.Errorf("failed to create history for %s: %w", symbol, err)
		}
		s.logger.Info().
			Str("symbol", symbol).
			Int("status", res.StatusCode).
			Float64("request_cost", res.RequestCost).
			Msg("Stock history created")
		return res, nil
	}

	current, err := s.store.GetByID(ctx, symbol)
	if err != nil {
		return models.WriteResult{}, fmt.Errorf("failed to read history for %s: %w", symbol, err)
	}

	// Another pass may have written since the snapshot was taken.
	if !current.IsStale(today) {
		return models.WriteResult{}, errAlreadyCurrent
	}

	current.AppendQuote(quote, today)

	res, err := s.store.Replace(ctx, current)
	if err != nil {
		return res, fmt.Errorf("failed to replace history for %s: %w", symbol, err)
	}
	s.logger.Info().
		Str("symbol", symbol).
		Int("status", res.StatusCode).
		Float64("request_cost", res.RequestCost).
		Int("quotes", len(current.QuoteHistory)).
		Msg("Stock history updated")
	return res, nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Compile-time check
var _ interfaces.ReconcileService = (*Service)(nil)
