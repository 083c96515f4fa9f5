package interfaces

import (
	"context"

	"github.com/bobmcallan/stockhistory/internal/models"
)

// ReconcileService refreshes stale histories with fresh quotes.
type ReconcileService interface {
	// ReconcileDaily runs one pass and returns the number of symbols updated.
	ReconcileDaily(ctx context.Context) (int, error)

	// Reconcile runs one pass and returns the full report.
	Reconcile(ctx context.Context) (*models.ReconcileReport, error)

	// LastReport returns the report of the most recent pass, or nil.
	LastReport() *models.ReconcileReport
}

// TrackerService manages which symbols are tracked.
type TrackerService interface {
	// AddSymbol resolves free text to a canonical symbol and starts tracking it.
	AddSymbol(ctx context.Context, userText string) (string, error)

	// RemoveSymbol marks a symbol as no longer tracked.
	RemoveSymbol(ctx context.Context, symbol string) error

	// TrackedSymbols lists the symbol ids present in the store.
	TrackedSymbols(ctx context.Context, activeOnly bool) ([]string, error)
}

// QueryService provides read-side lookups. Failures degrade to nil results.
type QueryService interface {
	GetCurrentQuote(ctx context.Context, symbol string) *models.Quote
	GetHistory(ctx context.Context, symbol string) *models.StockHistory
	SearchSymbols(ctx context.Context, query string) *models.SearchResponse
	RenderHistoryChart(ctx context.Context, symbol string) ([]byte, error)
}
