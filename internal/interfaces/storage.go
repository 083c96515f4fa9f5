package interfaces

import (
	"context"

	"github.com/bobmcallan/stockhistory/internal/models"
)

// HistoryStore is the system of record for per-symbol stock histories.
type HistoryStore interface {
	// ListAll scans the whole collection, following pages until exhausted.
	// An empty collection yields an empty slice, not an error.
	ListAll(ctx context.Context) ([]*models.StockHistory, error)

	// GetByID returns the history keyed by symbol, or models.ErrNotFound.
	GetByID(ctx context.Context, symbol string) (*models.StockHistory, error)

	// Create stores a new history at version 1. Fails with models.ErrConflict
	// if the symbol already exists.
	Create(ctx context.Context, history *models.StockHistory) (models.WriteResult, error)

	// Replace overwrites the whole document. Fails with models.ErrNotFound if
	// absent and models.ErrVersionMismatch if history.Version is stale. On
	// success history.Version is advanced to the stored version.
	Replace(ctx context.Context, history *models.StockHistory) (models.WriteResult, error)

	Close() error
}
