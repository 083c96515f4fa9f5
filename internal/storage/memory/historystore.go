// Package memory implements an in-process history store. Records are deep
// copied on the way in and out so callers never share state with the store.
package memory

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/bobmcallan/stockhistory/internal/common"
	"github.com/bobmcallan/stockhistory/internal/interfaces"
	"github.com/bobmcallan/stockhistory/internal/models"
)

// HistoryStore is a map-backed interfaces.HistoryStore.
type HistoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.StockHistory
	logger  *common.Logger
}

// NewHistoryStore creates an empty store.
func NewHistoryStore(logger *common.Logger) *HistoryStore {
	return &HistoryStore{
		records: make(map[string]*models.StockHistory),
		logger:  logger,
	}
}

func (s *HistoryStore) ListAll(ctx context.Context) ([]*models.StockHistory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	histories := make([]*models.StockHistory, 0, len(s.records))
	for _, h := range s.records {
		histories = append(histories, h.Clone())
	}
	sort.Slice(histories, func(i, j int) bool { return histories[i].ID < histories[j].ID })
	return histories, nil
}

func (s *HistoryStore) GetByID(ctx context.Context, symbol string) (*models.StockHistory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if symbol == "" {
		return nil, models.ErrEmptySymbol
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.records[symbol]
	if !ok {
		return nil, fmt.Errorf("stock history %s: %w", symbol, models.ErrNotFound)
	}
	return h.Clone(), nil
}

func (s *HistoryStore) Create(ctx context.Context, history *models.StockHistory) (models.WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return models.WriteResult{}, err
	}
	if history == nil || history.ID == "" {
		return models.WriteResult{StatusCode: http.StatusBadRequest}, models.ErrEmptySymbol
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[history.ID]; exists {
		return models.WriteResult{StatusCode: http.StatusConflict},
			fmt.Errorf("stock history %s: %w", history.ID, models.ErrConflict)
	}

	history.Version = 1
	s.records[history.ID] = history.Clone()
	s.logger.Trace().Str("symbol", history.ID).Msg("Stock history created")
	return models.WriteResult{StatusCode: http.StatusCreated}, nil
}

func (s *HistoryStore) Replace(ctx context.Context, history *models.StockHistory) (models.WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return models.WriteResult{}, err
	}
	if history == nil || history.ID == "" {
		return models.WriteResult{StatusCode: http.StatusBadRequest}, models.ErrEmptySymbol
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.records[history.ID]
	if !exists {
		return models.WriteResult{StatusCode: http.StatusNotFound},
			fmt.Errorf("stock history %s: %w", history.ID, models.ErrNotFound)
	}
	if current.Version != history.Version {
		return models.WriteResult{StatusCode: http.StatusPreconditionFailed},
			fmt.Errorf("stock history %s at version %d (stored %d): %w",
				history.ID, history.Version, current.Version, models.ErrVersionMismatch)
	}

	history.Version++
	s.records[history.ID] = history.Clone()
	s.logger.Trace().Str("symbol", history.ID).Int("version", history.Version).Msg("Stock history replaced")
	return models.WriteResult{StatusCode: http.StatusOK}, nil
}

func (s *HistoryStore) Close() error {
	return nil
}

// Compile-time check
var _ interfaces.HistoryStore = (*HistoryStore)(nil)
