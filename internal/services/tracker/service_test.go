package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockhistory/internal/common"
	"github.com/bobmcallan/stockhistory/internal/models"
	"github.com/bobmcallan/stockhistory/internal/storage/memory"
)

var today = time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

// --- Mocks ---

type mockSearcher struct {
	results map[string]*models.SearchResponse
	err     error
	queries []string
}

func (m *mockSearcher) SearchSymbols(_ context.Context, query string) (*models.SearchResponse, error) {
	m.queries = append(m.queries, query)
	if m.err != nil {
		return nil, m.err
	}
	if r, ok := m.results[query]; ok {
		return r, nil
	}
	return &models.SearchResponse{Result: []models.SearchResultItem{}}, nil
}

func appleSearcher() *mockSearcher {
	return &mockSearcher{results: map[string]*models.SearchResponse{
		"apple": {
			Count: 2,
			Result: []models.SearchResultItem{
				{Symbol: "AAPL", DisplaySymbol: "AAPL", Description: "APPLE INC", Type: "Common Stock"},
				{Symbol: "APLE", DisplaySymbol: "APLE", Description: "APPLE HOSPITALITY REIT INC", Type: "REIT"},
			},
		},
	}}
}

func newTestService(store *memory.HistoryStore, searcher *mockSearcher) *Service {
	svc := NewService(store, searcher, common.NewSilentLogger(), nil)
	svc.now = func() time.Time { return today.Add(14 * time.Hour) }
	return svc
}

// --- Tests ---

func TestAddSymbol_ResolvesFreeText(t *testing.T) {
	store := memory.NewHistoryStore(common.NewSilentLogger())
	svc := newTestService(store, appleSearcher())

	symbol, err := svc.AddSymbol(context.Background(), "  apple ")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", symbol)

	h, err := store.GetByID(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, h.IsActivelyTracked)
	assert.Empty(t, h.QuoteHistory)
	assert.True(t, h.CreatedOn.Equal(today))
	assert.True(t, h.LastUpdated.Equal(today))
}

func TestAddSymbol_AlreadyTracked(t *testing.T) {
	store := memory.NewHistoryStore(common.NewSilentLogger())
	svc := newTestService(store, appleSearcher())

	_, err := svc.AddSymbol(context.Background(), "apple")
	require.NoError(t, err)

	_, err = svc.AddSymbol(context.Background(), "apple")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrAlreadyTracked)
	assert.ErrorIs(t, err, models.ErrConflict)

	all, _ := store.ListAll(context.Background())
	assert.Len(t, all, 1)
}

func TestAddSymbol_NoMatch(t *testing.T) {
	store := memory.NewHistoryStore(common.NewSilentLogger())
	svc := newTestService(store, appleSearcher())

	_, err := svc.AddSymbol(context.Background(), "zzzz")
	assert.ErrorIs(t, err, models.ErrNotFound)

	all, _ := store.ListAll(context.Background())
	assert.Empty(t, all)
}

func TestAddSymbol_SearchFailure(t *testing.T) {
	svc := newTestService(memory.NewHistoryStore(common.NewSilentLogger()), &mockSearcher{err: errors.New("timeout")})

	_, err := svc.AddSymbol(context.Background(), "apple")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestAddSymbol_EmptyInput(t *testing.T) {
	searcher := appleSearcher()
	svc := newTestService(memory.NewHistoryStore(common.NewSilentLogger()), searcher)

	_, err := svc.AddSymbol(context.Background(), "   ")
	assert.ErrorIs(t, err, models.ErrEmptySymbol)
	assert.Empty(t, searcher.queries)
}

func TestAddSymbol_ReactivatesUntracked(t *testing.T) {
	store := memory.NewHistoryStore(common.NewSilentLogger())
	svc := newTestService(store, appleSearcher())

	h := models.NewStockHistory("AAPL", today.AddDate(0, 0, -30))
	h.QuoteHistory = append(h.QuoteHistory, models.Quote{Date: today.AddDate(0, 0, -30)})
	h.IsActivelyTracked = false
	_, err := store.Create(context.Background(), h)
	require.NoError(t, err)

	symbol, err := svc.AddSymbol(context.Background(), "apple")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", symbol)

	got, _ := store.GetByID(context.Background(), "AAPL")
	assert.True(t, got.IsActivelyTracked)
	assert.Len(t, got.QuoteHistory, 1)
	assert.Equal(t, 2, got.Version)
}

func TestRemoveSymbol(t *testing.T) {
	store := memory.NewHistoryStore(common.NewSilentLogger())
	svc := newTestService(store, appleSearcher())
	_, err := svc.AddSymbol(context.Background(), "apple")
	require.NoError(t, err)

	require.NoError(t, svc.RemoveSymbol(context.Background(), "AAPL"))

	h, err := store.GetByID(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.False(t, h.IsActivelyTracked)
}

func TestRemoveSymbol_NotFound(t *testing.T) {
	svc := newTestService(memory.NewHistoryStore(common.NewSilentLogger()), appleSearcher())

	err := svc.RemoveSymbol(context.Background(), "NOPE")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTrackedSymbols_ActiveFilter(t *testing.T) {
	store := memory.NewHistoryStore(common.NewSilentLogger())
	for _, sym := range []string{"MSFT", "AAPL", "GME"} {
		_, err := store.Create(context.Background(), models.NewStockHistory(sym, today))
		require.NoError(t, err)
	}
	svc := newTestService(store, appleSearcher())
	require.NoError(t, svc.RemoveSymbol(context.Background(), "GME"))

	active, err := svc.TrackedSymbols(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, active)

	all, err := svc.TrackedSymbols(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "GME", "MSFT"}, all)
}
