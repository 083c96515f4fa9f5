package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockhistory/internal/common"
	"github.com/bobmcallan/stockhistory/internal/services/reconcile"
	"github.com/bobmcallan/stockhistory/internal/services/tracker"
)

// TestTrackAndReconcile exercises add, reconcile, and untrack end to end
// against SurrealDB, paging through more records than fit in one page.
func TestTrackAndReconcile(t *testing.T) {
	store := testStore(t)
	client := &stubClient{price: "101.25", fail: map[string]bool{"NVDA": true}}
	logger := common.NewSilentLogger()
	ctx := context.Background()

	trk := tracker.NewService(store, client, logger, time.UTC)
	for _, text := range []string{"aapl", "msft", "nvda", "tsla", "pep"} {
		_, err := trk.AddSymbol(ctx, text)
		require.NoError(t, err)
	}
	require.NoError(t, trk.RemoveSymbol(ctx, "PEP"))

	rec := reconcile.NewService(store, client, logger, reconcile.WithConcurrency(2))

	report, err := rec.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Checked)
	assert.Equal(t, 3, report.Updated)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "NVDA", report.Failures[0].Symbol)

	aapl, err := store.GetByID(ctx, "AAPL")
	require.NoError(t, err)
	require.Len(t, aapl.QuoteHistory, 1)
	assert.Equal(t, "101.25", aapl.QuoteHistory[0].CurrentPrice.StringFixed(2))
	assert.Equal(t, 2, aapl.Version)

	pep, err := store.GetByID(ctx, "PEP")
	require.NoError(t, err)
	assert.False(t, pep.IsActivelyTracked)
	assert.Empty(t, pep.QuoteHistory)

	// Same day: only the failed symbol is still stale.
	client.fail = nil
	count, err := rec.ReconcileDaily(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	active, err := trk.TrackedSymbols(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA", "TSLA"}, active)
}
