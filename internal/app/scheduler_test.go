package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bobmcallan/stockhistory/internal/common"
	"github.com/bobmcallan/stockhistory/internal/models"
)

func TestReconcileScheduler_RunsOnStartupAndTicks(t *testing.T) {
	var runs int32
	run := func(ctx context.Context) (*models.ReconcileReport, error) {
		atomic.AddInt32(&runs, 1)
		return &models.ReconcileReport{}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		startReconcileScheduler(ctx, run, common.NewSilentLogger(), 10*time.Millisecond, true)
	}()

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&runs) < 3 {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("expected at least 3 runs, got %d", atomic.LoadInt32(&runs))
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestReconcileScheduler_NoStartupRun(t *testing.T) {
	var runs int32
	run := func(ctx context.Context) (*models.ReconcileReport, error) {
		atomic.AddInt32(&runs, 1)
		return nil, errors.New("store unavailable")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	startReconcileScheduler(ctx, run, common.NewSilentLogger(), time.Hour, false)

	if n := atomic.LoadInt32(&runs); n != 0 {
		t.Errorf("expected no runs, got %d", n)
	}
}
