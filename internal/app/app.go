// Package app wires configuration, storage, clients, and services into the
// shared core used by cmd/stockhistory-server and cmd/stockhistory-reconcile.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bobmcallan/stockhistory/internal/clients/finnhub"
	"github.com/bobmcallan/stockhistory/internal/common"
	"github.com/bobmcallan/stockhistory/internal/interfaces"
	"github.com/bobmcallan/stockhistory/internal/models"
	"github.com/bobmcallan/stockhistory/internal/services/quote"
	"github.com/bobmcallan/stockhistory/internal/services/reconcile"
	"github.com/bobmcallan/stockhistory/internal/services/tracker"
	"github.com/bobmcallan/stockhistory/internal/storage"
)

// App holds all initialized services, clients, and storage.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Store            interfaces.HistoryStore
	MarketClient     interfaces.MarketDataClient
	ReconcileService interfaces.ReconcileService
	TrackerService   interfaces.TrackerService
	QueryService     interfaces.QueryService
	StartupTime      time.Time

	reconcileSlot   chan struct{} // one pass at a time across scheduler, CLI and HTTP
	mu              sync.Mutex
	schedulerCancel context.CancelFunc
	schedulerDone   chan struct{}
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath checks the provided path, STOCKHISTORY_CONFIG, then the
// binary dir, then the development fallback.
func resolveConfigPath(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if p := os.Getenv("STOCKHISTORY_CONFIG"); p != "" {
		return p
	}
	p := filepath.Join(getBinaryDir(), "stockhistory.toml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return "config/stockhistory.toml"
}

// NewApp loads configuration and initializes everything.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(resolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative log file path to binary directory
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(getBinaryDir(), config.Logging.FilePath)
	}

	return NewAppFromConfig(config, common.NewLoggerFromConfig(config.Logging))
}

// NewAppFromConfig initializes storage, clients, and services from a loaded config.
func NewAppFromConfig(config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()
	ctx := context.Background()

	store, err := storage.NewHistoryStore(ctx, logger, config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	fh := config.Clients.Finnhub
	if fh.APIKey == "" {
		logger.Warn().Msg("Finnhub API key not configured - quote and search requests will be rejected")
	}

	location := common.MustLoadLocation(config.Reconcile.Timezone)

	client := finnhub.NewClient(fh.APIKey,
		finnhub.WithBaseURL(fh.BaseURL),
		finnhub.WithLogger(logger),
		finnhub.WithRateLimit(fh.RateLimit),
		finnhub.WithTimeout(fh.GetTimeout()),
		finnhub.WithExchange(fh.Exchange),
		finnhub.WithLocation(location),
	)

	a := &App{
		Config:       config,
		Logger:       logger,
		Store:        store,
		MarketClient: client,
		ReconcileService: reconcile.NewService(store, client, logger,
			reconcile.WithConcurrency(config.Reconcile.GetConcurrency()),
			reconcile.WithLocation(location),
		),
		TrackerService: tracker.NewService(store, client, logger, location),
		QueryService:   quote.NewService(client, store, logger),
		StartupTime:    startupStart,
		reconcileSlot:  make(chan struct{}, 1),
	}

	logger.Info().
		Str("backend", config.Storage.Backend).
		Str("timezone", location.String()).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// RunReconcile runs one reconciliation pass bounded by the configured timeout.
// Passes are serialized; a caller waits for the pass in flight to finish.
func (a *App) RunReconcile(ctx context.Context) (*models.ReconcileReport, error) {
	if a.reconcileSlot != nil {
		select {
		case a.reconcileSlot <- struct{}{}:
			defer func() { <-a.reconcileSlot }()
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for reconciliation in progress: %w", ctx.Err())
		}
	}

	ctx, cancel := context.WithTimeout(ctx, a.Config.Reconcile.GetTimeout())
	defer cancel()
	return a.ReconcileService.Reconcile(ctx)
}

// StartScheduler launches the background reconciliation loop when enabled.
func (a *App) StartScheduler() {
	if !a.Config.Reconcile.Enabled {
		a.Logger.Info().Msg("Reconcile scheduler disabled")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.schedulerCancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	a.schedulerCancel = cancel
	a.schedulerDone = done

	go func() {
		defer close(done)
		startReconcileScheduler(ctx, a.RunReconcile, a.Logger, a.Config.Reconcile.GetInterval(), a.Config.Reconcile.RunOnStartup)
	}()
}

// Close releases all resources held by the App.
// Shutdown order: stop scheduler and wait for the pass in flight, close storage.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.schedulerCancel != nil {
		a.schedulerCancel()
		<-a.schedulerDone
		a.schedulerCancel = nil
		a.schedulerDone = nil
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
		a.Store = nil
	}
}
