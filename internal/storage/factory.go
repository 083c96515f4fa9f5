// Package storage selects and opens the configured history store backend.
package storage

import (
	"context"
	"fmt"

	"github.com/bobmcallan/stockhistory/internal/common"
	"github.com/bobmcallan/stockhistory/internal/interfaces"
	"github.com/bobmcallan/stockhistory/internal/storage/memory"
	"github.com/bobmcallan/stockhistory/internal/storage/surrealdb"
)

// NewHistoryStore creates a history store based on the configuration.
// Supported backends: "surrealdb" (default), "memory".
func NewHistoryStore(ctx context.Context, logger *common.Logger, config common.StorageConfig) (interfaces.HistoryStore, error) {
	backend := config.Backend
	if backend == "" {
		backend = common.BackendSurrealDB
	}

	switch backend {
	case common.BackendSurrealDB:
		return surrealdb.Open(ctx, logger, config)

	case common.BackendMemory:
		logger.Warn().Msg("Using in-memory storage; stock histories will not survive a restart")
		return memory.NewHistoryStore(logger), nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: surrealdb, memory)", backend)
	}
}
