// Package surrealdb implements the history store on SurrealDB.
package surrealdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/stockhistory/internal/common"
	"github.com/surrealdb/surrealdb.go"
)

const historyTable = "stock_history"

// Connect opens a SurrealDB connection, signs in, selects the namespace and
// database, and makes sure the history table and its symbol index exist.
func Connect(ctx context.Context, logger *common.Logger, config common.StorageConfig) (*surrealdb.DB, error) {
	db, err := surrealdb.New(config.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Username,
		"pass": config.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Namespace, config.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	if err := defineSchema(ctx, db); err != nil {
		db.Close(ctx)
		return nil, err
	}

	logger.Info().
		Str("address", config.Address).
		Str("namespace", config.Namespace).
		Str("database", config.Database).
		Msg("SurrealDB connection established")

	return db, nil
}

// defineSchema creates the table up front; SurrealDB v3 errors on querying
// tables that do not exist.
func defineSchema(ctx context.Context, db *surrealdb.DB) error {
	statements := []string{
		fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", historyTable),
		fmt.Sprintf("DEFINE INDEX IF NOT EXISTS %s_symbol ON %s FIELDS symbol UNIQUE", historyTable, historyTable),
	}
	for _, sql := range statements {
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return fmt.Errorf("failed to define schema (%s): %w", sql, err)
		}
	}
	return nil
}

// Open connects and returns a HistoryStore that owns the connection.
func Open(ctx context.Context, logger *common.Logger, config common.StorageConfig) (*HistoryStore, error) {
	db, err := Connect(ctx, logger, config)
	if err != nil {
		return nil, err
	}
	s := NewHistoryStore(db, logger, config.PageSize)
	s.ownsDB = true
	return s, nil
}

func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist")
}

func isAlreadyExistsError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "already exists")
}
