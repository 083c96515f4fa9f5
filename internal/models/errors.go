package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that a symbol, history, or quote does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates that a record with the same key already exists.
	ErrConflict = errors.New("conflict")

	// ErrAlreadyTracked is returned when tracking a symbol that is already actively tracked.
	ErrAlreadyTracked = fmt.Errorf("symbol already tracked: %w", ErrConflict)

	// ErrVersionMismatch is returned when a replace carries a stale version.
	ErrVersionMismatch = errors.New("version mismatch")

	// ErrInvalidQuote is returned for quotes with negative prices.
	ErrInvalidQuote = errors.New("invalid quote: negative price")

	// ErrEmptySymbol is returned for blank symbol or query input.
	ErrEmptySymbol = errors.New("symbol cannot be empty")
)
