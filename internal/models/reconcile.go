package models

import "time"

// Reconcile failure stages.
const (
	StageFetch  = "fetch"
	StageUpsert = "upsert"
)

// SymbolFailure records why one symbol was not updated during a pass.
type SymbolFailure struct {
	Symbol string `json:"symbol"`
	Stage  string `json:"stage"`
	Error  string `json:"error"`
}

// ReconcileReport summarises one reconciliation pass.
type ReconcileReport struct {
	RunID       string          `json:"run_id"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
	Today       time.Time       `json:"today"`
	Checked     int             `json:"checked"`
	Stale       int             `json:"stale"`
	Updated     int             `json:"updated"`
	Skipped     int             `json:"skipped,omitempty"` // became current during the pass
	Failures    []SymbolFailure `json:"failures,omitempty"`
	Cancelled   bool            `json:"cancelled,omitempty"`
	DurationMS  int64           `json:"duration_ms"`
}
