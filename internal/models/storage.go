package models

// WriteResult reports the outcome of a single-document store write.
type WriteResult struct {
	StatusCode  int     `json:"status_code"`
	RequestCost float64 `json:"request_cost"` // backend cost units; elapsed ms where the backend reports none
}
