package models

import (
	"time"
)

// ImportReport summarizes one seed import run
type ImportReport struct {
	Resource        string            `json:"resource"`
	TotalRecords    int               `json:"total_records"`
	ProcessedCount  int               `json:"processed"`
	SuccessfulCount int               `json:"successful"`
	FailedCount     int               `json:"failed"`
	DurationMs      int64             `json:"duration_ms"`
	RowsPerSec      float64           `json:"rows_per_sec"`
	StartedAt       time.Time         `json:"started_at"`
	CompletedAt     time.Time         `json:"completed_at"`
	Errors          []ValidationError `json:"errors,omitempty"`
	// ErrorsDropped counts errors beyond the reporting cap
	ErrorsDropped int `json:"errors_dropped,omitempty"`
}

// Finish stamps the completion time and derived throughput
func (r *ImportReport) Finish(now time.Time) {
	r.CompletedAt = now
	r.DurationMs = now.Sub(r.StartedAt).Milliseconds()
	if r.DurationMs > 0 {
		r.RowsPerSec = float64(r.ProcessedCount) / (float64(r.DurationMs) / 1000)
	}
}

// ValidationError represents a single validation error
type ValidationError struct {
	Line    int         `json:"line"`
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}
