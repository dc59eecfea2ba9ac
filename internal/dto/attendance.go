package dto

import "time"

// RangeRequest captures query parameters for the per-employee range
// endpoint. Date validation happens here, before the core is reached.
type RangeRequest struct {
	EmployeeID string    `validate:"required"`
	From       time.Time `validate:"required"`
	To         time.Time `validate:"required"`
}

// RecomputeRequest is the payload for enqueuing a batch recompute.
type RecomputeRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// RecomputeResponse acknowledges an enqueued recompute job.
type RecomputeResponse struct {
	JobID string `json:"job_id"`
	Date  string `json:"date"`
}

// ExportRequest captures parameters for attendance sheet downloads.
type ExportRequest struct {
	EmployeeID string
	From       time.Time
	To         time.Time
	Format     string `validate:"required,oneof=csv pdf"`
}
