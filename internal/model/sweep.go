package model

import "time"

// SweepStatus is the lifecycle state of a recorded locator sweep.
type SweepStatus string

const (
	SweepRunning   SweepStatus = "running"
	SweepCompleted SweepStatus = "completed"
	SweepFailed    SweepStatus = "failed"
)

// Sweep is one recorded locator sweep of an OEM across a ZIP list.
type Sweep struct {
	ID          string      `json:"id"`
	OEM         string      `json:"oem"`
	Status      SweepStatus `json:"status"`
	TotalZips   int         `json:"total_zips"`
	RawCount    int         `json:"raw_count"`
	UniqueCount int         `json:"unique_count"`
	FailedZips  int         `json:"failed_zips"`
	StartedAt   time.Time   `json:"started_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}
