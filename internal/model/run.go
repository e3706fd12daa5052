package model

import "time"

// RunStatus represents the state of an analysis run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusComplete  RunStatus = "complete"
	RunStatusCancelled RunStatus = "cancelled"
	RunStatusFailed    RunStatus = "failed"
)

// Tally counts scored leads per classification.
type Tally map[Classification]int

// Run is the archived record of one pipeline invocation.
type Run struct {
	ID          string     `json:"id"`
	InputPath   string     `json:"input_path"`
	LeadCount   int        `json:"lead_count"`
	Status      RunStatus  `json:"status"`
	Tally       Tally      `json:"tally,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
