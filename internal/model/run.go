package model

import "time"

// RunStatus represents the final state of a generate run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunSummary holds the outcome of a generate run.
type RunSummary struct {
	Domain       string        `json:"domain"`
	Backend      string        `json:"backend"`
	Sitemaps     []string      `json:"sitemaps"`
	URLsFound    int           `json:"urls_found"`
	URLsFiltered int           `json:"urls_filtered"`
	PagesWritten int           `json:"pages_written"`
	PagesFailed  int           `json:"pages_failed"`
	OutputFile   string        `json:"output_file"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
}

// Run is a persisted record of a generate run.
type Run struct {
	ID        string      `json:"id"`
	Domain    string      `json:"domain"`
	Backend   string      `json:"backend"`
	Status    RunStatus   `json:"status"`
	Summary   *RunSummary `json:"summary,omitempty"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
