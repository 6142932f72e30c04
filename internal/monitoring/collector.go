package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/llmstxt/internal/model"
	"github.com/sells-group/llmstxt/internal/store"
)

// Snapshot holds a point-in-time view of run history.
type Snapshot struct {
	RunsTotal       int           `json:"runs_total" yaml:"runs_total"`
	RunsComplete    int           `json:"runs_complete" yaml:"runs_complete"`
	RunsFailed      int           `json:"runs_failed" yaml:"runs_failed"`
	RunsRunning     int           `json:"runs_running" yaml:"runs_running"`
	FailRate        float64       `json:"fail_rate" yaml:"fail_rate"`
	PagesWritten    int           `json:"pages_written" yaml:"pages_written"`
	PagesFailed     int           `json:"pages_failed" yaml:"pages_failed"`
	PageFailRate    float64       `json:"page_fail_rate" yaml:"page_fail_rate"`
	AvgDuration     time.Duration `json:"avg_duration" yaml:"avg_duration"`
	LookbackHours   int           `json:"lookback_hours" yaml:"lookback_hours"`
	CollectedAt     time.Time     `json:"collected_at" yaml:"collected_at"`
	LastSuccessTime time.Time     `json:"last_success_time,omitempty" yaml:"last_success_time,omitempty"`
}

// RunLister is the store subset the collector reads.
type RunLister interface {
	ListRuns(ctx context.Context, filter store.RunFilter) ([]model.Run, error)
}

// Collector gathers run statistics from the ledger.
type Collector struct {
	store RunLister
}

// NewCollector creates a new metrics collector.
func NewCollector(st RunLister) *Collector {
	return &Collector{store: st}
}

// Collect summarizes runs created within the lookback window. A lookback of
// zero covers all history.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*Snapshot, error) {
	snap := &Snapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   time.Now().UTC(),
	}

	filter := store.RunFilter{Limit: 10000}
	if lookbackHours > 0 {
		filter.CreatedAfter = snap.CollectedAt.Add(-time.Duration(lookbackHours) * time.Hour)
	}

	runs, err := c.store.ListRuns(ctx, filter)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list runs")
	}

	snap.RunsTotal = len(runs)
	var totalDuration time.Duration
	var timedRuns int

	for _, r := range runs {
		switch r.Status {
		case model.RunStatusComplete:
			snap.RunsComplete++
			if r.UpdatedAt.After(snap.LastSuccessTime) {
				snap.LastSuccessTime = r.UpdatedAt
			}
		case model.RunStatusFailed:
			snap.RunsFailed++
		case model.RunStatusRunning:
			snap.RunsRunning++
		}
		if r.Summary != nil {
			snap.PagesWritten += r.Summary.PagesWritten
			snap.PagesFailed += r.Summary.PagesFailed
			if r.Summary.Duration > 0 {
				totalDuration += r.Summary.Duration
				timedRuns++
			}
		}
	}

	if finished := snap.RunsComplete + snap.RunsFailed; finished > 0 {
		snap.FailRate = float64(snap.RunsFailed) / float64(finished)
	}
	if attempted := snap.PagesWritten + snap.PagesFailed; attempted > 0 {
		snap.PageFailRate = float64(snap.PagesFailed) / float64(attempted)
	}
	if timedRuns > 0 {
		snap.AvgDuration = totalDuration / time.Duration(timedRuns)
	}

	return snap, nil
}
