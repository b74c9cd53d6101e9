package history

import (
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the newest migration this package knows how to apply.
const SchemaVersion = 1

// Run is one convert pass as persisted in the runs table.
type Run struct {
	ID                string
	Root              string
	StartedAt         time.Time
	FinishedAt        time.Time
	DryRun            bool
	Files             int
	Candidates        int
	Renamed           int
	Skipped           int
	ShorthandRewrites int
	DirtyFiles        int
}

// Duration is the wall time of the run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func NewRunID() string {
	return uuid.NewString()
}
