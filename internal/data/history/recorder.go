package history

import (
	"sync"

	"camelize/internal/core/decision"
)

// Recorder is a decision sink that buffers one run's records until Flush.
type Recorder struct {
	store *Store
	runID string

	mu      sync.Mutex
	records []decision.Record
}

func NewRecorder(store *Store, runID string) *Recorder {
	return &Recorder{store: store, runID: runID}
}

func (r *Recorder) Emit(rec decision.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

// Flush stores the run summary and every buffered decision.
func (r *Recorder) Flush(run Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run.ID = r.runID
	if err := r.store.SaveRun(run); err != nil {
		return err
	}
	return r.store.SaveDecisions(r.runID, r.records)
}
