package scan

import (
	"context"
	"sync"

	"github.com/p-shah256/careerfit/pkg/types"
)

// Runner serializes scan sessions across callers. At most one session is
// pending or scoring at a time; a second scan attempt while one is in
// flight is rejected, not queued.
type Runner struct {
	mu      sync.Mutex
	current *Session
	scoring bool
}

func NewRunner() *Runner {
	return &Runner{}
}

// Begin creates and registers a fresh session. A pending (unconfirmed)
// session is discarded and replaced; a session mid-scoring blocks new ones.
func (r *Runner) Begin(cfg Config) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scoring {
		return nil, ErrScanInFlight
	}
	r.current = NewSession(cfg)
	return r.current, nil
}

// Run scores the pending session. The scoring flag is the only mutual
// exclusion: it rejects re-entry but queues nothing.
func (r *Runner) Run(ctx context.Context, scorer Scorer, hist History) (types.ScanSummary, error) {
	r.mu.Lock()
	if r.scoring {
		r.mu.Unlock()
		return types.ScanSummary{}, ErrScanInFlight
	}
	sess := r.current
	if sess == nil || sess.State() != StateAwaitingConfirmation {
		r.mu.Unlock()
		return types.ScanSummary{}, ErrWrongState
	}
	r.scoring = true
	r.mu.Unlock()

	summary, err := sess.Score(ctx, scorer, hist)

	r.mu.Lock()
	r.scoring = false
	r.current = nil
	r.mu.Unlock()

	return summary, err
}

// Pending returns the session awaiting confirmation, if any.
func (r *Runner) Pending() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil && r.current.State() == StateAwaitingConfirmation {
		return r.current
	}
	return nil
}
