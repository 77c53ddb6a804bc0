// Package scan implements the batch scoring pipeline: quick-filter
// partitioning, explicit user confirmation, and the strictly sequential,
// rate-limited scoring loop with per-item error isolation.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/p-shah256/careerfit/internal/quickfilter"
	"github.com/p-shah256/careerfit/pkg/types"
)

// State is the session's position in the scan lifecycle.
type State int

const (
	StateIdle State = iota
	StateFiltering
	StateAwaitingConfirmation
	StateScoring
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFiltering:
		return "filtering"
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	case StateScoring:
		return "scoring"
	case StateComplete:
		return "complete"
	}
	return "unknown"
}

var (
	ErrNoProfile    = errors.New("no candidate profile, analyze a resume before scanning")
	ErrWrongState   = errors.New("operation not valid in current scan state")
	ErrScanInFlight = errors.New("a scan is already running")
)

// Scorer is the external collaborator that turns one candidate into a fit
// analysis. Errors are absorbed by the loop, never propagated: a failing
// call costs one result slot, not the batch.
type Scorer interface {
	ScoreJob(ctx context.Context, c types.JobCandidate, profile *types.CandidateProfile) (*types.FitAnalysis, error)
}

// History is the slice of the history store the scan loop needs.
type History interface {
	Upsert(rec types.JobRecord) (types.JobRecord, error)
}

// Config tunes one scan session. The inter-request delay is a deliberate
// anti-burst measure for the instrumented boards: lower it in tests, never
// remove it.
type Config struct {
	MaxJobsPerScan int           // hard per-scan ceiling on scoring calls
	DelayMin       time.Duration // inclusive lower bound of the inter-item delay
	DelayMax       time.Duration // exclusive upper bound
	Progress       func(types.ProgressEvent)
	Now            func() time.Time // test seam; defaults to time.Now
}

const (
	DefaultMaxJobsPerScan = 20
	DefaultDelayMin       = 4 * time.Second
	DefaultDelayMax       = 12 * time.Second
)

func (c Config) withDefaults() Config {
	if c.MaxJobsPerScan <= 0 {
		c.MaxJobsPerScan = DefaultMaxJobsPerScan
	}
	if c.DelayMin <= 0 {
		c.DelayMin = DefaultDelayMin
	}
	if c.DelayMax <= c.DelayMin {
		c.DelayMax = c.DelayMin + (DefaultDelayMax - DefaultDelayMin)
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// FilterOutcome is what the user confirms (or not) before scoring starts.
type FilterOutcome struct {
	Passed  []types.JobCandidate     `json:"passed"`
	Skipped []types.SkippedCandidate `json:"skipped"`
	ToScore int                      `json:"toScore"` // len(Passed) after the per-scan cap
}

// Session owns the state for exactly one scan. It is not safe for
// concurrent use; the Runner serializes access across callers.
type Session struct {
	cfg     Config
	state   State
	profile *types.CandidateProfile
	passed  []types.JobCandidate
	skipped []types.SkippedCandidate
	results []types.ScoredJob
}

func NewSession(cfg Config) *Session {
	return &Session{cfg: cfg.withDefaults(), state: StateIdle}
}

func (s *Session) State() State { return s.state }

// Filter runs the quick filter over all candidates and parks the session at
// the confirmation step. When nothing passes the session completes
// immediately; there is no confirmation and no scoring phase to enter.
// A missing profile aborts back to Idle with no partial state.
func (s *Session) Filter(candidates []types.JobCandidate, profile *types.CandidateProfile, filters *types.HardFilters) (FilterOutcome, error) {
	if s.state != StateIdle {
		return FilterOutcome{}, fmt.Errorf("%w: filter from %s", ErrWrongState, s.state)
	}
	if profile == nil {
		return FilterOutcome{}, ErrNoProfile
	}

	s.state = StateFiltering
	s.profile = profile
	s.passed, s.skipped = quickfilter.Partition(candidates, profile, filters)

	outcome := FilterOutcome{
		Passed:  s.passed,
		Skipped: s.skipped,
		ToScore: min(len(s.passed), s.cfg.MaxJobsPerScan),
	}

	if len(s.passed) == 0 {
		s.state = StateComplete
		slog.Info("quick filter passed nothing", "skipped", len(s.skipped))
		return outcome, nil
	}

	s.state = StateAwaitingConfirmation
	slog.Info("quick filter done",
		"passed", len(s.passed),
		"skipped", len(s.skipped),
		"to_score", outcome.ToScore)
	return outcome, nil
}

// Score runs the sequential scoring loop over the confirmed candidate set.
// Calling it is the confirmation: it is only legal from
// AwaitingConfirmation. Candidates beyond the per-scan cap are dropped from
// this scan, not deferred.
//
// One request is in flight at a time; the next is not issued until the
// current one settles and the randomized delay elapses. No delay follows the
// final item. Cancellation is honored between items and while sleeping; a
// cancelled scan still flushes the results it has to history.
func (s *Session) Score(ctx context.Context, scorer Scorer, hist History) (types.ScanSummary, error) {
	if s.state != StateAwaitingConfirmation {
		return types.ScanSummary{}, fmt.Errorf("%w: score from %s", ErrWrongState, s.state)
	}
	s.state = StateScoring

	jobs := s.passed
	if len(jobs) > s.cfg.MaxJobsPerScan {
		slog.Warn("capping scan", "passed", len(jobs), "cap", s.cfg.MaxJobsPerScan)
		jobs = jobs[:s.cfg.MaxJobsPerScan]
	}

	cancelled := false
	for i, c := range jobs {
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		s.emitProgress(i+1, len(jobs), c.Title)

		analysis, err := scorer.ScoreJob(ctx, c, s.profile)
		if err != nil {
			slog.Warn("scoring failed, continuing", "title", c.Title, "error", err)
			s.results = append(s.results, types.ScoredJob{Candidate: c, Score: 0, Error: err.Error()})
		} else {
			s.results = append(s.results, types.ScoredJob{Candidate: c, Score: analysis.FitScore, Analysis: analysis})
		}

		if i < len(jobs)-1 {
			if !sleepCtx(ctx, s.delay()) {
				cancelled = true
				break
			}
		}
	}

	summary := bucketize(s.results, cancelled)
	s.flush(hist)
	s.state = StateComplete

	slog.Info("scan complete",
		"high", len(summary.HighFit),
		"medium", len(summary.MediumFit),
		"low", len(summary.LowFit),
		"errors", len(summary.Errors),
		"cancelled", cancelled)
	return summary, nil
}

func (s *Session) emitProgress(current, total int, title string) {
	if s.cfg.Progress != nil {
		s.cfg.Progress(types.ProgressEvent{Current: current, Total: total, Title: title})
	}
}

// delay picks a uniform random duration in [DelayMin, DelayMax).
func (s *Session) delay() time.Duration {
	span := int64(s.cfg.DelayMax - s.cfg.DelayMin)
	if span <= 0 {
		return s.cfg.DelayMin
	}
	return s.cfg.DelayMin + time.Duration(rand.Int63n(span))
}

// flush upserts every successfully scored result. Score >= 4 marks the
// record interested, anything lower scanned. Error results carry no
// analysis and are not persisted.
func (s *Session) flush(hist History) {
	if hist == nil {
		return
	}
	now := s.cfg.Now()
	for _, r := range s.results {
		if r.Score < 1 {
			continue
		}
		status := types.StatusScanned
		if r.Score >= 4 {
			status = types.StatusInterested
		}
		score := r.Score
		c := r.Candidate
		rec := types.JobRecord{
			ID:        types.Fingerprint(c.Title, c.Company, c.Link),
			Title:     c.Title,
			Company:   c.Company,
			Location:  c.Location,
			Link:      c.Link,
			Score:     &score,
			Analysis:  r.Analysis,
			Status:    status,
			ScannedAt: now,
			Source:    c.Source,
		}
		if _, err := hist.Upsert(rec); err != nil {
			slog.Error("history upsert failed", "title", c.Title, "error", err)
		}
	}
}

func bucketize(results []types.ScoredJob, cancelled bool) types.ScanSummary {
	summary := types.ScanSummary{Cancelled: cancelled}
	for _, r := range results {
		switch {
		case r.Score >= 4:
			summary.HighFit = append(summary.HighFit, r)
		case r.Score == 3:
			summary.MediumFit = append(summary.MediumFit, r)
		case r.Score > 0:
			summary.LowFit = append(summary.LowFit, r)
		default:
			summary.Errors = append(summary.Errors, r)
		}
	}
	return summary
}

// sleepCtx sleeps for d unless ctx is cancelled first. Returns false on
// cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
