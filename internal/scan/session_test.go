package scan_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-shah256/careerfit/internal/history"
	"github.com/p-shah256/careerfit/internal/scan"
	"github.com/p-shah256/careerfit/pkg/types"
)

// stubScorer implements scan.Scorer with a per-call hook.
type stubScorer struct {
	mu    sync.Mutex
	calls []string
	fn    func(c types.JobCandidate) (*types.FitAnalysis, error)
}

func (s *stubScorer) ScoreJob(_ context.Context, c types.JobCandidate, _ *types.CandidateProfile) (*types.FitAnalysis, error) {
	s.mu.Lock()
	s.calls = append(s.calls, c.Title)
	s.mu.Unlock()
	if s.fn != nil {
		return s.fn(c)
	}
	return &types.FitAnalysis{FitScore: 3, Reasoning: "ok"}, nil
}

// memHistory implements scan.History in memory.
type memHistory struct {
	mu      sync.Mutex
	records []types.JobRecord
}

func (m *memHistory) Upsert(rec types.JobRecord) (types.JobRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return rec, nil
}

func fastConfig() scan.Config {
	return scan.Config{
		MaxJobsPerScan: 20,
		DelayMin:       10 * time.Millisecond,
		DelayMax:       20 * time.Millisecond,
	}
}

func candidates(titles ...string) []types.JobCandidate {
	out := make([]types.JobCandidate, len(titles))
	for i, t := range titles {
		out[i] = types.JobCandidate{Index: i, Title: t, Company: "Acme", Link: "https://acme.example/" + t}
	}
	return out
}

func profile() *types.CandidateProfile {
	return &types.CandidateProfile{TargetTitles: []string{"Engineer"}}
}

func confirmed(t *testing.T, cfg scan.Config, titles ...string) *scan.Session {
	t.Helper()
	sess := scan.NewSession(cfg)
	outcome, err := sess.Filter(candidates(titles...), profile(), nil)
	require.NoError(t, err)
	require.Len(t, outcome.Passed, len(titles))
	require.Equal(t, scan.StateAwaitingConfirmation, sess.State())
	return sess
}

func TestSession_FilterRequiresProfile(t *testing.T) {
	sess := scan.NewSession(fastConfig())
	_, err := sess.Filter(candidates("Software Engineer"), nil, nil)
	assert.ErrorIs(t, err, scan.ErrNoProfile)
	assert.Equal(t, scan.StateIdle, sess.State())
}

func TestSession_FilterNothingPassed_CompletesImmediately(t *testing.T) {
	sess := scan.NewSession(fastConfig())
	outcome, err := sess.Filter(candidates("Sales Associate"), profile(), nil)
	require.NoError(t, err)
	assert.Empty(t, outcome.Passed)
	assert.Len(t, outcome.Skipped, 1)
	assert.Equal(t, scan.StateComplete, sess.State())

	_, err = sess.Score(context.Background(), &stubScorer{}, nil)
	assert.ErrorIs(t, err, scan.ErrWrongState)
}

func TestSession_ScoreIsSequentialWithDelay(t *testing.T) {
	cfg := fastConfig()
	cfg.DelayMin = 50 * time.Millisecond
	cfg.DelayMax = 60 * time.Millisecond
	sess := confirmed(t, cfg, "Backend Engineer", "Frontend Engineer", "Platform Engineer")

	var inFlight, maxInFlight int
	var mu sync.Mutex
	scorer := &stubScorer{fn: func(types.JobCandidate) (*types.FitAnalysis, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		inFlight--
		mu.Unlock()
		return &types.FitAnalysis{FitScore: 3}, nil
	}}

	start := time.Now()
	summary, err := sess.Score(context.Background(), scorer, nil)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Len(t, summary.MediumFit, 3)
	assert.Equal(t, 1, maxInFlight, "requests must never overlap")
	// Two inter-item delays (none after the last item), each >= DelayMin.
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Equal(t, []string{"Backend Engineer", "Frontend Engineer", "Platform Engineer"}, scorer.calls)
}

func TestSession_ScoreErrorIsolation(t *testing.T) {
	sess := confirmed(t, fastConfig(), "Engineer A", "Engineer B", "Engineer C")

	scorer := &stubScorer{fn: func(c types.JobCandidate) (*types.FitAnalysis, error) {
		if c.Title == "Engineer B" {
			return nil, errors.New("upstream 503")
		}
		return &types.FitAnalysis{FitScore: 4}, nil
	}}

	summary, err := sess.Score(context.Background(), scorer, nil)
	require.NoError(t, err)

	assert.Len(t, summary.HighFit, 2)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "Engineer B", summary.Errors[0].Candidate.Title)
	assert.Equal(t, 0, summary.Errors[0].Score)
	assert.Equal(t, "upstream 503", summary.Errors[0].Error)
	assert.Len(t, scorer.calls, 3, "loop must continue past the failing item")
}

func TestSession_ScoreRespectsCap(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxJobsPerScan = 2
	sess := confirmed(t, cfg, "Engineer A", "Engineer B", "Engineer C")

	scorer := &stubScorer{}
	summary, err := sess.Score(context.Background(), scorer, nil)
	require.NoError(t, err)

	assert.Len(t, scorer.calls, 2)
	assert.Equal(t, 2, summary.Total())
}

func TestSession_ScoreCancellation_FlushesPartialResults(t *testing.T) {
	cfg := fastConfig()
	cfg.DelayMin = 30 * time.Millisecond
	cfg.DelayMax = 40 * time.Millisecond
	sess := confirmed(t, cfg, "Engineer A", "Engineer B", "Engineer C")

	ctx, cancel := context.WithCancel(context.Background())
	hist := &memHistory{}
	scorer := &stubScorer{fn: func(c types.JobCandidate) (*types.FitAnalysis, error) {
		if c.Title == "Engineer A" {
			// Cancel during the delay that follows the first item.
			go func() {
				time.Sleep(5 * time.Millisecond)
				cancel()
			}()
		}
		return &types.FitAnalysis{FitScore: 5}, nil
	}}

	summary, err := sess.Score(ctx, scorer, hist)
	require.NoError(t, err)

	assert.True(t, summary.Cancelled)
	assert.Len(t, scorer.calls, 1, "cancellation must stop before the next item")
	require.Len(t, hist.records, 1, "partial results still flush to history")
	assert.Equal(t, "Engineer A", hist.records[0].Title)
	assert.Equal(t, scan.StateComplete, sess.State())
}

func TestSession_FlushMapsScoreToStatus(t *testing.T) {
	sess := confirmed(t, fastConfig(), "Engineer A", "Engineer B")

	scorer := &stubScorer{fn: func(c types.JobCandidate) (*types.FitAnalysis, error) {
		if c.Title == "Engineer A" {
			return &types.FitAnalysis{FitScore: 5}, nil
		}
		return &types.FitAnalysis{FitScore: 2}, nil
	}}

	hist := &memHistory{}
	_, err := sess.Score(context.Background(), scorer, hist)
	require.NoError(t, err)

	require.Len(t, hist.records, 2)
	byTitle := map[string]types.JobRecord{}
	for _, r := range hist.records {
		byTitle[r.Title] = r
	}
	assert.Equal(t, types.StatusInterested, byTitle["Engineer A"].Status)
	assert.Equal(t, types.StatusScanned, byTitle["Engineer B"].Status)
	require.NotNil(t, byTitle["Engineer A"].Score)
	assert.Equal(t, 5, *byTitle["Engineer A"].Score)
}

func TestSession_FlushSkipsErrorResults(t *testing.T) {
	sess := confirmed(t, fastConfig(), "Engineer A", "Engineer B")

	scorer := &stubScorer{fn: func(c types.JobCandidate) (*types.FitAnalysis, error) {
		if c.Title == "Engineer B" {
			return nil, errors.New("timeout")
		}
		return &types.FitAnalysis{FitScore: 3}, nil
	}}

	hist := &memHistory{}
	_, err := sess.Score(context.Background(), scorer, hist)
	require.NoError(t, err)

	require.Len(t, hist.records, 1)
	assert.Equal(t, "Engineer A", hist.records[0].Title)
}

func TestSession_ExcellentFitLandsInterestedInRealStore(t *testing.T) {
	store, err := history.Open(nil, nil, 0)
	require.NoError(t, err)

	sess := confirmed(t, fastConfig(), "Staff Engineer")
	scorer := &stubScorer{fn: func(types.JobCandidate) (*types.FitAnalysis, error) {
		return &types.FitAnalysis{FitScore: 5, Reasoning: "excellent"}, nil
	}}

	summary, err := sess.Score(context.Background(), scorer, store)
	require.NoError(t, err)
	require.Len(t, summary.HighFit, 1)

	rec, found := store.Get(types.Fingerprint("Staff Engineer", "Acme", "https://acme.example/Staff Engineer"))
	require.True(t, found)
	assert.Equal(t, types.StatusInterested, rec.Status)
	require.NotNil(t, rec.InterestedAt)
}

func TestSession_ScoreFromIdleRejected(t *testing.T) {
	sess := scan.NewSession(fastConfig())
	_, err := sess.Score(context.Background(), &stubScorer{}, nil)
	assert.ErrorIs(t, err, scan.ErrWrongState)
}

func TestSession_ProgressEvents(t *testing.T) {
	cfg := fastConfig()
	var events []types.ProgressEvent
	cfg.Progress = func(ev types.ProgressEvent) { events = append(events, ev) }

	sess := scan.NewSession(cfg)
	_, err := sess.Filter(candidates("Engineer A", "Engineer B"), profile(), nil)
	require.NoError(t, err)
	_, err = sess.Score(context.Background(), &stubScorer{}, nil)
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, types.ProgressEvent{Current: 1, Total: 2, Title: "Engineer A"}, events[0])
	assert.Equal(t, types.ProgressEvent{Current: 2, Total: 2, Title: "Engineer B"}, events[1])
}

func TestRunner_RejectsConcurrentScore(t *testing.T) {
	runner := scan.NewRunner()
	cfg := fastConfig()
	cfg.DelayMin = 40 * time.Millisecond
	cfg.DelayMax = 50 * time.Millisecond

	sess, err := runner.Begin(cfg)
	require.NoError(t, err)
	_, err = sess.Filter(candidates("Engineer A", "Engineer B"), profile(), nil)
	require.NoError(t, err)

	started := make(chan struct{})
	scorer := &stubScorer{fn: func(types.JobCandidate) (*types.FitAnalysis, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		return &types.FitAnalysis{FitScore: 3}, nil
	}}

	done := make(chan error, 1)
	go func() {
		_, err := runner.Run(context.Background(), scorer, nil)
		done <- err
	}()

	<-started
	_, err = runner.Run(context.Background(), scorer, nil)
	assert.ErrorIs(t, err, scan.ErrScanInFlight)

	_, err = runner.Begin(cfg)
	assert.ErrorIs(t, err, scan.ErrScanInFlight)

	require.NoError(t, <-done)

	// After completion the runner is free again.
	_, err = runner.Begin(cfg)
	assert.NoError(t, err)
}

func TestRunner_RunWithoutPendingSession(t *testing.T) {
	runner := scan.NewRunner()
	_, err := runner.Run(context.Background(), &stubScorer{}, nil)
	assert.ErrorIs(t, err, scan.ErrWrongState)
}

func TestRunner_BeginReplacesPendingSession(t *testing.T) {
	runner := scan.NewRunner()
	first, err := runner.Begin(fastConfig())
	require.NoError(t, err)
	_, err = first.Filter(candidates("Engineer A"), profile(), nil)
	require.NoError(t, err)
	require.NotNil(t, runner.Pending())

	second, err := runner.Begin(fastConfig())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Nil(t, runner.Pending(), "fresh session is idle, not pending")
}
