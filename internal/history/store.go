// Package history is the capped, deduplicated store of scanned jobs.
// The local store is the source of truth; the remote mirror is a
// best-effort, eventually-consistent cache.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/p-shah256/careerfit/pkg/types"
)

const DefaultCap = 500

// Snapshotter persists the full record list locally.
type Snapshotter interface {
	Load() ([]types.JobRecord, error)
	Save(records []types.JobRecord) error
}

// Mirror replays local writes to a remote store. Implementations must be
// safe to call from a background goroutine; failures are logged by the
// store and never surfaced to callers.
type Mirror interface {
	Save(ctx context.Context, rec types.JobRecord) error
	Clear(ctx context.Context) error
}

// Store keeps records newest-scan-first, at most one per fingerprint id,
// capped at Cap. Writers race last-write-wins; there is no conflict
// detection across processes.
type Store struct {
	mu      sync.Mutex
	records []types.JobRecord
	cap     int
	snap    Snapshotter
	mirror  Mirror
	now     func() time.Time
}

// Open loads the local snapshot (if any) and returns a ready store.
// snap and mirror may be nil for a purely in-memory store.
func Open(snap Snapshotter, mirror Mirror, capacity int) (*Store, error) {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	s := &Store{cap: capacity, snap: snap, mirror: mirror, now: time.Now}
	if snap != nil {
		records, err := snap.Load()
		if err != nil {
			return nil, fmt.Errorf("load history snapshot: %w", err)
		}
		s.records = records
		// A snapshot written under a larger cap may be over it.
		s.evict()
	}
	return s, nil
}

// Upsert inserts rec or merges it into the existing record with the same
// id. Merges are non-destructive: fields absent on rec keep their stored
// values, and scannedAt is always the original record's once set. New
// records go to the head; past the cap the oldest-inserted record is
// evicted.
func (s *Store) Upsert(rec types.JobRecord) (types.JobRecord, error) {
	if rec.ID == "" {
		rec.ID = types.Fingerprint(rec.Title, rec.Company, rec.Link)
	}
	if rec.ScannedAt.IsZero() {
		rec.ScannedAt = s.now()
	}

	s.mu.Lock()
	var stored types.JobRecord
	if i := s.indexOf(rec.ID); i >= 0 {
		stored = merge(s.records[i], rec, s.now())
		s.records[i] = stored
	} else {
		stored = rec
		stampStatus(&stored, stored.Status, s.now())
		s.records = append([]types.JobRecord{stored}, s.records...)
		s.evict()
	}
	err := s.persist()
	s.mu.Unlock()

	if err != nil {
		return types.JobRecord{}, err
	}
	s.mirrorSave(stored)
	return stored, nil
}

// All returns every record, newest scan first.
func (s *Store) All() []types.JobRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.JobRecord, len(s.records))
	copy(out, s.records)
	return out
}

// ByStatus returns records carrying the given status label.
func (s *Store) ByStatus(status types.JobStatus) []types.JobRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.JobRecord
	for _, r := range s.records {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) Get(id string) (types.JobRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.records[i], true
	}
	return types.JobRecord{}, false
}

// SetStatus updates a record's status label and notes. appliedAt and
// interestedAt are stamped the first time those statuses are reached.
// Returns false when no record has the id.
func (s *Store) SetStatus(id string, status types.JobStatus, notes string) (types.JobRecord, bool, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return types.JobRecord{}, false, nil
	}
	rec := &s.records[i]
	stampStatus(rec, status, s.now())
	rec.Status = status
	if notes != "" {
		rec.Notes = notes
	}
	stored := *rec
	err := s.persist()
	s.mu.Unlock()

	if err != nil {
		return types.JobRecord{}, false, err
	}
	s.mirrorSave(stored)
	return stored, true, nil
}

// Clear drops every record locally and asks the mirror to do the same.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.records = nil
	err := s.persist()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if s.mirror != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.mirror.Clear(ctx); err != nil {
				slog.Warn("remote mirror clear failed", "error", err)
			}
		}()
	}
	return nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id string) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// evict drops records past the cap. Records are kept newest-insertion-first
// and merges never reorder, so the tail is always the oldest insertion;
// eviction is by insertion order, not scan date.
// Must be called with mu held.
func (s *Store) evict() {
	for len(s.records) > s.cap {
		victim := s.records[len(s.records)-1]
		slog.Debug("evicting history record", "id", victim.ID, "scanned_at", victim.ScannedAt)
		s.records = s.records[:len(s.records)-1]
	}
}

// persist writes the snapshot; a failure fails the local operation.
// Must be called with mu held.
func (s *Store) persist() error {
	if s.snap == nil {
		return nil
	}
	if err := s.snap.Save(s.records); err != nil {
		return fmt.Errorf("save history snapshot: %w", err)
	}
	return nil
}

// mirrorSave replays one write to the remote mirror, fire and forget.
func (s *Store) mirrorSave(rec types.JobRecord) {
	if s.mirror == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.mirror.Save(ctx, rec); err != nil {
			slog.Warn("remote mirror save failed", "id", rec.ID, "error", err)
		}
	}()
}

// merge overlays the fields incoming actually carries onto old. scannedAt
// stays what it was; status stamps transition timestamps on first reach.
func merge(old, incoming types.JobRecord, now time.Time) types.JobRecord {
	out := old
	if incoming.Title != "" {
		out.Title = incoming.Title
	}
	if incoming.Company != "" {
		out.Company = incoming.Company
	}
	if incoming.Location != "" {
		out.Location = incoming.Location
	}
	if incoming.Link != "" {
		out.Link = incoming.Link
	}
	if incoming.Source != "" {
		out.Source = incoming.Source
	}
	if incoming.Score != nil {
		out.Score = incoming.Score
	}
	if incoming.Analysis != nil {
		out.Analysis = incoming.Analysis
	}
	if incoming.Summary != nil {
		out.Summary = incoming.Summary
	}
	if incoming.Notes != "" {
		out.Notes = incoming.Notes
	}
	if incoming.Status != "" {
		stampStatus(&out, incoming.Status, now)
		out.Status = incoming.Status
	}
	if old.ScannedAt.IsZero() {
		out.ScannedAt = incoming.ScannedAt
	}
	return out
}

// stampStatus records when a job first became applied or interested.
func stampStatus(rec *types.JobRecord, status types.JobStatus, now time.Time) {
	switch status {
	case types.StatusApplied:
		if rec.AppliedAt == nil {
			t := now
			rec.AppliedAt = &t
		}
	case types.StatusInterested:
		if rec.InterestedAt == nil {
			t := now
			rec.InterestedAt = &t
		}
	}
}
