// Package skills stores the gap skills a user saved to learn later,
// deduplicated case-insensitively by skill name.
package skills

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/p-shah256/careerfit/pkg/types"
)

const DefaultCap = 100

// Snapshotter persists the skill list; mirrors history.Snapshotter so both
// stores share the same JSON-file treatment.
type Snapshotter interface {
	Load() ([]types.SkillToLearn, error)
	Save(skills []types.SkillToLearn) error
}

type Store struct {
	mu     sync.Mutex
	skills []types.SkillToLearn
	cap    int
	snap   Snapshotter
	now    func() time.Time
}

func Open(snap Snapshotter, capacity int) (*Store, error) {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	s := &Store{cap: capacity, snap: snap, now: time.Now}
	if snap != nil {
		skills, err := snap.Load()
		if err != nil {
			return nil, err
		}
		s.skills = skills
	}
	return s, nil
}

// Upsert adds or merges a skill. Keywords merge as a set union; resources
// are replaced when the incoming entry carries them. Oldest saved entries
// are evicted past the cap.
func (s *Store) Upsert(skill types.SkillToLearn) (types.SkillToLearn, error) {
	s.mu.Lock()

	var stored types.SkillToLearn
	if i := s.indexOf(skill.Skill); i >= 0 {
		existing := s.skills[i]
		existing.Keywords = unionKeywords(existing.Keywords, skill.Keywords)
		if skill.Resources != "" {
			existing.Resources = skill.Resources
		}
		s.skills[i] = existing
		stored = existing
	} else {
		if skill.SavedAt.IsZero() {
			skill.SavedAt = s.now()
		}
		s.skills = append(s.skills, skill)
		s.evict()
		stored = skill
	}

	err := s.persist()
	s.mu.Unlock()
	if err != nil {
		return types.SkillToLearn{}, err
	}
	return stored, nil
}

// MarkLearned flips the learned flag. Returns false for unknown skills.
func (s *Store) MarkLearned(name string, learned bool) (types.SkillToLearn, bool, error) {
	s.mu.Lock()
	i := s.indexOf(name)
	if i < 0 {
		s.mu.Unlock()
		return types.SkillToLearn{}, false, nil
	}
	s.skills[i].Learned = learned
	stored := s.skills[i]
	err := s.persist()
	s.mu.Unlock()
	if err != nil {
		return types.SkillToLearn{}, false, err
	}
	return stored, true, nil
}

// All returns the saved skills, newest first.
func (s *Store) All() []types.SkillToLearn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.SkillToLearn, len(s.skills))
	copy(out, s.skills)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SavedAt.After(out[j].SavedAt) })
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.skills)
}

// indexOf must be called with mu held.
func (s *Store) indexOf(name string) int {
	for i, sk := range s.skills {
		if strings.EqualFold(sk.Skill, name) {
			return i
		}
	}
	return -1
}

// evict must be called with mu held.
func (s *Store) evict() {
	for len(s.skills) > s.cap {
		oldest := 0
		for i, sk := range s.skills {
			if sk.SavedAt.Before(s.skills[oldest].SavedAt) {
				oldest = i
			}
		}
		s.skills = append(s.skills[:oldest], s.skills[oldest+1:]...)
	}
}

// persist must be called with mu held.
func (s *Store) persist() error {
	if s.snap == nil {
		return nil
	}
	return s.snap.Save(s.skills)
}

// unionKeywords merges case-insensitively, keeping first-seen casing and
// order.
func unionKeywords(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, kw := range existing {
		key := strings.ToLower(kw)
		if !seen[key] {
			seen[key] = true
			out = append(out, kw)
		}
	}
	for _, kw := range incoming {
		key := strings.ToLower(kw)
		if kw != "" && !seen[key] {
			seen[key] = true
			out = append(out, kw)
		}
	}
	return out
}
