// Package profile persists the user's resume, the analyzed candidate
// profile, and the hand-set hard filters as files in the data directory.
package profile

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/p-shah256/careerfit/pkg/types"
)

const (
	resumeFile   = "resume.txt"
	profileFile  = "profile.yaml"
	filtersFile  = "filters.yaml"
	hashFile     = "resume.hash"
	searchesFile = "searches.yaml"
)

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create profile dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// =============== resume ===============

func (s *Store) SaveResume(text string) error {
	return os.WriteFile(s.path(resumeFile), []byte(text), 0o644)
}

// LoadResume returns "" when no resume has been saved.
func (s *Store) LoadResume() (string, error) {
	data, err := os.ReadFile(s.path(resumeFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read resume: %w", err)
	}
	return string(data), nil
}

// ResumeChanged reports whether text differs from the last analyzed resume,
// so an unchanged resume is not re-analyzed (analysis costs API tokens).
func (s *Store) ResumeChanged(text string) bool {
	data, err := os.ReadFile(s.path(hashFile))
	if err != nil {
		return true
	}
	return string(data) != hashResume(text)
}

// MarkAnalyzed records the hash of the resume that was just analyzed.
func (s *Store) MarkAnalyzed(text string) error {
	return os.WriteFile(s.path(hashFile), []byte(hashResume(text)), 0o644)
}

func hashResume(text string) string {
	h := fnv.New32a()
	h.Write([]byte(text))
	return strconv.FormatUint(uint64(h.Sum32()), 10)
}

// =============== profile ===============

func (s *Store) SaveProfile(p *types.CandidateProfile) error {
	return s.writeYAML(profileFile, p)
}

// LoadProfile returns nil when no profile exists yet.
func (s *Store) LoadProfile() (*types.CandidateProfile, error) {
	var p types.CandidateProfile
	ok, err := s.readYAML(profileFile, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

// =============== hard filters ===============

func (s *Store) SaveFilters(f *types.HardFilters) error {
	return s.writeYAML(filtersFile, f)
}

// LoadFilters returns nil when no filters are saved; the quick filter
// treats nil as "no knockout rules".
func (s *Store) LoadFilters() (*types.HardFilters, error) {
	var f types.HardFilters
	ok, err := s.readYAML(filtersFile, &f)
	if err != nil || !ok {
		return nil, err
	}
	return &f, nil
}

// LoadProfileAndFilters loads both in one call, the shape the scan
// orchestration consumes. Either may come back nil.
func (s *Store) LoadProfileAndFilters() (*types.CandidateProfile, *types.HardFilters, error) {
	p, err := s.LoadProfile()
	if err != nil {
		return nil, nil, err
	}
	f, err := s.LoadFilters()
	if err != nil {
		return nil, nil, err
	}
	return p, f, nil
}

// =============== saved searches ===============

// SaveSearches stores the search-results URLs the periodic discovery pass
// revisits.
func (s *Store) SaveSearches(urls []string) error {
	return s.writeYAML(searchesFile, urls)
}

func (s *Store) LoadSearches() ([]string, error) {
	var urls []string
	if _, err := s.readYAML(searchesFile, &urls); err != nil {
		return nil, err
	}
	return urls, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) writeYAML(name string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	return os.WriteFile(s.path(name), data, 0o644)
}

// readYAML returns ok=false for a missing file.
func (s *Store) readYAML(name string, v any) (bool, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", name, err)
	}
	return true, nil
}
