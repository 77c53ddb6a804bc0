package skills

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/p-shah256/careerfit/pkg/types"
)

// JSONFile snapshots the skill list to disk.
type JSONFile struct {
	Path string
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

func (f *JSONFile) Load() ([]types.SkillToLearn, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	var skills []types.SkillToLearn
	if err := json.Unmarshal(data, &skills); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Path, err)
	}
	return skills, nil
}

func (f *JSONFile) Save(skills []types.SkillToLearn) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("mkdir for %s: %w", f.Path, err)
	}
	data, err := json.MarshalIndent(skills, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal skills: %w", err)
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return os.Rename(tmp, f.Path)
}
