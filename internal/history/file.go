package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/p-shah256/careerfit/pkg/types"
)

// JSONFile snapshots the record list to a single JSON file, the server-side
// stand-in for the extension's local storage area.
type JSONFile struct {
	Path string
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

// Load reads the snapshot. A missing file is an empty store, not an error.
func (f *JSONFile) Load() ([]types.JobRecord, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	var records []types.JobRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Path, err)
	}
	return records, nil
}

// Save writes the snapshot via a temp file rename so a crash mid-write
// cannot truncate the history.
func (f *JSONFile) Save(records []types.JobRecord) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("mkdir for %s: %w", f.Path, err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return os.Rename(tmp, f.Path)
}
