package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"asi_schedules/pkg/core/schedule"
)

// FileStore persists schedules as indented JSON files under
// <root>/<run>/output_Block_<id>.json, the layout the export step and
// human reviewers consume.
type FileStore struct {
	root string
}

// NewFileStore creates a filesystem-backed schedule store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

func (f *FileStore) path(runID, block string) string {
	return filepath.Join(f.root, runID, fmt.Sprintf("output_Block_%s.json", block))
}

// Save writes one block's document, creating the run directory as needed.
func (f *FileStore) Save(_ context.Context, runID, block string, s *schedule.Schedule) error {
	doc, err := s.Encode()
	if err != nil {
		return fmt.Errorf("store: failed to encode schedule: %w", err)
	}
	path := f.path(runID, block)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("store: failed to create run directory: %w", err)
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return fmt.Errorf("store: failed to write block %s: %w", block, err)
	}
	return nil
}

// Load reads one block's document.
func (f *FileStore) Load(_ context.Context, runID, block string) (*schedule.Schedule, error) {
	data, err := os.ReadFile(f.path(runID, block))
	if err != nil {
		return nil, fmt.Errorf("store: failed to read block %s: %w", block, err)
	}
	return schedule.Decode(data)
}
