package viewstate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/runningman84/zfs-list-tree/pkg/models"
	"gopkg.in/yaml.v3"
)

// ErrLoadFailure marks a missing or unreadable state file. Load still
// returns usable defaults alongside it.
var ErrLoadFailure = errors.New("could not load view state")

// Store persists view geometry as YAML
type Store struct {
	Path string
}

// NewStore creates a store backed by the given file
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load reads the saved geometry. A missing or corrupt file yields the
// default geometry and an error wrapping ErrLoadFailure. Invalid individual
// values are replaced by defaults without an error.
func (s *Store) Load() (models.ViewGeometry, error) {
	geom := models.DefaultViewGeometry()

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return geom, fmt.Errorf("%w from %s: %v", ErrLoadFailure, s.Path, err)
	}

	var saved models.ViewGeometry
	if err := yaml.Unmarshal(data, &saved); err != nil {
		return geom, fmt.Errorf("%w from %s: %v", ErrLoadFailure, s.Path, err)
	}

	if saved.Width > 0 {
		geom.Width = saved.Width
	}
	if saved.Height > 0 {
		geom.Height = saved.Height
	}
	for label, width := range saved.ColumnWidths {
		if width > 0 {
			geom.ColumnWidths[label] = width
		}
	}

	return geom, nil
}

// Save writes the geometry atomically, creating the parent directory if needed
func (s *Store) Save(geom models.ViewGeometry) error {
	data, err := yaml.Marshal(geom)
	if err != nil {
		return fmt.Errorf("failed to encode view state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmpPath := s.Path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write view state: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write view state: %w", err)
	}

	return nil
}
