package export

import (
	"fmt"
	"os"
	"path/filepath"

	"expdata/internal/record"
)

// Store writes artifacts into one output directory. Writes are plain
// overwrites of fixed file names; two runs sharing a directory race.
type Store struct {
	Dir string
}

// NewStore creates a Store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create output dir: %w", err)
	}
	return &Store{Dir: dir}, nil
}

// Path joins name onto the store directory.
func (s *Store) Path(name string) string { return filepath.Join(s.Dir, name) }

// SaveTable writes a family's raw rows to its CSV export.
func (s *Store) SaveTable(f record.Family, rows []*record.Object) (string, error) {
	path := s.Path(CSVFile(f))
	return path, WriteCSV(path, rows)
}

// SaveSummary writes a family summary document.
func (s *Store) SaveSummary(sum *Summary) (string, error) {
	path := s.Path(SummaryFile(sum.Family))
	return path, WriteJSON(path, sum)
}

// SaveJSON writes any document under name.
func (s *Store) SaveJSON(name string, v any) (string, error) {
	path := s.Path(name)
	return path, WriteJSON(path, v)
}

// SaveText writes a text document under name.
func (s *Store) SaveText(name, text string) (string, error) {
	path := s.Path(name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return path, fmt.Errorf("export: write %s: %w", path, err)
	}
	return path, nil
}
