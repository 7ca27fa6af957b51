package issues

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ValorSage/ai-app-builder/internal/models"
)

// Store persists the AI-sourced issue subset across requests. Linter and
// compiler issues are recomputed fresh each time and never stored.
type Store interface {
	List() ([]models.Issue, error)
	// Merge folds incoming issues into the stored set, deduplicating by id
	// with stored entries winning, and returns the resulting count.
	Merge(incoming []models.Issue) (int, error)
	Clear() error
	Close() error
}

// FileStore keeps issues as a JSON array in a side-channel file. Writes go
// through a temp file and atomic rename so a concurrent reader never sees a
// torn document; an in-process mutex serializes read-modify-write cycles.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("issue store path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create issue store dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) load() ([]models.Issue, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Issue{}, nil
		}
		return nil, err
	}
	var list []models.Issue
	if err := json.Unmarshal(b, &list); err != nil {
		// A corrupt side-channel file degrades to empty rather than
		// poisoning every aggregation.
		return []models.Issue{}, nil
	}
	return list, nil
}

func (s *FileStore) save(list []models.Issue) error {
	b, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) List() ([]models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) Merge(incoming []models.Issue) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, err := s.load()
	if err != nil {
		return 0, err
	}
	// synthesize ids on a copy; the caller's slice stays untouched
	withIDs := make([]models.Issue, len(incoming))
	for i, is := range incoming {
		is.ID = SynthesizeID(is)
		withIDs[i] = is
	}
	merged := Merge(existing, withIDs)
	if err := s.save(merged); err != nil {
		return 0, err
	}
	return len(merged), nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save([]models.Issue{})
}

func (s *FileStore) Close() error { return nil }
