package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bryanwahyu/rfp-compare/internal/domain/analysis"
)

// Store persists the analysis collection as a single JSON document on disk.
// This is the default local backend; the SQL repositories cover server
// deployments. All operations serialize on one mutex so a save transaction
// is never interleaved with another.
type Store struct {
	mu   sync.Mutex
	path string
}

// collection is the self-describing on-disk blob.
type collection struct {
	Version  int                        `json:"version"`
	Analyses []*analysis.StoredAnalysis `json:"analyses"`
}

// New prepares a store writing to path, creating parent directories.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &Store{path: path}, nil
}

// load reads the collection, tolerating a missing or corrupt file: both
// yield an empty collection rather than an error, so a damaged blob never
// blocks the UI list.
func (s *Store) load() collection {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return collection{Version: analysis.SchemaVersion}
	}
	var c collection
	if err := json.Unmarshal(data, &c); err != nil {
		return collection{Version: analysis.SchemaVersion}
	}
	return c
}

// persist writes atomically via temp file + rename so a failed write leaves
// the previous blob intact.
func (s *Store) persist(c collection) error {
	c.Version = analysis.SchemaVersion
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding analysis collection: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing analysis collection: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing analysis collection: %w", err)
	}
	return nil
}

// Save appends the record, replacing any entry with the same id.
func (s *Store) Save(ctx context.Context, a *analysis.StoredAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.load()
	replaced := false
	for i, existing := range c.Analyses {
		if existing.ID == a.ID {
			c.Analyses[i] = a
			replaced = true
			break
		}
	}
	if !replaced {
		c.Analyses = append(c.Analyses, a)
	}
	return s.persist(c)
}

// Get returns the matching record or analysis.ErrNotFound.
func (s *Store) Get(ctx context.Context, id analysis.AnalysisID) (*analysis.StoredAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.load().Analyses {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, analysis.ErrNotFound
}

// List returns all records, newest first.
func (s *Store) List(ctx context.Context) ([]*analysis.StoredAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.load()
	out := make([]*analysis.StoredAnalysis, len(c.Analyses))
	copy(out, c.Analyses)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes the matching record; an unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, id analysis.AnalysisID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.load()
	kept := c.Analyses[:0]
	found := false
	for _, a := range c.Analyses {
		if a.ID == id {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	if !found {
		return nil
	}
	c.Analyses = kept
	return s.persist(c)
}

// DeleteAll empties the collection.
func (s *Store) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(collection{})
}
