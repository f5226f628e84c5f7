package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/PoorRican/BidBeast/internal/model"
)

// MemoryStore is a map-backed JobStore/SourceStore used in dry-run mode and
// tests. Nothing survives process exit.
type MemoryStore struct {
	mu       sync.Mutex
	postings map[uuid.UUID]model.Posting
	sources  []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{postings: make(map[uuid.UUID]model.Posting)}
}

func (s *MemoryStore) FindByTitles(_ context.Context, titles []string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := make(map[string]struct{})
	for _, p := range s.postings {
		if slices.Contains(titles, p.Title) {
			found[p.Title] = struct{}{}
		}
	}
	return found, nil
}

func (s *MemoryStore) BulkInsert(_ context.Context, postings []model.Posting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range postings {
		s.postings[p.ID] = p
	}
	return nil
}

func (s *MemoryStore) QueryUnreviewed(_ context.Context) ([]model.Posting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Posting
	for _, p := range s.postings {
		if !p.Reviewed {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateReview(_ context.Context, id uuid.UUID, judgment model.Judgment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.postings[id]
	if !ok {
		return fmt.Errorf("updating review: no posting with id %s", id)
	}
	p.Judgment = judgment
	p.Reviewed = true
	s.postings[id] = p
	return nil
}

func (s *MemoryStore) AddSource(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.sources, url) {
		s.sources = append(s.sources, url)
	}
	return nil
}

func (s *MemoryStore) RemoveSource(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sources = slices.DeleteFunc(s.sources, func(u string) bool { return u == url })
	return nil
}

func (s *MemoryStore) ListSources(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.sources), nil
}

// Get returns a stored posting by ID. Test helper.
func (s *MemoryStore) Get(id uuid.UUID) (model.Posting, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.postings[id]
	return p, ok
}
