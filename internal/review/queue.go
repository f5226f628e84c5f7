package review

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/PoorRican/BidBeast/internal/model"
)

// Queue is the in-memory cache of postings pending review for one operator.
// Pop order is arbitrary. A popped posting is tracked as checked-out so a
// concurrent Refresh cannot re-add it while it is being corrected.
type Queue struct {
	store model.JobStore

	mu      sync.Mutex
	items   map[uuid.UUID]model.Posting
	checked map[uuid.UUID]struct{}
}

// NewQueue creates an empty queue backed by the given store.
func NewQueue(store model.JobStore) *Queue {
	return &Queue{
		store:   store,
		items:   make(map[uuid.UUID]model.Posting),
		checked: make(map[uuid.UUID]struct{}),
	}
}

// Refresh queries the store for unreviewed postings and merges them into the
// queue. Identity is the merge key; existing and checked-out entries are not
// duplicated.
func (q *Queue) Refresh(ctx context.Context) error {
	postings, err := q.store.QueryUnreviewed(ctx)
	if err != nil {
		return fmt.Errorf("fetching postings that need review: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	for _, p := range postings {
		if _, ok := q.checked[p.ID]; ok {
			continue
		}
		q.items[p.ID] = p
	}
	return nil
}

// Pop removes and returns an arbitrary entry. ok is false when the queue is
// empty; that is not an error.
func (q *Queue) Pop() (model.Posting, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for id, p := range q.items {
		delete(q.items, id)
		q.checked[id] = struct{}{}
		return p, true
	}
	return model.Posting{}, false
}

// Requeue re-inserts a posting that was popped but not completed.
func (q *Queue) Requeue(p model.Posting) {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.checked, p.ID)
	q.items[p.ID] = p
}

// Complete releases a popped posting whose review was persisted.
func (q *Queue) Complete(id uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.checked, id)
}

// Size returns the number of postings waiting in the queue.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}
