package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/PoorRican/BidBeast/internal/model"
)

// Deduplicator decides whether newly-fetched entries already exist in the
// store. Matching is exact-string, case-sensitive, on the title field only;
// two distinct postings with identical titles are treated as duplicates.
// Read-only on the store.
type Deduplicator struct {
	store  model.JobStore
	logger *slog.Logger
}

// NewDeduplicator creates a deduplicator backed by the given store.
func NewDeduplicator(store model.JobStore, logger *slog.Logger) *Deduplicator {
	return &Deduplicator{
		store:  store,
		logger: logger,
	}
}

// FilterNew returns postings for the entries whose title is absent from the
// store, assigning each a fresh identity. One batched title lookup is issued
// regardless of batch size. On store failure nothing is admitted; the caller
// retries the whole batch at the next cycle.
func (d *Deduplicator) FilterNew(ctx context.Context, entries []model.RawEntry) ([]model.Posting, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	titles := make([]string, len(entries))
	for i, e := range entries {
		titles[i] = e.Title
	}

	existing, err := d.store.FindByTitles(ctx, titles)
	if err != nil {
		return nil, fmt.Errorf("checking for duplicates: %w", err)
	}

	var postings []model.Posting
	for _, e := range entries {
		if _, ok := existing[e.Title]; ok {
			continue
		}
		postings = append(postings, model.Posting{
			ID:          uuid.New(),
			Title:       e.Title,
			Description: e.Description,
			Link:        e.Link,
			Judgment:    model.NewJudgment(),
			FirstSeen:   time.Now().UTC(),
		})
	}

	d.logger.Debug("deduplicated batch",
		"fetched", len(entries),
		"duplicates", len(entries)-len(postings),
		"new", len(postings),
	)
	return postings, nil
}
