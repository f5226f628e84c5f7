package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/PoorRican/BidBeast/internal/model"
)

// EnrichmentCoordinator fans a batch of new postings out to the reasoning
// service, waits for every request to settle, then writes the whole batch to
// the store in one bulk insert.
//
// A posting whose enrichment calls fail is stored with its default
// summary/judgment rather than dropped; enrichment failure must never lose a
// discovered posting. Retry is the scheduler's responsibility, per cycle,
// never per item.
type EnrichmentCoordinator struct {
	reasoner model.Reasoner
	store    model.JobStore
	logger   *slog.Logger
}

// NewEnrichmentCoordinator creates a coordinator wired with its dependencies.
func NewEnrichmentCoordinator(reasoner model.Reasoner, store model.JobStore, logger *slog.Logger) *EnrichmentCoordinator {
	return &EnrichmentCoordinator{
		reasoner: reasoner,
		store:    store,
		logger:   logger,
	}
}

// Enrich requests a summary and a judgment for every posting in the batch
// concurrently, stores the batch, and returns it. len(out) == len(in)
// regardless of how many reasoning calls fail. The returned error is
// non-nil only when the bulk write fails, in which case nothing was stored.
func (c *EnrichmentCoordinator) Enrich(ctx context.Context, batch []model.Posting) ([]model.Posting, error) {
	if len(batch) == 0 {
		return batch, nil
	}

	// Every request in the batch is issued together; Wait is a full
	// barrier, not early-return-on-first-failure. Workers log failures
	// and return nil so one bad call cannot cancel its siblings.
	var g errgroup.Group
	for i := range batch {
		p := &batch[i]

		g.Go(func() error {
			summary, err := c.reasoner.Summarize(ctx, p.Description)
			if err != nil {
				c.logger.Warn("summary failed, storing posting without it",
					"posting", p.Title,
					"error", err,
				)
				return nil
			}
			p.Summary = summary
			return nil
		})

		g.Go(func() error {
			judgment, err := c.reasoner.Judge(ctx, p.Description)
			if err != nil {
				c.logger.Warn("judgment failed, storing posting without it",
					"posting", p.Title,
					"error", err,
				)
				return nil
			}
			p.Judgment = judgment
			return nil
		})
	}
	_ = g.Wait()

	if err := c.store.BulkInsert(ctx, batch); err != nil {
		return nil, fmt.Errorf("storing enriched batch: %w", err)
	}

	c.logger.Info("enriched batch stored", "postings", len(batch))
	return batch, nil
}
