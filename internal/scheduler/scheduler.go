package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PoorRican/BidBeast/internal/ingest"
	"github.com/PoorRican/BidBeast/internal/model"
)

// Scheduler drives one fetch-dedup-enrich-store cycle per polling interval
// across all configured feed sources.
//
// It is a two-state machine: Stopped and Running. Start begins periodic
// cycles; Stop prevents new cycles from starting but never cancels an
// in-flight cycle or its network calls. At most one cycle executes at a
// time; a tick that fires while a cycle is still running is skipped.
type Scheduler struct {
	feed      model.FeedSource
	sources   model.SourceStore
	dedup     *ingest.Deduplicator
	enricher  *ingest.EnrichmentCoordinator
	messenger model.Messenger
	interval  time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	stop     chan struct{} // non-nil while Running
	inFlight atomic.Bool
}

// NewScheduler creates a scheduler wired with the full ingestion pipeline.
func NewScheduler(
	feed model.FeedSource,
	sources model.SourceStore,
	dedup *ingest.Deduplicator,
	enricher *ingest.EnrichmentCoordinator,
	messenger model.Messenger,
	interval time.Duration,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		feed:      feed,
		sources:   sources,
		dedup:     dedup,
		enricher:  enricher,
		messenger: messenger,
		interval:  interval,
		logger:    logger,
	}
}

// Start transitions Stopped → Running and begins periodic cycles. The first
// cycle runs immediately. Calling Start while already Running is a no-op.
// ctx bounds the lifetime of cycles started by this scheduler; it is the
// process's shutdown context, not Stop's.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()

	s.logger.Info("starting ingestion scheduler", "interval", s.interval.String())

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		go s.runCycle(ctx)

		for {
			select {
			case <-ctx.Done():
				s.Stop()
				return
			case <-stop:
				return
			case <-ticker.C:
				go s.runCycle(ctx)
			}
		}
	}()
}

// Stop transitions Running → Stopped. The in-flight cycle, if any, finishes
// on its own. Calling Stop while already Stopped is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return
	}
	close(s.stop)
	s.stop = nil
	s.logger.Info("ingestion scheduler stopped")
}

// Running reports whether the scheduler is in the Running state.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

// RunCycle runs one full cycle immediately, independent of the ticker. It
// shares the single-cycle guard with scheduled ticks.
func (s *Scheduler) RunCycle(ctx context.Context) {
	s.runCycle(ctx)
}

// runCycle executes one fetch-dedup-enrich-store pass over all sources.
// The in-flight guard makes an overlapping invocation a no-op.
func (s *Scheduler) runCycle(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Debug("previous cycle still running, skipping tick")
		return
	}
	defer s.inFlight.Store(false)

	urls, err := s.sources.ListSources(ctx)
	if err != nil {
		s.logger.Error("listing feed sources failed", "error", err)
		return
	}

	if len(urls) == 0 {
		// Nothing to poll; stop ticking and report the condition once.
		s.Stop()
		s.send("No feeds configured. Stopped fetching job feeds.")
		return
	}

	for _, url := range urls {
		if ctx.Err() != nil {
			return
		}
		s.processSource(ctx, url)
	}
}

// processSource runs the pipeline for one feed URL. Failures are contained
// here so one bad source cannot abort the rest of the cycle.
func (s *Scheduler) processSource(ctx context.Context, url string) {
	entries, err := s.feed.Fetch(ctx, url)
	if err != nil {
		s.logger.Error("feed fetch failed", "url", url, "error", err)
		return
	}

	batch, err := s.dedup.FilterNew(ctx, entries)
	if err != nil {
		// Whole batch stays unverified; retried on the next tick.
		s.logger.Error("dedup check failed", "url", url, "error", err)
		return
	}
	if len(batch) == 0 {
		s.logger.Debug("no new postings", "url", url, "fetched", len(entries))
		return
	}

	stored, err := s.enricher.Enrich(ctx, batch)
	if err != nil {
		s.logger.Error("storing batch failed", "url", url, "error", err)
		s.send(fmt.Sprintf("Failed to store %d new postings. They will be retried on the next cycle.", len(batch)))
		return
	}

	s.logger.Info("cycle stored new postings", "url", url, "count", len(stored))
	s.send(announcement(stored))
}

// announcement renders the plain-text summary list sent after a cycle
// stores a non-empty batch.
func announcement(postings []model.Posting) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d new postings:\n", len(postings))
	for _, p := range postings {
		b.WriteString("\n" + p.Headline() + "\n")
	}
	return b.String()
}

func (s *Scheduler) send(text string) {
	if err := s.messenger.Send(text); err != nil {
		s.logger.Error("notification failed", "error", err)
	}
}
