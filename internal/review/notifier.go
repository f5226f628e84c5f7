package review

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/PoorRican/BidBeast/internal/model"
)

// Notifier periodically refreshes the review queue and announces how many
// postings are waiting. Whether exiting a review session restarts it is the
// integrating caller's decision; the session itself never touches it.
type Notifier struct {
	queue    *Queue
	out      model.Messenger
	interval time.Duration
	logger   *slog.Logger

	mu   sync.Mutex
	stop chan struct{} // non-nil while running
}

// NewNotifier creates a stopped notifier.
func NewNotifier(queue *Queue, out model.Messenger, interval time.Duration, logger *slog.Logger) *Notifier {
	return &Notifier{
		queue:    queue,
		out:      out,
		interval: interval,
		logger:   logger,
	}
}

// Start begins the announcement loop; the first check runs immediately.
// Calling Start while running is a no-op.
func (n *Notifier) Start(ctx context.Context) {
	n.mu.Lock()
	if n.stop != nil {
		n.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	n.stop = stop
	n.mu.Unlock()

	go func() {
		ticker := time.NewTicker(n.interval)
		defer ticker.Stop()

		n.check(ctx)

		for {
			select {
			case <-ctx.Done():
				n.Stop()
				return
			case <-stop:
				return
			case <-ticker.C:
				n.check(ctx)
			}
		}
	}()
}

// Stop halts the announcement loop. Calling Stop while stopped is a no-op.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stop == nil {
		return
	}
	close(n.stop)
	n.stop = nil
}

// Running reports whether the announcement loop is active.
func (n *Notifier) Running() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stop != nil
}

func (n *Notifier) check(ctx context.Context) {
	if err := n.queue.Refresh(ctx); err != nil {
		n.logger.Error("review queue refresh failed", "error", err)
		return
	}

	if remaining := n.queue.Size(); remaining > 0 {
		msg := fmt.Sprintf("Found %d postings that need review.\nRun `bidbeast review` to begin.", remaining)
		if err := n.out.Send(msg); err != nil {
			n.logger.Error("review announcement failed", "error", err)
		}
	}
}
