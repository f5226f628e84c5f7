package review

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNotifierAnnouncesPendingCount(t *testing.T) {
	store := NewFakeStore(makePosting("Job A"), makePosting("Job B"))
	out := &RecordingMessenger{}
	n := NewNotifier(NewQueue(store), out, time.Hour, discardLogger())

	n.check(context.Background())

	if !strings.Contains(out.Joined(), "Found 2 postings that need review.") {
		t.Errorf("unexpected announcement: %q", out.Joined())
	}
}

func TestNotifierSilentWhenQueueEmpty(t *testing.T) {
	out := &RecordingMessenger{}
	n := NewNotifier(NewQueue(NewFakeStore()), out, time.Hour, discardLogger())

	n.check(context.Background())

	if len(out.Msgs) != 0 {
		t.Errorf("sent %d messages for an empty queue, want 0", len(out.Msgs))
	}
}

func TestNotifierStartStop(t *testing.T) {
	out := &RecordingMessenger{}
	n := NewNotifier(NewQueue(NewFakeStore()), out, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n.Start(ctx)
	if !n.Running() {
		t.Fatal("notifier should be running after Start")
	}
	n.Start(ctx) // no-op

	n.Stop()
	if n.Running() {
		t.Error("notifier should be stopped after Stop")
	}
	n.Stop() // no-op
}
