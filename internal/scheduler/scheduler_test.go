package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/PoorRican/BidBeast/internal/ingest"
	"github.com/PoorRican/BidBeast/internal/model"
)

// --- Mock/Fake Implementations ---

// FakeFeed returns canned entries per URL.
type FakeFeed struct {
	Entries map[string][]model.RawEntry
	Errs    map[string]error
}

func (f *FakeFeed) Fetch(_ context.Context, url string) ([]model.RawEntry, error) {
	if err := f.Errs[url]; err != nil {
		return nil, err
	}
	return f.Entries[url], nil
}

// FakeStore is a combined job/source store.
type FakeStore struct {
	mu       sync.Mutex
	titles   map[string]struct{}
	inserted []model.Posting
	sources  []string
	writeErr error
}

func NewFakeStore(sources ...string) *FakeStore {
	return &FakeStore{titles: make(map[string]struct{}), sources: sources}
}

func (s *FakeStore) FindByTitles(_ context.Context, titles []string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := make(map[string]struct{})
	for _, title := range titles {
		if _, ok := s.titles[title]; ok {
			found[title] = struct{}{}
		}
	}
	return found, nil
}

func (s *FakeStore) BulkInsert(_ context.Context, postings []model.Posting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.inserted = append(s.inserted, postings...)
	for _, p := range postings {
		s.titles[p.Title] = struct{}{}
	}
	return nil
}

func (s *FakeStore) QueryUnreviewed(_ context.Context) ([]model.Posting, error) { return nil, nil }

func (s *FakeStore) UpdateReview(_ context.Context, _ uuid.UUID, _ model.Judgment) error {
	return nil
}

func (s *FakeStore) AddSource(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = append(s.sources, url)
	return nil
}

func (s *FakeStore) RemoveSource(_ context.Context, _ string) error { return nil }

func (s *FakeStore) ListSources(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sources...), nil
}

func (s *FakeStore) InsertedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inserted)
}

// RecordingMessenger captures every sent message.
type RecordingMessenger struct {
	mu   sync.Mutex
	Msgs []string
}

func (m *RecordingMessenger) Send(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Msgs = append(m.Msgs, text)
	return nil
}

func (m *RecordingMessenger) Joined() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return strings.Join(m.Msgs, "\n")
}

// NopReasoner leaves postings untouched.
type NopReasoner struct{}

func (NopReasoner) Summarize(_ context.Context, _ string) (string, error) { return "", nil }
func (NopReasoner) Judge(_ context.Context, _ string) (model.Judgment, error) {
	return model.NewJudgment(), nil
}

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func entries(titles ...string) []model.RawEntry {
	out := make([]model.RawEntry, len(titles))
	for i, title := range titles {
		out[i] = model.RawEntry{Title: title, Link: "https://example.com/" + title}
	}
	return out
}

func newTestScheduler(feed model.FeedSource, store *FakeStore, out model.Messenger) *Scheduler {
	logger := discardLogger()
	return NewScheduler(
		feed,
		store,
		ingest.NewDeduplicator(store, logger),
		ingest.NewEnrichmentCoordinator(NopReasoner{}, store, logger),
		out,
		time.Hour,
		logger,
	)
}

// --- Tests ---

func TestRunCycleStoresAndAnnouncesNewPostings(t *testing.T) {
	feed := &FakeFeed{Entries: map[string][]model.RawEntry{
		"https://feeds.example/a": entries("Job A", "Job B"),
	}}
	store := NewFakeStore("https://feeds.example/a")
	out := &RecordingMessenger{}

	sched := newTestScheduler(feed, store, out)
	sched.RunCycle(context.Background())

	if store.InsertedCount() != 2 {
		t.Errorf("stored = %d postings, want 2", store.InsertedCount())
	}
	if !strings.Contains(out.Joined(), "Found 2 new postings:") {
		t.Errorf("unexpected announcement: %q", out.Joined())
	}
	if !strings.Contains(out.Joined(), "## Job A") {
		t.Error("announcement should list posting headlines")
	}
}

func TestRunCycleSilentWhenNothingNew(t *testing.T) {
	feed := &FakeFeed{Entries: map[string][]model.RawEntry{
		"https://feeds.example/a": entries("Job A"),
	}}
	store := NewFakeStore("https://feeds.example/a")
	out := &RecordingMessenger{}

	sched := newTestScheduler(feed, store, out)
	sched.RunCycle(context.Background())
	out.Msgs = nil
	sched.RunCycle(context.Background())

	if len(out.Msgs) != 0 {
		t.Errorf("second cycle sent %d messages, want 0", len(out.Msgs))
	}
	if store.InsertedCount() != 1 {
		t.Errorf("stored = %d postings, want 1 across both cycles", store.InsertedCount())
	}
}

func TestRunCycleStoresOnlyUnknownTitles(t *testing.T) {
	feed := &FakeFeed{Entries: map[string][]model.RawEntry{
		"https://feeds.example/a": entries("Known Job", "Job A", "Job B"),
	}}
	store := NewFakeStore("https://feeds.example/a")
	store.titles["Known Job"] = struct{}{}
	out := &RecordingMessenger{}

	sched := newTestScheduler(feed, store, out)
	sched.RunCycle(context.Background())

	if store.InsertedCount() != 2 {
		t.Errorf("stored = %d postings, want only the 2 unknown titles", store.InsertedCount())
	}
	if !strings.Contains(out.Joined(), "Found 2 new postings:") {
		t.Errorf("unexpected announcement: %q", out.Joined())
	}
}

func TestRunCycleAutoStopsWithoutSources(t *testing.T) {
	store := NewFakeStore()
	out := &RecordingMessenger{}

	sched := newTestScheduler(&FakeFeed{}, store, out)
	// Put the scheduler into the Running state without relying on ticks.
	sched.mu.Lock()
	sched.stop = make(chan struct{})
	sched.mu.Unlock()

	sched.RunCycle(context.Background())

	if sched.Running() {
		t.Error("scheduler should stop itself when no sources are configured")
	}
	if !strings.Contains(out.Joined(), "No feeds configured.") {
		t.Errorf("unexpected message: %q", out.Joined())
	}
}

func TestRunCycleContainsPerSourceFailures(t *testing.T) {
	feed := &FakeFeed{
		Entries: map[string][]model.RawEntry{
			"https://feeds.example/good": entries("Job A"),
		},
		Errs: map[string]error{
			"https://feeds.example/bad": errors.New("connection refused"),
		},
	}
	store := NewFakeStore("https://feeds.example/bad", "https://feeds.example/good")
	out := &RecordingMessenger{}

	sched := newTestScheduler(feed, store, out)
	sched.RunCycle(context.Background())

	if store.InsertedCount() != 1 {
		t.Errorf("stored = %d postings, want 1 from the healthy source", store.InsertedCount())
	}
}

func TestRunCycleStoreFailureNotifies(t *testing.T) {
	feed := &FakeFeed{Entries: map[string][]model.RawEntry{
		"https://feeds.example/a": entries("Job A", "Job B", "Job C"),
	}}
	store := NewFakeStore("https://feeds.example/a")
	store.writeErr = errors.New("disk full")
	out := &RecordingMessenger{}

	sched := newTestScheduler(feed, store, out)
	sched.RunCycle(context.Background())

	if !strings.Contains(out.Joined(), "Failed to store 3 new postings.") {
		t.Errorf("unexpected message: %q", out.Joined())
	}
}

func TestStartStop(t *testing.T) {
	store := NewFakeStore("https://feeds.example/a")
	sched := newTestScheduler(&FakeFeed{}, store, &RecordingMessenger{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched.Start(ctx)
	if !sched.Running() {
		t.Fatal("scheduler should be running after Start")
	}
	sched.Start(ctx) // no-op

	sched.Stop()
	if sched.Running() {
		t.Error("scheduler should be stopped after Stop")
	}
	sched.Stop() // no-op
}

func TestOverlappingCyclesSkipped(t *testing.T) {
	store := NewFakeStore("https://feeds.example/a")
	sched := newTestScheduler(&FakeFeed{}, store, &RecordingMessenger{})

	// Simulate a cycle still in flight.
	sched.inFlight.Store(true)
	sched.RunCycle(context.Background())
	sched.inFlight.Store(false)

	if store.InsertedCount() != 0 {
		t.Error("an overlapping cycle should be a no-op")
	}
}
