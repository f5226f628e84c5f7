package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/PoorRican/BidBeast/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func makeTestPosting(title string) model.Posting {
	return model.Posting{
		ID:          uuid.New(),
		Title:       title,
		Description: "Some work.",
		Link:        "https://example.com/" + title,
		Summary:     "short version",
		Judgment: model.Judgment{
			Decision: model.DecisionAccept,
			Pros:     []string{"pays well"},
			Cons:     []string{"vague scope"},
		},
		FirstSeen: time.Now().UTC(),
	}
}

func TestBulkInsertThenFindByTitles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	batch := []model.Posting{makeTestPosting("Job A"), makeTestPosting("Job B")}
	if err := s.BulkInsert(ctx, batch); err != nil {
		t.Fatalf("BulkInsert: %v", err)
	}

	found, err := s.FindByTitles(ctx, []string{"Job A", "Job B", "Job C"})
	if err != nil {
		t.Fatalf("FindByTitles: %v", err)
	}

	if len(found) != 2 {
		t.Fatalf("found %d titles, want 2", len(found))
	}
	if _, ok := found["Job C"]; ok {
		t.Error("unknown title should not be reported as existing")
	}
}

func TestFindByTitlesEmptyInput(t *testing.T) {
	s := newTestStore(t)

	found, err := s.FindByTitles(context.Background(), nil)
	if err != nil {
		t.Fatalf("FindByTitles: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("found %d titles for empty input, want 0", len(found))
	}
}

func TestQueryUnreviewedRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := makeTestPosting("Job A")
	if err := s.BulkInsert(ctx, []model.Posting{want}); err != nil {
		t.Fatalf("BulkInsert: %v", err)
	}

	postings, err := s.QueryUnreviewed(ctx)
	if err != nil {
		t.Fatalf("QueryUnreviewed: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("got %d postings, want 1", len(postings))
	}

	got := postings[0]
	if got.ID != want.ID {
		t.Errorf("id = %s, want %s", got.ID, want.ID)
	}
	if got.Title != want.Title || got.Summary != want.Summary || got.Link != want.Link {
		t.Errorf("fields did not round-trip: %+v", got)
	}
	if got.Judgment.Decision != model.DecisionAccept {
		t.Errorf("decision = %v, want accept", got.Judgment.Decision)
	}
	if len(got.Judgment.Pros) != 1 || got.Judgment.Pros[0] != "pays well" {
		t.Errorf("pros = %v, want [pays well]", got.Judgment.Pros)
	}
	if got.Reviewed {
		t.Error("inserted posting should not be marked reviewed")
	}
}

func TestUpdateReviewMarksReviewed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := makeTestPosting("Job A")
	if err := s.BulkInsert(ctx, []model.Posting{p}); err != nil {
		t.Fatalf("BulkInsert: %v", err)
	}

	corrected := model.Judgment{
		Decision: model.DecisionReject,
		Pros:     []string{"pays well"},
		Cons:     []string{"too far", "bad hours"},
	}
	if err := s.UpdateReview(ctx, p.ID, corrected); err != nil {
		t.Fatalf("UpdateReview: %v", err)
	}

	postings, err := s.QueryUnreviewed(ctx)
	if err != nil {
		t.Fatalf("QueryUnreviewed: %v", err)
	}
	if len(postings) != 0 {
		t.Errorf("got %d unreviewed postings after review, want 0", len(postings))
	}
}

func TestUpdateReviewUnknownID(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateReview(context.Background(), uuid.New(), model.NewJudgment())
	if err == nil {
		t.Fatal("expected error for unknown posting id")
	}
}

func TestBulkInsertNilAspects(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := makeTestPosting("Job A")
	p.Judgment = model.NewJudgment() // nil pros/cons

	if err := s.BulkInsert(ctx, []model.Posting{p}); err != nil {
		t.Fatalf("BulkInsert: %v", err)
	}

	postings, err := s.QueryUnreviewed(ctx)
	if err != nil {
		t.Fatalf("QueryUnreviewed: %v", err)
	}
	if got := postings[0].Judgment; got.Decision != model.DecisionUnresolved {
		t.Errorf("decision = %v, want unresolved", got.Decision)
	}
	if len(postings[0].Judgment.Pros) != 0 || len(postings[0].Judgment.Cons) != 0 {
		t.Errorf("aspects should round-trip as empty: %+v", postings[0].Judgment)
	}
}

func TestSourcesAddListRemove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	urls := []string{
		"https://feeds.example/go",
		"https://feeds.example/python",
	}
	for _, url := range urls {
		if err := s.AddSource(ctx, url); err != nil {
			t.Fatalf("AddSource(%q): %v", url, err)
		}
	}
	// Re-adding is a no-op.
	if err := s.AddSource(ctx, urls[0]); err != nil {
		t.Fatalf("duplicate AddSource: %v", err)
	}

	got, err := s.ListSources(ctx)
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("listed %d sources, want 2", len(got))
	}

	if err := s.RemoveSource(ctx, urls[0]); err != nil {
		t.Fatalf("RemoveSource: %v", err)
	}
	got, err = s.ListSources(ctx)
	if err != nil {
		t.Fatalf("ListSources after remove: %v", err)
	}
	if len(got) != 1 || got[0] != urls[1] {
		t.Errorf("sources = %v, want only %q", got, urls[1])
	}
}
