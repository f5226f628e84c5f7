package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Decision is the three-valued bid verdict attached to a posting.
// The integer values mirror the store's `like` column.
type Decision int

const (
	DecisionUnresolved Decision = -1
	DecisionReject     Decision = 0
	DecisionAccept     Decision = 1
)

func (d Decision) String() string {
	switch d {
	case DecisionAccept:
		return "accept"
	case DecisionReject:
		return "reject"
	default:
		return "unresolved"
	}
}

// Judgment is the structured bid-worthiness verdict for a posting.
type Judgment struct {
	Decision Decision
	Pros     []string
	Cons     []string
}

// NewJudgment returns the default (unresolved, empty) judgment.
func NewJudgment() Judgment {
	return Judgment{Decision: DecisionUnresolved}
}

// RawEntry is one unprocessed feed item: what a FeedSource hands to the
// pipeline before dedup assigns an identity.
type RawEntry struct {
	Title       string
	Description string
	Link        string
}

// Posting is one ingested job-feed record.
// ID is assigned when the posting is first observed and never changes.
// Title, Description and Link are immutable after ingestion. Summary and
// Judgment are set by enrichment and may later be corrected during review.
// Reviewed flips to true exactly once, when an operator confirms or corrects
// the judgment.
type Posting struct {
	ID          uuid.UUID
	Title       string
	Description string
	Link        string
	Summary     string
	Judgment    Judgment
	Reviewed    bool
	FirstSeen   time.Time
}

// Headline renders the one-line announcement form used in ingestion
// notifications.
func (p Posting) Headline() string {
	return fmt.Sprintf("## %s\n%s", p.Title, p.Link)
}

// Detailed renders the full posting body shown at the start of a review,
// chunked so each piece stays under the message channel's size limit.
func (p Posting) Detailed() []string {
	const chunkLen = 2000

	msgs := []string{fmt.Sprintf("\n\n# %s\n", p.Title)}
	desc := p.Description
	for len(desc) > 0 {
		n := min(chunkLen, len(desc))
		msgs = append(msgs, "\n"+desc[:n])
		desc = desc[n:]
	}
	return msgs
}

// FormatJudgment renders a judgment as the plain-text block shown to the
// operator before the correction prompts.
func FormatJudgment(j Judgment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Automated Judgment\nDecision: %s\n", j.Decision)
	b.WriteString("Pros:\n")
	for _, p := range j.Pros {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	b.WriteString("Cons:\n")
	for _, c := range j.Cons {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	return b.String()
}

// FeedSource fetches raw postings from a feed URL.
type FeedSource interface {
	Fetch(ctx context.Context, url string) ([]RawEntry, error)
}

// JobStore is the durable table of postings.
type JobStore interface {
	// FindByTitles returns the subset of the given titles that already
	// exist in the store, as a set.
	FindByTitles(ctx context.Context, titles []string) (map[string]struct{}, error)
	// BulkInsert writes a batch of postings in a single transaction.
	BulkInsert(ctx context.Context, postings []Posting) error
	// QueryUnreviewed returns postings whose judgment has not been
	// confirmed by an operator.
	QueryUnreviewed(ctx context.Context) ([]Posting, error)
	// UpdateReview persists a corrected judgment and marks the posting
	// reviewed.
	UpdateReview(ctx context.Context, id uuid.UUID, judgment Judgment) error
}

// SourceStore manages the set of feed URLs polled by the scheduler.
type SourceStore interface {
	AddSource(ctx context.Context, url string) error
	RemoveSource(ctx context.Context, url string) error
	ListSources(ctx context.Context) ([]string, error)
}

// Reasoner produces derived fields for a posting description.
// Implementations may fail per call; callers must treat a failure as
// "no enrichment" rather than dropping the posting.
type Reasoner interface {
	Summarize(ctx context.Context, description string) (string, error)
	Judge(ctx context.Context, description string) (Judgment, error)
}

// Messenger is the single outbound text-message primitive shared by
// ingestion announcements and review prompts.
type Messenger interface {
	Send(text string) error
}
