// Package review implements the operator-facing correction flow over
// unreviewed postings.
//
// The conversation is a strict linear state machine:
//
//	Idle ──► AwaitingDecision ──► AwaitingPros ──► AwaitingCons ──► (upload, back to Idle)
//
// Each state accepts exactly one text input per turn and either advances or
// re-prompts with an error; there is no way to revisit a prior step.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/PoorRican/BidBeast/internal/model"
)

// State is the conversation cursor: which step of the correction sequence
// the operator is at.
type State int

const (
	StateIdle State = iota
	StateAwaitingDecision
	StateAwaitingPros
	StateAwaitingCons
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingDecision:
		return "awaiting_decision"
	case StateAwaitingPros:
		return "awaiting_pros"
	case StateAwaitingCons:
		return "awaiting_cons"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	decisionPrompt = "## Viability\n\nWould you bid on this job? (yes/no)"
	aspectsHint    = "Reply with one comment per line, `skip` to keep the generated values, or `none` to clear them."

	invalidDecisionMsg = "Invalid response. Please respond with 'yes' or 'no'."
	invalidAspectsMsg  = "Invalid response. Please provide at least one comment, or `skip` or `none`."
)

// transition applies one operator input to the conversation cursor.
// It returns the next state, the updated correction buffer, and whether the
// input was accepted. Rejected input leaves both state and buffer unchanged.
// An accepted input in StateAwaitingCons returns StateIdle: the terminal
// step, at which the caller commits the buffer.
func transition(state State, input string, buffer model.Judgment) (State, model.Judgment, bool) {
	switch state {
	case StateAwaitingDecision:
		switch strings.ToLower(strings.TrimSpace(input)) {
		case "yes", "y":
			buffer.Decision = model.DecisionAccept
			return StateAwaitingPros, buffer, true
		case "no", "n":
			buffer.Decision = model.DecisionReject
			return StateAwaitingPros, buffer, true
		default:
			return state, buffer, false
		}

	case StateAwaitingPros:
		items, ok := parseAspects(input, buffer.Pros)
		if !ok {
			return state, buffer, false
		}
		buffer.Pros = items
		return StateAwaitingCons, buffer, true

	case StateAwaitingCons:
		items, ok := parseAspects(input, buffer.Cons)
		if !ok {
			return state, buffer, false
		}
		buffer.Cons = items
		return StateIdle, buffer, true

	default:
		// Idle accepts no input.
		return state, buffer, false
	}
}

// parseAspects interprets one pros/cons reply against the pre-filled list.
// `skip` keeps the list, `none` empties it, non-empty text replaces it with
// one entry per line. Blank input is rejected.
func parseAspects(input string, existing []string) ([]string, bool) {
	stripped := strings.TrimSpace(input)
	switch stripped {
	case "skip":
		return existing, true
	case "none":
		return []string{}, true
	case "":
		return nil, false
	}

	var items []string
	for _, line := range strings.Split(stripped, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	if len(items) == 0 {
		return nil, false
	}
	return items, true
}

// Session drives the correction flow for a single operator. Inputs must be
// delivered one at a time, in receipt order; the session does not serialize
// concurrent callers itself.
type Session struct {
	queue  *Queue
	store  model.JobStore
	out    model.Messenger
	logger *slog.Logger

	state   State
	current *model.Posting
	buffer  model.Judgment
}

// NewSession creates an idle session for one operator.
func NewSession(queue *Queue, store model.JobStore, out model.Messenger, logger *slog.Logger) *Session {
	return &Session{
		queue:  queue,
		store:  store,
		out:    out,
		logger: logger,
	}
}

// State returns the current conversation cursor.
func (s *Session) State() State {
	return s.state
}

// Pending returns the number of postings waiting in the queue.
func (s *Session) Pending() int {
	return s.queue.Size()
}

// Begin starts the correction flow. With an empty queue it announces
// completion and stays Idle; otherwise it loads one posting and sends the
// first prompt. Calling Begin mid-conversation is a no-op.
func (s *Session) Begin(ctx context.Context) {
	if s.state != StateIdle {
		s.send("A review is already in progress. Run `exit` to leave it first.")
		return
	}

	if err := s.queue.Refresh(ctx); err != nil {
		s.logger.Error("queue refresh failed", "error", err)
		s.send("Could not fetch postings that need review. Try again later.")
		return
	}

	if s.queue.Size() == 0 {
		s.announceFinished()
		return
	}

	s.send("Let's get started!\nRun `exit` to leave review mode.")
	s.loadNext()
}

// HandleInput processes exactly one operator message: one accept-and-advance
// or one reject-with-re-prompt. Input arriving while Idle is ignored.
func (s *Session) HandleInput(ctx context.Context, text string) {
	if s.state == StateIdle {
		return
	}

	prev := s.state
	next, buffer, ok := transition(s.state, text, s.buffer)
	if !ok {
		s.send(rejectionMessage(prev))
		s.send(s.prompt(prev))
		return
	}

	s.buffer = buffer
	s.state = next

	if prev == StateAwaitingCons {
		// Terminal step: persist the correction.
		s.commit(ctx)
		return
	}
	s.send(s.prompt(next))
}

// Exit aborts the conversation from any non-Idle state. The correction
// buffer is discarded and the loaded posting is requeued so no item is lost.
func (s *Session) Exit(_ context.Context) {
	if s.state == StateIdle {
		return
	}

	s.unload()
	s.state = StateIdle
	s.send("Review mode exited.")
}

// loadNext pops one posting, seeds the correction buffer from its existing
// judgment, shows the posting and the automated judgment, and sends the
// first prompt.
func (s *Session) loadNext() {
	p, ok := s.queue.Pop()
	if !ok {
		s.announceFinished()
		return
	}

	s.current = &p
	// The pre-filled pros/cons act as editable defaults; clone so edits
	// never touch the posting until upload.
	s.buffer = model.Judgment{
		Decision: p.Judgment.Decision,
		Pros:     slices.Clone(p.Judgment.Pros),
		Cons:     slices.Clone(p.Judgment.Cons),
	}

	for _, msg := range p.Detailed() {
		s.send(msg)
	}
	if p.Summary != "" {
		s.send("## Summary\n" + p.Summary)
	}
	s.send(model.FormatJudgment(p.Judgment))

	s.state = StateAwaitingDecision
	s.send(s.prompt(StateAwaitingDecision))
}

// commit uploads the correction buffer and either auto-loads the next
// posting or returns to Idle. A store failure abandons the operation: the
// posting goes back to the queue with its edits discarded.
func (s *Session) commit(ctx context.Context) {
	if err := s.store.UpdateReview(ctx, s.current.ID, s.buffer); err != nil {
		s.logger.Error("uploading feedback failed", "posting", s.current.ID, "error", err)
		s.unload()
		s.state = StateIdle
		s.send("Could not save your feedback. The posting was returned to the review queue.")
		return
	}

	s.logger.Info("feedback uploaded",
		"posting", s.current.ID,
		"decision", s.buffer.Decision.String(),
	)
	s.queue.Complete(s.current.ID)
	s.current = nil
	s.buffer = model.Judgment{}
	s.send("Feedback submitted. Thanks!")

	if s.queue.Size() > 0 {
		s.loadNext()
		return
	}
	s.state = StateIdle
	s.announceFinished()
}

// unload restores the loaded posting, untouched, to the queue.
func (s *Session) unload() {
	if s.current != nil {
		s.queue.Requeue(*s.current)
		s.current = nil
	}
	s.buffer = model.Judgment{}
}

func (s *Session) announceFinished() {
	s.send("So.. it turns out there are no postings for you to review...\n...so congrats...")
}

func (s *Session) prompt(state State) string {
	switch state {
	case StateAwaitingDecision:
		return decisionPrompt
	case StateAwaitingPros:
		return "## Pros\nWhat do you like about this job?\nGenerated values:\n" +
			bulletList(s.buffer.Pros) + aspectsHint
	case StateAwaitingCons:
		return "## Cons\nWhat do you *not* like about this job?\nGenerated values:\n" +
			bulletList(s.buffer.Cons) + aspectsHint
	default:
		return ""
	}
}

func rejectionMessage(state State) string {
	if state == StateAwaitingDecision {
		return invalidDecisionMsg
	}
	return invalidAspectsMsg
}

func bulletList(items []string) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return b.String()
}

func (s *Session) send(text string) {
	if err := s.out.Send(text); err != nil {
		s.logger.Error("sending review message failed", "error", err)
	}
}
