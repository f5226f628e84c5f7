package reasoning

import (
	"context"

	"github.com/PoorRican/BidBeast/internal/model"
)

// NopReasoner is a no-op reasoner used when ai.enabled is false.
// Every posting keeps its default summary and judgment, to be resolved
// during review.
type NopReasoner struct{}

// NewNopReasoner returns a NopReasoner.
func NewNopReasoner() *NopReasoner {
	return &NopReasoner{}
}

// Summarize returns an empty summary.
func (n *NopReasoner) Summarize(_ context.Context, _ string) (string, error) {
	return "", nil
}

// Judge returns the default unresolved judgment.
func (n *NopReasoner) Judge(_ context.Context, _ string) (model.Judgment, error) {
	return model.NewJudgment(), nil
}
