package reasoning

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/PoorRican/BidBeast/internal/model"
)

// FakeProvider records the prompts it receives and returns canned responses.
type FakeProvider struct {
	Response   string
	Err        error
	LastPrompt string
	LastSchema string
}

func (p *FakeProvider) Complete(_ context.Context, prompt string) (string, error) {
	p.LastPrompt = prompt
	return p.Response, p.Err
}

func (p *FakeProvider) CompleteJSON(_ context.Context, prompt, schemaName string, _ map[string]any) (string, error) {
	p.LastPrompt = prompt
	p.LastSchema = schemaName
	return p.Response, p.Err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSummarizeTrimsAndRendersPrompt(t *testing.T) {
	provider := &FakeProvider{Response: "  A short summary.\n"}
	svc := NewService(provider, discardLogger())

	got, err := svc.Summarize(context.Background(), "Long description of a job.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "A short summary." {
		t.Errorf("summary = %q, want surrounding whitespace trimmed", got)
	}
	if !strings.Contains(provider.LastPrompt, "Long description of a job.") {
		t.Error("prompt should embed the description")
	}
}

func TestSummarizeProviderFailure(t *testing.T) {
	provider := &FakeProvider{Err: errors.New("quota exceeded")}
	svc := NewService(provider, discardLogger())

	if _, err := svc.Summarize(context.Background(), "desc"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestJudgeParsesStructuredResponse(t *testing.T) {
	provider := &FakeProvider{
		Response: `{"decision":"accept","pros":["good pay","clear brief"],"cons":["tight deadline"]}`,
	}
	svc := NewService(provider, discardLogger())

	got, err := svc.Judge(context.Background(), "desc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Decision != model.DecisionAccept {
		t.Errorf("decision = %v, want accept", got.Decision)
	}
	if len(got.Pros) != 2 || got.Pros[0] != "good pay" {
		t.Errorf("pros = %v", got.Pros)
	}
	if len(got.Cons) != 1 || got.Cons[0] != "tight deadline" {
		t.Errorf("cons = %v", got.Cons)
	}
	if provider.LastSchema != "judgment" {
		t.Errorf("schema name = %q, want judgment", provider.LastSchema)
	}
}

func TestJudgeProviderFailureReturnsDefault(t *testing.T) {
	provider := &FakeProvider{Err: errors.New("quota exceeded")}
	svc := NewService(provider, discardLogger())

	got, err := svc.Judge(context.Background(), "desc")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got.Decision != model.DecisionUnresolved {
		t.Errorf("decision = %v, want unresolved default on failure", got.Decision)
	}
}

func TestParseJudgment(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantDecision model.Decision
		wantErr      bool
	}{
		{"accept", `{"decision":"accept","pros":[],"cons":[]}`, model.DecisionAccept, false},
		{"reject", `{"decision":"reject","pros":[],"cons":[]}`, model.DecisionReject, false},
		{"unresolved", `{"decision":"unresolved","pros":[],"cons":[]}`, model.DecisionUnresolved, false},
		{"unknown decision maps to unresolved", `{"decision":"shrug","pros":[],"cons":[]}`, model.DecisionUnresolved, false},
		{"invalid json", `not json`, model.DecisionUnresolved, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseJudgment(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got.Decision != tt.wantDecision {
				t.Errorf("decision = %v, want %v", got.Decision, tt.wantDecision)
			}
		})
	}
}

func TestNopReasoner(t *testing.T) {
	nop := NewNopReasoner()
	ctx := context.Background()

	summary, err := nop.Summarize(ctx, "desc")
	if err != nil || summary != "" {
		t.Errorf("Summarize = (%q, %v), want empty and nil", summary, err)
	}

	judgment, err := nop.Judge(ctx, "desc")
	if err != nil {
		t.Fatalf("Judge: %v", err)
	}
	if judgment.Decision != model.DecisionUnresolved {
		t.Errorf("decision = %v, want unresolved", judgment.Decision)
	}
}
