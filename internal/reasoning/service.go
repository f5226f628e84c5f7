package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/PoorRican/BidBeast/internal/model"
)

// judgmentSchema is the JSON Schema enforced server-side via structured
// outputs. It matches rawJudgment exactly so the response can be parsed
// directly.
var judgmentSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"decision": map[string]any{
			"type": "string",
			"enum": []string{"accept", "reject", "unresolved"},
		},
		"pros": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"cons": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required": []string{"decision", "pros", "cons"},
}

// Service implements model.Reasoner using an LLM provider.
type Service struct {
	provider LLMProvider
	logger   *slog.Logger
}

// NewService creates a reasoning service backed by the given provider.
func NewService(provider LLMProvider, logger *slog.Logger) *Service {
	return &Service{
		provider: provider,
		logger:   logger,
	}
}

// Summarize produces a brief plain-text overview of a job description.
func (s *Service) Summarize(ctx context.Context, description string) (string, error) {
	prompt, err := renderPrompt(summarizeTemplate, description)
	if err != nil {
		return "", err
	}

	raw, err := s.provider.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("llm summarize: %w", err)
	}
	return strings.TrimSpace(raw), nil
}

// Judge produces a structured bid-worthiness verdict for a job description.
func (s *Service) Judge(ctx context.Context, description string) (model.Judgment, error) {
	prompt, err := renderPrompt(judgeTemplate, description)
	if err != nil {
		return model.NewJudgment(), err
	}

	raw, err := s.provider.CompleteJSON(ctx, prompt, "judgment", judgmentSchema)
	if err != nil {
		return model.NewJudgment(), fmt.Errorf("llm judge: %w", err)
	}

	judgment, err := parseJudgment(raw)
	if err != nil {
		return model.NewJudgment(), fmt.Errorf("parse judgment: %w", err)
	}
	return judgment, nil
}

// rawJudgment is the JSON shape returned by the LLM (matches judgmentSchema).
type rawJudgment struct {
	Decision string   `json:"decision"`
	Pros     []string `json:"pros"`
	Cons     []string `json:"cons"`
}

// parseJudgment deserializes the LLM response into a model.Judgment.
// Structured outputs guarantees valid JSON conforming to judgmentSchema,
// so no code-fence stripping or defensive trimming is needed.
func parseJudgment(raw string) (model.Judgment, error) {
	var rj rawJudgment
	if err := json.Unmarshal([]byte(raw), &rj); err != nil {
		return model.Judgment{}, fmt.Errorf("unmarshal judgment JSON: %w", err)
	}

	judgment := model.Judgment{
		Decision: model.DecisionUnresolved,
		Pros:     rj.Pros,
		Cons:     rj.Cons,
	}
	switch rj.Decision {
	case "accept":
		judgment.Decision = model.DecisionAccept
	case "reject":
		judgment.Decision = model.DecisionReject
	}
	return judgment, nil
}

func renderPrompt(tmpl *template.Template, description string) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct{ Description string }{Description: description})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}
