package reasoning

import "context"

// LLMProvider sends a prompt to an LLM and returns the raw text response.
// Used only by Service; not exported to the rest of the system.
type LLMProvider interface {
	// Complete returns a free-form text completion.
	Complete(ctx context.Context, prompt string) (string, error)
	// CompleteJSON returns a completion constrained server-side to the
	// given JSON schema.
	CompleteJSON(ctx context.Context, prompt, schemaName string, schema map[string]any) (string, error)
}
