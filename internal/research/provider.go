// Package research fills in company facts from a language model and turns
// them into an opportunity assessment with the calculation engine.
//
// Model output is untrusted: it is repaired, bounds-checked and routed
// through the same benchmark fallbacks as any other caller input.
package research

import "context"

// Prompt is one request to a language model.
type Prompt struct {
	System string
	User   string
	// JSON asks the provider to constrain output to a JSON object.
	JSON bool
}

// Provider completes prompts against an external model.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt Prompt) (string, error)
}
