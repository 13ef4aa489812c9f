package llm

import (
	"context"

	"llm-relay/api/internal/content"
)

// Engine sends a prompt plus decoded content to a generative model and
// returns its text completion.
type Engine interface {
	Name() string
	GetModel() string
	Generate(ctx context.Context, prompt string, items []content.Content) (string, error)
}
