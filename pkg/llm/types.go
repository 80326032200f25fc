package llm

import (
	"context"
	"errors"
)

// GenerateRequest carries one text-generation call. The same request is
// reused verbatim when a call is retried against the fallback provider.
type GenerateRequest struct {
	Prompt            string
	Model             string
	Temperature       float64
	MaxOutputTokens   int
	SystemInstruction string
}

// Generator is the black-box generation capability. Implementations wrap
// one provider's API; FallbackChain composes two of them.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// ErrEmptyResponse is returned when a provider answers with no usable text.
// It is treated like a transport failure and triggers the fallback step.
var ErrEmptyResponse = errors.New("llm: empty response from model")
