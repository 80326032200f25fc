package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/codesmith-ai/codesmith/pkg/utils"
)

// FallbackChain composes an explicit ordered list of providers. Every call
// goes to the primary; on any failure (transport error, timeout, empty
// output) the identical request is retried exactly once per remaining
// provider. In production the list has two elements, so there is a single
// fallback substitution and no unbounded retry loop.
type FallbackChain struct {
	providers []Generator
	timeout   time.Duration
	logger    *utils.Logger
}

// NewFallbackChain builds a chain from the given providers in priority
// order. Nil entries are skipped so callers can pass an unconfigured
// fallback directly.
func NewFallbackChain(timeout time.Duration, logger *utils.Logger, providers ...Generator) *FallbackChain {
	chain := &FallbackChain{timeout: timeout, logger: logger}
	for _, p := range providers {
		if p != nil {
			chain.providers = append(chain.providers, p)
		}
	}
	return chain
}

func (c *FallbackChain) Name() string {
	names := ""
	for i, p := range c.providers {
		if i > 0 {
			names += ","
		}
		names += p.Name()
	}
	return "chain(" + names + ")"
}

// Generate tries each provider in order with a per-call timeout and returns
// the first usable response.
func (c *FallbackChain) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if len(c.providers) == 0 {
		return "", fmt.Errorf("no generation providers configured")
	}

	var lastErr error
	for i, provider := range c.providers {
		callCtx := ctx
		var cancel context.CancelFunc
		if c.timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		}
		text, err := provider.Generate(callCtx, req)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return text, nil
		}
		lastErr = err
		if i < len(c.providers)-1 {
			c.logger.Logf("provider %s failed (%v); retrying with %s", provider.Name(), err, c.providers[i+1].Name())
		}
	}
	return "", fmt.Errorf("all generation providers failed: %w", lastErr)
}
