package orchestration

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/codesmith-ai/codesmith/pkg/llm"
	"github.com/codesmith-ai/codesmith/pkg/plan"
	"github.com/codesmith-ai/codesmith/pkg/prompts"
)

// Replanner asks the generation capability for a corrected plan after a
// review rejection. The corrected plan uses the same schema as the
// original; a malformed response is fatal for the whole orchestration.
type Replanner struct {
	gen llm.Generator
}

func NewReplanner(gen llm.Generator) *Replanner {
	return &Replanner{gen: gen}
}

func (r *Replanner) Replan(ctx context.Context, pctx ProjectContext, prev *plan.Plan, rejectionReason string) (*plan.Plan, error) {
	prevJSON, err := json.MarshalIndent(prev, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize previous plan: %w", err)
	}

	prompt := prompts.BuildReplanPrompt(pctx.Description, string(prevJSON), rejectionReason)
	raw, err := r.gen.Generate(ctx, llm.GenerateRequest{
		Prompt:          prompt,
		Temperature:     0.3,
		MaxOutputTokens: 8192,
	})
	if err != nil {
		return nil, fmt.Errorf("replanning call failed: %w", err)
	}

	corrected, warnings, err := plan.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("replanned plan is malformed: %w", err)
	}
	for _, warning := range warnings {
		pctx.log().Logf("replanned plan: %s", warning)
	}
	return corrected, nil
}
