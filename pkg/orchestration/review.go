package orchestration

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/codesmith-ai/codesmith/pkg/llm"
	"github.com/codesmith-ai/codesmith/pkg/parser"
	"github.com/codesmith-ai/codesmith/pkg/plan"
	"github.com/codesmith-ai/codesmith/pkg/prompts"
)

// reviewFailedReason marks a verdict that could not be obtained at all, as
// opposed to a genuine rejection.
const reviewFailedReason = "review process failed"

// Reviewer asks the generation capability for a strict JSON verdict over a
// snapshot of the generated repository.
type Reviewer struct {
	gen llm.Generator
}

func NewReviewer(gen llm.Generator) *Reviewer {
	return &Reviewer{gen: gen}
}

type verdict struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason"`
}

// Verify judges the file set against the plan's declared requirements.
// Review failures are conservative: any error obtaining or parsing the
// verdict yields a rejection, never a propagated exception or a silent
// pass.
func (r *Reviewer) Verify(ctx context.Context, pctx ProjectContext, p *plan.Plan, files *FileSet) VerificationResult {
	prompt := prompts.BuildReviewPrompt(pctx.ProjectName, pctx.Description, p.TechStack, p.RequiredFeatures, p.Manifest, files.Snapshot())

	raw, err := r.gen.Generate(ctx, llm.GenerateRequest{
		Prompt:            prompt,
		Temperature:       0,
		MaxOutputTokens:   1024,
		SystemInstruction: prompts.ReviewSystemInstruction,
	})
	if err != nil {
		pctx.log().LogError(fmt.Errorf("review call failed: %w", err))
		return reviewFailure()
	}

	var v verdict
	if err := json.Unmarshal([]byte(parser.ExtractJSON(raw)), &v); err != nil {
		pctx.log().LogError(fmt.Errorf("review verdict was not valid JSON: %w", err))
		return reviewFailure()
	}

	if v.Approved {
		return VerificationResult{Success: true, ReviewReason: v.Reason}
	}
	return VerificationResult{
		Success:      false,
		ReviewReason: v.Reason,
		Errors:       []string{"LLM Review Failed: " + v.Reason},
	}
}

func reviewFailure() VerificationResult {
	return VerificationResult{
		Success:      false,
		ReviewReason: reviewFailedReason,
		Errors:       []string{"LLM Review Failed: " + reviewFailedReason},
	}
}
