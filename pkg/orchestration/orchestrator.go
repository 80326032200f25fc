package orchestration

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/codesmith-ai/codesmith/pkg/githost"
	"github.com/codesmith-ai/codesmith/pkg/llm"
	"github.com/codesmith-ai/codesmith/pkg/plan"
	"github.com/codesmith-ai/codesmith/pkg/utils"
)

const (
	// MaxAttempts bounds the generate-review-replan loop. Only a review
	// rejection consumes an attempt; generation and commit failures fail
	// the run immediately.
	MaxAttempts = 3

	// defaultSettleDelay gives the remote store time to become consistent
	// before canonical content is refetched for review. No stronger
	// consistency signal is available from the store.
	defaultSettleDelay = 5 * time.Second
)

// AttemptRecorder observes each attempt's generated file set, e.g. to keep
// diff history for the job endpoints.
type AttemptRecorder interface {
	RecordAttempt(number int, files map[string]string)
}

type phaseExecutor interface {
	Execute(ctx context.Context, pctx ProjectContext, p *plan.Plan, files *FileSet, attempt int) error
}

type verifier interface {
	Verify(ctx context.Context, pctx ProjectContext, p *plan.Plan, files *FileSet) VerificationResult
}

type planCorrector interface {
	Replan(ctx context.Context, pctx ProjectContext, prev *plan.Plan, reason string) (*plan.Plan, error)
}

// Orchestrator drives the multi-attempt generation-verification-replan
// loop: run phases, sync committed content back from the remote store,
// review, and either finish, replan, or fail.
type Orchestrator struct {
	runner      phaseExecutor
	reviewer    verifier
	replanner   planCorrector
	host        githost.Committer
	logger      *utils.Logger
	maxAttempts int
	settleDelay time.Duration

	// Recorder and OnProgress are optional observers.
	Recorder   AttemptRecorder
	OnProgress func(message string)
}

// New wires the orchestrator with its concrete components. gen is expected
// to be a provider chain with fallback already applied.
func New(gen llm.Generator, host githost.Committer, logger *utils.Logger) *Orchestrator {
	return &Orchestrator{
		runner:      NewPhaseRunner(NewFileGenerator(gen), host),
		reviewer:    NewReviewer(gen),
		replanner:   NewReplanner(gen),
		host:        host,
		logger:      logger,
		maxAttempts: MaxAttempts,
		settleDelay: defaultSettleDelay,
	}
}

// SetSettleDelay overrides the post-commit settling delay. Mainly for tests.
func (o *Orchestrator) SetSettleDelay(d time.Duration) { o.settleDelay = d }

// Run executes the orchestration loop to one of its terminal states. It
// returns the result on approval and an error on permanent failure; there
// is no partial-success return. Once started, a run proceeds to a terminal
// state; no user-triggered abort is defined.
func (o *Orchestrator) Run(ctx context.Context, pctx ProjectContext, initial *plan.Plan) (*Result, error) {
	current := initial
	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		o.progress(fmt.Sprintf("Attempt %d/%d: generating %s", attempt, o.maxAttempts, pctx.ProjectName))

		files := NewFileSet()
		if err := o.runner.Execute(ctx, pctx, current, files, attempt); err != nil {
			// Transport and commit errors are harder failures than a
			// rejection: they do not consume a replan attempt.
			return nil, fmt.Errorf("attempt %d: %w", attempt, err)
		}
		if o.Recorder != nil {
			o.Recorder.RecordAttempt(attempt, files.Contents())
		}

		o.settle(ctx)
		o.syncFromRemote(ctx, pctx, files)

		o.progress(fmt.Sprintf("Attempt %d/%d: reviewing %d file(s)", attempt, o.maxAttempts, files.Len()))
		verification := o.reviewer.Verify(ctx, pctx, current, files)

		if verification.Success {
			o.progress(fmt.Sprintf("Attempt %d/%d: approved", attempt, o.maxAttempts))
			result := &Result{Verification: verification, Attempts: attempt}
			if current.StaticHostingEligible() {
				url, err := o.host.EnablePages(ctx, pctx.Owner, pctx.Repo)
				if err != nil {
					return nil, fmt.Errorf("deployment failed: %w", err)
				}
				result.DeploymentURL = url
				o.progress("Deployed to " + url)
			}
			return result, nil
		}

		if attempt == o.maxAttempts {
			return nil, fmt.Errorf("rejected after %d attempts: %s",
				o.maxAttempts, strings.Join(verification.Errors, "; "))
		}

		o.progress(fmt.Sprintf("Attempt %d/%d rejected: %s; replanning", attempt, o.maxAttempts, verification.ReviewReason))
		corrected, err := o.replanner.Replan(ctx, pctx, current, verification.ReviewReason)
		if err != nil {
			return nil, err
		}
		current = corrected
	}
	return nil, fmt.Errorf("orchestration ended without reaching a terminal state")
}

// settle waits the fixed consistency delay, honoring context expiry.
func (o *Orchestrator) settle(ctx context.Context) {
	if o.settleDelay <= 0 {
		return
	}
	t := time.NewTimer(o.settleDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// syncFromRemote replaces each generated file's content with the canonical
// committed copy. Fetches run concurrently and each may fail independently
// without aborting the batch; a failed fetch leaves the locally generated
// content in place for review.
func (o *Orchestrator) syncFromRemote(ctx context.Context, pctx ProjectContext, files *FileSet) {
	var wg sync.WaitGroup
	for _, path := range files.Paths() {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			content, err := o.host.GetFileContent(ctx, pctx.Owner, pctx.Repo, path)
			if err != nil {
				pctx.log().Logf("sync: fetch of %s failed, reviewing locally generated content: %v", path, err)
				return
			}
			files.Set(path, content)
		}(path)
	}
	wg.Wait()
}

func (o *Orchestrator) progress(message string) {
	o.logger.LogProcessStep(message)
	if o.OnProgress != nil {
		o.OnProgress(message)
	}
}
