package server

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/codesmith-ai/codesmith/pkg/callback"
	"github.com/codesmith-ai/codesmith/pkg/config"
	"github.com/codesmith-ai/codesmith/pkg/githost"
	"github.com/codesmith-ai/codesmith/pkg/llm"
	"github.com/codesmith-ai/codesmith/pkg/orchestration"
	"github.com/codesmith-ai/codesmith/pkg/plan"
	"github.com/codesmith-ai/codesmith/pkg/prompts"
	"github.com/codesmith-ai/codesmith/pkg/utils"
)

const (
	bootstrapTemperature = 0.3
	bootstrapMaxTokens   = 8192

	callbackTimeout = 2 * time.Minute
)

// repositoryHost is the hosting capability the pipeline needs beyond the
// orchestrator's commit surface.
type repositoryHost interface {
	githost.Committer
	EnsureRepository(ctx context.Context, owner, repo, description string) error
}

type orchestratorRunner interface {
	Run(ctx context.Context, pctx orchestration.ProjectContext, p *plan.Plan) (*orchestration.Result, error)
}

type terminalNotifier interface {
	Notify(ctx context.Context, url string, payload callback.Payload) error
}

// Pipeline turns an accepted intake request into a finished job: bootstrap
// a plan from the brief, ensure the repository exists, run the
// orchestration loop, and report the terminal state to the evaluation URL.
type Pipeline struct {
	gen    llm.Generator
	host   repositoryHost
	notify terminalNotifier
	owner  string
	logger *utils.Logger

	// newOrchestrator builds a per-job orchestrator so each run gets its
	// own attempt recorder and progress sink.
	newOrchestrator func(recorder orchestration.AttemptRecorder, onProgress func(string)) orchestratorRunner
}

// NewPipeline wires the production pipeline from configured components.
func NewPipeline(cfg *config.Config, gen llm.Generator, host *githost.Client, logger *utils.Logger) *Pipeline {
	return &Pipeline{
		gen:    gen,
		host:   host,
		notify: callback.NewNotifier(logger),
		owner:  cfg.GitHubOwner,
		logger: logger,
		newOrchestrator: func(recorder orchestration.AttemptRecorder, onProgress func(string)) orchestratorRunner {
			o := orchestration.New(gen, host, logger)
			o.SetSettleDelay(cfg.SettleDelay)
			o.Recorder = recorder
			o.OnProgress = onProgress
			return o
		},
	}
}

// Execute runs the job to a terminal state. All errors end in the job's
// Fail state and a success:false callback; nothing propagates to the HTTP
// layer, which has already answered 202.
func (p *Pipeline) Execute(ctx context.Context, job *Job, req MakeRequest) {
	job.Start()
	job.Publish("Job accepted: " + job.Task)

	repo := RepoName(req.Task, req.Round)
	repoURL := fmt.Sprintf("https://github.com/%s/%s", p.owner, repo)

	result, err := p.run(ctx, job, req, repo)
	if err != nil {
		p.logger.LogError(fmt.Errorf("job %s failed: %w", job.ID, err))
		job.Publish("Failed: " + err.Error())
		job.Fail(repoURL, err.Error())
		p.report(req.EvaluationURL, callback.Payload{
			Success:    false,
			Repository: repoURL,
			Error:      err.Error(),
		})
		return
	}

	job.Publish("Completed successfully")
	job.Succeed(repoURL, result.DeploymentURL)
	p.report(req.EvaluationURL, callback.Payload{
		Success:    true,
		Repository: repoURL,
		Deployment: result.DeploymentURL,
	})
}

func (p *Pipeline) run(ctx context.Context, job *Job, req MakeRequest, repo string) (*orchestration.Result, error) {
	job.Publish("Drafting implementation plan")
	bootstrapped, err := p.bootstrapPlan(ctx, repo, req)
	if err != nil {
		return nil, err
	}

	if err := p.host.EnsureRepository(ctx, p.owner, repo, bootstrapped.Description); err != nil {
		return nil, fmt.Errorf("failed to prepare repository: %w", err)
	}

	pctx := orchestration.ProjectContext{
		ProjectName: bootstrapped.ProjectName,
		Owner:       p.owner,
		Repo:        repo,
		Description: bootstrapped.Description,
		Logger:      p.logger,
	}
	orchestrator := p.newOrchestrator(job.History, job.Publish)
	return orchestrator.Run(ctx, pctx, bootstrapped)
}

// bootstrapPlan asks the generation capability for a structured plan built
// from the caller's brief and acceptance checks.
func (p *Pipeline) bootstrapPlan(ctx context.Context, repo string, req MakeRequest) (*plan.Plan, error) {
	prompt := prompts.BuildBootstrapPrompt(repo, req.Brief, req.Checks, req.Attachments)
	raw, err := p.gen.Generate(ctx, llm.GenerateRequest{
		Prompt:          prompt,
		Temperature:     bootstrapTemperature,
		MaxOutputTokens: bootstrapMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("plan bootstrap failed: %w", err)
	}

	bootstrapped, warnings, err := plan.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("bootstrapped plan is malformed: %w", err)
	}
	for _, warning := range warnings {
		p.logger.Logf("plan warning: %s", warning)
	}
	if bootstrapped.ProjectName == "" {
		bootstrapped.ProjectName = repo
	}
	return bootstrapped, nil
}

// report delivers the terminal callback on its own context: the job's
// context may already be winding down when the run ends.
func (p *Pipeline) report(url string, payload callback.Payload) {
	ctx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
	defer cancel()
	if err := p.notify.Notify(ctx, url, payload); err != nil {
		p.logger.LogError(err)
	}
}

var repoNameSanitizer = regexp.MustCompile(`[^a-z0-9-]+`)

// RepoName derives a hosting-safe repository name from the task identifier
// and round number.
func RepoName(task string, round int) string {
	name := strings.ToLower(strings.TrimSpace(task))
	name = repoNameSanitizer.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if name == "" {
		name = "project"
	}
	if round > 0 {
		name = fmt.Sprintf("%s-round-%d", name, round)
	}
	return name
}
