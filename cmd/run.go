package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codesmith-ai/codesmith/pkg/config"
	"github.com/codesmith-ai/codesmith/pkg/githost"
	"github.com/codesmith-ai/codesmith/pkg/llm"
	"github.com/codesmith-ai/codesmith/pkg/orchestration"
	"github.com/codesmith-ai/codesmith/pkg/plan"
	"github.com/codesmith-ai/codesmith/pkg/prompts"
	"github.com/codesmith-ai/codesmith/pkg/server"
	"github.com/codesmith-ai/codesmith/pkg/utils"
)

var (
	runPlanFile string
	runBrief    string
	runRepo     string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one orchestration from a plan file or brief",
	Long: `Runs a single orchestration to completion without the HTTP
service. Provide either --plan with a JSON plan file or --brief with a
natural-language project description to plan from scratch.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runOnce(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	runCmd.Flags().StringVar(&runPlanFile, "plan", "", "path to a JSON plan file")
	runCmd.Flags().StringVar(&runBrief, "brief", "", "project brief to plan from scratch")
	runCmd.Flags().StringVar(&runRepo, "repo", "", "repository name (defaults to the plan's project name)")
}

func runOnce(ctx context.Context) error {
	if runPlanFile == "" && runBrief == "" {
		return fmt.Errorf("one of --plan or --brief is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := utils.GetLogger(cfg.Quiet)

	gen, err := buildGenerator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	host, err := githost.NewClient(ctx, cfg.GitHubToken, logger)
	if err != nil {
		return err
	}

	p, err := loadOrBootstrapPlan(ctx, gen, logger)
	if err != nil {
		return err
	}

	repo := runRepo
	if repo == "" {
		repo = server.RepoName(p.ProjectName, 0)
	}
	if err := host.EnsureRepository(ctx, cfg.GitHubOwner, repo, p.Description); err != nil {
		return fmt.Errorf("failed to prepare repository: %w", err)
	}

	orchestrator := orchestration.New(gen, host, logger)
	orchestrator.SetSettleDelay(cfg.SettleDelay)

	pctx := orchestration.ProjectContext{
		ProjectName: p.ProjectName,
		Owner:       cfg.GitHubOwner,
		Repo:        repo,
		Description: p.Description,
		Logger:      logger,
	}
	result, err := orchestrator.Run(ctx, pctx, p)
	if err != nil {
		return err
	}

	logger.LogProcessStep(fmt.Sprintf("Approved after %d attempt(s)", result.Attempts))
	fmt.Printf("Repository: https://github.com/%s/%s\n", cfg.GitHubOwner, repo)
	if result.DeploymentURL != "" {
		fmt.Printf("Deployment: %s\n", result.DeploymentURL)
	}
	return nil
}

func loadOrBootstrapPlan(ctx context.Context, gen llm.Generator, logger *utils.Logger) (*plan.Plan, error) {
	var raw string
	if runPlanFile != "" {
		data, err := os.ReadFile(runPlanFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read plan file: %w", err)
		}
		raw = string(data)
	} else {
		logger.LogProcessStep("Drafting implementation plan from brief")
		prompt := prompts.BuildBootstrapPrompt(server.RepoName(runBrief, 0), runBrief, nil, nil)
		response, err := gen.Generate(ctx, llm.GenerateRequest{
			Prompt:          prompt,
			Temperature:     0.3,
			MaxOutputTokens: 8192,
		})
		if err != nil {
			return nil, fmt.Errorf("plan bootstrap failed: %w", err)
		}
		raw = response
	}

	p, warnings, err := plan.Parse(raw)
	if err != nil {
		return nil, err
	}
	for _, warning := range warnings {
		logger.Logf("plan warning: %s", warning)
	}
	return p, nil
}
