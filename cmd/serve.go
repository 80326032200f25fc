package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codesmith-ai/codesmith/pkg/config"
	"github.com/codesmith-ai/codesmith/pkg/githost"
	"github.com/codesmith-ai/codesmith/pkg/server"
	"github.com/codesmith-ai/codesmith/pkg/utils"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP intake service",
	Long: `Starts the HTTP service: a health endpoint, the /make intake
endpoint that accepts project briefs, per-job status endpoints, and a
websocket progress stream. Accepted jobs run asynchronously and report
their terminal state to the caller-supplied evaluation URL.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		logger := utils.GetLogger(cfg.Quiet)

		gen, err := buildGenerator(ctx, cfg, logger)
		if err != nil {
			logger.LogError(err)
			os.Exit(1)
		}
		host, err := githost.NewClient(ctx, cfg.GitHubToken, logger)
		if err != nil {
			logger.LogError(err)
			os.Exit(1)
		}

		pipeline := server.NewPipeline(cfg, gen, host, logger)
		srv := server.NewServer(cfg, pipeline, logger)
		if err := srv.Start(); err != nil {
			logger.LogError(fmt.Errorf("server stopped: %w", err))
			os.Exit(1)
		}
	},
}
