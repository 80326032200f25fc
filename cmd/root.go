package cmd

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "codesmith",
	Short: "LLM-driven code generation and deployment service",
	Long: `Codesmith turns a natural-language project brief into a deployed
repository. It plans the project with an LLM, generates each file,
commits the result to GitHub, reviews it, and retries with corrective
feedback until the review passes or the attempt budget runs out.

Available commands:
  serve   - Run the HTTP intake service
  run     - Run one orchestration from a plan or brief on the command line
  version - Print version information`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
}
