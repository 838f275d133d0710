package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/alanmeadows/mrsweep/internal/logging"
)

var (
	verbose    bool
	configPath string
	dryRun     bool
	reportPath string

	rootCmd = &cobra.Command{
		Use:   "mrsweep",
		Short: "Close or nudge open merge requests based on their Jira ticket",
		Long: `mrsweep makes one pass over the open merge requests of the configured
repositories. For every merge request opened by an allowed author it looks up
the Jira ticket named in the title or description. Merge requests whose ticket
is Closed are commented on and closed; the rest are nudged with a comment when
they have merge conflicts.

Credentials come from GITLAB_PERSONAL_ACCESS_TOKEN (or GITHUB_TOKEN),
JIRA_USERNAME and JIRA_API_TOKEN. Individual API failures are logged and do
not fail the run.`,
		Example: `  mrsweep
  mrsweep --dry-run --verbose
  mrsweep --config job.jsonc --report reports/latest.md`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSweep,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to an additional JSONC config file")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Decide actions without commenting on or closing anything")
	rootCmd.Flags().StringVar(&reportPath, "report", "", "Write the run as a markdown report to this path")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.Setup(cmd.ErrOrStderr(), verbose)
	}

	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command with ctx as the command context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
