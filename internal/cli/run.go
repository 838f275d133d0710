package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alanmeadows/mrsweep/internal/config"
	"github.com/alanmeadows/mrsweep/internal/notify"
	"github.com/alanmeadows/mrsweep/internal/provider"
	"github.com/alanmeadows/mrsweep/internal/provider/github"
	"github.com/alanmeadows/mrsweep/internal/provider/gitlab"
	"github.com/alanmeadows/mrsweep/internal/report"
	"github.com/alanmeadows/mrsweep/internal/store"
	"github.com/alanmeadows/mrsweep/internal/sweep"
	"github.com/alanmeadows/mrsweep/internal/tracker/jira"
)

// newRegistry builds the set of code-host backends. Replaced in tests.
var newRegistry = func(cfg *config.Config) *provider.Registry {
	reg := provider.NewRegistry()
	reg.Register(gitlab.NewBackend(cfg.Hosting.GitLabToken))
	reg.Register(github.NewBackend(cfg.Hosting.GitHubToken))
	return reg
}

// newTracker builds the issue tracker client. Replaced in tests.
var newTracker = func(cfg *config.Config) sweep.Tracker {
	return jira.NewClient(cfg.Jira.Username, cfg.Jira.APIToken)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if dryRun {
		cfg.Sweep.DryRun = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	backend, err := newRegistry(cfg).Get(cfg.Hosting.Provider)
	if err != nil {
		return err
	}
	sweeper := sweep.New(backend, newTracker(cfg), sweep.Options{
		Authors: cfg.Sweep.Authors,
		DryRun:  cfg.Sweep.DryRun,
		Output:  cmd.OutOrStdout(),
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var result *sweep.Result
	err = store.WithRunLock(cfg.State.ResolveLockFile(), func() error {
		result = sweeper.Run(ctx, cfg.Sweep.Repositories)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout())
	report.PrintSummary(cmd.OutOrStdout(), result)

	if reportPath != "" {
		if err := report.Write(reportPath, result); err != nil {
			slog.Warn("failed to write report", "path", reportPath, "error", err)
		} else {
			slog.Info("report written", "path", reportPath)
		}
	}

	if err := notify.Notify(ctx, &cfg.Notifications, result); err != nil {
		slog.Warn("failed to send notification", "error", err)
	}

	return nil
}
