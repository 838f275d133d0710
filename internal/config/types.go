package config

import (
	"os"
	"path/filepath"
)

// Config is the top-level mrsweep configuration.
type Config struct {
	Hosting       HostingConfig       `json:"hosting"`
	Jira          JiraConfig          `json:"jira"`
	Sweep         SweepConfig         `json:"sweep"`
	Notifications NotificationsConfig `json:"notifications"`
	State         StateConfig         `json:"state"`
}

// HostingConfig selects the code-hosting backend and holds its credentials.
type HostingConfig struct {
	Provider string `json:"provider"`

	// GitLab personal access token (GITLAB_PERSONAL_ACCESS_TOKEN).
	GitLabToken string `json:"gitlab_token,omitempty"`
	// GitHub token (GITHUB_TOKEN), used when Provider is "github".
	GitHubToken string `json:"github_token,omitempty"`
}

// JiraConfig holds the tracker credentials used for Basic authentication.
type JiraConfig struct {
	Username string `json:"username,omitempty"`
	APIToken string `json:"api_token,omitempty"`
}

// SweepConfig controls which merge requests the sweep considers.
type SweepConfig struct {
	// Repositories are full repository paths, processed in order.
	Repositories []string `json:"repositories"`
	// Authors is the allow-list of merge request authors the sweep may act on.
	Authors []string `json:"authors"`
	DryRun  bool     `json:"dry_run"`
}

// NotificationsConfig holds run-log notification settings.
type NotificationsConfig struct {
	TeamsWebhookURL string `json:"teams_webhook_url"`
	// Always sends the run log even when the run performed no action.
	Always bool `json:"always"`
}

// StateConfig holds local runtime paths.
type StateConfig struct {
	// LockFile guards against overlapping runs. Empty means the default
	// location under the OS temp directory.
	LockFile string `json:"lock_file"`
}

// ResolveLockFile returns the configured lock file or the default one.
func (s StateConfig) ResolveLockFile() string {
	if s.LockFile != "" {
		return s.LockFile
	}
	return filepath.Join(os.TempDir(), "mrsweep.lock")
}

// DefaultConfig returns a Config with the compiled-in repositories and authors.
func DefaultConfig() Config {
	return Config{
		Hosting: HostingConfig{
			Provider: "gitlab",
		},
		Sweep: SweepConfig{
			Repositories: []string{
				"example_org/project_a",
				"example_org/project_b",
			},
			Authors: []string{"john.doe", "jane.smith", "dev.user"},
		},
	}
}
