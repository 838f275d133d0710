package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/tidwall/jsonc"
)

// Environment variables carrying credentials.
const (
	EnvGitLabToken  = "GITLAB_PERSONAL_ACCESS_TOKEN"
	EnvGitHubToken  = "GITHUB_TOKEN"
	EnvJiraUsername = "JIRA_USERNAME"
	EnvJiraAPIToken = "JIRA_API_TOKEN"
	EnvWebhookURL   = "MRSWEEP_TEAMS_WEBHOOK_URL"
)

// Load reads and merges configuration from the user-level JSONC file and an
// optional explicit file. Resolution order: defaults → user config
// (~/.config/mrsweep/mrsweep.jsonc) → explicit path → environment variables.
// An explicit path that cannot be read is an error; a missing user config is not.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if userPath := UserConfigPath(); userPath != "" {
		if userMap, err := loadJSONC(userPath); err == nil {
			if err := mergeIntoConfig(&cfg, userMap); err != nil {
				return nil, fmt.Errorf("merging user config: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if path != "" {
		fileMap, err := loadJSONC(path)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
		if err := mergeIntoConfig(&cfg, fileMap); err != nil {
			return nil, fmt.Errorf("merging config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// UserConfigPath returns the user-level config file location, or "" when the
// OS config directory cannot be determined.
func UserConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mrsweep", "mrsweep.jsonc")
}

// Validate checks that everything needed for a run is present. It is called
// before any network activity.
func (c *Config) Validate() error {
	var missing []string
	switch c.Hosting.Provider {
	case "gitlab":
		if c.Hosting.GitLabToken == "" {
			missing = append(missing, EnvGitLabToken)
		}
	case "github":
		if c.Hosting.GitHubToken == "" {
			missing = append(missing, EnvGitHubToken)
		}
	default:
		return fmt.Errorf("unsupported hosting provider %q: must be \"gitlab\" or \"github\"", c.Hosting.Provider)
	}
	if c.Jira.Username == "" {
		missing = append(missing, EnvJiraUsername)
	}
	if c.Jira.APIToken == "" {
		missing = append(missing, EnvJiraAPIToken)
	}
	if len(missing) > 0 {
		return fmt.Errorf("environment variables %s must be set", joinNames(missing))
	}

	if len(c.Sweep.Repositories) == 0 {
		return fmt.Errorf("sweep.repositories must list at least one repository")
	}
	return nil
}

// joinNames renders "A", "A and B", or "A, B, and C".
func joinNames(names []string) string {
	switch len(names) {
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}

// loadJSONC reads a JSONC file and returns it as a map.
func loadJSONC(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	jsonData := jsonc.ToJSON(data)
	var m map[string]any
	if err := json.Unmarshal(jsonData, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// mergeIntoConfig marshals the config to a map, deep-merges the source map over it,
// then unmarshals back to the Config struct.
func mergeIntoConfig(cfg *Config, src map[string]any) error {
	cfgBytes, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	var dst map[string]any
	if err := json.Unmarshal(cfgBytes, &dst); err != nil {
		return err
	}

	// Deep merge: src overrides dst. Lists are replaced, not appended.
	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return err
	}

	merged, err := json.Marshal(dst)
	if err != nil {
		return err
	}
	return json.Unmarshal(merged, cfg)
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv(EnvGitLabToken); token != "" {
		cfg.Hosting.GitLabToken = token
	}
	if token := os.Getenv(EnvGitHubToken); token != "" {
		cfg.Hosting.GitHubToken = token
	}
	if user := os.Getenv(EnvJiraUsername); user != "" {
		cfg.Jira.Username = user
	}
	if token := os.Getenv(EnvJiraAPIToken); token != "" {
		cfg.Jira.APIToken = token
	}
	if url := os.Getenv(EnvWebhookURL); url != "" {
		cfg.Notifications.TeamsWebhookURL = url
	}
}
