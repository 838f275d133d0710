package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/sjson"

	"github.com/alanmeadows/mrsweep/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage mrsweep configuration",
	Long:  `Show and modify mrsweep configuration values.`,
}

var configJSONFlag bool

func init() {
	configShowCmd.Flags().BoolVar(&configJSONFlag, "json", false, "Output raw JSON without formatting")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show merged configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		redacted := redactConfig(cfg)

		var data []byte
		if configJSONFlag {
			data, err = json.Marshal(redacted)
		} else {
			data, err = json.MarshalIndent(redacted, "", "  ")
		}
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

// redactConfig returns a copy of the config with secret fields masked.
func redactConfig(cfg *config.Config) *config.Config {
	copy := *cfg

	if copy.Hosting.GitLabToken != "" {
		copy.Hosting.GitLabToken = "***"
	}
	if copy.Hosting.GitHubToken != "" {
		copy.Hosting.GitHubToken = "***"
	}
	if copy.Jira.APIToken != "" {
		copy.Jira.APIToken = "***"
	}
	if copy.Notifications.TeamsWebhookURL != "" {
		copy.Notifications.TeamsWebhookURL = "***"
	}

	return &copy
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Long: `Set a configuration value using a dotted key path.

The value is written to the user config file (mrsweep/mrsweep.jsonc under the
OS config directory). The file is created if it does not exist. Values that
look like booleans or numbers are stored as such.

Note: JSONC comments are not preserved on write.`,
	Example: `  mrsweep config set sweep.dry_run true
  mrsweep config set hosting.provider github
  mrsweep config set sweep.authors.-1 new.author`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.UserConfigPath()
		if path == "" {
			return fmt.Errorf("cannot determine user config directory")
		}

		value := parseValue(args[1])
		if err := setConfigValue(path, args[0], value); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", args[0], value)
		return nil
	},
}

// parseValue tries bool, then integer, then float, falling back to string.
func parseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// setConfigValue writes value at the dotted key in the JSONC file at path.
func setConfigValue(path, key string, value any) error {
	existing := []byte("{}")
	if data, err := os.ReadFile(path); err == nil {
		// sjson requires valid JSON, so comments are stripped.
		existing = jsonc.ToJSON(data)
	}

	updated, err := sjson.SetBytes(existing, key, value)
	if err != nil {
		return fmt.Errorf("setting key %q: %w", key, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, updated, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the user config interactively",
	Long: `Launches an interactive form for the hosting provider, the repositories
to sweep, and the author allow-list, then writes them to the user config file.
Credentials are never written; supply them through the environment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.UserConfigPath()
		if path == "" {
			return fmt.Errorf("cannot determine user config directory")
		}

		cfg, err := config.Load("")
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		provider := cfg.Hosting.Provider
		repos := strings.Join(cfg.Sweep.Repositories, ", ")
		authors := strings.Join(cfg.Sweep.Authors, ", ")
		webhook := cfg.Notifications.TeamsWebhookURL

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Hosting provider").
					Options(
						huh.NewOption("GitLab", "gitlab"),
						huh.NewOption("GitHub", "github"),
					).
					Value(&provider),
				huh.NewInput().
					Title("Repositories (comma separated)").
					Value(&repos).
					Validate(func(s string) error {
						if len(splitList(s)) == 0 {
							return fmt.Errorf("at least one repository is required")
						}
						return nil
					}),
				huh.NewInput().
					Title("Authors (comma separated)").
					Value(&authors),
				huh.NewInput().
					Title("Teams webhook URL (optional)").
					Value(&webhook),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}

		values := map[string]any{
			"hosting.provider":   provider,
			"sweep.repositories": splitList(repos),
			"sweep.authors":      splitList(authors),
		}
		if webhook != "" {
			values["notifications.teams_webhook_url"] = webhook
		}
		for _, key := range []string{"hosting.provider", "sweep.repositories", "sweep.authors", "notifications.teams_webhook_url"} {
			v, ok := values[key]
			if !ok {
				continue
			}
			if err := setConfigValue(path, key, v); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
