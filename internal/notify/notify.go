// Package notify delivers the run log of a sweep to a Teams webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanmeadows/mrsweep/internal/config"
	"github.com/alanmeadows/mrsweep/internal/sweep"
)

// notifyHTTPClient is a dedicated HTTP client for notifications,
// isolated from http.DefaultClient to avoid global state mutation.
var notifyHTTPClient = &http.Client{Timeout: 15 * time.Second}

// maxLinks caps the number of merge request buttons on a card.
const maxLinks = 5

// Notify posts the run log to the configured Teams webhook.
// Returns nil immediately if no webhook is configured, or if the run
// performed no action and cfg.Always is unset.
func Notify(ctx context.Context, cfg *config.NotificationsConfig, result *sweep.Result) error {
	if cfg.TeamsWebhookURL == "" {
		return nil
	}
	if !result.ActionsPerformed && !cfg.Always {
		slog.Debug("no actions performed, skipping notification", "run_id", result.RunID)
		return nil
	}

	body, err := json.Marshal(buildAdaptiveCard(result))
	if err != nil {
		return fmt.Errorf("marshaling notification payload: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, cfg.TeamsWebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	slog.Debug("sending notification", "run_id", result.RunID)

	resp, err := notifyHTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	defer resp.Body.Close()

	// Drain the body so the connection can be reused.
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}

	slog.Debug("notification sent successfully", "run_id", result.RunID)
	return nil
}

// buildAdaptiveCard constructs an Adaptive Card wrapped in the Power Automate envelope.
func buildAdaptiveCard(result *sweep.Result) map[string]any {
	closed := result.Count(sweep.ActionClosed)
	commented := result.Count(sweep.ActionCommented)

	headerText := fmt.Sprintf("🧹 MR sweep: %d closed, %d nudged", closed, commented)
	if result.DryRun {
		headerText += " (dry run)"
	}

	facts := []map[string]any{
		{"title": "Run", "value": result.RunID},
		{"title": "Merge requests", "value": fmt.Sprintf("%d", len(result.Outcomes))},
		{"title": "Closed", "value": fmt.Sprintf("%d", closed)},
		{"title": "Commented", "value": fmt.Sprintf("%d", commented)},
	}
	if failed := result.Count(sweep.ActionFailed); failed > 0 {
		facts = append(facts, map[string]any{"title": "Failed", "value": fmt.Sprintf("%d", failed)})
	}

	cardBody := []map[string]any{
		{
			"type":   "TextBlock",
			"size":   "Medium",
			"weight": "Bolder",
			"text":   headerText,
		},
		{
			"type":  "FactSet",
			"facts": facts,
		},
		{
			"type":     "TextBlock",
			"text":     result.Log(),
			"fontType": "Monospace",
			"wrap":     true,
		},
	}

	var actions []map[string]any
	for _, o := range result.Outcomes {
		if len(actions) == maxLinks {
			break
		}
		if o.MR.WebURL == "" || (o.Action != sweep.ActionClosed && o.Action != sweep.ActionCommented) {
			continue
		}
		actions = append(actions, map[string]any{
			"type":  "Action.OpenUrl",
			"title": fmt.Sprintf("%s !%d", o.Action, o.MR.IID),
			"url":   o.MR.WebURL,
		})
	}

	card := map[string]any{
		"$schema": "http://adaptivecards.io/schemas/adaptive-card.json",
		"type":    "AdaptiveCard",
		"version": "1.4",
		"body":    cardBody,
	}
	if len(actions) > 0 {
		card["actions"] = actions
	}

	// Wrap in Power Automate envelope.
	return map[string]any{
		"type": "message",
		"attachments": []map[string]any{
			{
				"contentType": "application/vnd.microsoft.card.adaptive",
				"content":     card,
			},
		},
	}
}
