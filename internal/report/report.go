// Package report renders a sweep result for humans: a terminal table of
// outcomes and a markdown file with YAML frontmatter for archiving.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/alanmeadows/mrsweep/internal/store"
	"github.com/alanmeadows/mrsweep/internal/sweep"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	closedStyle = cellStyle.Foreground(lipgloss.Color("9"))
	nudgeStyle  = cellStyle.Foreground(lipgloss.Color("11"))
)

// Table returns a table of per-merge-request outcomes. Skipped authors are
// left out since they make up most of a typical run.
func Table(result *sweep.Result) string {
	rows := make([][]string, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		if o.Action == sweep.ActionSkippedAuthor {
			continue
		}
		action := string(o.Action)
		if o.DryRun {
			action += " (dry run)"
		}
		rows = append(rows, []string{
			o.MR.Repository,
			"!" + strconv.Itoa(o.MR.IID),
			o.MR.Author,
			dash(o.IssueKey),
			dash(o.IssueStatus),
			action,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("REPOSITORY", "MR", "AUTHOR", "ISSUE", "STATUS", "ACTION").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 5 && row < len(rows) {
				switch {
				case strings.HasPrefix(rows[row][col], string(sweep.ActionClosed)):
					return closedStyle
				case strings.HasPrefix(rows[row][col], string(sweep.ActionCommented)):
					return nudgeStyle
				}
			}
			return cellStyle
		})
	return t.String()
}

// PrintSummary writes the outcome table followed by a one-line tally.
func PrintSummary(w io.Writer, result *sweep.Result) {
	fmt.Fprintln(w, Table(result))
	fmt.Fprintf(w, "%d closed, %d commented, %d failed in %s\n",
		result.Count(sweep.ActionClosed),
		result.Count(sweep.ActionCommented),
		result.Count(sweep.ActionFailed),
		result.Duration().Round(time.Millisecond))
}

// Write stores the run as a markdown document at path. Run metadata goes in
// the frontmatter and the run log in the body.
func Write(path string, result *sweep.Result) error {
	doc := &store.Document{
		Frontmatter: map[string]any{
			"run_id":            result.RunID,
			"started_at":        result.StartedAt.UTC().Format(time.RFC3339),
			"finished_at":       result.FinishedAt.UTC().Format(time.RFC3339),
			"dry_run":           result.DryRun,
			"actions_performed": result.ActionsPerformed,
			"closed":            result.Count(sweep.ActionClosed),
			"commented":         result.Count(sweep.ActionCommented),
			"failed":            result.Count(sweep.ActionFailed),
		},
		Body: body(result),
	}
	if err := store.WriteDocument(path, doc); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func body(result *sweep.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# MR sweep %s\n\n", result.RunID)

	b.WriteString("## Outcomes\n\n")
	b.WriteString("| Repository | MR | Author | Issue | Status | Action |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, o := range result.Outcomes {
		if o.Action == sweep.ActionSkippedAuthor {
			continue
		}
		mr := "!" + strconv.Itoa(o.MR.IID)
		if o.MR.WebURL != "" {
			mr = "[" + mr + "](" + o.MR.WebURL + ")"
		}
		action := string(o.Action)
		if o.DryRun {
			action += " (dry run)"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			o.MR.Repository, mr, o.MR.Author, dash(o.IssueKey), dash(o.IssueStatus), action)
	}

	b.WriteString("\n## Log\n\n```\n")
	b.WriteString(result.Log())
	b.WriteString("```\n")
	return b.String()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
