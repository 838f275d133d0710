package sweep

import (
	"strings"
	"time"

	"github.com/alanmeadows/mrsweep/internal/provider"
)

// Action is what the sweep did with a single merge request.
type Action string

const (
	ActionSkippedAuthor Action = "skipped-author"
	ActionSkippedNoKey  Action = "skipped-no-key"
	ActionClosed        Action = "closed"
	ActionCommented     Action = "commented"
	ActionNone          Action = "none"
	ActionFailed        Action = "failed"
)

// Outcome records the decision taken for one merge request.
type Outcome struct {
	MR          provider.MergeRequest
	IssueKey    string
	IssueStatus string
	Action      Action
	// DryRun is true when the action was decided but not performed.
	DryRun bool
}

// Result is everything a run produced. It replaces process-wide state: the
// caller receives it from Run and decides what to do with it.
type Result struct {
	RunID            string
	StartedAt        time.Time
	FinishedAt       time.Time
	DryRun           bool
	ActionsPerformed bool
	Lines            []string
	Outcomes         []Outcome
}

// Count returns how many outcomes carry the given action.
func (r *Result) Count(a Action) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Action == a {
			n++
		}
	}
	return n
}

// Log returns the run log as a single string.
func (r *Result) Log() string {
	return strings.Join(r.Lines, "")
}

// Duration is the wall time of the run.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
