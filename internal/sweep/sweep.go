// Package sweep implements the per-merge-request policy: close merge requests
// whose tracker issue is already closed and nudge authors of conflicted ones.
package sweep

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alanmeadows/mrsweep/internal/issuekey"
	"github.com/alanmeadows/mrsweep/internal/provider"
	"github.com/alanmeadows/mrsweep/internal/tracker/jira"
)

//go:generate mockgen -destination=backend_mock_test.go -package=sweep github.com/alanmeadows/mrsweep/internal/provider Backend
//go:generate mockgen -destination=tracker_mock_test.go -package=sweep . Tracker

// Tracker looks up issues in the issue tracker.
type Tracker interface {
	GetIssue(ctx context.Context, key string) (*jira.Issue, error)
}

// Options configures a Sweeper.
type Options struct {
	// Authors is the allow-list of merge request authors the sweep may act on.
	Authors []string
	// DryRun records decisions without posting comments or closing anything.
	DryRun bool
	// Output receives each run log line as it is recorded.
	Output io.Writer
}

// Sweeper drives one pass over the open merge requests of a set of repositories.
type Sweeper struct {
	backend provider.Backend
	tracker Tracker
	authors map[string]bool
	dryRun  bool
	output  io.Writer
}

// New creates a Sweeper acting through the given backend and tracker.
func New(backend provider.Backend, tracker Tracker, opts Options) *Sweeper {
	authors := make(map[string]bool, len(opts.Authors))
	for _, a := range opts.Authors {
		authors[a] = true
	}
	return &Sweeper{
		backend: backend,
		tracker: tracker,
		authors: authors,
		dryRun:  opts.DryRun,
		output:  opts.Output,
	}
}

// Run performs one full pass over repos. Remote failures are logged and
// replaced with conservative defaults; Run itself never fails.
func (s *Sweeper) Run(ctx context.Context, repos []string) *Result {
	r := s.newRun()
	slog.Info("starting sweep", "run_id", r.result.RunID, "backend", s.backend.Name(),
		"repositories", len(repos), "dry_run", s.dryRun)

	r.log.Log("Fetching open merge requests...")
	mrs := r.listOpenMergeRequests(ctx, repos)

	for i := range mrs {
		r.process(ctx, &mrs[i])
	}

	r.result.FinishedAt = time.Now()
	r.result.Lines = r.log.Lines()
	slog.Info("sweep finished", "run_id", r.result.RunID,
		"merge_requests", len(mrs),
		"closed", r.result.Count(ActionClosed),
		"commented", r.result.Count(ActionCommented),
		"actions_performed", r.result.ActionsPerformed,
		"duration", r.result.Duration().Round(time.Millisecond))
	return r.result
}

// run holds the state of a single pass.
type run struct {
	*Sweeper
	log    *RunLog
	result *Result
}

func (s *Sweeper) newRun() *run {
	return &run{
		Sweeper: s,
		log:     NewRunLog(s.output),
		result: &Result{
			RunID:     uuid.NewString(),
			StartedAt: time.Now(),
			DryRun:    s.dryRun,
		},
	}
}

// process applies the policy to a single merge request.
func (r *run) process(ctx context.Context, mr *provider.MergeRequest) {
	r.log.Logf("Processing MR %d by %s...", mr.IID, mr.Author)

	outcome := Outcome{MR: *mr, DryRun: r.dryRun}
	defer func() { r.result.Outcomes = append(r.result.Outcomes, outcome) }()

	if !r.authors[mr.Author] {
		outcome.Action = ActionSkippedAuthor
		return
	}

	key, ok := issuekey.Extract(mr.Title, mr.Description)
	if !ok {
		r.log.Logf("No Jira key found for MR %d. Skipping...", mr.IID)
		outcome.Action = ActionSkippedNoKey
		return
	}
	outcome.IssueKey = key

	issue := r.issueStatus(ctx, key)
	outcome.IssueStatus = issue.Status

	if issue.IsClosed() {
		comment := fmt.Sprintf("Jira ticket %s is already closed. Closing this MR.", key)
		if r.closeMergeRequest(ctx, mr, comment) {
			r.log.Logf("Closed MR %s as the associated Jira ticket %s is closed.", mr.WebURL, key)
			outcome.Action = ActionClosed
		} else {
			outcome.Action = ActionFailed
		}
		return
	}

	if r.conflictStatus(ctx, mr) {
		comment := fmt.Sprintf("@%s, please resolve the merge conflicts so this MR can be merged.", mr.Author)
		if r.addComment(ctx, mr, comment) {
			outcome.Action = ActionCommented
		} else {
			outcome.Action = ActionFailed
		}
		return
	}

	r.log.Logf("MR %s has no conflicts but the Jira ticket %s is not closed.", mr.WebURL, key)
	outcome.Action = ActionNone
}

// listOpenMergeRequests fetches open merge requests for every repository in
// order. A repository that fails is logged and skipped.
func (r *run) listOpenMergeRequests(ctx context.Context, repos []string) []provider.MergeRequest {
	var all []provider.MergeRequest
	for _, repo := range repos {
		r.log.Logf("Fetching MRs for repository: %s", repo)
		mrs, err := r.backend.ListOpenMergeRequests(ctx, repo)
		if err != nil {
			r.log.Logf("Failed to fetch MRs for %s: %v", repo, err)
			slog.Warn("skipping repository", "repository", repo, "error", err)
			continue
		}
		r.log.Logf("Found %d open MRs in repository: %s", len(mrs), repo)
		all = append(all, mrs...)
	}
	return all
}

// issueStatus looks up the issue, substituting the Unknown sentinel when the
// tracker call fails.
func (r *run) issueStatus(ctx context.Context, key string) *jira.Issue {
	issue, err := r.tracker.GetIssue(ctx, key)
	if err != nil {
		r.log.Logf("Failed to fetch Jira ticket %s: %v", key, err)
		return jira.UnknownIssue(key)
	}
	return issue
}

// conflictStatus reports whether mr has conflicts. When the state cannot be
// fetched the merge request is treated as conflicted so that a human is asked.
func (r *run) conflictStatus(ctx context.Context, mr *provider.MergeRequest) bool {
	conflicted, err := r.backend.HasConflicts(ctx, mr)
	if err != nil {
		r.log.Logf("Failed to check merge request conflicts: %v", err)
		return true
	}
	return conflicted
}

// addComment posts body on mr unconditionally. Failures are logged and
// swallowed; success marks the run as having performed an action.
func (r *run) addComment(ctx context.Context, mr *provider.MergeRequest, body string) bool {
	if r.dryRun {
		r.log.Logf("[dry-run] Would add comment to MR %d: %q", mr.IID, body)
		return true
	}
	if err := r.backend.AddComment(ctx, mr, body); err != nil {
		r.log.Logf("Failed to add comment to MR %d: %v", mr.IID, err)
		return false
	}
	r.log.Logf("Comment added to MR %d.", mr.IID)
	r.result.ActionsPerformed = true
	return true
}

// closeMergeRequest comments on mr and then closes it. The two calls are
// independent: the close is attempted even if the comment failed.
func (r *run) closeMergeRequest(ctx context.Context, mr *provider.MergeRequest, comment string) bool {
	r.addComment(ctx, mr, comment)

	if r.dryRun {
		r.log.Logf("[dry-run] Would close MR %d in project %s.", mr.IID, mr.ProjectID)
		return true
	}
	if err := r.backend.Close(ctx, mr); err != nil {
		r.log.Logf("Failed to close MR %d: %v", mr.IID, err)
		return false
	}
	r.result.ActionsPerformed = true
	r.log.Logf("Successfully closed MR %d in project %s.", mr.IID, mr.ProjectID)
	return true
}
