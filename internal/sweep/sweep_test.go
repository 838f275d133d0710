package sweep

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alanmeadows/mrsweep/internal/provider"
	"github.com/alanmeadows/mrsweep/internal/tracker/jira"
)

var testAuthors = []string{"john.doe", "jane.smith", "dev.user"}

type fixture struct {
	sweeper *Sweeper
	backend *MockBackend
	tracker *MockTracker
	out     *bytes.Buffer
}

func newFixture(t *testing.T, dryRun bool) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)
	tracker := NewMockTracker(ctrl)
	backend.EXPECT().Name().Return("gitlab").AnyTimes()

	out := &bytes.Buffer{}
	return &fixture{
		sweeper: New(backend, tracker, Options{Authors: testAuthors, DryRun: dryRun, Output: out}),
		backend: backend,
		tracker: tracker,
		out:     out,
	}
}

func testMR(author, title string) provider.MergeRequest {
	return provider.MergeRequest{
		ProjectID:  "42",
		IID:        7,
		WebURL:     "https://gitlab.com/example_org/project_a/-/merge_requests/7",
		Author:     author,
		Title:      title,
		Repository: "example_org/project_a",
	}
}

// expectList makes the backend return mrs for a single repository.
func (f *fixture) expectList(mrs ...provider.MergeRequest) {
	f.backend.EXPECT().ListOpenMergeRequests(gomock.Any(), "example_org/project_a").Return(mrs, nil)
}

func (f *fixture) run() *Result {
	return f.sweeper.Run(context.Background(), []string{"example_org/project_a"})
}

func TestRunClosesMRWhenIssueClosed(t *testing.T) {
	f := newFixture(t, false)
	mr := testMR("john.doe", "PROJ-1 add widget")
	f.expectList(mr)
	f.tracker.EXPECT().GetIssue(gomock.Any(), "PROJ-1").
		Return(&jira.Issue{Key: "PROJ-1", Status: "Closed"}, nil)

	var comment string
	gomock.InOrder(
		f.backend.EXPECT().AddComment(gomock.Any(), &mr, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *provider.MergeRequest, body string) error {
				comment = body
				return nil
			}),
		f.backend.EXPECT().Close(gomock.Any(), &mr).Return(nil).Times(1),
	)

	result := f.run()

	assert.Equal(t, "Jira ticket PROJ-1 is already closed. Closing this MR.", comment)
	assert.True(t, result.ActionsPerformed)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, ActionClosed, result.Outcomes[0].Action)
	assert.Equal(t, "PROJ-1", result.Outcomes[0].IssueKey)
	assert.Equal(t, "Closed", result.Outcomes[0].IssueStatus)
	assert.Contains(t, result.Log(), "Successfully closed MR 7 in project 42.")
	assert.Contains(t, result.Log(), "Closed MR "+mr.WebURL+" as the associated Jira ticket PROJ-1 is closed.")
}

func TestRunCommentsOnConflictedMR(t *testing.T) {
	f := newFixture(t, false)
	mr := testMR("jane.smith", "PROJ-2 fix bug")
	f.expectList(mr)
	f.tracker.EXPECT().GetIssue(gomock.Any(), "PROJ-2").
		Return(&jira.Issue{Key: "PROJ-2", Status: "Open"}, nil)
	f.backend.EXPECT().HasConflicts(gomock.Any(), &mr).Return(true, nil)
	f.backend.EXPECT().AddComment(gomock.Any(), &mr,
		"@jane.smith, please resolve the merge conflicts so this MR can be merged.").Return(nil).Times(1)

	result := f.run()

	assert.True(t, result.ActionsPerformed)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, ActionCommented, result.Outcomes[0].Action)
	assert.Contains(t, result.Log(), "Comment added to MR 7.")
}

func TestRunCleanOpenMRHasNoMutation(t *testing.T) {
	f := newFixture(t, false)
	mr := testMR("dev.user", "PROJ-3 docs")
	f.expectList(mr)
	f.tracker.EXPECT().GetIssue(gomock.Any(), "PROJ-3").
		Return(&jira.Issue{Key: "PROJ-3", Status: "Open"}, nil)
	f.backend.EXPECT().HasConflicts(gomock.Any(), &mr).Return(false, nil)

	result := f.run()

	assert.False(t, result.ActionsPerformed)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, ActionNone, result.Outcomes[0].Action)
	assert.Contains(t, result.Log(), "has no conflicts but the Jira ticket PROJ-3 is not closed.")
}

func TestRunSkipsAuthorNotInAllowList(t *testing.T) {
	f := newFixture(t, false)
	f.expectList(testMR("outsider", "PROJ-4 sneaky change"))

	result := f.run()

	assert.False(t, result.ActionsPerformed)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, ActionSkippedAuthor, result.Outcomes[0].Action)
	assert.Empty(t, result.Outcomes[0].IssueKey)
	assert.Contains(t, result.Log(), "Processing MR 7 by outsider...")
	assert.NotContains(t, result.Log(), "PROJ-4")
}

func TestRunSkipsMRWithoutIssueKey(t *testing.T) {
	f := newFixture(t, false)
	f.expectList(testMR("john.doe", "update readme"))

	result := f.run()

	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, ActionSkippedNoKey, result.Outcomes[0].Action)
	assert.Contains(t, result.Log(), "No Jira key found for MR 7. Skipping...")
}

func TestRunTrackerFailureTreatedAsNotClosed(t *testing.T) {
	f := newFixture(t, false)
	mr := testMR("john.doe", "PROJ-5 thing")
	f.expectList(mr)
	f.tracker.EXPECT().GetIssue(gomock.Any(), "PROJ-5").
		Return(nil, &provider.APIError{Service: "Jira", StatusCode: 500, Body: "oops"})
	f.backend.EXPECT().HasConflicts(gomock.Any(), &mr).Return(false, nil)

	result := f.run()

	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, jira.Unknown, result.Outcomes[0].IssueStatus)
	assert.Equal(t, ActionNone, result.Outcomes[0].Action)
	assert.Contains(t, result.Log(), "Failed to fetch Jira ticket PROJ-5: Jira API error (status 500): oops")
}

func TestRunCloseAttemptedEvenIfCommentFails(t *testing.T) {
	f := newFixture(t, false)
	mr := testMR("john.doe", "PROJ-6")
	f.expectList(mr)
	f.tracker.EXPECT().GetIssue(gomock.Any(), "PROJ-6").Return(&jira.Issue{Status: "Closed"}, nil)
	gomock.InOrder(
		f.backend.EXPECT().AddComment(gomock.Any(), &mr, gomock.Any()).Return(errors.New("forbidden")),
		f.backend.EXPECT().Close(gomock.Any(), &mr).Return(nil),
	)

	result := f.run()

	assert.True(t, result.ActionsPerformed)
	assert.Equal(t, ActionClosed, result.Outcomes[0].Action)
	assert.Contains(t, result.Log(), "Failed to add comment to MR 7: forbidden")
}

func TestRunCloseFailure(t *testing.T) {
	f := newFixture(t, false)
	mr := testMR("john.doe", "PROJ-7")
	f.expectList(mr)
	f.tracker.EXPECT().GetIssue(gomock.Any(), "PROJ-7").Return(&jira.Issue{Status: "Closed"}, nil)
	f.backend.EXPECT().AddComment(gomock.Any(), &mr, gomock.Any()).Return(nil)
	f.backend.EXPECT().Close(gomock.Any(), &mr).Return(errors.New("locked"))

	result := f.run()

	// The comment still landed, so the run did act.
	assert.True(t, result.ActionsPerformed)
	assert.Equal(t, ActionFailed, result.Outcomes[0].Action)
	assert.Contains(t, result.Log(), "Failed to close MR 7: locked")
	assert.NotContains(t, result.Log(), "as the associated Jira ticket")
}

func TestRunCommentFailureOnConflictedMR(t *testing.T) {
	f := newFixture(t, false)
	mr := testMR("john.doe", "PROJ-8")
	f.expectList(mr)
	f.tracker.EXPECT().GetIssue(gomock.Any(), "PROJ-8").Return(&jira.Issue{Status: "In Review"}, nil)
	f.backend.EXPECT().HasConflicts(gomock.Any(), &mr).Return(true, nil)
	f.backend.EXPECT().AddComment(gomock.Any(), &mr, gomock.Any()).Return(errors.New("rate limited"))

	result := f.run()

	assert.False(t, result.ActionsPerformed)
	assert.Equal(t, ActionFailed, result.Outcomes[0].Action)
}

func TestRunRepostsCommentEveryRun(t *testing.T) {
	f := newFixture(t, false)
	mr := testMR("john.doe", "PROJ-9")
	repos := []string{"example_org/project_a"}
	f.backend.EXPECT().ListOpenMergeRequests(gomock.Any(), repos[0]).Return([]provider.MergeRequest{mr}, nil).Times(2)
	f.tracker.EXPECT().GetIssue(gomock.Any(), "PROJ-9").Return(&jira.Issue{Status: "Open"}, nil).Times(2)
	f.backend.EXPECT().HasConflicts(gomock.Any(), &mr).Return(true, nil).Times(2)
	f.backend.EXPECT().AddComment(gomock.Any(), &mr, gomock.Any()).Return(nil).Times(2)

	first := f.sweeper.Run(context.Background(), repos)
	second := f.sweeper.Run(context.Background(), repos)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, ActionCommented, second.Outcomes[0].Action)
	assert.Len(t, second.Outcomes, 1, "results must not carry over between runs")
}

func TestRunProcessesInFetchOrder(t *testing.T) {
	f := newFixture(t, false)
	a := testMR("outsider", "A-1")
	a.IID = 1
	b := testMR("john.doe", "no key here")
	b.IID = 2
	c := provider.MergeRequest{ProjectID: "99", IID: 3, Author: "dev.user", Title: "B-2", Repository: "example_org/project_b"}

	f.backend.EXPECT().ListOpenMergeRequests(gomock.Any(), "example_org/project_a").Return([]provider.MergeRequest{a, b}, nil)
	f.backend.EXPECT().ListOpenMergeRequests(gomock.Any(), "example_org/project_b").Return([]provider.MergeRequest{c}, nil)
	f.tracker.EXPECT().GetIssue(gomock.Any(), "B-2").Return(&jira.Issue{Status: "Open"}, nil)
	f.backend.EXPECT().HasConflicts(gomock.Any(), &c).Return(false, nil)

	result := f.sweeper.Run(context.Background(), []string{"example_org/project_a", "example_org/project_b"})

	require.Len(t, result.Outcomes, 3)
	var iids []int
	for _, o := range result.Outcomes {
		iids = append(iids, o.MR.IID)
	}
	assert.Equal(t, []int{1, 2, 3}, iids)
	assert.Equal(t, []Action{ActionSkippedAuthor, ActionSkippedNoKey, ActionNone},
		[]Action{result.Outcomes[0].Action, result.Outcomes[1].Action, result.Outcomes[2].Action})
}

func TestRunDryRunDoesNotMutate(t *testing.T) {
	f := newFixture(t, true)
	closed := testMR("john.doe", "PROJ-10")
	conflicted := testMR("jane.smith", "PROJ-11")
	conflicted.IID = 8
	f.expectList(closed, conflicted)
	f.tracker.EXPECT().GetIssue(gomock.Any(), "PROJ-10").Return(&jira.Issue{Status: "Closed"}, nil)
	f.tracker.EXPECT().GetIssue(gomock.Any(), "PROJ-11").Return(&jira.Issue{Status: "Open"}, nil)
	f.backend.EXPECT().HasConflicts(gomock.Any(), &conflicted).Return(true, nil)

	result := f.run()

	assert.True(t, result.DryRun)
	assert.False(t, result.ActionsPerformed)
	assert.Equal(t, ActionClosed, result.Outcomes[0].Action)
	assert.Equal(t, ActionCommented, result.Outcomes[1].Action)
	assert.True(t, result.Outcomes[0].DryRun)
	assert.Contains(t, result.Log(), "[dry-run] Would close MR 7 in project 42.")
}

func TestListOpenMergeRequestsPartialSuccess(t *testing.T) {
	f := newFixture(t, false)
	good := testMR("john.doe", "x")
	f.backend.EXPECT().ListOpenMergeRequests(gomock.Any(), "example_org/missing").
		Return(nil, &provider.APIError{Service: "GitLab", StatusCode: 404, Body: "404 Project Not Found"})
	f.backend.EXPECT().ListOpenMergeRequests(gomock.Any(), "example_org/project_a").
		Return([]provider.MergeRequest{good}, nil)

	r := f.sweeper.newRun()
	mrs := r.listOpenMergeRequests(context.Background(), []string{"example_org/missing", "example_org/project_a"})

	assert.Equal(t, []provider.MergeRequest{good}, mrs)
	log := r.log.String()
	assert.Contains(t, log, "Failed to fetch MRs for example_org/missing: GitLab API error (status 404)")
	assert.Contains(t, log, "Found 1 open MRs in repository: example_org/project_a")
}

func TestConflictStatusDefaultsToTrueOnFailure(t *testing.T) {
	f := newFixture(t, false)
	mr := testMR("john.doe", "PROJ-1")
	f.backend.EXPECT().HasConflicts(gomock.Any(), &mr).Return(false, errors.New("connection refused"))

	r := f.sweeper.newRun()
	assert.True(t, r.conflictStatus(context.Background(), &mr))

	lines := r.log.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, " - Failed to check merge request conflicts: connection refused\n", lines[0])
}

func TestRunLogEchoesToOutput(t *testing.T) {
	f := newFixture(t, false)
	f.expectList()

	result := f.run()

	assert.Equal(t, f.out.String(), result.Log())
	assert.True(t, strings.HasPrefix(f.out.String(), " - Fetching open merge requests...\n"))
	assert.False(t, result.FinishedAt.Before(result.StartedAt))
}
