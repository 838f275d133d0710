package github

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	gh "github.com/google/go-github/v82/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/alanmeadows/mrsweep/internal/provider"
)

// pageSize is the largest page GitHub serves. Only a single page is requested.
const pageSize = 100

// Backend implements provider.Backend for GitHub pull requests.
type Backend struct {
	client     *gh.Client
	gqlOnce    sync.Once
	gqlClient  *githubv4.Client
	token      string
	graphqlURL string // override for testing
}

// NewBackend creates a new GitHub backend authenticated with token.
func NewBackend(token string) *Backend {
	return &Backend{
		client: gh.NewClient(nil).WithAuthToken(token),
		token:  token,
	}
}

// Name returns "github".
func (b *Backend) Name() string {
	return "github"
}

// ListOpenMergeRequests returns the first page of open pull requests of
// repo, given as "owner/name".
func (b *Backend) ListOpenMergeRequests(ctx context.Context, repo string) ([]provider.MergeRequest, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	prs, _, err := b.client.PullRequests.List(ctx, owner, name, &gh.PullRequestListOptions{
		State:       "open",
		ListOptions: gh.ListOptions{PerPage: pageSize},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch PRs for %s: %w", repo, apiError(err))
	}

	mrs := make([]provider.MergeRequest, 0, len(prs))
	for _, pr := range prs {
		mrs = append(mrs, provider.MergeRequest{
			ProjectID:   owner + "/" + name,
			IID:         pr.GetNumber(),
			WebURL:      pr.GetHTMLURL(),
			Author:      pr.GetUser().GetLogin(),
			Title:       pr.GetTitle(),
			Description: pr.GetBody(),
			Repository:  repo,
		})
	}
	return mrs, nil
}

// HasConflicts queries the pull request's mergeable state over GraphQL.
// REST reports mergeability as a nullable bool that is often unset; GraphQL
// distinguishes CONFLICTING from UNKNOWN. UNKNOWN is treated as conflicted.
func (b *Backend) HasConflicts(ctx context.Context, mr *provider.MergeRequest) (bool, error) {
	owner, name, err := splitRepo(mr.ProjectID)
	if err != nil {
		return true, err
	}

	var query struct {
		Repository struct {
			PullRequest struct {
				Mergeable githubv4.MergeableState
			} `graphql:"pullRequest(number: $number)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}
	vars := map[string]any{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(name),
		"number": githubv4.Int(mr.IID),
	}

	if err := b.getGraphQLClient(ctx).Query(ctx, &query, vars); err != nil {
		return true, fmt.Errorf("failed to check merge request conflicts: %w", err)
	}

	return query.Repository.PullRequest.Mergeable != githubv4.MergeableStateMergeable, nil
}

// AddComment posts a general comment on the pull request.
func (b *Backend) AddComment(ctx context.Context, mr *provider.MergeRequest, body string) error {
	owner, name, err := splitRepo(mr.ProjectID)
	if err != nil {
		return err
	}

	_, _, err = b.client.Issues.CreateComment(ctx, owner, name, mr.IID, &gh.IssueComment{
		Body: gh.Ptr(body),
	})
	if err != nil {
		return fmt.Errorf("failed to post comment: %w", apiError(err))
	}
	return nil
}

// Close sets the pull request state to closed.
func (b *Backend) Close(ctx context.Context, mr *provider.MergeRequest) error {
	owner, name, err := splitRepo(mr.ProjectID)
	if err != nil {
		return err
	}

	_, _, err = b.client.PullRequests.Edit(ctx, owner, name, mr.IID, &gh.PullRequest{
		State: gh.Ptr("closed"),
	})
	if err != nil {
		return fmt.Errorf("failed to close pull request: %w", apiError(err))
	}
	return nil
}

// getGraphQLClient lazily builds the GraphQL client.
func (b *Backend) getGraphQLClient(ctx context.Context) *githubv4.Client {
	b.gqlOnce.Do(func() {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: b.token})
		httpClient := oauth2.NewClient(ctx, ts)
		if b.graphqlURL != "" {
			b.gqlClient = githubv4.NewEnterpriseClient(b.graphqlURL, httpClient)
		} else {
			b.gqlClient = githubv4.NewClient(httpClient)
		}
	})
	return b.gqlClient
}

// splitRepo splits "owner/name" into its parts.
func splitRepo(repo string) (string, string, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid GitHub repository %q: expected owner/name", repo)
	}
	return owner, name, nil
}

// apiError converts go-github error responses to provider.APIError so both
// backends report failures in the same shape.
func apiError(err error) error {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return &provider.APIError{
			Service:    "GitHub",
			StatusCode: ghErr.Response.StatusCode,
			Body:       ghErr.Message,
		}
	}
	return err
}
