package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alanmeadows/mrsweep/internal/provider"
)

// DefaultBaseURL is the GitLab REST API root.
const DefaultBaseURL = "https://gitlab.com/api/v4"

// pageSize is the number of merge requests fetched per repository. Only a
// single page is requested.
const pageSize = 200

// Backend implements provider.Backend for GitLab.
type Backend struct {
	token      string
	httpClient *http.Client
	baseURL    string // override for testing
}

// NewBackend creates a new GitLab backend authenticated with a personal access token.
func NewBackend(token string) *Backend {
	return &Backend{
		token:      token,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Name returns "gitlab".
func (b *Backend) Name() string {
	return "gitlab"
}

// ListOpenMergeRequests resolves the repository path to its numeric project ID
// and returns the first page of open merge requests for that project.
func (b *Backend) ListOpenMergeRequests(ctx context.Context, repo string) ([]provider.MergeRequest, error) {
	project, err := b.getProject(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch project details for %s: %w", repo, err)
	}

	path := fmt.Sprintf("/projects/%d/merge_requests?state=opened&per_page=%d", project.ID, pageSize)
	resp, err := b.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch MRs for %s: %w", repo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch MRs for %s: %w", repo, provider.ParseError("GitLab", resp))
	}

	var glMRs []glMergeRequest
	if err := json.NewDecoder(resp.Body).Decode(&glMRs); err != nil {
		return nil, fmt.Errorf("failed to decode merge requests response: %w", err)
	}

	mrs := make([]provider.MergeRequest, 0, len(glMRs))
	for _, glMR := range glMRs {
		mr := mapMergeRequest(glMR, repo)
		if mr.ProjectID == "0" {
			mr.ProjectID = strconv.Itoa(project.ID)
		}
		mrs = append(mrs, mr)
	}
	return mrs, nil
}

// HasConflicts fetches the merge request detail and returns its has_conflicts
// flag. An absent flag, or a failed fetch, reports true.
func (b *Backend) HasConflicts(ctx context.Context, mr *provider.MergeRequest) (bool, error) {
	resp, err := b.doRequest(ctx, http.MethodGet, mrPath(mr), nil)
	if err != nil {
		return true, fmt.Errorf("failed to check merge request conflicts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return true, fmt.Errorf("failed to check merge request conflicts: %w", provider.ParseError("GitLab", resp))
	}

	var glMR glMergeRequest
	if err := json.NewDecoder(resp.Body).Decode(&glMR); err != nil {
		return true, fmt.Errorf("failed to decode merge request response: %w", err)
	}

	if glMR.HasConflicts == nil {
		slog.Debug("has_conflicts missing from merge request, assuming conflicted",
			"project", mr.ProjectID, "iid", mr.IID)
		return true, nil
	}
	return *glMR.HasConflicts, nil
}

// AddComment posts a note on the merge request. GitLab answers 201 on success.
func (b *Backend) AddComment(ctx context.Context, mr *provider.MergeRequest, body string) error {
	resp, err := b.doRequest(ctx, http.MethodPost, mrPath(mr)+"/notes", glNoteCreate{Body: body})
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return provider.ParseError("GitLab", resp)
	}
	return nil
}

// Close sets the merge request state to closed.
func (b *Backend) Close(ctx context.Context, mr *provider.MergeRequest) error {
	resp, err := b.doRequest(ctx, http.MethodPut, mrPath(mr), glStateEvent{StateEvent: "close"})
	if err != nil {
		return fmt.Errorf("failed to close merge request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return provider.ParseError("GitLab", resp)
	}
	return nil
}

// getProject looks up a project by its URL-encoded full path.
func (b *Backend) getProject(ctx context.Context, repo string) (*glProject, error) {
	resp, err := b.doRequest(ctx, http.MethodGet, "/projects/"+url.PathEscape(repo), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, provider.ParseError("GitLab", resp)
	}

	var project glProject
	if err := json.NewDecoder(resp.Body).Decode(&project); err != nil {
		return nil, fmt.Errorf("failed to decode project response: %w", err)
	}
	return &project, nil
}

// doRequest performs a single authenticated request against the GitLab API.
// The caller owns the response body.
func (b *Backend) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	baseURL := b.baseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("PRIVATE-TOKEN", b.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func mrPath(mr *provider.MergeRequest) string {
	return fmt.Sprintf("/projects/%s/merge_requests/%d", url.PathEscape(mr.ProjectID), mr.IID)
}

func mapMergeRequest(glMR glMergeRequest, repo string) provider.MergeRequest {
	return provider.MergeRequest{
		ProjectID:   strconv.Itoa(glMR.ProjectID),
		IID:         glMR.IID,
		WebURL:      glMR.WebURL,
		Author:      glMR.Author.Username,
		Title:       glMR.Title,
		Description: glMR.Description,
		Repository:  repo,
	}
}
