package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Backend is the interface for code-hosting backends that mrsweep drives.
// Implementations handle provider-specific API calls for listing open merge
// requests, reading their conflict state, commenting, and closing them.
type Backend interface {
	// Name returns the short identifier for this backend (e.g., "gitlab", "github").
	Name() string

	// ListOpenMergeRequests returns a single page of open merge requests for
	// the repository identified by its full path (e.g., "group/project").
	ListOpenMergeRequests(ctx context.Context, repo string) ([]MergeRequest, error)

	// HasConflicts reports whether the merge request has merge conflicts.
	// When the state cannot be determined it returns true along with the error.
	HasConflicts(ctx context.Context, mr *MergeRequest) (bool, error)

	// AddComment posts a general comment on the merge request.
	AddComment(ctx context.Context, mr *MergeRequest, body string) error

	// Close sets the merge request state to closed.
	Close(ctx context.Context, mr *MergeRequest) error
}

// MergeRequest contains the metadata of an open merge request used by the sweep.
type MergeRequest struct {
	// ProjectID is the provider-specific project identifier used for API routing
	// (numeric ID for GitLab, "owner/repo" for GitHub).
	ProjectID string
	// IID is the merge request number, unique within its project.
	IID int
	// WebURL is the browser URL of the merge request.
	WebURL string
	// Author is the username of the merge request author.
	Author string
	// Title is the merge request title.
	Title string
	// Description is the merge request description/body text.
	Description string
	// Repository is the repository path the merge request was listed from.
	Repository string
}

// APIError is returned by backends and trackers when a remote API responds
// with an unexpected HTTP status.
type APIError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Service, e.StatusCode, e.Body)
}

// maxErrorBody caps how much of a non-JSON error page is kept in an APIError.
const maxErrorBody = 200

// ParseError drains resp.Body into an APIError for the named service.
// JSON bodies are kept verbatim; anything else is truncated to avoid log spam.
func ParseError(service string, resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Service: service, StatusCode: resp.StatusCode, Body: "could not read response body"}
	}

	text := string(body)
	if !json.Valid(body) && len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "... (truncated)"
	}
	return &APIError{Service: service, StatusCode: resp.StatusCode, Body: text}
}
