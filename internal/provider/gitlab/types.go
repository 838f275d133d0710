package gitlab

// glProject maps to the subset of the GitLab project JSON response we use.
type glProject struct {
	ID                int    `json:"id"`
	PathWithNamespace string `json:"path_with_namespace"`
}

// glMergeRequest maps to the GitLab merge request JSON response.
type glMergeRequest struct {
	ID           int      `json:"id"`
	IID          int      `json:"iid"`
	ProjectID    int      `json:"project_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	State        string   `json:"state"`
	WebURL       string   `json:"web_url"`
	Author       glAuthor `json:"author"`
	HasConflicts *bool    `json:"has_conflicts,omitempty"`
}

// glAuthor represents the author object embedded in merge requests.
type glAuthor struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// glNoteCreate is the request body for creating a merge request note.
type glNoteCreate struct {
	Body string `json:"body"`
}

// glStateEvent is the request body for changing merge request state.
type glStateEvent struct {
	StateEvent string `json:"state_event"`
}
