package jira

// Unknown is substituted for any issue attribute the tracker did not report,
// and for every attribute when the issue could not be fetched.
const Unknown = "Unknown"

// StatusClosed is the only status value that marks an issue as resolved.
const StatusClosed = "Closed"

// Issue is the subset of a Jira issue the sweep acts on.
type Issue struct {
	Key                string
	Status             string
	CreatorDisplayName string
	CreatorAccountID   string
}

// IsClosed reports whether the issue's status is exactly "Closed".
func (i *Issue) IsClosed() bool {
	return i != nil && i.Status == StatusClosed
}

// UnknownIssue returns the sentinel issue used when the tracker lookup fails.
func UnknownIssue(key string) *Issue {
	return &Issue{
		Key:                key,
		Status:             Unknown,
		CreatorDisplayName: Unknown,
		CreatorAccountID:   Unknown,
	}
}

// jiraIssue maps to the Jira issue JSON response. Nested objects are pointers
// so that absent fields can be told apart from empty ones.
type jiraIssue struct {
	Key    string      `json:"key"`
	Fields *jiraFields `json:"fields"`
}

type jiraFields struct {
	Status  *jiraStatus `json:"status"`
	Creator *jiraUser   `json:"creator"`
}

type jiraStatus struct {
	Name *string `json:"name"`
}

type jiraUser struct {
	DisplayName *string `json:"displayName"`
	AccountID   *string `json:"accountId"`
}
