// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// Commit is a single commit in the digest window.
type Commit struct {
	SHA       string    `json:"sha"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}

// IssueState is the lifecycle state reported by GitHub for issues and pull requests.
type IssueState string

const (
	StateOpen   IssueState = "open"
	StateClosed IssueState = "closed"
)

// Issue is a GitHub issue opened in the digest window.
type Issue struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	State     IssueState `json:"state"`
	Author    string     `json:"author"`
	CreatedAt time.Time  `json:"created_at"`
	Body      string     `json:"body,omitempty"`
}

// PullRequest has the same shape as Issue plus whether a diff is available.
type PullRequest struct {
	Issue
	HasDiff bool `json:"has_diff"`
}

// RepoMetadata describes the repository a digest is built for.
// Pointer fields are nil when the upstream response did not carry them.
type RepoMetadata struct {
	FullName        string  `json:"full_name"`
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	StargazersCount *int    `json:"stargazers_count"`
	ForksCount      *int    `json:"forks_count"`
	OpenIssuesCount *int    `json:"open_issues_count"`
	Language        *string `json:"language"`
}

// Window is the inclusive [Start, End] range bounding the events of a digest.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, boundaries included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
