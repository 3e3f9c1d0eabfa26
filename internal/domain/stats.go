package domain

import "time"

// ContributorCount is one entry of the ranked contributor list.
type ContributorCount struct {
	Author  string `json:"author"`
	Commits int    `json:"commits"`
}

// Digest is the assembled summary of repository activity for a window.
// It is built once by the assembler and never mutated afterwards.
type Digest struct {
	RepoName        string `json:"repo_name"`
	Description     string `json:"description"`
	Stars           int    `json:"stars"`
	Forks           int    `json:"forks"`
	Language        string `json:"language"`
	OpenIssuesCount int    `json:"open_issues_count"`

	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`

	CommitBuckets   []Bucket           `json:"commit_buckets"`
	IssueBuckets    []Bucket           `json:"issue_buckets"`
	TopContributors []ContributorCount `json:"top_contributors"`

	CommitCount      int `json:"commit_count"`
	IssueCount       int `json:"issue_count"`
	PullRequestCount int `json:"pull_request_count"`
	OpenIssues       int `json:"open_issues"`
	ClosedIssues     int `json:"closed_issues"`

	Narrative   string    `json:"narrative,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}
