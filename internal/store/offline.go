package store

import (
	"context"
	"fmt"

	"github.com/naka-gawa/repo-digest/internal/domain"
	"github.com/naka-gawa/repo-digest/internal/gateway"
)

// Offline serves a loaded snapshot through the gateway.Fetcher interface.
type Offline struct {
	snap *Snapshot
}

var _ gateway.Fetcher = (*Offline)(nil)

// NewOffline loads the latest snapshot of repo and returns a Fetcher over it.
func NewOffline(s *Store, repo gateway.RepoRef) (*Offline, error) {
	snap, err := s.LoadLatest(repo)
	if err != nil {
		return nil, err
	}
	return &Offline{snap: snap}, nil
}

func (o *Offline) FetchRepository(_ context.Context, _ gateway.RepoRef) (domain.RepoMetadata, error) {
	return gateway.Normalize(o.snap.RepoInfo), nil
}

func (o *Offline) FetchCommits(_ context.Context, _ gateway.RepoRef, window domain.Window) ([]domain.Commit, error) {
	out := make([]domain.Commit, 0, len(o.snap.Commits))
	for _, c := range o.snap.Commits {
		if window.Contains(c.Timestamp) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (o *Offline) FetchIssues(_ context.Context, _ gateway.RepoRef, window domain.Window) ([]domain.Issue, error) {
	out := make([]domain.Issue, 0, len(o.snap.Issues))
	for _, is := range o.snap.Issues {
		if window.Contains(is.CreatedAt) {
			out = append(out, is)
		}
	}
	return out, nil
}

func (o *Offline) FetchPullRequests(_ context.Context, _ gateway.RepoRef, window domain.Window) ([]domain.PullRequest, error) {
	out := make([]domain.PullRequest, 0, len(o.snap.PullRequests))
	for _, pr := range o.snap.PullRequests {
		if window.Contains(pr.CreatedAt) {
			out = append(out, pr)
		}
	}
	return out, nil
}

// FetchCommitDiff is unsupported offline: snapshots do not carry diffs.
func (o *Offline) FetchCommitDiff(_ context.Context, _ gateway.RepoRef, sha string) (string, error) {
	return "", fmt.Errorf("commit diff for %s is not available offline", sha)
}
