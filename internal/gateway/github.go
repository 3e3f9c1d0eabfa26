// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/rs/zerolog"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/repo-digest/internal/domain"
)

const (
	// UnknownName replaces a repository name missing from the API response.
	UnknownName = "Unknown"
	// NoDescription replaces a repository description missing from the API response.
	NoDescription = "No description provided."
	// NoChanges is returned by FetchCommitDiff for commits without file changes.
	NoChanges = "No changes found in this commit."

	searchDateLayout = "2006-01-02"
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchRepository(ctx context.Context, repo RepoRef) (domain.RepoMetadata, error)
	FetchCommits(ctx context.Context, repo RepoRef, window domain.Window) ([]domain.Commit, error)
	FetchIssues(ctx context.Context, repo RepoRef, window domain.Window) ([]domain.Issue, error)
	FetchPullRequests(ctx context.Context, repo RepoRef, window domain.Window) ([]domain.PullRequest, error)
	FetchCommitDiff(ctx context.Context, repo RepoRef, sha string) (string, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        zerolog.Logger
}

// pullRequestSearchQuery lists the pull requests matched by a search query.
type pullRequestSearchQuery struct {
	Search struct {
		PageInfo struct {
			HasNextPage bool
			EndCursor   githubv4.String
		}
		Edges []struct {
			Node struct {
				Typename    string `graphql:"__typename"`
				PullRequest struct {
					Number       int
					Title        string
					Body         string
					State        githubv4.PullRequestState
					CreatedAt    githubv4.DateTime
					ChangedFiles int
					Author       struct {
						Login string
					}
				} `graphql:"... on PullRequest"`
			}
		}
	} `graphql:"search(query: $query, type: ISSUE, first: 50, after: $cursor)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, logger zerolog.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

// FetchRepository fetches repository metadata. A missing name or description
// is replaced with a placeholder; every other field is passed through as is.
func (g *GitHubGateway) FetchRepository(ctx context.Context, repo RepoRef) (domain.RepoMetadata, error) {
	g.logger.Debug().Str("repo", repo.String()).Msg("fetching repository metadata")
	r, _, err := g.restClient.Repositories.Get(ctx, repo.Owner, repo.Name)
	if err != nil {
		return domain.RepoMetadata{}, fmt.Errorf("failed to get repository %s: %w", repo, err)
	}

	meta := domain.RepoMetadata{
		FullName:        r.GetFullName(),
		Name:            r.Name,
		Description:     r.Description,
		StargazersCount: r.StargazersCount,
		ForksCount:      r.ForksCount,
		OpenIssuesCount: r.OpenIssuesCount,
		Language:        r.Language,
	}
	if meta.FullName == "" {
		meta.FullName = repo.String()
	}
	return Normalize(meta), nil
}

// Normalize fills in the placeholders for a missing name or description.
func Normalize(meta domain.RepoMetadata) domain.RepoMetadata {
	if meta.Name == nil || *meta.Name == "" {
		name := UnknownName
		meta.Name = &name
	}
	if meta.Description == nil || *meta.Description == "" {
		desc := NoDescription
		meta.Description = &desc
	}
	return meta
}

func (g *GitHubGateway) FetchCommits(ctx context.Context, repo RepoRef, window domain.Window) ([]domain.Commit, error) {
	g.logger.Debug().Str("repo", repo.String()).Msg("[1/3] fetching commits")
	opts := &github.CommitsListOptions{
		Since:       window.Start,
		Until:       window.End,
		ListOptions: github.ListOptions{PerPage: 100},
	}
	commits := make([]domain.Commit, 0)
	for {
		page, resp, err := g.restClient.Repositories.ListCommits(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list commits with REST API: %w", err)
		}
		for _, c := range page {
			author := c.GetCommit().GetAuthor()
			commits = append(commits, domain.Commit{
				SHA:       c.GetSHA(),
				Message:   c.GetCommit().GetMessage(),
				Author:    author.GetName(),
				Timestamp: author.GetDate().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debug().Int("page", resp.NextPage).Msg("fetching next page of commits")
	}
	g.logger.Debug().Int("count", len(commits)).Msg("completed fetching commits")
	return commits, nil
}

// FetchIssues lists issues created inside the window. Pull requests, which
// the issues endpoint also returns, are skipped.
func (g *GitHubGateway) FetchIssues(ctx context.Context, repo RepoRef, window domain.Window) ([]domain.Issue, error) {
	g.logger.Debug().Str("repo", repo.String()).Msg("[2/3] fetching issues")
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		Since:       window.Start,
		ListOptions: github.ListOptions{PerPage: 100},
	}
	issues := make([]domain.Issue, 0)
	for {
		page, resp, err := g.restClient.Issues.ListByRepo(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list issues with REST API: %w", err)
		}
		for _, is := range page {
			if is.IsPullRequest() {
				continue
			}
			created := is.GetCreatedAt().Time
			if !window.Contains(created) {
				continue
			}
			issues = append(issues, domain.Issue{
				Number:    is.GetNumber(),
				Title:     is.GetTitle(),
				State:     domain.IssueState(is.GetState()),
				Author:    is.GetUser().GetLogin(),
				CreatedAt: created,
				Body:      is.GetBody(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debug().Int("page", resp.NextPage).Msg("fetching next page of issues")
	}
	g.logger.Debug().Int("count", len(issues)).Msg("completed fetching issues")
	return issues, nil
}

// FetchPullRequests searches pull requests created inside the window using GraphQL.
func (g *GitHubGateway) FetchPullRequests(ctx context.Context, repo RepoRef, window domain.Window) ([]domain.PullRequest, error) {
	g.logger.Debug().Str("repo", repo.String()).Msg("[3/3] fetching pull requests")
	query := fmt.Sprintf("repo:%s is:pr created:%s..%s", repo, window.Start.Format(searchDateLayout), window.End.Format(searchDateLayout))
	variables := map[string]interface{}{"query": githubv4.String(query), "cursor": (*githubv4.String)(nil)}

	prs := make([]domain.PullRequest, 0)
	for {
		var q pullRequestSearchQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to execute GraphQL query for pull requests: %w", err)
		}
		for _, edge := range q.Search.Edges {
			node := edge.Node.PullRequest
			if edge.Node.Typename != "PullRequest" {
				continue
			}
			if !window.Contains(node.CreatedAt.Time) {
				continue
			}
			state := domain.StateClosed
			if node.State == githubv4.PullRequestStateOpen {
				state = domain.StateOpen
			}
			prs = append(prs, domain.PullRequest{
				Issue: domain.Issue{
					Number:    node.Number,
					Title:     node.Title,
					State:     state,
					Author:    node.Author.Login,
					CreatedAt: node.CreatedAt.Time,
					Body:      node.Body,
				},
				HasDiff: node.ChangedFiles > 0,
			})
		}
		if !q.Search.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Search.PageInfo.EndCursor)
		g.logger.Debug().Msg("fetching next page of pull requests")
	}
	g.logger.Debug().Str("query", query).Int("count", len(prs)).Msg("completed fetching pull requests")
	return prs, nil
}

// FetchCommitDiff returns the patch of the first file changed by a commit.
func (g *GitHubGateway) FetchCommitDiff(ctx context.Context, repo RepoRef, sha string) (string, error) {
	c, _, err := g.restClient.Repositories.GetCommit(ctx, repo.Owner, repo.Name, sha, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get commit %s: %w", sha, err)
	}
	if len(c.Files) == 0 {
		return NoChanges, nil
	}
	return c.Files[0].GetPatch(), nil
}
