package digest

import (
	"time"

	"github.com/naka-gawa/repo-digest/internal/domain"
)

// Assembler builds a Digest from already fetched activity.
type Assembler struct {
	now              func() time.Time
	contributorLimit int
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock replaces the wall clock used for GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// WithContributorLimit overrides DefaultContributorLimit.
func WithContributorLimit(limit int) Option {
	return func(a *Assembler) { a.contributorLimit = limit }
}

// NewAssembler creates a new Assembler instance.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{now: time.Now, contributorLimit: DefaultContributorLimit}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble classifies, aggregates and ranks the given activity into a Digest.
// narrative is embedded verbatim; pass "" when there is none.
// It returns a *domain.MissingFieldError if meta lacks a required field.
func (a *Assembler) Assemble(meta domain.RepoMetadata, window domain.Window, commits []domain.Commit, issues []domain.Issue, prs []domain.PullRequest, narrative string) (*domain.Digest, error) {
	if err := requireFields(meta); err != nil {
		return nil, err
	}

	messages := make([]string, len(commits))
	for i, c := range commits {
		messages[i] = c.Message
	}
	titles := make([]string, len(issues))
	closed := 0
	for i, is := range issues {
		titles[i] = is.Title
		if is.State == domain.StateClosed {
			closed++
		}
	}

	return &domain.Digest{
		RepoName:         *meta.Name,
		Description:      *meta.Description,
		Stars:            *meta.StargazersCount,
		Forks:            *meta.ForksCount,
		Language:         *meta.Language,
		OpenIssuesCount:  *meta.OpenIssuesCount,
		WindowStart:      window.Start,
		WindowEnd:        window.End,
		CommitBuckets:    Aggregate(messages, ClassifierFor(domain.KindCommit), Categories(domain.KindCommit)),
		IssueBuckets:     Aggregate(titles, ClassifierFor(domain.KindIssue), Categories(domain.KindIssue)),
		TopContributors:  RankContributors(commits, a.contributorLimit),
		CommitCount:      len(commits),
		IssueCount:       len(issues),
		PullRequestCount: len(prs),
		OpenIssues:       len(issues) - closed,
		ClosedIssues:     closed,
		Narrative:        narrative,
		GeneratedAt:      a.now(),
	}, nil
}

func requireFields(meta domain.RepoMetadata) error {
	switch {
	case meta.Name == nil:
		return &domain.MissingFieldError{Field: "name"}
	case meta.Description == nil:
		return &domain.MissingFieldError{Field: "description"}
	case meta.StargazersCount == nil:
		return &domain.MissingFieldError{Field: "stargazers_count"}
	case meta.ForksCount == nil:
		return &domain.MissingFieldError{Field: "forks_count"}
	case meta.OpenIssuesCount == nil:
		return &domain.MissingFieldError{Field: "open_issues_count"}
	case meta.Language == nil:
		return &domain.MissingFieldError{Field: "language"}
	}
	return nil
}
