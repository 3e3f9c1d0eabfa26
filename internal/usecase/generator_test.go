package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/repo-digest/internal/digest"
	"github.com/naka-gawa/repo-digest/internal/domain"
	"github.com/naka-gawa/repo-digest/internal/enrich"
	"github.com/naka-gawa/repo-digest/internal/gateway"
	"github.com/naka-gawa/repo-digest/internal/store"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchRepository(ctx context.Context, repo gateway.RepoRef) (domain.RepoMetadata, error) {
	args := m.Called(ctx, repo)
	return args.Get(0).(domain.RepoMetadata), args.Error(1)
}

func (m *mockFetcher) FetchCommits(ctx context.Context, repo gateway.RepoRef, window domain.Window) ([]domain.Commit, error) {
	args := m.Called(ctx, repo, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Commit), args.Error(1)
}

func (m *mockFetcher) FetchIssues(ctx context.Context, repo gateway.RepoRef, window domain.Window) ([]domain.Issue, error) {
	args := m.Called(ctx, repo, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Issue), args.Error(1)
}

func (m *mockFetcher) FetchPullRequests(ctx context.Context, repo gateway.RepoRef, window domain.Window) ([]domain.PullRequest, error) {
	args := m.Called(ctx, repo, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PullRequest), args.Error(1)
}

func (m *mockFetcher) FetchCommitDiff(ctx context.Context, repo gateway.RepoRef, sha string) (string, error) {
	args := m.Called(ctx, repo, sha)
	return args.String(0), args.Error(1)
}

// mockSaver records saved snapshots.
type mockSaver struct {
	mock.Mock
}

func (m *mockSaver) Save(snap store.Snapshot) (string, error) {
	args := m.Called(snap)
	return args.String(0), args.Error(1)
}

var (
	repo   = gateway.RepoRef{Owner: "acme", Name: "widgets"}
	window = domain.Window{
		Start: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 5, 7, 23, 59, 59, 0, time.UTC),
	}
	fixedNow = time.Date(2024, 5, 8, 9, 0, 0, 0, time.UTC)
)

func ptr[T any](v T) *T { return &v }

func metadata() domain.RepoMetadata {
	return domain.RepoMetadata{
		FullName:        "acme/widgets",
		Name:            ptr("widgets"),
		Description:     ptr("Widgets"),
		StargazersCount: ptr(10),
		ForksCount:      ptr(1),
		OpenIssuesCount: ptr(2),
		Language:        ptr("Go"),
	}
}

var (
	commits = []domain.Commit{
		{SHA: "c1", Message: "Fix login bug", Author: "alice", Timestamp: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)},
		{SHA: "c2", Message: "Add export", Author: "bob", Timestamp: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)},
	}
	issues = []domain.Issue{
		{Number: 1, Title: "Slow search", State: domain.StateClosed},
	}
	prs = []domain.PullRequest{{Issue: domain.Issue{Number: 2, Title: "Add export"}}}
)

func newFetcher(meta domain.RepoMetadata, commitErr error) *mockFetcher {
	f := new(mockFetcher)
	f.On("FetchRepository", mock.Anything, repo).Return(meta, nil)
	if commitErr != nil {
		f.On("FetchCommits", mock.Anything, repo, window).Return(nil, commitErr)
	} else {
		f.On("FetchCommits", mock.Anything, repo, window).Return(commits, nil)
	}
	f.On("FetchIssues", mock.Anything, repo, window).Return(issues, nil)
	f.On("FetchPullRequests", mock.Anything, repo, window).Return(prs, nil)
	return f
}

func fixedAssembler() *digest.Assembler {
	return digest.NewAssembler(digest.WithClock(func() time.Time { return fixedNow }))
}

func TestGenerator_Generate(t *testing.T) {
	fetcher := newFetcher(metadata(), nil)
	saver := new(mockSaver)
	saver.On("Save", mock.MatchedBy(func(s store.Snapshot) bool {
		return s.Repo == "acme/widgets" && len(s.Commits) == 2 && len(s.Issues) == 1 && len(s.PullRequests) == 1
	})).Return("github_data/acme_widgets.json", nil)

	g := NewGenerator(fetcher, zerolog.Nop(), WithSnapshotSaver(saver), WithAssembler(fixedAssembler()))

	d, err := g.Generate(context.Background(), Request{Repo: repo, Window: window})
	require.NoError(t, err)

	assert.Equal(t, "widgets", d.RepoName)
	assert.Equal(t, 2, d.CommitCount)
	assert.Equal(t, 1, d.IssueCount)
	assert.Equal(t, 1, d.PullRequestCount)
	assert.Equal(t, 1, d.ClosedIssues)
	assert.Equal(t, []domain.Bucket{
		{Category: domain.CategoryBugFix, Summary: "Fix login bug"},
		{Category: domain.CategoryFeatureAddition, Summary: "Add export"},
	}, d.CommitBuckets)
	assert.Equal(t, []domain.Bucket{
		{Category: domain.CategoryPerformanceIssue, Summary: "Slow search"},
	}, d.IssueBuckets)
	assert.Empty(t, d.Narrative)
	assert.Equal(t, fixedNow, d.GeneratedAt)

	fetcher.AssertExpectations(t)
	saver.AssertExpectations(t)
}

func TestGenerator_Enrichment(t *testing.T) {
	testCases := []struct {
		name           string
		analyze        int
		enricher       enrich.Enricher
		diffErr        error
		expected       string
		expectDiffCall bool
	}{
		{
			name:     "narrative only",
			enricher: enrich.Static{Text: "A busy week."},
			expected: "A busy week.",
		},
		{
			name:    "narrative with commit analysis",
			analyze: 1,
			enricher: enrich.EnricherFunc(func(_ context.Context, activity string) (string, error) {
				if strings.HasPrefix(activity, "Analyze the following commit") {
					return "Solid fix.", nil
				}
				return "A busy week.", nil
			}),
			expected:       "A busy week.\n\n### Commit c1 by alice\n\nSolid fix.",
			expectDiffCall: true,
		},
		{
			name:           "failed diff is skipped",
			analyze:        1,
			enricher:       enrich.Static{Text: "A busy week."},
			diffErr:        errors.New("not found"),
			expected:       "A busy week.",
			expectDiffCall: true,
		},
		{
			name: "enrichment failure falls back to placeholder",
			enricher: enrich.EnricherFunc(func(context.Context, string) (string, error) {
				return "", errors.New("llm unavailable")
			}),
			expected: enrich.Placeholder,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := newFetcher(metadata(), nil)
			if tc.expectDiffCall {
				fetcher.On("FetchCommitDiff", mock.Anything, repo, "c1").Return("@@ diff @@", tc.diffErr)
			}
			g := NewGenerator(fetcher, zerolog.Nop(), WithEnricher(tc.enricher), WithAssembler(fixedAssembler()))

			d, err := g.Generate(context.Background(), Request{Repo: repo, Window: window, Enrich: true, AnalyzeCommits: tc.analyze})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, d.Narrative)
			fetcher.AssertExpectations(t)
		})
	}
}

func TestGenerator_EnrichDisabled(t *testing.T) {
	called := false
	e := enrich.EnricherFunc(func(context.Context, string) (string, error) {
		called = true
		return "unused", nil
	})
	g := NewGenerator(newFetcher(metadata(), nil), zerolog.Nop(), WithEnricher(e))

	d, err := g.Generate(context.Background(), Request{Repo: repo, Window: window})
	require.NoError(t, err)
	assert.False(t, called)
	assert.Empty(t, d.Narrative)
}

func TestGenerator_Errors(t *testing.T) {
	t.Run("fetch failure aborts", func(t *testing.T) {
		g := NewGenerator(newFetcher(metadata(), errors.New("github api error")), zerolog.Nop())

		d, err := g.Generate(context.Background(), Request{Repo: repo, Window: window})
		assert.Nil(t, d)
		assert.ErrorContains(t, err, "github api error")
	})

	t.Run("missing metadata field is surfaced", func(t *testing.T) {
		meta := metadata()
		meta.Language = nil
		g := NewGenerator(newFetcher(meta, nil), zerolog.Nop())

		d, err := g.Generate(context.Background(), Request{Repo: repo, Window: window})
		assert.Nil(t, d)
		assert.True(t, errors.Is(err, domain.ErrMissingField))
	})

	t.Run("snapshot failure is not fatal", func(t *testing.T) {
		saver := new(mockSaver)
		saver.On("Save", mock.Anything).Return("", errors.New("disk full"))
		g := NewGenerator(newFetcher(metadata(), nil), zerolog.Nop(), WithSnapshotSaver(saver))

		d, err := g.Generate(context.Background(), Request{Repo: repo, Window: window})
		require.NoError(t, err)
		assert.NotNil(t, d)
		saver.AssertExpectations(t)
	})
}
