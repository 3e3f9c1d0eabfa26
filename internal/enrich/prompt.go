package enrich

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/repo-digest/internal/digest"
	"github.com/naka-gawa/repo-digest/internal/domain"
)

const (
	dayLayout = "2006-01-02"
	// maxDiffLen bounds the diff sent for a single commit analysis.
	maxDiffLen = 4000
)

// Cadence describes how commits were spread over the active days of a window.
type Cadence struct {
	ActiveDays    int
	MeanPerDay    float64
	MedianPerDay  float64
	MaxPerDay     float64
	BusiestDay    string
	BusiestCount  int
}

// CommitCadence computes per-day commit statistics. ok is false when there are no commits.
func CommitCadence(commits []domain.Commit) (c Cadence, ok bool) {
	perDay := make(map[string]int)
	var days []string
	for _, cm := range commits {
		day := cm.Timestamp.UTC().Format(dayLayout)
		if _, seen := perDay[day]; !seen {
			days = append(days, day)
		}
		perDay[day]++
	}
	if len(days) == 0 {
		return Cadence{}, false
	}

	data := make(stats.Float64Data, 0, len(days))
	for _, day := range days {
		data = append(data, float64(perDay[day]))
		if perDay[day] > c.BusiestCount || (perDay[day] == c.BusiestCount && day < c.BusiestDay) {
			c.BusiestDay, c.BusiestCount = day, perDay[day]
		}
	}

	var err error
	if c.MeanPerDay, err = stats.Mean(data); err != nil {
		return Cadence{}, false
	}
	if c.MedianPerDay, err = stats.Median(data); err != nil {
		return Cadence{}, false
	}
	if c.MaxPerDay, err = stats.Max(data); err != nil {
		return Cadence{}, false
	}
	c.ActiveDays = len(days)
	return c, true
}

// BuildContext describes the activity of a window as a prompt asking for a
// summary, key insights, trend analysis and recommendations.
func BuildContext(meta domain.RepoMetadata, window domain.Window, commits []domain.Commit, issues []domain.Issue, prs []domain.PullRequest) string {
	var b strings.Builder

	b.WriteString("Generate newsletter content for a GitHub repository based on its recent activity.\n")
	b.WriteString("Provide: a concise summary, key insights (one per line), trend analysis of commit activity and issue management, and actionable recommendations for maintainers.\n\n")

	fmt.Fprintf(&b, "Repository: %s\n", meta.FullName)
	fmt.Fprintf(&b, "Description: %s\n", deref(meta.Description, "n/a"))
	fmt.Fprintf(&b, "Language: %s\n", deref(meta.Language, "n/a"))
	fmt.Fprintf(&b, "Stars: %d, Forks: %d, Open issues: %d\n",
		deref(meta.StargazersCount, 0), deref(meta.ForksCount, 0), deref(meta.OpenIssuesCount, 0))
	fmt.Fprintf(&b, "Window: %s to %s\n\n", window.Start.Format(dayLayout), window.End.Format(dayLayout))

	closed := 0
	titles := make([]string, len(issues))
	for i, is := range issues {
		titles[i] = is.Title
		if is.State == domain.StateClosed {
			closed++
		}
	}
	messages := make([]string, len(commits))
	for i, c := range commits {
		messages[i] = firstLine(c.Message)
	}

	fmt.Fprintf(&b, "Commits: %d\n", len(commits))
	fmt.Fprintf(&b, "Issues: %d (%d open, %d closed)\n", len(issues), len(issues)-closed, closed)
	fmt.Fprintf(&b, "Pull requests: %d\n", len(prs))

	if c, ok := CommitCadence(commits); ok {
		fmt.Fprintf(&b, "Commit cadence: %d active days, mean %.1f, median %.1f, max %.0f commits per day (busiest %s)\n",
			c.ActiveDays, c.MeanPerDay, c.MedianPerDay, c.MaxPerDay, c.BusiestDay)
	}

	writeBuckets(&b, "Commit activity", digest.Aggregate(messages, digest.ClassifierFor(domain.KindCommit), digest.Categories(domain.KindCommit)))
	writeBuckets(&b, "Issue activity", digest.Aggregate(titles, digest.ClassifierFor(domain.KindIssue), digest.Categories(domain.KindIssue)))

	if top := digest.RankContributors(commits, digest.DefaultContributorLimit); len(top) > 0 {
		b.WriteString("\nTop contributors:\n")
		for _, c := range top {
			fmt.Fprintf(&b, "- %s: %d commits\n", c.Author, c.Commits)
		}
	}

	if len(prs) > 0 {
		b.WriteString("\nPull requests:\n")
		for _, pr := range prs {
			fmt.Fprintf(&b, "- #%d %s (%s)\n", pr.Number, pr.Title, pr.State)
		}
	}
	return b.String()
}

// AnalyzeCommit asks e for a structured review of a single commit.
func AnalyzeCommit(ctx context.Context, e Enricher, commit domain.Commit, diff string) (string, error) {
	diff = truncateDiff(diff)
	prompt := fmt.Sprintf(`Analyze the following commit:

Commit message: %s

Git diff:
%s

Provide a structured analysis of this commit, including:
1. A brief summary of the main changes
2. The purpose or motivation behind the changes
3. Any potential impact on the codebase or functionality
4. Suggestions for code review or testing focus
`, commit.Message, diff)

	analysis, err := e.Enrich(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("analyze commit %s: %w", shortSHA(commit.SHA), err)
	}
	return fmt.Sprintf("### Commit %s by %s\n\n%s", shortSHA(commit.SHA), commit.Author, analysis), nil
}

// truncateDiff cuts diff to at most maxDiffLen bytes without splitting a rune.
func truncateDiff(diff string) string {
	if len(diff) <= maxDiffLen {
		return diff
	}
	cut := maxDiffLen
	for cut > 0 && !utf8.RuneStart(diff[cut]) {
		cut--
	}
	return diff[:cut] + "\n[diff truncated]"
}

func writeBuckets(b *strings.Builder, title string, buckets []domain.Bucket) {
	if len(buckets) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, bucket := range buckets {
		fmt.Fprintf(b, "- %s: %s\n", bucket.Category, bucket.Summary)
	}
}

func deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
