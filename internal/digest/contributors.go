package digest

import (
	"sort"

	"github.com/naka-gawa/repo-digest/internal/domain"
)

// DefaultContributorLimit is the number of contributors kept in a digest.
const DefaultContributorLimit = 5

// RankContributors counts commits per author name and returns at most limit
// authors, highest count first. Authors with equal counts stay in the order
// they were first seen.
func RankContributors(commits []domain.Commit, limit int) []domain.ContributorCount {
	if limit <= 0 {
		return []domain.ContributorCount{}
	}

	index := make(map[string]int)
	tally := make([]domain.ContributorCount, 0)
	for _, c := range commits {
		i, ok := index[c.Author]
		if !ok {
			i = len(tally)
			index[c.Author] = i
			tally = append(tally, domain.ContributorCount{Author: c.Author})
		}
		tally[i].Commits++
	}

	sort.SliceStable(tally, func(i, j int) bool {
		return tally[i].Commits > tally[j].Commits
	})

	if len(tally) > limit {
		tally = tally[:limit]
	}
	return tally
}
