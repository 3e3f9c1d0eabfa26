package digest

import (
	"fmt"
	"strings"

	"github.com/naka-gawa/repo-digest/internal/domain"
)

// Aggregate groups texts by category and summarizes each non-empty group.
// Buckets come out in the given category order; texts keep their input order.
func Aggregate(texts []string, classify Classifier, order []domain.Category) []domain.Bucket {
	groups := make(map[domain.Category][]string)
	for _, text := range texts {
		cat := classify(text)
		groups[cat] = append(groups[cat], text)
	}

	buckets := make([]domain.Bucket, 0, len(groups))
	for _, cat := range order {
		items := groups[cat]
		if len(items) == 0 {
			continue
		}
		buckets = append(buckets, domain.Bucket{Category: cat, Summary: Summarize(items)})
	}
	return buckets
}

// Summarize renders a bucket's texts:
//   - one item verbatim,
//   - two or three items joined with ", ",
//   - four or more as a count followed by the first two.
func Summarize(items []string) string {
	switch n := len(items); {
	case n == 0:
		return ""
	case n == 1:
		return items[0]
	case n <= 3:
		return strings.Join(items, ", ")
	default:
		return fmt.Sprintf("%d items, including: %s...", n, strings.Join(items[:2], ", "))
	}
}
