// Package digest classifies repository events and assembles them into a Digest.
// Everything here is pure: no I/O, no logging, and no shared state.
package digest

import (
	"regexp"

	"github.com/naka-gawa/repo-digest/internal/domain"
)

// Rule pairs a category with the pattern that selects it.
type Rule struct {
	Category domain.Category
	Pattern  *regexp.Regexp
}

// keywords builds a case-insensitive pattern anchored at a word start,
// so stems such as "optimiz" still match "optimized".
func keywords(words string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + words + `)`)
}

// CommitRules are evaluated in order; the first match wins.
var CommitRules = []Rule{
	{domain.CategoryBugFix, keywords("fix|bug|issue")},
	{domain.CategoryFeatureAddition, keywords("feat|add|new")},
	{domain.CategoryPerformanceImprovement, keywords("perf|optimiz|improv")},
	{domain.CategoryDocumentationUpdate, keywords("doc|readme")},
	{domain.CategoryRefactoring, keywords("refactor|clean|reorganiz")},
}

// IssueRules are evaluated in order; the first match wins.
var IssueRules = []Rule{
	{domain.CategoryCriticalBug, keywords("critical|urgent|important|severe")},
	{domain.CategoryFeatureRequest, keywords("feature|request|enhancement")},
	{domain.CategoryPerformanceIssue, keywords("performance|slow|optimization")},
	{domain.CategoryDocumentationNeed, keywords("doc|readme|tutorial")},
}

// Classifier maps a message or title to a category.
type Classifier func(text string) domain.Category

// Classify returns the category of the first rule matching text, or Other.
// Empty text is always Other.
func Classify(text string, kind domain.EventKind) domain.Category {
	return match(rulesFor(kind), text)
}

// ClassifierFor returns a Classifier bound to the rules of kind.
func ClassifierFor(kind domain.EventKind) Classifier {
	rules := rulesFor(kind)
	return func(text string) domain.Category {
		return match(rules, text)
	}
}

// Categories lists the categories of kind in priority order, Other last.
func Categories(kind domain.EventKind) []domain.Category {
	rules := rulesFor(kind)
	out := make([]domain.Category, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.Category)
	}
	return append(out, domain.CategoryOther)
}

func rulesFor(kind domain.EventKind) []Rule {
	if kind == domain.KindIssue {
		return IssueRules
	}
	return CommitRules
}

func match(rules []Rule, text string) domain.Category {
	if text == "" {
		return domain.CategoryOther
	}
	for _, r := range rules {
		if r.Pattern.MatchString(text) {
			return r.Category
		}
	}
	return domain.CategoryOther
}
