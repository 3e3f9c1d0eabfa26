package domain

// Category is the bucket an event is classified into.
type Category string

// Commit categories, in match priority order.
const (
	CategoryBugFix                 Category = "Bug Fix"
	CategoryFeatureAddition        Category = "Feature Addition"
	CategoryPerformanceImprovement Category = "Performance Improvement"
	CategoryDocumentationUpdate    Category = "Documentation Update"
	CategoryRefactoring            Category = "Refactoring"
)

// Issue categories, in match priority order.
const (
	CategoryCriticalBug       Category = "Critical Bug"
	CategoryFeatureRequest    Category = "Feature Request"
	CategoryPerformanceIssue  Category = "Performance Issue"
	CategoryDocumentationNeed Category = "Documentation Need"
)

// CategoryOther catches every event no pattern matched.
const CategoryOther Category = "Other"

// EventKind selects which category enumeration applies to a piece of text.
type EventKind int

const (
	KindCommit EventKind = iota
	KindIssue
)

// Bucket is the summary of all events assigned to one category.
type Bucket struct {
	Category Category `json:"category"`
	Summary  string   `json:"summary"`
}
