// Package enrich produces the optional narrative embedded in a digest.
// Narrative text is opaque to the rest of the application.
package enrich

import (
	"context"
)

// Placeholder is the narrative used when enrichment fails.
const Placeholder = "Narrative unavailable: enrichment failed."

// Enricher turns a plain-text description of repository activity into narrative text.
type Enricher interface {
	Enrich(ctx context.Context, activity string) (string, error)
}

// Static always returns the same narrative.
type Static struct {
	Text string
}

// Enrich returns s.Text.
func (s Static) Enrich(_ context.Context, _ string) (string, error) {
	return s.Text, nil
}

// EnricherFunc adapts a function to the Enricher interface.
type EnricherFunc func(ctx context.Context, activity string) (string, error)

// Enrich calls f.
func (f EnricherFunc) Enrich(ctx context.Context, activity string) (string, error) {
	return f(ctx, activity)
}
