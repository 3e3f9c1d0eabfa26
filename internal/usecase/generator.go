// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/repo-digest/internal/digest"
	"github.com/naka-gawa/repo-digest/internal/domain"
	"github.com/naka-gawa/repo-digest/internal/enrich"
	"github.com/naka-gawa/repo-digest/internal/gateway"
	"github.com/naka-gawa/repo-digest/internal/store"
)

// SnapshotSaver persists the raw activity fetched for a digest.
type SnapshotSaver interface {
	Save(snap store.Snapshot) (string, error)
}

// Request describes one digest to generate.
type Request struct {
	Repo   gateway.RepoRef
	Window domain.Window
	// Enrich asks the Enricher for a narrative.
	Enrich bool
	// AnalyzeCommits is the number of commits, newest first, to analyze individually when enriching.
	AnalyzeCommits int
}

// Generator is the use case for generating a repository digest.
// It orchestrates fetching, snapshotting, enrichment and assembly.
type Generator struct {
	fetcher   gateway.Fetcher
	enricher  enrich.Enricher
	saver     SnapshotSaver
	assembler *digest.Assembler
	logger    zerolog.Logger
	now       func() time.Time
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithEnricher sets the narrative collaborator.
func WithEnricher(e enrich.Enricher) GeneratorOption {
	return func(g *Generator) { g.enricher = e }
}

// WithSnapshotSaver saves every fetched data set before assembly.
func WithSnapshotSaver(s SnapshotSaver) GeneratorOption {
	return func(g *Generator) { g.saver = s }
}

// WithAssembler replaces the default assembler.
func WithAssembler(a *digest.Assembler) GeneratorOption {
	return func(g *Generator) { g.assembler = a }
}

// NewGenerator creates a new Generator instance.
func NewGenerator(fetcher gateway.Fetcher, logger zerolog.Logger, opts ...GeneratorOption) *Generator {
	g := &Generator{
		fetcher:   fetcher,
		assembler: digest.NewAssembler(),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate fetches the activity of req.Repo inside req.Window and assembles it into a Digest.
func (g *Generator) Generate(ctx context.Context, req Request) (*domain.Digest, error) {
	g.logger.Info().Str("repo", req.Repo.String()).
		Time("since", req.Window.Start).Time("until", req.Window.End).
		Msg("generating digest")

	var (
		meta    domain.RepoMetadata
		commits []domain.Commit
		issues  []domain.Issue
		prs     []domain.PullRequest
	)

	// Use an errgroup to fetch all data concurrently.
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		var err error
		meta, err = g.fetcher.FetchRepository(egCtx, req.Repo)
		return err
	})

	eg.Go(func() error {
		var err error
		commits, err = g.fetcher.FetchCommits(egCtx, req.Repo, req.Window)
		return err
	})

	eg.Go(func() error {
		var err error
		issues, err = g.fetcher.FetchIssues(egCtx, req.Repo, req.Window)
		return err
	})

	eg.Go(func() error {
		var err error
		prs, err = g.fetcher.FetchPullRequests(egCtx, req.Repo, req.Window)
		return err
	})

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("fetch activity: %w", err)
	}
	g.logger.Debug().
		Int("commits", len(commits)).Int("issues", len(issues)).Int("pull_requests", len(prs)).
		Msg("all data fetched")

	if g.saver != nil {
		snap := store.Snapshot{
			Repo:         req.Repo.String(),
			Window:       req.Window,
			FetchedAt:    g.now(),
			RepoInfo:     meta,
			Commits:      commits,
			Issues:       issues,
			PullRequests: prs,
		}
		if _, err := g.saver.Save(snap); err != nil {
			g.logger.Warn().Err(err).Msg("failed to save snapshot")
		}
	}

	var narrative string
	if req.Enrich && g.enricher != nil {
		narrative = g.narrative(ctx, req, meta, commits, issues, prs)
	}

	d, err := g.assembler.Assemble(meta, req.Window, commits, issues, prs, narrative)
	if err != nil {
		return nil, fmt.Errorf("assemble digest: %w", err)
	}
	g.logger.Info().Int("commit_buckets", len(d.CommitBuckets)).Int("issue_buckets", len(d.IssueBuckets)).Msg("digest assembled")
	return d, nil
}

// narrative never fails: enrichment errors fall back to enrich.Placeholder
// and failed commit analyses are left out.
func (g *Generator) narrative(ctx context.Context, req Request, meta domain.RepoMetadata, commits []domain.Commit, issues []domain.Issue, prs []domain.PullRequest) string {
	text, err := g.enricher.Enrich(ctx, enrich.BuildContext(meta, req.Window, commits, issues, prs))
	if err != nil {
		g.logger.Warn().Err(err).Msg("narrative enrichment failed")
		return enrich.Placeholder
	}

	sections := []string{text}
	for i := 0; i < req.AnalyzeCommits && i < len(commits); i++ {
		c := commits[i]
		diff, err := g.fetcher.FetchCommitDiff(ctx, req.Repo, c.SHA)
		if err != nil {
			g.logger.Warn().Err(err).Str("sha", c.SHA).Msg("skipping commit analysis")
			continue
		}
		analysis, err := enrich.AnalyzeCommit(ctx, g.enricher, c, diff)
		if err != nil {
			g.logger.Warn().Err(err).Str("sha", c.SHA).Msg("skipping commit analysis")
			continue
		}
		sections = append(sections, analysis)
	}
	return strings.Join(sections, "\n\n")
}
