// Package store persists fetched repository activity as JSON snapshots and
// replays them for offline digest generation.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/naka-gawa/repo-digest/internal/domain"
	"github.com/naka-gawa/repo-digest/internal/gateway"
)

// ErrNoSnapshot is returned when no snapshot exists for a repository.
var ErrNoSnapshot = errors.New("no snapshot found")

const timestampLayout = "20060102_150405"

// Snapshot is everything fetched for one digest run.
type Snapshot struct {
	Repo         string               `json:"repo"`
	Window       domain.Window        `json:"window"`
	FetchedAt    time.Time            `json:"fetched_at"`
	RepoInfo     domain.RepoMetadata  `json:"repo_info"`
	Commits      []domain.Commit      `json:"recent_commits"`
	Issues       []domain.Issue       `json:"recent_issues"`
	PullRequests []domain.PullRequest `json:"recent_pull_requests"`
}

// Store reads and writes snapshots under a single directory.
type Store struct {
	dir    string
	logger zerolog.Logger
}

// New creates a new Store rooted at dir.
func New(dir string, logger zerolog.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Save writes snap to <owner>_<name>_<timestamp>.json and returns the file path.
func (s *Store) Save(snap Snapshot) (string, error) {
	ref, err := gateway.ParseRepo(snap.Repo)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	name := fmt.Sprintf("%s_%s_%s.json", ref.Owner, ref.Name, snap.FetchedAt.Format(timestampLayout))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	s.logger.Debug().Str("path", path).Msg("snapshot saved")
	return path, nil
}

// LoadLatest returns the most recently modified snapshot of repo.
func (s *Store) LoadLatest(repo gateway.RepoRef) (*Snapshot, error) {
	prefix := repo.Owner + "_" + repo.Name + "_"
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w for %s", ErrNoSnapshot, repo)
		}
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var latest string
	var latestMod time.Time
	for _, e := range entries {
		if e.IsDir() || !isSnapshotOf(e.Name(), prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", e.Name(), err)
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest, latestMod = e.Name(), info.ModTime()
		}
	}
	if latest == "" {
		return nil, fmt.Errorf("%w for %s", ErrNoSnapshot, repo)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, latest))
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", latest, err)
	}
	s.logger.Debug().Str("file", latest).Msg("snapshot loaded")
	return &snap, nil
}

// isSnapshotOf reports whether name is <prefix><timestamp>.json, so that
// "acme_widgets_" does not also pick up snapshots of "acme/widgets_v2".
func isSnapshotOf(name, prefix string) bool {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok {
		return false
	}
	ts, ok := strings.CutSuffix(rest, ".json")
	if !ok {
		return false
	}
	_, err := time.Parse(timestampLayout, ts)
	return err == nil
}
