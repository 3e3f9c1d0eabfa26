package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/repo-digest/internal/config"
	"github.com/naka-gawa/repo-digest/internal/digest"
	"github.com/naka-gawa/repo-digest/internal/enrich"
	"github.com/naka-gawa/repo-digest/internal/gateway"
	"github.com/naka-gawa/repo-digest/internal/store"
	"github.com/naka-gawa/repo-digest/internal/usecase"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Builds a digest of repository activity and outputs it as JSON",
	Long: `Fetches the commits, issues and pull requests of a repository inside a date window,
classifies them into categories, ranks contributors and outputs the resulting digest in JSON format.`,
	RunE: runDigest,
}

func init() {
	rootCmd.AddCommand(digestCmd)
	digestCmd.Flags().StringP("repo", "r", "", "Target repository as owner/name or GitHub URL (required)")
	digestCmd.MarkFlagRequired("repo")
	digestCmd.Flags().String("since", "", `Start date inclusive, e.g. "2024-05-01", "yesterday", "2 weeks ago" (default: one frequency period ago)`)
	digestCmd.Flags().String("until", "", `End date inclusive, e.g. "2024-05-07", "today" (default: today)`)
	digestCmd.Flags().String("frequency", "", "Digest frequency, daily or weekly; sets the default window (default from config: weekly)")
	digestCmd.Flags().Int("top", 0, "Number of top contributors to list (default from config: 5)")
	digestCmd.Flags().Bool("enrich", false, "Add an LLM-generated narrative (requires OPENAI_API_KEY)")
	digestCmd.Flags().Int("analyze-commits", 0, "Number of most recent commits to analyze individually when enriching")
	digestCmd.Flags().Bool("offline", false, "Use the latest saved snapshot instead of calling the GitHub API")
}

func runDigest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(verbose, cmd.ErrOrStderr())

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if f, _ := cmd.Flags().GetString("frequency"); f != "" {
		cfg.Frequency = config.Frequency(f)
	}
	if top, _ := cmd.Flags().GetInt("top"); top != 0 {
		cfg.ContributorLimit = top
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	repoStr, _ := cmd.Flags().GetString("repo")
	repo, err := gateway.ParseRepo(repoStr)
	if err != nil {
		return err
	}
	sinceStr, _ := cmd.Flags().GetString("since")
	untilStr, _ := cmd.Flags().GetString("until")
	window, err := config.ParseWindow(sinceStr, untilStr, cfg.Frequency, time.Now())
	if err != nil {
		return err
	}

	snapshots := store.New(cfg.DataDir, logger)
	opts := []usecase.GeneratorOption{
		usecase.WithAssembler(digest.NewAssembler(digest.WithContributorLimit(cfg.ContributorLimit))),
	}

	// Inject dependencies and run the main business logic.
	var fetcher gateway.Fetcher
	if offline, _ := cmd.Flags().GetBool("offline"); offline {
		fetcher, err = store.NewOffline(snapshots, repo)
		if err != nil {
			return err
		}
	} else {
		if cfg.GitHubToken == "" {
			return fmt.Errorf("GITHUB_TOKEN environment variable is not set")
		}
		fetcher, err = gateway.NewGitHubGateway(cfg.GitHubToken, logger)
		if err != nil {
			return fmt.Errorf("failed to create GitHub gateway: %w", err)
		}
		opts = append(opts, usecase.WithSnapshotSaver(snapshots))
	}

	enrichFlag, _ := cmd.Flags().GetBool("enrich")
	if enrichFlag {
		enricher, err := enrich.NewOpenAIEnricher(enrich.OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to create enricher: %w", err)
		}
		opts = append(opts, usecase.WithEnricher(enricher))
	}
	analyze, _ := cmd.Flags().GetInt("analyze-commits")

	generator := usecase.NewGenerator(fetcher, logger, opts...)
	d, err := generator.Generate(ctx, usecase.Request{
		Repo:           repo,
		Window:         window,
		Enrich:         enrichFlag,
		AnalyzeCommits: analyze,
	})
	if err != nil {
		return fmt.Errorf("failed to generate digest: %w", err)
	}

	// Marshal the digest into a pretty-printed JSON string.
	jsonData, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal digest to JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	return nil
}
