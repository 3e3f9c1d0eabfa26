// Package config loads the explicit configuration passed to every collaborator.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Frequency is how often a digest is produced; it sets the default window length.
type Frequency string

const (
	Daily  Frequency = "daily"
	Weekly Frequency = "weekly"
)

// Days returns the default window length in days.
func (f Frequency) Days() int {
	if f == Daily {
		return 1
	}
	return 7
}

// OpenAI holds the narrative enrichment settings.
type OpenAI struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`
	Model   string `yaml:"model" validate:"required"`
}

// Config is the application configuration.
type Config struct {
	GitHubToken      string    `yaml:"github_token"`
	DataDir          string    `yaml:"data_dir" validate:"required"`
	Frequency        Frequency `yaml:"frequency" validate:"oneof=daily weekly"`
	ContributorLimit int       `yaml:"contributor_limit" validate:"min=1"`
	OpenAI           OpenAI    `yaml:"openai"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		DataDir:          "github_data",
		Frequency:        Weekly,
		ContributorLimit: 5,
		OpenAI: OpenAI{
			Model: "gpt-4o-mini",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, a .env file and the environment, in increasing precedence.
// The .env file never overrides variables that are already set.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setString("GITHUB_TOKEN", &cfg.GitHubToken)
	setString("OPENAI_API_KEY", &cfg.OpenAI.APIKey)
	setString("OPENAI_BASE_URL", &cfg.OpenAI.BaseURL)
	setString("OPENAI_MODEL", &cfg.OpenAI.Model)
	setString("DIGEST_DATA_DIR", &cfg.DataDir)

	if v := os.Getenv("DIGEST_FREQUENCY"); v != "" {
		cfg.Frequency = Frequency(v)
	}
	if v := os.Getenv("DIGEST_CONTRIBUTOR_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DIGEST_CONTRIBUTOR_LIMIT %q: %w", v, err)
		}
		cfg.ContributorLimit = n
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration after flags have been applied.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed on %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
