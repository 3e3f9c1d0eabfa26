package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GITHUB_TOKEN", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
		"DIGEST_DATA_DIR", "DIGEST_FREQUENCY", "DIGEST_CONTRIBUTOR_LIMIT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "digest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /var/lib/digest
frequency: daily
contributor_limit: 3
openai:
  model: gpt-4o
  api_key: from-file
`), 0o644))
	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("GITHUB_TOKEN", "gh-token")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/digest", cfg.DataDir)
	assert.Equal(t, Daily, cfg.Frequency)
	assert.Equal(t, 3, cfg.ContributorLimit)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, "from-env", cfg.OpenAI.APIKey)
	assert.Equal(t, "gh-token", cfg.GitHubToken)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("frequency: [daily"), 0o644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "parse yaml")

	t.Setenv("DIGEST_CONTRIBUTOR_LIMIT", "many")
	_, err = Load("")
	assert.ErrorContains(t, err, "DIGEST_CONTRIBUTOR_LIMIT")
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name        string
		modify      func(c *Config)
		expectError bool
	}{
		{name: "defaults", modify: func(c *Config) {}},
		{name: "unknown frequency", modify: func(c *Config) { c.Frequency = "monthly" }, expectError: true},
		{name: "zero contributor limit", modify: func(c *Config) { c.ContributorLimit = 0 }, expectError: true},
		{name: "empty data dir", modify: func(c *Config) { c.DataDir = "" }, expectError: true},
		{name: "bad base url", modify: func(c *Config) { c.OpenAI.BaseURL = "not a url" }, expectError: true},
		{name: "custom base url", modify: func(c *Config) { c.OpenAI.BaseURL = "https://llm.example.com/v1/" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)
			err := cfg.Validate()
			if tc.expectError {
				assert.ErrorContains(t, err, "invalid config")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFrequency_Days(t *testing.T) {
	assert.Equal(t, 1, Daily.Days())
	assert.Equal(t, 7, Weekly.Days())
}
