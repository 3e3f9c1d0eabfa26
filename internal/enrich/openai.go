package enrich

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"
)

const (
	defaultModel = "gpt-4o-mini"

	systemPrompt = "You write concise, factual newsletter content for open source maintainers. " +
		"Use only the activity you are given and format your answer in markdown."
)

// OpenAIConfig holds the settings of an OpenAIEnricher.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// DisableRetries turns off the client's automatic retries.
	DisableRetries bool
}

// OpenAIEnricher generates narrative with the OpenAI chat completions API.
type OpenAIEnricher struct {
	client openai.Client
	model  string
	logger zerolog.Logger
}

// NewOpenAIEnricher creates an Enricher backed by OpenAI.
func NewOpenAIEnricher(cfg OpenAIConfig, logger zerolog.Logger) (*OpenAIEnricher, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.DisableRetries {
		opts = append(opts, option.WithMaxRetries(0))
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &OpenAIEnricher{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logger,
	}, nil
}

func (e *OpenAIEnricher) Enrich(ctx context.Context, activity string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: e.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(activity),
		},
	}

	start := time.Now()
	resp, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion: no choices in response")
	}

	e.logger.Debug().
		Str("model", e.model).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Int64("prompt_tokens", resp.Usage.PromptTokens).
		Int64("completion_tokens", resp.Usage.CompletionTokens).
		Msg("narrative generated")

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
