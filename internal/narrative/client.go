// Package narrative implements analytics.NarrativeGenerator on top of an
// OpenAI-compatible chat model via langchaingo.
package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"golang.org/x/time/rate"

	"github.com/JonnyWalker81/stride/backend/internal/analytics"
	"github.com/JonnyWalker81/stride/backend/internal/logger"
)

const (
	defaultModel         = "gpt-4o-mini"
	defaultTimeout       = 20 * time.Second
	defaultRatePerMinute = 30
	defaultMaxRetries    = 2
	defaultBaseBackoff   = 500 * time.Millisecond
	defaultMaxTokens     = 800
	defaultTemperature   = 0.2
)

// ErrEmptyResponse is returned when the model answers with no choices
var ErrEmptyResponse = errors.New("empty response from model")

// Config configures the narrative client
type Config struct {
	APIKey        string
	BaseURL       string
	Model         string
	Timeout       time.Duration
	RatePerMinute int
	MaxRetries    int
}

// Client calls a chat model to explain statistical summaries
type Client struct {
	llm        llms.Model
	limiter    *rate.Limiter
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
}

// New creates a Client backed by an OpenAI-compatible endpoint
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("narrative API key required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create narrative model: %w", err)
	}

	return NewWithModel(llm, cfg), nil
}

// NewWithModel wraps an existing langchaingo model
func NewWithModel(llm llms.Model, cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	perMinute := cfg.RatePerMinute
	if perMinute <= 0 {
		perMinute = defaultRatePerMinute
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	} else if retries == 0 {
		retries = defaultMaxRetries
	}

	return &Client{
		llm:        llm,
		limiter:    rate.NewLimiter(rate.Limit(float64(perMinute)/60), perMinute),
		timeout:    timeout,
		maxRetries: retries,
		backoff:    defaultBaseBackoff,
	}
}

// Analyze asks the model for a JSON analysis of the summary and returns its raw
// text. The whole call, including retries, is bounded by the configured timeout.
func (c *Client) Analyze(ctx context.Context, prompt analytics.PromptContext) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	summary, err := json.MarshalIndent(prompt.Summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode summary: %w", err)
	}

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, userPrompt(prompt.Kind, string(summary))),
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", fmt.Errorf("narrative call cancelled: %w", ctx.Err())
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter error: %w", err)
		}

		text, err := c.generate(ctx, messages)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", fmt.Errorf("narrative call cancelled: %w", ctx.Err())
		}
		logger.Ctx(ctx).Warn("narrative call failed",
			logger.String("insight_type", string(prompt.Kind)),
			logger.Int("attempt", attempt+1),
			logger.Err(err),
		)
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) generate(ctx context.Context, messages []llms.MessageContent) (string, error) {
	resp, err := c.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(defaultTemperature),
		llms.WithMaxTokens(defaultMaxTokens),
	)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}
