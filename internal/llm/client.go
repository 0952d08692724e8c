// Package llm forwards advanced queries to an OpenAI-compatible chat
// completion service. Answers are returned as-is; nothing here retries,
// caches or inspects the model's output.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"go.uber.org/zap"

	"github.com/wagneradl/mc-v1/mission-analyzer/internal/config"
)

// SystemPrompt frames every advanced query.
const SystemPrompt = "You are a helpful NASA data analysis assistant. Provide concise and accurate responses to queries about NASA missions, technologies, and space exploration."

// NotConfiguredMessage is returned by a client built without an API key.
const NotConfiguredMessage = "Error: API key is not set. Advanced analysis is not available."

// errorPrefix starts every message that reports a failed model call.
const errorPrefix = "Error processing query with model: "

// Client answers free-text questions through the model.
type Client struct {
	api       *openai.Client
	model     string
	maxTokens int64
	logger    *zap.Logger
}

// New builds a client from cfg. With no API key the client is disabled and
// Ask always returns NotConfiguredMessage.
func New(cfg config.LLMConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}
	if c.maxTokens <= 0 {
		c.maxTokens = 1000
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		logger.Warn("llm: no API key configured, advanced analysis disabled")
		return c
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	api := openai.NewClient(opts...)
	c.api = &api
	return c
}

// Enabled reports whether the client has credentials.
func (c *Client) Enabled() bool {
	return c.api != nil
}

// Ask sends query verbatim and returns the model's text. Failures come back
// as a user-visible error string, never as a Go error.
func (c *Client) Ask(ctx context.Context, query string) string {
	if c.api == nil {
		return NotConfiguredMessage
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(query),
		},
		MaxTokens: openai.Int(c.maxTokens),
	})
	if err != nil {
		c.logger.Warn("llm: completion failed", zap.String("model", c.model), zap.Error(err))
		return errorPrefix + err.Error()
	}
	if len(resp.Choices) == 0 {
		c.logger.Warn("llm: completion returned no choices", zap.String("model", c.model))
		return errorPrefix + "no completion returned"
	}

	c.logger.Debug("llm: completion ok",
		zap.String("model", c.model),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens))
	return resp.Choices[0].Message.Content
}

// IsErrorMessage reports whether an Ask result describes a failure.
func IsErrorMessage(s string) bool {
	return s == NotConfiguredMessage || strings.HasPrefix(s, errorPrefix)
}

// Suggestions returns example advanced queries for the front end.
func Suggestions() []string {
	return []string{
		"Explain the significance of the Apollo 11 mission",
		"Describe the latest discoveries by the James Webb Space Telescope",
		"Compare the Mars rovers: Curiosity, Perseverance, and Opportunity",
		"Outline NASA's plans for future Moon missions",
		"Discuss the potential for finding life on Europa",
	}
}

// String describes the client for startup logs.
func (c *Client) String() string {
	if !c.Enabled() {
		return "llm(disabled)"
	}
	return fmt.Sprintf("llm(model=%s, max_tokens=%d)", c.model, c.maxTokens)
}
