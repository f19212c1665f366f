package oracle

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mkarpov/tipstream/internal/model"
)

// Client implements Oracle over an OpenAI-compatible Chat Completions API.
// Setting BaseURL in the config points it at a local server (Ollama,
// LM Studio) instead of OpenAI.
type Client struct {
	client *openai.Client
	config model.OracleConfig
}

// NewClient creates an oracle client from configuration.
func NewClient(config model.OracleConfig) (*Client, error) {
	if config.APIKey == "" && config.BaseURL == "" {
		return nil, fmt.Errorf("oracle API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Classify runs the phase 1 relevance judgment.
func (c *Client) Classify(ctx context.Context, text string) (*Classification, error) {
	raw, err := c.complete(ctx, classifyPrompt(text))
	if err != nil {
		return nil, err
	}
	return parseClassification(raw)
}

// Extract runs the phase 2 asset extraction for a post already classified
// relevant.
func (c *Client) Extract(ctx context.Context, text, postType string) (*Extraction, error) {
	raw, err := c.complete(ctx, extractPrompt(text, postType))
	if err != nil {
		return nil, err
	}
	return parseExtraction(raw)
}

// complete sends one prompt and returns the raw response text. The timeout is
// terminal: there is no retry, the post is recorded as analyzed-with-error.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	timeout := c.config.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	maxTokens := c.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1500
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a financial content analysis service. Respond only with valid JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: c.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("oracle call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("oracle returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
