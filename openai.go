package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bodul/patternfind/pattern"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient summarizes results through an OpenAI-compatible chat API.
type OpenAIClient struct {
	client  openai.Client
	baseURL string
	model   string
	retries int
}

// OpenAIOption configures an OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithOpenAIModel sets the chat model. Empty keeps the default.
func WithOpenAIModel(model string) OpenAIOption {
	return func(c *OpenAIClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithOpenAIBaseURL points the client at an OpenAI-compatible endpoint
// such as Azure OpenAI or a local server.
func WithOpenAIBaseURL(baseURL string) OpenAIOption {
	return func(c *OpenAIClient) {
		c.baseURL = baseURL
	}
}

// WithOpenAIMaxRetries sets how often failed requests are retried.
func WithOpenAIMaxRetries(n int) OpenAIOption {
	return func(c *OpenAIClient) {
		c.retries = n
	}
}

// NewOpenAIClient creates a client. An empty apiKey falls back to
// OPENAI_API_KEY.
func NewOpenAIClient(apiKey string, opts ...OpenAIOption) (*OpenAIClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("openai: API key required (OPENAI_API_KEY)")
	}

	c := &OpenAIClient{model: defaultOpenAIModel, retries: 2}
	for _, opt := range opts {
		opt(c)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(c.retries),
	}
	if c.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(c.baseURL))
	}
	c.client = openai.NewClient(reqOpts...)
	return c, nil
}

// Summarize asks the chat model to explain a search result in one paragraph.
func (c *OpenAIClient) Summarize(ctx context.Context, p, search pattern.Grid, matches []pattern.Position) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(BuildPrompt(p, search, matches)),
		},
		Temperature: openai.Float(0.4),
	})
	if err != nil {
		return "", &ServiceError{Provider: providerOpenAI, Err: fmt.Errorf("chat completion: %w", err)}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &ServiceError{Provider: providerOpenAI, Err: errors.New("empty response")}
	}
	return resp.Choices[0].Message.Content, nil
}
