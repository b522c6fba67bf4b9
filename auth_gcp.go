package main

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const (
	defaultRegion = "europe-west1"
	defaultModel  = "gemini-2.5-flash"
)

// GeminiOptions selects how the Gemini client authenticates.
// A ProjectID uses VertexAI with Application Default Credentials
// (GOOGLE_APPLICATION_CREDENTIALS); otherwise APIKey uses the Gemini API.
type GeminiOptions struct {
	ProjectID string
	Region    string
	APIKey    string
	Model     string
}

// GeminiClient wraps the Google GenAI client.
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient creates a client for VertexAI or the Gemini API.
func NewGeminiClient(ctx context.Context, opts GeminiOptions) (*GeminiClient, error) {
	cc := &genai.ClientConfig{}
	switch {
	case opts.ProjectID != "":
		if opts.Region == "" {
			opts.Region = defaultRegion
		}
		cc.Project = opts.ProjectID
		cc.Location = opts.Region
		cc.Backend = genai.BackendVertexAI
	case opts.APIKey != "":
		cc.APIKey = opts.APIKey
		cc.Backend = genai.BackendGeminiAPI
	default:
		return nil, errors.New("gemini: GCP project or API key required")
	}
	if opts.Model == "" {
		opts.Model = defaultModel
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: opts.Model,
	}, nil
}

// Close releases resources held by the client.
func (g *GeminiClient) Close() error {
	return nil
}
