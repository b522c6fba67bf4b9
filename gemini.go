package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/bodul/patternfind/pattern"
	"google.golang.org/genai"
)

// Summarize asks Gemini to explain a search result in one paragraph.
func (g *GeminiClient) Summarize(ctx context.Context, p, search pattern.Grid, matches []pattern.Position) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName,
		genai.Text(BuildPrompt(p, search, matches)),
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr(float32(0.4)),
		},
	)
	if err != nil {
		return "", &ServiceError{Provider: providerGemini, Err: fmt.Errorf("generate: %w", err)}
	}

	text := resp.Text()
	if text == "" {
		return "", &ServiceError{Provider: providerGemini, Err: errors.New("empty response")}
	}
	return text, nil
}
