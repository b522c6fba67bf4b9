package main

import (
	"context"
	"os"
	"testing"

	"github.com/bodul/patternfind/pattern"
)

func TestGeminiSummarize(t *testing.T) {
	projectID := os.Getenv("GCP_PROJECT_ID")
	apiKey := os.Getenv("GEMINI_API_KEY")
	if projectID == "" && apiKey == "" {
		t.Skip("GCP_PROJECT_ID and GEMINI_API_KEY not set, skipping integration test")
	}

	ctx := context.Background()
	client, err := NewGeminiClient(ctx, GeminiOptions{ProjectID: projectID, APIKey: apiKey})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer client.Close()

	p := pattern.NewGrid(3, 3)
	pattern.Stamp(p, pattern.ShapeCross, pattern.Position{Row: 1, Col: 1})
	search := pattern.NewGrid(6, 6)
	pattern.Stamp(search, pattern.ShapeCross, pattern.Position{Row: 1, Col: 1})
	pattern.Stamp(search, pattern.ShapeCross, pattern.Position{Row: 4, Col: 4})
	matches := pattern.FindMatches(p, search)

	text, err := client.Summarize(ctx, p, search, matches)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if text == "" {
		t.Fatal("empty explanation")
	}
	t.Logf("Explanation:\n%s", text)
}

func TestNewGeminiClientRequiresCredentials(t *testing.T) {
	if _, err := NewGeminiClient(context.Background(), GeminiOptions{}); err == nil {
		t.Fatal("expected error without project or API key")
	}
}
