package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/bodul/patternfind/pattern"
)

// Summarizer turns a search result into a short prose explanation.
type Summarizer interface {
	Summarize(ctx context.Context, p, search pattern.Grid, matches []pattern.Position) (string, error)
}

// ServiceError is a failure of the external text-generation service.
type ServiceError struct {
	Provider string
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s summarizer: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

const summaryPrompt = `I am working on a pattern recognition application.
I searched for a specific pattern within a larger grid.

This was the pattern:
%s

This was the grid I searched in:
%s

The search algorithm found %d occurrence(s) of the pattern at the following top-left coordinates: %s.

Please provide a short, user-friendly, one-paragraph explanation of these results. Explain that the algorithm scanned the larger grid to find all exact matches of the smaller pattern.`

// BuildPrompt renders the grids and matches into the request sent to the
// text-generation service.
func BuildPrompt(p, search pattern.Grid, matches []pattern.Position) string {
	return fmt.Sprintf(summaryPrompt,
		quoteGrid(p), quoteGrid(search), len(matches), formatPositions(matches))
}

func quoteGrid(g pattern.Grid) string {
	if g.Empty() {
		return g.String()
	}
	return "`\n" + g.String() + "\n`"
}

func formatPositions(matches []pattern.Position) string {
	if len(matches) == 0 {
		return "no occurrences found"
	}
	parts := make([]string, len(matches))
	for i, m := range matches {
		parts[i] = fmt.Sprintf("(row: %d, col: %d)", m.Row, m.Col)
	}
	return strings.Join(parts, ", ")
}

// newSummarizer picks a backend from the configuration. It returns nil
// without error when no backend is configured.
func newSummarizer(ctx context.Context, cfg SummarizerConfig) (Summarizer, error) {
	provider := cfg.Provider
	if provider == "" {
		switch {
		case cfg.GCPProject != "" || cfg.GeminiAPIKey != "":
			provider = providerGemini
		case cfg.OpenAIAPIKey != "":
			provider = providerOpenAI
		default:
			provider = providerNone
		}
	}

	switch provider {
	case providerGemini:
		g, err := NewGeminiClient(ctx, GeminiOptions{
			ProjectID: cfg.GCPProject,
			Region:    cfg.GCPRegion,
			APIKey:    cfg.GeminiAPIKey,
			Model:     cfg.GeminiModel,
		})
		if err != nil {
			return nil, err
		}
		return g, nil
	case providerOpenAI:
		o, err := NewOpenAIClient(cfg.OpenAIAPIKey,
			WithOpenAIBaseURL(cfg.OpenAIBaseURL),
			WithOpenAIModel(cfg.OpenAIModel))
		if err != nil {
			return nil, err
		}
		return o, nil
	}
	return nil, nil
}
