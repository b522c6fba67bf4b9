package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bodul/patternfind/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeChatServer(t *testing.T, status int, content string) (*httptest.Server, *string) {
	t.Helper()
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) > 0 {
			gotPrompt = req.Messages[0].Content
		}

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 0,
			"model":   req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &gotPrompt
}

func TestOpenAISummarize(t *testing.T) {
	srv, prompt := fakeChatServer(t, http.StatusOK, "The pattern appears once.")

	c, err := NewOpenAIClient("sk-test", WithOpenAIBaseURL(srv.URL), WithOpenAIMaxRetries(0))
	require.NoError(t, err)

	p := pattern.Grid{{true}}
	text, err := c.Summarize(context.Background(), p, pattern.Grid{{true, false}}, []pattern.Position{{}})
	require.NoError(t, err)
	assert.Equal(t, "The pattern appears once.", text)
	assert.Contains(t, *prompt, "(row: 0, col: 0)")
}

func TestOpenAISummarizeServerError(t *testing.T) {
	srv, _ := fakeChatServer(t, http.StatusInternalServerError, "")

	c, err := NewOpenAIClient("sk-test", WithOpenAIBaseURL(srv.URL), WithOpenAIMaxRetries(0))
	require.NoError(t, err)

	_, err = c.Summarize(context.Background(), pattern.Grid{{true}}, pattern.Grid{{true}}, nil)
	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, providerOpenAI, se.Provider)
}

func TestOpenAISummarizeEmptyContent(t *testing.T) {
	srv, _ := fakeChatServer(t, http.StatusOK, "")

	c, err := NewOpenAIClient("sk-test", WithOpenAIBaseURL(srv.URL), WithOpenAIMaxRetries(0))
	require.NoError(t, err)

	_, err = c.Summarize(context.Background(), pattern.Grid{{true}}, pattern.Grid{{true}}, nil)
	require.Error(t, err)
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewOpenAIClient("")
	require.Error(t, err)

	t.Setenv("OPENAI_API_KEY", "sk-env")
	c, err := NewOpenAIClient("", WithOpenAIModel(""))
	require.NoError(t, err)
	assert.Equal(t, defaultOpenAIModel, c.model)
}
