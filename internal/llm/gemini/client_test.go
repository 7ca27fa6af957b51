package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ValorSage/ai-app-builder/internal/llm"
)

func TestChatRemapsRoles(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "pong"}}}},
			},
		})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, APIKey: "k"})
	out, err := c.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "sys"},
		{Role: llm.RoleUser, Content: "hi"},
		{Role: llm.RoleAssistant, Content: "earlier"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pong", out)

	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "sys", got.SystemInstruction.Parts[0].Text)
	require.Len(t, got.Contents, 2)
	assert.Equal(t, "user", got.Contents[0].Role)
	assert.Equal(t, "model", got.Contents[1].Role)
}

func TestChatRequiresKey(t *testing.T) {
	_, err := New(Options{}).Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	assert.ErrorIs(t, err, llm.ErrNoAPIKey)
}

func TestVerifySendsOneTokenPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		require.NotNil(t, got.GenerationConfig)
		assert.Equal(t, 1, got.GenerationConfig.MaxOutputTokens)
		require.Len(t, got.Contents, 1)
		assert.Equal(t, "ping", got.Contents[0].Parts[0].Text)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "p"}}}},
			},
		})
	}))
	defer srv.Close()

	require.NoError(t, New(Options{BaseURL: srv.URL, APIKey: "k"}).Verify(context.Background()))
}

func TestVerifySurfacesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "API key not valid"}})
	}))
	defer srv.Close()

	err := New(Options{BaseURL: srv.URL, APIKey: "bad"}).Verify(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
}
