package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaGenerate(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "Q: hi"},
			"done":    true,
		})
	}))
	defer srv.Close()

	g := NewOllama(srv.URL+"/", "", 0.3, srv.Client())
	out, err := g.Generate(context.Background(), "make questions")
	require.NoError(t, err)
	assert.Equal(t, "Q: hi", out)
	assert.Equal(t, "llama3", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, 0.3, got.Options["temperature"])
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "make questions", got.Messages[0].Content)
}

func TestOllamaErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllama(srv.URL, "nope", 0, srv.Client()).Generate(context.Background(), "x")
	require.ErrorContains(t, err, "model not found")
}

func TestOpenAIGenerateWithBearerKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var req openAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": "answer"}}},
		})
	}))
	defer srv.Close()

	g, err := New(Config{Provider: "OpenAI", BaseURL: srv.URL + "/v1", Model: "gpt-test", APIKey: "sk-test"})
	require.NoError(t, err)
	out, err := g.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "answer", out)
}

func TestOpenAIEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	g, err := NewOpenAI(srv.URL, "m", 0, srv.Client())
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), "p")
	require.ErrorContains(t, err, "empty choices")
}

func TestClientCredentialsToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"cc-token","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer cc-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"ok"}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	g, err := New(Config{BaseURL: srv.URL, TokenURL: srv.URL + "/token", ClientID: "id", ClientSecret: "secret"})
	require.NoError(t, err)
	out, err := g.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "carrier-pigeon"})
	require.ErrorContains(t, err, "unsupported provider")

	_, err = New(Config{Provider: ProviderOpenAI})
	require.ErrorContains(t, err, "model is required")
}

func TestScripted(t *testing.T) {
	s := NewScripted("one")
	out, err := s.Generate(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "one", out)
	_, err = s.Generate(context.Background(), "p2")
	require.ErrorIs(t, err, ErrScriptExhausted)
	assert.Equal(t, []string{"p1", "p2"}, s.Prompts)
}
