package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"preflight/pkg/config"
	"preflight/pkg/interfaces"
	"preflight/pkg/predictor"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	client, err := NewClient(&config.AnthropicConfig{
		APIKey:         "test-key",
		TimeoutSeconds: 5,
	})
	require.NoError(t, err)
	client.SetBaseURL(url)
	return client
}

func modelConfig() interfaces.ModelConfig {
	return interfaces.ModelConfig{
		Model:       "claude-3-5-sonnet-20241022",
		MaxTokens:   4096,
		Temperature: 0.3,
	}
}

func TestClientPredict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req anthRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-3-5-sonnet-20241022", req.Model)
		assert.Equal(t, 4096, req.MaxTokens)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "analyze this job", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthResponse{
			Content: []contentBlock{
				{Type: "text", Text: "first "},
				{Type: "tool_use", Text: "ignored"},
				{Type: "text", Text: "second"},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	reply, err := client.Predict(context.Background(), "analyze this job", modelConfig())
	require.NoError(t, err)
	assert.Equal(t, "first second", reply)
}

func TestClientPredictAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"quota exceeded"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Predict(context.Background(), "prompt", modelConfig())
	require.Error(t, err)

	var svcErr *predictor.ServiceError
	require.True(t, errors.As(err, &svcErr), "expected ServiceError, got %T", err)
	assert.Contains(t, svcErr.Error(), "429")
}

func TestClientPredictErrorBody(t *testing.T) {
	// Some failure modes return 200 with an error object in the body.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":{"type":"overloaded_error","message":"try later"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Predict(context.Background(), "prompt", modelConfig())
	require.Error(t, err)

	var svcErr *predictor.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Contains(t, svcErr.Error(), "overloaded_error")
}

func TestClientPredictEmptyCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Predict(context.Background(), "prompt", modelConfig())
	require.Error(t, err)

	var svcErr *predictor.ServiceError
	assert.True(t, errors.As(err, &svcErr))
}

func TestClientPredictTimeout(t *testing.T) {
	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer server.Close()
	defer close(blocked)

	client := newTestClient(t, server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Predict(ctx, "prompt", modelConfig())
	require.Error(t, err)

	var svcErr *predictor.ServiceError
	assert.True(t, errors.As(err, &svcErr), "timeouts surface as service errors")
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	_, err := NewClient(&config.AnthropicConfig{})
	assert.Error(t, err)
}

func TestNewClientEnvOverride(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	client, err := NewClient(&config.AnthropicConfig{APIKey: "file-key"})
	require.NoError(t, err)
	assert.Equal(t, "env-key", client.apiKey)
}
