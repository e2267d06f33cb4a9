package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fisa/matjip-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIService_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req openAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)

		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  추천합니다  "}}]}`))
	}))
	defer server.Close()

	ai := NewAIService(config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-test", BaseURL: server.URL}, server.Client())
	out, err := ai.Complete(context.Background(), CompletionRequest{System: "sys", User: "hi", JSON: true})
	require.NoError(t, err)
	assert.Equal(t, "추천합니다", out)
}

func TestAIService_Errors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		ai := NewAIService(config.OpenAIConfig{}, nil)
		_, err := ai.Complete(context.Background(), CompletionRequest{User: "hi"})
		assert.ErrorIs(t, err, ErrAIDisabled)
	})

	t.Run("api error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
		}))
		defer server.Close()

		ai := NewAIService(config.OpenAIConfig{APIKey: "k", BaseURL: server.URL}, server.Client())
		_, err := ai.Complete(context.Background(), CompletionRequest{User: "hi"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
	})

	t.Run("no choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}))
		defer server.Close()

		ai := NewAIService(config.OpenAIConfig{APIKey: "k", BaseURL: server.URL}, server.Client())
		_, err := ai.Complete(context.Background(), CompletionRequest{User: "hi"})
		assert.Error(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer server.Close()

		ai := NewAIService(config.OpenAIConfig{APIKey: "k", BaseURL: server.URL, Timeout: 50 * time.Millisecond}, server.Client())
		start := time.Now()
		_, err := ai.Complete(context.Background(), CompletionRequest{User: "hi"})
		assert.Error(t, err)
		assert.Less(t, time.Since(start), time.Second)
	})
}
