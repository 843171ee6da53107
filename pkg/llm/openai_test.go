package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" positive, 0.8 "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(Config{APIKey: "test-key", APIURL: srv.URL, Model: "gpt-4o-mini"})
	got, err := p.Complete(context.Background(), UserMessage("hello"))
	require.NoError(t, err)
	assert.Equal(t, "positive, 0.8", got)
}

func TestOpenAICompleteMissingModel(t *testing.T) {
	p := NewOpenAIProvider(Config{APIKey: "k"})
	_, err := p.Complete(context.Background(), UserMessage("hello"))
	require.Error(t, err)
}

func TestOpenAICompleteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(Config{APIURL: srv.URL, Model: "gpt-4o-mini"})
	_, err := p.Complete(context.Background(), UserMessage("hello"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestOpenAICompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(Config{APIURL: srv.URL, Model: "gpt-4o-mini"})
	_, err := p.Complete(context.Background(), UserMessage("hello"))
	require.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{Provider: "openai", Model: "m"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIProvider{}, p)

	p, err = NewProvider(Config{Provider: "ollama", Model: "m"})
	require.NoError(t, err)
	assert.IsType(t, &OllamaProvider{}, p)

	_, err = NewProvider(Config{Provider: "carrier-pigeon"})
	require.Error(t, err)
}
