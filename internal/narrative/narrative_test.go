package narrative

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sri5hat/aptdetection/internal/scoring"
)

func TestClientGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"text":"high rule-based contribution drove the score"}`))
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{URL: srv.URL}, nil)
	require.NoError(t, err)

	text, err := c.Generate(context.Background(), "explain-score", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "high rule-based contribution drove the score", text)
}

func TestClientGenerateErrors(t *testing.T) {
	t.Run("ServerError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c, err := NewClient(ClientConfig{URL: srv.URL}, nil)
		require.NoError(t, err)

		_, err = c.Generate(context.Background(), "explain-score", "prompt")
		assert.Error(t, err)
	})

	t.Run("EmptyText", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"text":""}`))
		}))
		defer srv.Close()

		c, err := NewClient(ClientConfig{URL: srv.URL}, nil)
		require.NoError(t, err)

		_, err = c.Generate(context.Background(), "explain-score", "prompt")
		assert.Error(t, err)
	})

	t.Run("Timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		c, err := NewClient(ClientConfig{URL: srv.URL, Timeout: 20 * time.Millisecond}, nil)
		require.NoError(t, err)

		_, err = c.Generate(context.Background(), "explain-score", "prompt")
		assert.Error(t, err)
	})

	t.Run("MissingURL", func(t *testing.T) {
		_, err := NewClient(ClientConfig{}, nil)
		assert.Error(t, err)
	})
}

func TestDisabledNarrator(t *testing.T) {
	_, err := Disabled{}.Generate(context.Background(), "explain-score", "prompt")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestExplainPromptMentionsInputs(t *testing.T) {
	p := ExplainPrompt(ExplainInput{
		Scores:      scoring.Scores{RuleBased: 0.9},
		Weights:     scoring.DefaultWeights(),
		TopRuleHits: []string{"Suspicious Compression Activity"},
		TopFeatures: []string{"process:powershell.exe"},
	}, 0.62)

	assert.Contains(t, p, "0.90")
	assert.Contains(t, p, "0.6200")
	assert.Contains(t, p, "Suspicious Compression Activity")
	assert.Contains(t, p, "process:powershell.exe")
}

func TestFallbackExplanationCarriesTheLocalScore(t *testing.T) {
	s := FallbackExplanation(0.78)
	assert.Contains(t, s, "0.78")
	assert.Contains(t, s, "unavailable")
}
