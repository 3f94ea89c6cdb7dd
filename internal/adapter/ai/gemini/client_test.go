package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raxzrrr/mockinvi/internal/adapter/ai/gemini"
	"github.com/raxzrrr/mockinvi/internal/config"
	"github.com/raxzrrr/mockinvi/internal/domain"
)

func testConfig(baseURL string) config.Config {
	return config.Config{
		AppEnv:        "test",
		GeminiBaseURL: baseURL,
		GeminiModel:   "gemini-test",
	}
}

func staticKey(key string) gemini.KeySource {
	return func(domain.Context) (string, error) { return key, nil }
}

func candidateResponse(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{
				"content":      map[string]any{"parts": []map[string]string{{"text": text}}},
				"finishReason": "STOP",
			},
		},
	})
	return string(b)
}

func TestGenerateText_Success(t *testing.T) {
	t.Parallel()
	var gotPath, gotKey string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Goog-Api-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(candidateResponse("generated text")))
	}))
	defer ts.Close()

	c := gemini.New(testConfig(ts.URL), staticKey("key-1"))
	out, err := c.GenerateText(context.Background(), "hello", domain.GenerateParams{Temperature: 0.4, MaxOutputTokens: 256})
	require.NoError(t, err)
	assert.Equal(t, "generated text", out)
	assert.Equal(t, "/models/gemini-test:generateContent", gotPath)
	assert.Equal(t, "key-1", gotKey)

	gc, ok := gotBody["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0.4, gc["temperature"])
	assert.Equal(t, float64(256), gc["maxOutputTokens"])
}

func TestGenerateText_MissingKey(t *testing.T) {
	t.Parallel()
	c := gemini.New(testConfig("http://unused"), staticKey("   "))
	_, err := c.GenerateText(context.Background(), "p", domain.GenerateParams{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestGenerateText_4xxIsPermanent(t *testing.T) {
	t.Parallel()
	var calls int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	c := gemini.New(testConfig(ts.URL), staticKey("k"))
	_, err := c.GenerateText(context.Background(), "p", domain.GenerateParams{})
	require.Error(t, err)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls), "client errors must not be retried")
}

func TestGenerateText_5xxRetriesThenSucceeds(t *testing.T) {
	t.Parallel()
	var calls int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt64(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(candidateResponse("ok after retries")))
	}))
	defer ts.Close()

	c := gemini.New(testConfig(ts.URL), staticKey("k"))
	out, err := c.GenerateText(context.Background(), "p", domain.GenerateParams{})
	require.NoError(t, err)
	assert.Equal(t, "ok after retries", out)
	assert.GreaterOrEqual(t, atomic.LoadInt64(&calls), int64(3))
}

func TestGenerateText_RateLimitSurfacesSentinel(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := gemini.New(testConfig(ts.URL), staticKey("k"))
	_, err := c.GenerateText(context.Background(), "p", domain.GenerateParams{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamRateLimit)
}

func TestGenerateText_EmptyCandidates(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer ts.Close()

	c := gemini.New(testConfig(ts.URL), staticKey("k"))
	_, err := c.GenerateText(context.Background(), "p", domain.GenerateParams{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}
