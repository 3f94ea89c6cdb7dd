// Package gemini implements a text-generation client backed by the Google
// Generative Language API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/raxzrrr/mockinvi/internal/adapter/observability"
	"github.com/raxzrrr/mockinvi/internal/config"
	"github.com/raxzrrr/mockinvi/internal/domain"
)

// KeySource resolves the current generation API key. The key lives in the
// settings store and can be rotated at runtime, so it is looked up per request
// instead of being captured at construction time.
type KeySource func(ctx domain.Context) (string, error)

// Client implements domain.AIClient against the generateContent endpoint.
type Client struct {
	cfg  config.Config
	hc   *http.Client
	keys KeySource
}

// New constructs a Gemini client. The HTTP transport is wrapped with otelhttp
// so outbound calls join the request trace.
func New(cfg config.Config, keys KeySource) *Client {
	return &Client{
		cfg: cfg,
		hc: &http.Client{
			Timeout:   cfg.AITimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		keys: keys,
	}
}

func (c *Client) getBackoffConfig() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()
	maxElapsedTime, initialInterval, maxInterval, multiplier := c.cfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsedTime
	expo.InitialInterval = initialInterval
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier
	return expo
}

type generateRequest struct {
	Contents []content `json:"contents"`
	Config   genConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type genConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

var errRateLimited = errors.New("rate limited")

// GenerateText sends the prompt to generateContent and returns the raw text of
// the first candidate. Retries follow the configured exponential backoff: 429
// and 5xx are retryable, other 4xx are permanent. Rate limiting that survives
// the retry window surfaces as domain.ErrUpstreamRateLimit and a context
// deadline as domain.ErrUpstreamTimeout so callers can map them precisely.
func (c *Client) GenerateText(ctx domain.Context, prompt string, p domain.GenerateParams) (string, error) {
	key, err := c.keys(ctx)
	if err != nil {
		return "", fmt.Errorf("op=gemini.generate: resolve api key: %w", err)
	}
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("op=gemini.generate: generation api key not configured: %w", domain.ErrInvalidArgument)
	}

	body, _ := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		Config: genConfig{
			Temperature:     p.Temperature,
			MaxOutputTokens: p.MaxOutputTokens,
		},
	})
	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimSuffix(c.cfg.GeminiBaseURL, "/"), c.cfg.GeminiModel)

	var out generateResponse
	op := func() error {
		start := time.Now()
		// The body reader is consumed per attempt, so the request is rebuilt.
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Goog-Api-Key", key)

		resp, err := c.hc.Do(req)
		observability.AIRequestsTotal.WithLabelValues("gemini", "generate").Inc()
		observability.AIRequestDuration.WithLabelValues("gemini", "generate").Observe(time.Since(start).Seconds())
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			slog.Warn("ai provider rate limited",
				slog.String("provider", "gemini"), slog.Int("status", resp.StatusCode))
			return errRateLimited
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			slog.Warn("ai provider 4xx",
				slog.String("provider", "gemini"),
				slog.Int("status", resp.StatusCode),
				slog.String("model", c.cfg.GeminiModel),
				slog.String("body", snippet(respBody)))
			return backoff.Permanent(fmt.Errorf("generate status %d", resp.StatusCode))
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			slog.Error("ai provider non-2xx",
				slog.String("provider", "gemini"),
				slog.Int("status", resp.StatusCode),
				slog.String("body", snippet(respBody)))
			return fmt.Errorf("generate status %d", resp.StatusCode)
		}
		if err := json.Unmarshal(respBody, &out); err != nil {
			slog.Error("ai provider decode error", slog.String("provider", "gemini"), slog.Any("error", err))
			return backoff.Permanent(err)
		}
		return nil
	}

	expo := c.getBackoffConfig()
	if err := backoff.Retry(op, backoff.WithContext(expo, ctx)); err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return "", fmt.Errorf("op=gemini.generate: %v: %w", err, domain.ErrUpstreamTimeout)
		case errors.Is(err, errRateLimited):
			return "", fmt.Errorf("op=gemini.generate: %w", domain.ErrUpstreamRateLimit)
		}
		return "", fmt.Errorf("op=gemini.generate: %w", err)
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("op=gemini.generate: empty candidates: %w", domain.ErrMalformedResponse)
	}
	cand := out.Candidates[0]
	if cand.FinishReason != "" && cand.FinishReason != "STOP" {
		slog.Warn("generation finished abnormally",
			slog.String("provider", "gemini"), slog.String("finish_reason", cand.FinishReason))
	}
	var b strings.Builder
	for _, pt := range cand.Content.Parts {
		b.WriteString(pt.Text)
	}
	return b.String(), nil
}

func snippet(b []byte) string {
	if len(b) > 512 {
		b = b[:512]
	}
	return string(b)
}
