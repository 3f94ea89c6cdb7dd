// Package tika provides Apache Tika integration for resume text extraction.
//
// It performs PUT /tika with Accept: text/plain to retrieve extracted text.
// See: https://tika.apache.org/server/ for API details.
package tika

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/raxzrrr/mockinvi/pkg/textx"
)

// Client is a minimal Apache Tika HTTP client implementing domain.TextExtractor.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a Tika client with a default timeout.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// ExtractPath uploads the file at path to the Tika server and returns
// sanitized plain text. The Content-Type header is detected from the file
// bytes first and falls back to the original filename's extension.
func (c *Client) ExtractPath(ctx context.Context, fileName, path string) (string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("op=tika.extract: read: %w", err)
	}

	u := c.baseURL
	if u == "" {
		u = "http://localhost:9998"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u+"/tika", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("op=tika.extract: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	if ct := detectContentType(data, fileName); ct != "" {
		req.Header.Set("Content-Type", ct)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("op=tika.extract: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("op=tika.extract: tika status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("op=tika.extract: %w", err)
	}
	return textx.CollapseWhitespace(textx.SanitizeText(string(b))), nil
}

func detectContentType(data []byte, fileName string) string {
	if mt := mimetype.Detect(data); mt != nil && mt.String() != "application/octet-stream" {
		return mt.String()
	}
	return mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName)))
}
