// Package shorten calls an external link-shortening service. The
// service is best-effort by contract: every failure mode falls back to
// the original long URL silently.
package shorten

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxInputLength is the longest URL worth sending to the shortener;
// services reject extreme inputs anyway.
const maxInputLength = 2500

// Client calls a TinyURL-style shortening endpoint: a GET with the long
// URL in the url query parameter, answered with the short URL as plain
// text.
type Client struct {
	serviceURL string
	http       *http.Client
}

// New creates a shortener client. An empty serviceURL disables
// shortening; Shorten then always returns its input.
func New(serviceURL string) *Client {
	return &Client{
		serviceURL: serviceURL,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

// Shorten returns a shortened form of longURL, or longURL itself when
// the service is unconfigured, unreachable, rejects the request, or
// answers with something that is not a URL. It never returns an error:
// the long link always works.
func (c *Client) Shorten(ctx context.Context, longURL string) string {
	if c.serviceURL == "" || len(longURL) > maxInputLength {
		return longURL
	}

	endpoint := c.serviceURL + "?url=" + url.QueryEscape(longURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		slog.Debug("Shortener request build failed, using long URL", "error", err)
		return longURL
	}

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Debug("Shortener unreachable, using long URL", "error", err)
		return longURL
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("Shortener refused, using long URL", "status", resp.StatusCode)
		return longURL
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		slog.Debug("Shortener response unreadable, using long URL", "error", err)
		return longURL
	}

	short := strings.TrimSpace(string(body))
	if !strings.HasPrefix(short, "http://") && !strings.HasPrefix(short, "https://") {
		slog.Debug("Shortener returned a non-URL, using long URL")
		return longURL
	}
	return short
}
