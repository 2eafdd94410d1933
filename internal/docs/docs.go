// Package docs fetches pages of the Chatvolt documentation and reduces them
// to readable text.
package docs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	readability "codeberg.org/readeck/go-readability/v2"

	"github.com/chatvolt/chatvolt-mcp/pkg/protocol"
)

const (
	DefaultBaseURL = "https://docs.chatvolt.ai"
	maxContentSize = 50 * 1024
	fetchTimeout   = 30 * time.Second
	userAgent      = "chatvolt-mcp/1.0"
)

// Fetcher loads documentation pages relative to a base URL.
type Fetcher struct {
	baseURL *url.URL
	client  *http.Client
	logger  *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// New creates a Fetcher. An empty baseURL selects DefaultBaseURL.
func New(baseURL string, opts ...Option) (*Fetcher, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("docs: invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("docs: base URL must be http or https, got %q", baseURL)
	}
	f := &Fetcher{
		baseURL: u,
		client:  &http.Client{Timeout: fetchTimeout},
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(f)
	}
	f.logger = f.logger.With("component", "docs")
	return f, nil
}

// Resolve returns the absolute URL of a page. Pages are confined to the
// documentation host.
func (f *Fetcher) Resolve(page string) (*url.URL, error) {
	page = strings.TrimSpace(page)
	ref, err := url.Parse(page)
	if err != nil {
		return nil, fmt.Errorf("docs: invalid page %q: %w", page, err)
	}
	if ref.IsAbs() || ref.Host != "" {
		return nil, fmt.Errorf("docs: page %q must be a path relative to the documentation site", page)
	}
	ref.Path = strings.TrimLeft(ref.Path, "/")
	return f.baseURL.ResolveReference(ref), nil
}

// Fetch downloads a page and extracts its readable text. HTML goes through
// readability; other content types are returned as-is.
func (f *Fetcher) Fetch(ctx context.Context, page string) (protocol.DocumentationPage, error) {
	pageURL, err := f.Resolve(page)
	if err != nil {
		return protocol.DocumentationPage{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return protocol.DocumentationPage{}, fmt.Errorf("docs: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return protocol.DocumentationPage{}, fmt.Errorf("docs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return protocol.DocumentationPage{}, fmt.Errorf("docs: %s: HTTP %d", pageURL, resp.StatusCode)
	}

	result := protocol.DocumentationPage{URL: pageURL.String()}

	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxContentSize))
		if err != nil {
			return protocol.DocumentationPage{}, fmt.Errorf("docs: read: %w", err)
		}
		result.Content = string(body[:runeBoundary(body, len(body))])
		result.Words = len(strings.Fields(result.Content))
		return result, nil
	}

	article, err := readability.FromReader(resp.Body, pageURL)
	if err != nil {
		return protocol.DocumentationPage{}, fmt.Errorf("docs: parse: %w", err)
	}
	var text bytes.Buffer
	if err := article.RenderText(&text); err != nil {
		return protocol.DocumentationPage{}, fmt.Errorf("docs: render: %w", err)
	}

	content := text.String()
	result.Title = article.Title()
	result.Words = len(strings.Fields(content))
	result.Content = truncate(content, maxContentSize)

	f.logger.Debug("fetched page", "url", result.URL, "words", result.Words)
	return result, nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence and
// marks the cut.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:runeBoundary([]byte(s), n)] + "\n... [truncated]"
}

// runeBoundary returns the largest i <= n at which b can be cut without
// leaving a partial UTF-8 sequence at the end of b[:i].
func runeBoundary(b []byte, n int) int {
	n = min(n, len(b))
	for i := n - 1; i >= 0 && i >= n-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:n]) {
				return n
			}
			return i
		}
	}
	return n
}
