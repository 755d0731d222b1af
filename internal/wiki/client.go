// Package wiki implements the knowledge-lookup collaborator against the
// Wikipedia REST API. The pipeline only depends on the narrow Lookup
// contract; everything else here is transport detail.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Result is the outcome of a definition lookup.
type Result struct {
	Exists     bool
	Title      string
	Definition string
	URL        string
}

// Lookup is the capability the pipeline consumes.
type Lookup interface {
	Lookup(ctx context.Context, term string) (Result, error)
}

// Client queries the Wikipedia page-summary endpoint, trying a primary
// language first and a secondary language before reporting a miss.
type Client struct {
	httpClient    *http.Client
	baseURLFormat string // %s = language code
	primaryLang   string
	secondaryLang string
}

// Option configures a Client.
type Option func(*Client)

// WithLanguages sets the primary and secondary lookup languages.
func WithLanguages(primary, secondary string) Option {
	return func(c *Client) {
		if primary != "" {
			c.primaryLang = primary
		}
		c.secondaryLang = secondary
	}
}

// WithHTTPClient swaps the underlying HTTP client (used in tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithBaseURLFormat overrides the endpoint template (used in tests). The
// format must contain one %s verb for the language code.
func WithBaseURLFormat(format string) Option {
	return func(c *Client) { c.baseURLFormat = format }
}

// NewClient builds a lookup client with sane timeouts.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		baseURLFormat: "https://%s.wikipedia.org/api/rest_v1",
		primaryLang:   "en",
		secondaryLang: "zh",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// summaryResponse mirrors the fields we need from the REST summary payload.
type summaryResponse struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Lookup fetches a summary for term, falling back to the secondary language
// before reporting exists=false. Transport errors on the primary language do
// not abort the secondary attempt.
func (c *Client) Lookup(ctx context.Context, term string) (Result, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return Result{}, fmt.Errorf("empty lookup term")
	}

	langs := []string{c.primaryLang}
	if c.secondaryLang != "" && c.secondaryLang != c.primaryLang {
		langs = append(langs, c.secondaryLang)
	}

	var lastErr error
	for _, lang := range langs {
		res, err := c.lookupLang(ctx, term, lang)
		if err != nil {
			lastErr = err
			slog.Debug("wiki lookup failed", "term", term, "lang", lang, "error", err)
			continue
		}
		if res.Exists {
			return res, nil
		}
	}

	if lastErr != nil {
		return Result{}, lastErr
	}
	return Result{Exists: false}, nil
}

func (c *Client) lookupLang(ctx context.Context, term, lang string) (Result, error) {
	endpoint := fmt.Sprintf(c.baseURLFormat, lang) + "/page/summary/" + url.PathEscape(term)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("wiki request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return Result{Exists: false}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("wiki request: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}

	var payload summaryResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	if strings.TrimSpace(payload.Extract) == "" {
		return Result{Exists: false}, nil
	}

	return Result{
		Exists:     true,
		Title:      payload.Title,
		Definition: payload.Extract,
		URL:        payload.ContentURLs.Desktop.Page,
	}, nil
}
