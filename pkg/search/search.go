// Package search executes a single web search against the DuckDuckGo HTML
// endpoint and parses the result list.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/brandlens/brandlens/pkg/retry"
)

// DefaultEndpoint is the static HTML search page; it needs no API key and
// wraps result links in a redirect whose true target sits in the uddg
// query parameter.
const DefaultEndpoint = "https://html.duckduckgo.com/html/"

// maxResults caps output at the provider's native result count per page.
const maxResults = 10

const userAgent = "Mozilla/5.0 (compatible; brandlens/1.0)"

// ErrNoResults is returned when a response parses to zero usable entries.
// Callers treat it as a degraded state, not a run failure.
var ErrNoResults = errors.New("search returned no usable results")

// Result is one raw search hit in rank order.
type Result struct {
	Title   string
	Snippet string
	URL     string
	Rank    int
}

// Client performs one search request per run.
type Client struct {
	httpClient *http.Client
	endpoint   string
	policy     retry.Policy
	logger     *slog.Logger
}

func NewClient(timeout time.Duration, policy retry.Policy, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   DefaultEndpoint,
		policy:     policy,
		logger:     logger,
	}
}

// SetEndpoint overrides the search endpoint. Used by tests.
func (c *Client) SetEndpoint(endpoint string) {
	c.endpoint = endpoint
}

// Search runs the query and returns parsed results in rank order. Timeouts
// and 429/5xx statuses retry per the configured policy; any other status
// fails the search immediately. A response with no usable entries returns
// ErrNoResults.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	reqURL := fmt.Sprintf("%s?q=%s", c.endpoint, url.QueryEscape(query))

	var body []byte
	err := c.policy.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("search request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &retry.StatusError{Code: resp.StatusCode}
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read search response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	results, err := parseResults(string(body))
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}

// parseResults extracts title/snippet/href entries from the result page.
func parseResults(html string) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	var results []Result
	doc.Find("div.result").EachWithBreak(func(i int, s *goquery.Selection) bool {
		link := s.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return true
		}

		target := DecodeRedirect(href)
		if target == "" || isEngineHost(hostOf(target)) {
			return true
		}

		results = append(results, Result{
			Title:   strings.TrimSpace(link.Text()),
			Snippet: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
			URL:     target,
			Rank:    len(results),
		})
		return len(results) < maxResults
	})
	return results, nil
}

// DecodeRedirect unwraps the engine's redirect URLs: the true target is
// carried in the uddg query parameter, possibly escaped a second time.
func DecodeRedirect(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	if strings.Contains(parsed.Host, "duckduckgo.com") || parsed.Host == "" {
		if target := strings.TrimSpace(parsed.Query().Get("uddg")); target != "" {
			if unescaped, unescapeErr := url.QueryUnescape(target); unescapeErr == nil && strings.HasPrefix(unescaped, "http") {
				return unescaped
			}
			return target
		}
	}

	if parsed.Host == "" {
		return ""
	}
	return parsed.String()
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Host)
}

// isEngineHost reports whether the host belongs to the search provider
// itself; those entries never count as sources.
func isEngineHost(host string) bool {
	host = strings.TrimPrefix(host, "www.")
	return host == "duckduckgo.com" || strings.HasSuffix(host, ".duckduckgo.com")
}
