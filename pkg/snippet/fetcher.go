// Package snippet retrieves selected pages with bounded parallelism and
// extracts prompt-ready text from each.
package snippet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/pemistahl/lingua-go"

	"github.com/brandlens/brandlens/pkg/db"
	"github.com/brandlens/brandlens/pkg/retry"
	"github.com/brandlens/brandlens/pkg/selector"
)

type job struct {
	index     int
	candidate selector.Candidate
}

// Fetcher retrieves candidate pages and turns them into snippets.
type Fetcher struct {
	httpClient *http.Client
	policy     retry.Policy
	store      *db.DB
	cacheAge   time.Duration
	forceFetch bool
	maxChars   int
	detector   lingua.LanguageDetector
	logger     *slog.Logger
}

// Options configures a Fetcher. Store may be nil to disable the page cache.
type Options struct {
	Timeout    time.Duration
	Policy     retry.Policy
	Store      *db.DB
	CacheAge   time.Duration
	ForceFetch bool
	MaxChars   int
	Detector   lingua.LanguageDetector
	Logger     *slog.Logger
}

func NewFetcher(opts Options) *Fetcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: opts.Timeout},
		policy:     opts.Policy,
		store:      opts.Store,
		cacheAge:   opts.CacheAge,
		forceFetch: opts.ForceFetch,
		maxChars:   opts.MaxChars,
		detector:   opts.Detector,
		logger:     logger,
	}
}

// FetchAll retrieves every candidate concurrently, with parallelism bounded
// by the candidate count. Each fetch carries its own retry budget and its
// failure only skips that one source. Results come back in the original
// selection order regardless of completion order.
func (f *Fetcher) FetchAll(ctx context.Context, candidates []selector.Candidate) []Snippet {
	if len(candidates) == 0 {
		return nil
	}

	// Write-once slots keyed by selection index; no locking needed beyond
	// the join below.
	slots := make([]*Snippet, len(candidates))

	var wg sync.WaitGroup
	jobs := make(chan job, len(candidates))

	for w := 0; w < len(candidates); w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range jobs {
				snip, err := f.fetchOne(ctx, j.candidate.URL)
				if err != nil {
					f.logger.Warn("skipping source", "worker_id", id, "url", j.candidate.URL, "error", err)
					continue
				}
				slots[j.index] = &snip
			}
		}(w)
	}

	for i, c := range candidates {
		jobs <- job{index: i, candidate: c}
	}
	close(jobs)
	wg.Wait()

	snippets := make([]Snippet, 0, len(candidates))
	for _, s := range slots {
		if s != nil {
			snippets = append(snippets, *s)
		}
	}
	return snippets
}

// fetchOne loads a page from the cache or the network and extracts its
// snippet.
func (f *Fetcher) fetchOne(ctx context.Context, rawURL string) (Snippet, error) {
	html, cached := f.cachedPage(rawURL)
	if !cached {
		var err error
		html, err = f.getPage(ctx, rawURL)
		if err != nil {
			f.recordAccess(rawURL, statusOf(err), "fetch_error", false)
			return Snippet{}, err
		}
		f.storePage(rawURL, html)
	}
	f.recordAccess(rawURL, http.StatusOK, "", true)

	snip, err := Extract(rawURL, html, f.maxChars)
	if err != nil {
		return Snippet{}, fmt.Errorf("failed to extract snippet: %w", err)
	}
	snip.Language = DetectLanguage(f.detector, snip.Text)
	return snip, nil
}

func (f *Fetcher) getPage(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte
	err := f.policy.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}

		resp, err := f.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to make HTTP request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &retry.StatusError{Code: resp.StatusCode}
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}
		return nil
	})
	return body, err
}

func (f *Fetcher) cachedPage(rawURL string) ([]byte, bool) {
	if f.store == nil || f.forceFetch {
		return nil, false
	}
	html, fresh, err := f.store.GetPage(rawURL, f.cacheAge)
	if err != nil {
		f.logger.Warn("cache lookup failed, fetching fresh", "url", rawURL, "error", err)
		return nil, false
	}
	return html, fresh
}

func (f *Fetcher) storePage(rawURL string, html []byte) {
	if f.store == nil {
		return
	}
	if err := f.store.PutPage(rawURL, html); err != nil {
		f.logger.Warn("failed to cache page", "url", rawURL, "error", err)
	}
}

func (f *Fetcher) recordAccess(rawURL string, status int, errorType string, ok bool) {
	if f.store == nil {
		return
	}
	if err := f.store.RecordAccess(rawURL, status, errorType, ok); err != nil {
		f.logger.Warn("failed to record access", "url", rawURL, "error", err)
	}
}

func statusOf(err error) int {
	var statusErr *retry.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code
	}
	return 0
}
