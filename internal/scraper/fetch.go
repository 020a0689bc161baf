package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// fetcher is the HTTP fetch core shared by the goquery-based scrapers. Every
// request passes through the site's RateLimiter and carries a rotated user
// agent.
type fetcher struct {
	client  *http.Client
	limiter *RateLimiter
	agents  *UserAgentRotator
	opts    Options
}

func newFetcher(limiter *RateLimiter, agents *UserAgentRotator, opts Options) *fetcher {
	client := &http.Client{Timeout: opts.Timeout}
	if !opts.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return &fetcher{
		client:  client,
		limiter: limiter,
		agents:  agents,
		opts:    opts,
	}
}

// fetchDocument retrieves url and parses it into a goquery document, retrying
// transient failures up to opts.MaxRetries times.
func (f *fetcher) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	var lastErr error
	for attempt := 0; attempt <= f.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.opts.RetryDelay):
			}
		}

		doc, err := f.fetchOnce(ctx, url)
		if err == nil {
			return doc, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (f *fetcher) fetchOnce(ctx context.Context, url string) (*goquery.Document, error) {
	err := f.limiter.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", f.agents.GetNext())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "text/html") {
		return nil, fmt.Errorf("non-HTML content type: %s", contentType)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

func (f *fetcher) dispose() {
	if f.client != nil {
		f.client.CloseIdleConnections()
	}
}
