package scraper

import (
	"context"
	"time"

	"tourscan/internal/models"
)

// Result is what every scraper returns for a single page. Per-page fetch or
// parse failures are reported through Success/Errors rather than a returned
// error; ScrapeURL only errors on unrecoverable conditions such as missing
// configuration.
type Result struct {
	Success  bool            `json:"success"`
	Data     models.Listings `json:"data"`
	Errors   []string        `json:"errors,omitempty"`
	Metadata ResultMetadata  `json:"metadata"`
}

// ResultMetadata carries per-page scrape accounting.
type ResultMetadata struct {
	ItemsFound       int           `json:"items_found"`
	ProcessingTimeMs int64         `json:"processing_time_ms"`
	FetchedAt        time.Time     `json:"fetched_at"`
	Elapsed          time.Duration `json:"-"`
}

// Options controls fetch behavior shared by all scrapers.
type Options struct {
	Timeout         time.Duration `json:"timeout"`
	FollowRedirects bool          `json:"follow_redirects"`
	MaxRetries      int           `json:"max_retries"`
	RetryDelay      time.Duration `json:"retry_delay"`
}

// Scraper fetches one URL and extracts structured listings from it.
// Dispose releases any held resources (a headless-browser session, a client
// pool) and must be idempotent: callers invoke it on both success and error
// paths, sometimes more than once.
type Scraper interface {
	ScrapeURL(ctx context.Context, url string) (*Result, error)
	Dispose()
}

func DefaultOptions() Options {
	return Options{
		Timeout:         20 * time.Second,
		FollowRedirects: true,
		MaxRetries:      2,
		RetryDelay:      2 * time.Second,
	}
}

func failure(errs ...string) *Result {
	return &Result{Success: false, Errors: errs}
}
