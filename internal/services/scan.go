package services

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"go.uber.org/zap"

	"tourscan/internal/metrics"
	"tourscan/internal/models"
	"tourscan/internal/scraper"
)

const (
	DefaultTenant    = "default"
	DefaultScanDepth = 10
	MaxScanDepth     = 50
)

// ScanRequest describes one website scan.
type ScanRequest struct {
	WebsiteURL string `json:"websiteUrl"`
	TenantID   string `json:"tenantId"`
	ScanDepth  int    `json:"scanDepth"`
}

// ScraperFactory hands out the scraper responsible for a URL.
type ScraperFactory interface {
	ForURL(rawURL string) (scraper.Scraper, scraper.Kind, error)
}

// TourWriter is the write side of the tour store used by scans.
type TourWriter interface {
	SaveTour(ctx context.Context, tenantID string, tour models.ProcessedTour) error
}

// ScanService walks a website's candidate listing pages sequentially,
// normalizes and deduplicates what the scraper extracts, and persists the
// survivors. A single bad page never aborts the scan.
type ScanService struct {
	factory     ScraperFactory
	store       TourWriter
	logger      *zap.Logger
	maxDuration time.Duration
}

func NewScanService(factory ScraperFactory, store TourWriter, logger *zap.Logger, maxDuration time.Duration) *ScanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxDuration <= 0 {
		maxDuration = 5 * time.Minute
	}
	return &ScanService{
		factory:     factory,
		store:       store,
		logger:      logger,
		maxDuration: maxDuration,
	}
}

// ScanWebsite runs a full scan. The scan deadline is a soft stop: when it
// expires, scanning halts and whatever was collected so far is returned.
func (s *ScanService) ScanWebsite(ctx context.Context, req ScanRequest) (*models.ScanResult, error) {
	started := time.Now()
	defer func() {
		metrics.ScanDuration.Observe(time.Since(started).Seconds())
	}()

	tenantID := req.TenantID
	if tenantID == "" {
		tenantID = DefaultTenant
	}
	depth := req.ScanDepth
	if depth <= 0 {
		depth = DefaultScanDepth
	}
	if depth > MaxScanDepth {
		depth = MaxScanDepth
	}

	candidates, err := candidateURLs(req.WebsiteURL, depth)
	if err != nil {
		return nil, fmt.Errorf("invalid website URL %q: %w", req.WebsiteURL, err)
	}

	scr, kind, err := s.factory.ForURL(req.WebsiteURL)
	if err != nil {
		return nil, fmt.Errorf("selecting scraper: %w", err)
	}
	defer scr.Dispose()

	scanCtx, cancel := context.WithTimeout(ctx, s.maxDuration)
	defer cancel()

	var (
		collected  []models.ProcessedTour
		scanErrors []string
	)

	for _, pageURL := range candidates {
		if scanCtx.Err() != nil {
			s.logger.Info("scan deadline reached, returning collected tours",
				zap.String("website", req.WebsiteURL), zap.Int("collected", len(collected)))
			break
		}

		result, err := scr.ScrapeURL(scanCtx, pageURL)
		metrics.PagesScraped.WithLabelValues(string(kind)).Inc()
		if err != nil {
			// Unrecoverable scraper failure: stop probing further pages
			// but keep whatever this scan already produced.
			scanErrors = append(scanErrors, fmt.Sprintf("%s: %v", pageURL, err))
			s.logger.Error("scraper failed unrecoverably", zap.String("url", pageURL), zap.Error(err))
			break
		}
		if !result.Success {
			metrics.PageErrors.WithLabelValues(string(kind)).Inc()
			scanErrors = append(scanErrors, pageErrors(pageURL, result.Errors)...)
			s.logger.Warn("page scrape failed, continuing",
				zap.String("url", pageURL), zap.Strings("errors", result.Errors))
			continue
		}

		scanErrors = append(scanErrors, pageErrors(pageURL, result.Errors)...)
		collected = append(collected, NormalizeListings(result.Data, pageURL)...)
	}

	tours := Deduplicate(collected)

	if s.store != nil {
		for _, tour := range tours {
			if err := s.store.SaveTour(ctx, tenantID, tour); err != nil {
				// One failed save must not block the rest.
				scanErrors = append(scanErrors, fmt.Sprintf("save %q: %v", tour.Name, err))
				s.logger.Warn("failed to persist tour", zap.String("name", tour.Name), zap.Error(err))
				continue
			}
			metrics.ToursPersisted.Inc()
		}
	}

	return &models.ScanResult{
		Tours:   tours,
		Summary: buildSummary(tours, req.WebsiteURL, kind),
		Errors:  scanErrors,
	}, nil
}

// candidateURLs returns the page itself plus common listing paths on the same
// origin, bounded by depth.
func candidateURLs(websiteURL string, depth int) ([]string, error) {
	u, err := url.Parse(websiteURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host")
	}

	origin := u.Scheme + "://" + u.Host
	seen := map[string]bool{websiteURL: true}
	candidates := []string{websiteURL}

	for _, path := range scraper.CandidatePaths {
		if len(candidates) >= depth {
			break
		}
		candidate := origin + path
		if seen[candidate] {
			continue
		}
		seen[candidate] = true
		candidates = append(candidates, candidate)
	}

	if len(candidates) > depth {
		candidates = candidates[:depth]
	}
	return candidates, nil
}

func pageErrors(pageURL string, errs []string) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, fmt.Sprintf("%s: %s", pageURL, e))
	}
	return out
}

func buildSummary(tours []models.ProcessedTour, websiteURL string, kind scraper.Kind) models.ScanSummary {
	summary := models.ScanSummary{
		TotalFound:   len(tours),
		Destinations: []string{},
		WebsiteURL:   websiteURL,
		ScanDate:     time.Now().UTC(),
		ScraperUsed:  string(kind),
	}

	seenDest := make(map[string]bool)
	var prices []float64
	for _, t := range tours {
		if !seenDest[t.Destination] {
			seenDest[t.Destination] = true
			summary.Destinations = append(summary.Destinations, t.Destination)
		}
		if t.Price != nil {
			prices = append(prices, *t.Price)
		}
	}
	sort.Strings(summary.Destinations)

	if len(prices) > 0 {
		pr := models.PriceRange{Min: prices[0], Max: prices[0]}
		for _, p := range prices[1:] {
			if p < pr.Min {
				pr.Min = p
			}
			if p > pr.Max {
				pr.Max = p
			}
		}
		summary.PriceRange = &pr
	}

	return summary
}
