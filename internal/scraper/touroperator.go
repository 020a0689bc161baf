package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"tourscan/internal/models"
)

// TourOperatorScraper is the generic fallback for independent operator sites
// with no known markup. It tries common listing-card patterns and, when those
// find nothing, hands the page to the AI extractor if one is configured.
type TourOperatorScraper struct {
	fetcher   *fetcher
	extractor Extractor
}

func NewTourOperatorScraper(limiter *RateLimiter, agents *UserAgentRotator, opts Options, extractor Extractor) *TourOperatorScraper {
	return &TourOperatorScraper{
		fetcher:   newFetcher(limiter, agents, opts),
		extractor: extractor,
	}
}

// CandidatePaths are the listing paths commonly used by operator sites,
// probed in order during a scan.
var CandidatePaths = []string{
	"/",
	"/tours",
	"/tours/",
	"/activities",
	"/experiences",
	"/packages",
	"/destinations",
	"/things-to-do",
}

func (s *TourOperatorScraper) ScrapeURL(ctx context.Context, url string) (*Result, error) {
	start := time.Now()

	doc, err := s.fetcher.fetchDocument(ctx, url)
	if err != nil {
		return failure(err.Error()), nil
	}

	activities := s.parseListings(doc)
	var errs []string

	if len(activities) == 0 && s.extractor != nil {
		html, htmlErr := doc.Html()
		if htmlErr == nil {
			extracted, extractErr := s.extractor.ExtractActivities(ctx, html, url)
			if extractErr != nil {
				errs = append(errs, "ai extraction: "+extractErr.Error())
			} else {
				activities = extracted
			}
		}
	}

	return &Result{
		Success: true,
		Data:    models.Listings{Kind: models.KindActivity, Activities: activities},
		Errors:  errs,
		Metadata: ResultMetadata{
			ItemsFound:       len(activities),
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			FetchedAt:        time.Now(),
			Elapsed:          time.Since(start),
		},
	}, nil
}

func (s *TourOperatorScraper) Dispose() {
	s.fetcher.dispose()
}

func (s *TourOperatorScraper) parseListings(doc *goquery.Document) []models.Activity {
	var activities []models.Activity
	seen := make(map[string]bool)

	cardSelectors := []string{
		".tour-card", ".tour-item", ".tour",
		".package-card", ".package",
		".activity-card", ".activity",
		".product-card", "article.product",
	}

	for _, selector := range cardSelectors {
		doc.Find(selector).Each(func(_ int, card *goquery.Selection) {
			a := models.Activity{
				Title:       firstText(card, "h1", "h2", "h3", ".title", ".name"),
				Description: firstText(card, ".description", ".summary", "p"),
				Location:    firstText(card, ".location", ".destination", ".place"),
				Price:       firstText(card, ".price", ".cost", ".amount", "[class*='price']"),
				Duration:    firstText(card, ".duration", ".length", "[class*='duration']"),
			}
			if a.Title == "" || seen[a.Title] {
				return
			}
			seen[a.Title] = true

			card.Find("img").Each(func(_ int, img *goquery.Selection) {
				if src := img.AttrOr("src", ""); strings.HasPrefix(src, "http") {
					a.Images = append(a.Images, src)
				}
			})
			card.Find(".highlights li, .includes li").Each(func(_ int, li *goquery.Selection) {
				if text := strings.TrimSpace(li.Text()); text != "" {
					a.Highlights = append(a.Highlights, text)
				}
			})

			activities = append(activities, a)
		})
	}

	return activities
}
