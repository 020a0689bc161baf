package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"tourscan/internal/models"
)

// TripAdvisorScraper extracts activity listings from TripAdvisor attraction
// and tour pages.
type TripAdvisorScraper struct {
	fetcher *fetcher
}

func NewTripAdvisorScraper(limiter *RateLimiter, agents *UserAgentRotator, opts Options) *TripAdvisorScraper {
	return &TripAdvisorScraper{fetcher: newFetcher(limiter, agents, opts)}
}

func (s *TripAdvisorScraper) ScrapeURL(ctx context.Context, url string) (*Result, error) {
	start := time.Now()

	doc, err := s.fetcher.fetchDocument(ctx, url)
	if err != nil {
		return failure(err.Error()), nil
	}

	activities := s.parseListings(doc)
	return &Result{
		Success: true,
		Data:    models.Listings{Kind: models.KindActivity, Activities: activities},
		Metadata: ResultMetadata{
			ItemsFound:       len(activities),
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			FetchedAt:        time.Now(),
			Elapsed:          time.Since(start),
		},
	}, nil
}

func (s *TripAdvisorScraper) Dispose() {
	s.fetcher.dispose()
}

// parseListings tries the product-card markup first, then the older listing
// layout.
func (s *TripAdvisorScraper) parseListings(doc *goquery.Document) []models.Activity {
	var activities []models.Activity

	cardSelectors := []string{
		"[data-automation='productCard']",
		".attraction_element",
		".listing_details",
		"article.result-card",
	}

	for _, selector := range cardSelectors {
		doc.Find(selector).Each(func(_ int, card *goquery.Selection) {
			if a, ok := s.parseCard(card); ok {
				activities = append(activities, a)
			}
		})
		if len(activities) > 0 {
			break
		}
	}

	return activities
}

func (s *TripAdvisorScraper) parseCard(card *goquery.Selection) (models.Activity, bool) {
	a := models.Activity{
		Title:       firstText(card, "h3", "h2", ".listing_title", "[data-automation='productTitle']"),
		Description: firstText(card, ".description", "[data-automation='productDescription']", "p"),
		Location:    firstText(card, ".location", "[data-automation='productLocation']"),
		Price:       firstText(card, "[data-automation='productPrice']", ".price", ".price_wrap"),
		Duration:    firstText(card, "[data-automation='productDuration']", ".duration"),
	}
	if a.Title == "" {
		return a, false
	}

	card.Find("img").Each(func(_ int, img *goquery.Selection) {
		if src := img.AttrOr("src", ""); strings.HasPrefix(src, "http") {
			a.Images = append(a.Images, src)
		}
	})
	card.Find(".highlight, [data-automation='productHighlight'] li").Each(func(_ int, h *goquery.Selection) {
		if text := strings.TrimSpace(h.Text()); text != "" {
			a.Highlights = append(a.Highlights, text)
		}
	})

	return a, true
}

// firstText returns the trimmed text of the first selector that matches with
// non-empty content.
func firstText(sel *goquery.Selection, selectors ...string) string {
	for _, s := range selectors {
		if text := strings.TrimSpace(sel.Find(s).First().Text()); text != "" {
			return text
		}
	}
	return ""
}
