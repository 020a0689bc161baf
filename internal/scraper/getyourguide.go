package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"tourscan/internal/models"
)

// GetYourGuideScraper extracts activity listings from GetYourGuide search and
// destination pages.
type GetYourGuideScraper struct {
	fetcher *fetcher
}

func NewGetYourGuideScraper(limiter *RateLimiter, agents *UserAgentRotator, opts Options) *GetYourGuideScraper {
	return &GetYourGuideScraper{fetcher: newFetcher(limiter, agents, opts)}
}

func (s *GetYourGuideScraper) ScrapeURL(ctx context.Context, url string) (*Result, error) {
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

func (s *GetYourGuideScraper) Dispose() {
	s.fetcher.dispose()
}

func (s *GetYourGuideScraper) parseListings(doc *goquery.Document) []models.Activity {
	var activities []models.Activity

	doc.Find("[data-test-id='activity-card'], .activity-card, article.vertical-activity-card").Each(func(_ int, card *goquery.Selection) {
		a := models.Activity{
			Title:       firstText(card, "[data-test-id='activity-card-title']", "h3", "h2"),
			Description: firstText(card, ".activity-card__description", "p"),
			Location:    firstText(card, "[data-test-id='activity-card-location']", ".activity-card__location"),
			Price:       firstText(card, "[data-test-id='activity-price']", ".baseline-pricing__value", ".price"),
			Duration:    firstText(card, "[data-test-id='activity-duration']", ".activity-card__duration"),
		}
		if a.Title == "" {
			return
		}

		card.Find("img").Each(func(_ int, img *goquery.Selection) {
			if src := img.AttrOr("src", ""); strings.HasPrefix(src, "http") {
				a.Images = append(a.Images, src)
			}
		})

		activities = append(activities, a)
	})

	return activities
}
