package scraper

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"tourscan/internal/models"
)

// BookingScraper extracts accommodation listings from Booking.com, which
// renders its result pages with JavaScript. It drives a headless browser and
// keeps one allocator alive across pages; Dispose tears it down and is safe
// to call repeatedly.
type BookingScraper struct {
	limiter *RateLimiter
	agents  *UserAgentRotator
	opts    Options

	mu        sync.Mutex
	allocCtx  context.Context
	cancelAll context.CancelFunc
}

func NewBookingScraper(limiter *RateLimiter, agents *UserAgentRotator, opts Options) *BookingScraper {
	return &BookingScraper{
		limiter: limiter,
		agents:  agents,
		opts:    opts,
	}
}

// browserContext lazily starts the headless browser allocator.
func (s *BookingScraper) browserContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.allocCtx == nil {
		execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.UserAgent(s.agents.GetNext()),
			chromedp.WindowSize(1280, 900),
		)
		s.allocCtx, s.cancelAll = chromedp.NewExecAllocator(context.Background(), execOpts...)
	}
	return s.allocCtx
}

func (s *BookingScraper) ScrapeURL(ctx context.Context, url string) (*Result, error) {
	start := time.Now()

	if err := s.limiter.Wait(ctx); err != nil {
		return failure(err.Error()), nil
	}

	html, err := s.fetchRendered(ctx, url)
	if err != nil {
		return failure(err.Error()), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return failure("parsing HTML: " + err.Error()), nil
	}

	accommodations := s.parseListings(doc)
	return &Result{
		Success: true,
		Data:    models.Listings{Kind: models.KindAccommodation, Accommodations: accommodations},
		Metadata: ResultMetadata{
			ItemsFound:       len(accommodations),
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			FetchedAt:        time.Now(),
			Elapsed:          time.Since(start),
		},
	}, nil
}

// fetchRendered loads url in a fresh tab and returns the rendered DOM.
func (s *BookingScraper) fetchRendered(ctx context.Context, url string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(s.browserContext(), chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTab()

	timeout := s.opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, timeout)
	defer cancelTimeout()

	// Propagate caller cancellation into the tab.
	go func() {
		select {
		case <-ctx.Done():
			cancelTab()
		case <-tabCtx.Done():
		}
	}()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", err
	}
	return html, nil
}

func (s *BookingScraper) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelAll != nil {
		s.cancelAll()
		s.cancelAll = nil
		s.allocCtx = nil
	}
}

func (s *BookingScraper) parseListings(doc *goquery.Document) []models.Accommodation {
	var accommodations []models.Accommodation

	doc.Find("[data-testid='property-card'], .sr_property_block").Each(func(_ int, card *goquery.Selection) {
		acc := models.Accommodation{
			Name:          firstText(card, "[data-testid='title']", ".sr-hotel__name", "h3"),
			Description:   firstText(card, "[data-testid='property-card-container'] p", ".hotel_desc"),
			City:          firstText(card, "[data-testid='address']", ".sr_card_address_line"),
			PricePerNight: firstText(card, "[data-testid='price-and-discounted-price']", ".bui-price-display__value", ".price"),
		}
		if acc.Name == "" {
			return
		}

		card.Find("img").Each(func(_ int, img *goquery.Selection) {
			if src := img.AttrOr("src", ""); strings.HasPrefix(src, "http") {
				acc.Images = append(acc.Images, src)
			}
		})
		card.Find("[data-testid='facility'], .hotel_facility").Each(func(_ int, fac *goquery.Selection) {
			if text := strings.TrimSpace(fac.Text()); text != "" {
				acc.Amenities = append(acc.Amenities, text)
			}
		})

		accommodations = append(accommodations, acc)
	})

	return accommodations
}
