package scraper

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourscan/internal/models"
)

const tripAdvisorPage = `<html><body>
<div data-automation="productCard">
  <h3>Alfama Walking Tour</h3>
  <div data-automation="productPrice">from $35.00</div>
  <div data-automation="productDuration">3 hours</div>
</div>
<div data-automation="productCard">
  <h3>Belem Food Experience</h3>
  <div data-automation="productPrice">$62</div>
</div>
<div data-automation="productCard">
  <div data-automation="productPrice">$10</div>
</div>
</body></html>`

func TestTripAdvisorScraper_ParsesProductCards(t *testing.T) {
	srv := serveHTML(t, tripAdvisorPage)
	scr := NewTripAdvisorScraper(testLimiter(), testRotator(), testOptions())
	defer scr.Dispose()

	result, err := scr.ScrapeURL(context.Background(), srv.URL)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, models.KindActivity, result.Data.Kind)
	// The titleless card is skipped.
	require.Len(t, result.Data.Activities, 2)
	assert.Equal(t, "Alfama Walking Tour", result.Data.Activities[0].Title)
	assert.Equal(t, "from $35.00", result.Data.Activities[0].Price)
	assert.Equal(t, "3 hours", result.Data.Activities[0].Duration)
}

func TestTripAdvisorScraper_FallsBackToLegacyMarkup(t *testing.T) {
	srv := serveHTML(t, `<html><body>
<div class="attraction_element">
  <div class="listing_title">Oceanarium Ticket</div>
  <div class="price">$25</div>
</div>
</body></html>`)
	scr := NewTripAdvisorScraper(testLimiter(), testRotator(), testOptions())
	defer scr.Dispose()

	result, err := scr.ScrapeURL(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, result.Data.Activities, 1)
	assert.Equal(t, "Oceanarium Ticket", result.Data.Activities[0].Title)
}

func TestFirstText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div><span class="empty">  </span><span class="name"> Hotel Aurora </span></div>`))
	require.NoError(t, err)

	sel := doc.Find("div")
	assert.Equal(t, "Hotel Aurora", firstText(sel, ".empty", ".name"))
	assert.Equal(t, "", firstText(sel, ".missing"))
}

func TestBookingScraper_ParseListings(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body>
<div data-testid="property-card">
  <div data-testid="title">Hotel Aurora</div>
  <div data-testid="address">Reykjavik</div>
  <span data-testid="price-and-discounted-price">$210</span>
  <div data-testid="facility">Free WiFi</div>
</div>
<div data-testid="property-card"></div>
</body></html>`))
	require.NoError(t, err)

	scr := NewBookingScraper(testLimiter(), testRotator(), testOptions())
	defer scr.Dispose()

	listings := scr.parseListings(doc)
	require.Len(t, listings, 1)
	assert.Equal(t, "Hotel Aurora", listings[0].Name)
	assert.Equal(t, "Reykjavik", listings[0].City)
	assert.Equal(t, "$210", listings[0].PricePerNight)
	assert.Equal(t, []string{"Free WiFi"}, listings[0].Amenities)
}

func TestBookingScraper_DisposeIdempotentWithoutBrowser(t *testing.T) {
	scr := NewBookingScraper(testLimiter(), testRotator(), testOptions())
	scr.Dispose()
	scr.Dispose()
}
