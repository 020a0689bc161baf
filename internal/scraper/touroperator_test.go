package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourscan/internal/models"
)

func testOptions() Options {
	return Options{
		Timeout:         5 * time.Second,
		FollowRedirects: true,
		MaxRetries:      0,
		RetryDelay:      time.Millisecond,
	}
}

func testLimiter() *RateLimiter {
	return NewRateLimiter(time.Millisecond, 1)
}

func testRotator() *UserAgentRotator {
	return NewUserAgentRotator(nil, RotateSequential, 0)
}

func serveHTML(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const operatorPage = `<html><body>
<div class="tour-card">
  <h2>Douro Valley Day Trip</h2>
  <p class="description">Wine tasting and river cruise.</p>
  <span class="location">Porto</span>
  <span class="price">$95</span>
  <span class="duration">9 hours</span>
  <img src="https://cdn.example.com/douro.jpg">
  <ul class="highlights"><li>Two quinta visits</li><li>Lunch included</li></ul>
</div>
<div class="tour-card">
  <h2>Douro Valley Day Trip</h2>
  <span class="price">$95</span>
</div>
<div class="tour-card">
  <h2>Sintra Palaces Tour</h2>
  <span class="price">from &euro;75</span>
</div>
</body></html>`

func TestTourOperatorScraper_ParsesCards(t *testing.T) {
	srv := serveHTML(t, operatorPage)
	scr := NewTourOperatorScraper(testLimiter(), testRotator(), testOptions(), nil)
	defer scr.Dispose()

	result, err := scr.ScrapeURL(context.Background(), srv.URL)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, models.KindActivity, result.Data.Kind)
	// The duplicate card collapses on title within the page.
	require.Len(t, result.Data.Activities, 2)

	first := result.Data.Activities[0]
	assert.Equal(t, "Douro Valley Day Trip", first.Title)
	assert.Equal(t, "Wine tasting and river cruise.", first.Description)
	assert.Equal(t, "Porto", first.Location)
	assert.Equal(t, "$95", first.Price)
	assert.Equal(t, "9 hours", first.Duration)
	assert.Equal(t, []string{"https://cdn.example.com/douro.jpg"}, first.Images)
	assert.Equal(t, []string{"Two quinta visits", "Lunch included"}, first.Highlights)

	assert.Equal(t, 2, result.Metadata.ItemsFound)
}

type stubExtractor struct {
	activities []models.Activity
	err        error
	called     bool
}

func (s *stubExtractor) ExtractActivities(_ context.Context, _ string, _ string) ([]models.Activity, error) {
	s.called = true
	return s.activities, s.err
}

func TestTourOperatorScraper_ExtractorFallbackOnEmptyPage(t *testing.T) {
	srv := serveHTML(t, "<html><body><p>Welcome to our agency.</p></body></html>")
	ext := &stubExtractor{activities: []models.Activity{{Title: "Hidden Gems Walk", Price: "$30"}}}
	scr := NewTourOperatorScraper(testLimiter(), testRotator(), testOptions(), ext)
	defer scr.Dispose()

	result, err := scr.ScrapeURL(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.True(t, ext.called)
	require.Len(t, result.Data.Activities, 1)
	assert.Equal(t, "Hidden Gems Walk", result.Data.Activities[0].Title)
}

func TestTourOperatorScraper_ExtractorNotCalledWhenCardsParse(t *testing.T) {
	srv := serveHTML(t, operatorPage)
	ext := &stubExtractor{}
	scr := NewTourOperatorScraper(testLimiter(), testRotator(), testOptions(), ext)
	defer scr.Dispose()

	_, err := scr.ScrapeURL(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.False(t, ext.called)
}

func TestTourOperatorScraper_ExtractorErrorIsSoft(t *testing.T) {
	srv := serveHTML(t, "<html><body></body></html>")
	ext := &stubExtractor{err: errors.New("quota exceeded")}
	scr := NewTourOperatorScraper(testLimiter(), testRotator(), testOptions(), ext)
	defer scr.Dispose()

	result, err := scr.ScrapeURL(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Empty(t, result.Data.Activities)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "quota exceeded")
}

func TestTourOperatorScraper_HTTPErrorIsFailureNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "go away", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	scr := NewTourOperatorScraper(testLimiter(), testRotator(), testOptions(), nil)
	defer scr.Dispose()

	result, err := scr.ScrapeURL(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "403")
}

func TestTourOperatorScraper_DisposeIdempotent(t *testing.T) {
	scr := NewTourOperatorScraper(testLimiter(), testRotator(), testOptions(), nil)
	scr.Dispose()
	scr.Dispose()
}
