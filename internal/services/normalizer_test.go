package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourscan/internal/models"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *float64
	}{
		{"plain number", "45", f(45)},
		{"currency symbol", "$45", f(45)},
		{"decimal", "$45.50", f(45.5)},
		{"thousand separators", "$1,299.00", f(1299)},
		{"embedded in text", "from 89 per person", f(89)},
		{"large with separators", "USD 12,500", f(12500)},
		{"zero is a valid price", "0", f(0)},
		{"no number", "call for pricing", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePrice(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func f(v float64) *float64 { return &v }

func TestActivityToTour_Defaults(t *testing.T) {
	tour := ActivityToTour(models.Activity{Title: "City Walk"}, "https://example-tours.com")

	assert.Equal(t, "City Walk", tour.Name)
	assert.Equal(t, "Unknown", tour.Destination)
	assert.Equal(t, "Varies", tour.Duration)
	assert.Equal(t, "USD", tour.Currency)
	assert.Equal(t, models.TourEnabled, tour.Status)
	assert.Nil(t, tour.Price)
	assert.Equal(t, models.KindActivity, tour.Metadata.Type)
	assert.Equal(t, "https://example-tours.com", tour.Metadata.SourceURL)
}

func TestActivityToTour_PriceAndFields(t *testing.T) {
	tour := ActivityToTour(models.Activity{
		Title:    "Wine Tasting",
		Location: "Porto",
		Price:    "$1,250",
		Duration: "4 hours",
	}, "https://example.com/tours")

	require.NotNil(t, tour.Price)
	assert.Equal(t, 1250.0, *tour.Price)
	assert.Equal(t, "Porto", tour.Destination)
	assert.Equal(t, "4 hours", tour.Duration)
}

func TestActivityToTour_UniqueIDs(t *testing.T) {
	a := models.Activity{Title: "City Walk"}
	first := ActivityToTour(a, "https://example.com")
	second := ActivityToTour(a, "https://example.com")

	assert.NotEqual(t, first.ID, second.ID)
	assert.Contains(t, first.ID, "activity-")
}

func TestActivityToTour_SourceIDPreserved(t *testing.T) {
	tour := ActivityToTour(models.Activity{Title: "City Walk", SourceID: "ta-991"}, "https://example.com")
	assert.Equal(t, "activity-ta-991", tour.ID)
}

func TestAccommodationToTour_PackagePolicy(t *testing.T) {
	tour := AccommodationToTour(models.Accommodation{
		Name:          "Hotel Aurora",
		City:          "Reykjavik",
		PricePerNight: "$210",
	}, "https://booking.example.com")

	assert.Equal(t, "Hotel Aurora Package", tour.Name)
	assert.Equal(t, "Reykjavik", tour.Destination)
	assert.Equal(t, "3 nights", tour.Duration)
	assert.Equal(t, []string{"Accommodation", "Daily breakfast"}, tour.Metadata.Included)
	assert.Equal(t, []string{"Flights", "Transfers"}, tour.Metadata.Excluded)
	require.NotNil(t, tour.Price)
	assert.Equal(t, 210.0, *tour.Price)
}

func TestAccommodationToTour_CountryFallback(t *testing.T) {
	tour := AccommodationToTour(models.Accommodation{Name: "Beach Lodge", Country: "Portugal"}, "https://example.com")
	assert.Equal(t, "Portugal", tour.Destination)
}

func TestDeduplicate_FirstSeenOrder(t *testing.T) {
	a := models.ProcessedTour{Name: "City Walk", Price: f(10)}
	b := models.ProcessedTour{Name: "City Walk", Price: f(10)}
	c := models.ProcessedTour{Name: "Harbor Cruise", Price: f(10)}

	out := Deduplicate([]models.ProcessedTour{a, b, c})

	require.Len(t, out, 2)
	assert.Equal(t, "City Walk", out[0].Name)
	assert.Equal(t, "Harbor Cruise", out[1].Name)
}

func TestDeduplicate_DifferentPricesAreDistinct(t *testing.T) {
	out := Deduplicate([]models.ProcessedTour{
		{Name: "City Walk", Price: f(10)},
		{Name: "City Walk", Price: f(12)},
		{Name: "City Walk", Price: nil},
	})
	assert.Len(t, out, 3)
}

func TestDeduplicate_Idempotent(t *testing.T) {
	in := []models.ProcessedTour{
		{Name: "City Walk", Price: f(45)},
		{Name: "City Walk", Price: f(45)},
		{Name: "Food Tour", Price: nil},
		{Name: "Food Tour", Price: nil},
	}

	once := Deduplicate(in)
	twice := Deduplicate(once)

	assert.Equal(t, once, twice)
}

func TestNormalizeListings_TaggedDispatch(t *testing.T) {
	activities := NormalizeListings(models.Listings{
		Kind:       models.KindActivity,
		Activities: []models.Activity{{Title: "City Walk"}},
	}, "https://example.com")
	require.Len(t, activities, 1)
	assert.Equal(t, models.KindActivity, activities[0].Metadata.Type)

	stays := NormalizeListings(models.Listings{
		Kind:           models.KindAccommodation,
		Accommodations: []models.Accommodation{{Name: "Hotel Aurora"}},
	}, "https://example.com")
	require.Len(t, stays, 1)
	assert.Equal(t, models.KindAccommodation, stays[0].Metadata.Type)
	assert.Equal(t, "Hotel Aurora Package", stays[0].Name)
}
