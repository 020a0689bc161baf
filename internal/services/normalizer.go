package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"tourscan/internal/models"
)

const (
	defaultCurrency    = "USD"
	unknownDestination = "Unknown"
	defaultDuration    = "Varies"
)

// Accommodation packages carry fixed defaults: the nightly listing carries no
// itinerary, so the package shape is an explicit policy rather than derived
// from the source.
const accommodationNights = "3 nights"

var (
	accommodationIncluded = []string{"Accommodation", "Daily breakfast"}
	accommodationExcluded = []string{"Flights", "Transfers"}
)

var priceRe = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// ParsePrice extracts the first numeric value from a free-text price,
// tolerating currency symbols and thousand separators. A string with no
// parseable number yields nil, which is distinct from a legitimate zero
// price.
func ParsePrice(raw string) *float64 {
	match := priceRe.FindString(raw)
	if match == "" {
		return nil
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return nil
	}
	return &value
}

// ActivityToTour maps a raw activity into the canonical tour shape.
func ActivityToTour(a models.Activity, sourceURL string) models.ProcessedTour {
	name := strings.TrimSpace(a.Title)
	if name == "" {
		name = unknownDestination
	}
	destination := strings.TrimSpace(a.Location)
	if destination == "" {
		destination = unknownDestination
	}
	duration := strings.TrimSpace(a.Duration)
	if duration == "" {
		duration = defaultDuration
	}

	return models.ProcessedTour{
		ID:          recordID(models.KindActivity, a.SourceID),
		Name:        name,
		Destination: destination,
		Duration:    duration,
		Status:      models.TourEnabled,
		Description: strings.TrimSpace(a.Description),
		Price:       ParsePrice(a.Price),
		Currency:    defaultCurrency,
		Metadata: models.TourMetadata{
			Images:     a.Images,
			Highlights: a.Highlights,
			Included:   a.Includes,
			Excluded:   a.Excludes,
			SourceURL:  sourceURL,
			ScannedAt:  time.Now().UTC(),
			Type:       models.KindActivity,
		},
	}
}

// AccommodationToTour maps a raw lodging listing into a packaged tour: the
// name gets a " Package" suffix and the stay defaults to three nights.
func AccommodationToTour(acc models.Accommodation, sourceURL string) models.ProcessedTour {
	name := strings.TrimSpace(acc.Name)
	if name == "" {
		name = unknownDestination
	}
	destination := strings.TrimSpace(acc.City)
	if destination == "" {
		destination = strings.TrimSpace(acc.Country)
	}
	if destination == "" {
		destination = unknownDestination
	}

	return models.ProcessedTour{
		ID:          recordID(models.KindAccommodation, acc.SourceID),
		Name:        name + " Package",
		Destination: destination,
		Duration:    accommodationNights,
		Status:      models.TourEnabled,
		Description: strings.TrimSpace(acc.Description),
		Price:       ParsePrice(acc.PricePerNight),
		Currency:    defaultCurrency,
		Metadata: models.TourMetadata{
			Images:     acc.Images,
			Highlights: acc.Amenities,
			Included:   accommodationIncluded,
			Excluded:   accommodationExcluded,
			SourceURL:  sourceURL,
			ScannedAt:  time.Now().UTC(),
			Type:       models.KindAccommodation,
		},
	}
}

// NormalizeListings flattens a tagged scraper result into processed tours.
func NormalizeListings(l models.Listings, sourceURL string) []models.ProcessedTour {
	var tours []models.ProcessedTour
	switch l.Kind {
	case models.KindAccommodation:
		for _, acc := range l.Accommodations {
			tours = append(tours, AccommodationToTour(acc, sourceURL))
		}
	default:
		for _, a := range l.Activities {
			tours = append(tours, ActivityToTour(a, sourceURL))
		}
	}
	return tours
}

// Deduplicate keeps the first occurrence of each (name, price) pair in list
// order. Tours whose price is unknown only collapse with other unknown-price
// tours of the same name. Idempotent: a second pass over its own output is a
// no-op.
func Deduplicate(tours []models.ProcessedTour) []models.ProcessedTour {
	seen := make(map[string]bool, len(tours))
	out := make([]models.ProcessedTour, 0, len(tours))

	for _, t := range tours {
		key := t.Name + "|"
		if t.Price != nil {
			key += strconv.FormatFloat(*t.Price, 'f', -1, 64)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// recordID derives a collision-resistant synthetic id: the source id when the
// site provides one, otherwise a fresh UUID.
func recordID(kind models.RecordKind, sourceID string) string {
	if sourceID != "" {
		return fmt.Sprintf("%s-%s", kind, sourceID)
	}
	return fmt.Sprintf("%s-%s", kind, uuid.NewString())
}
