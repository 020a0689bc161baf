package models

import "time"

// RecordKind tags which raw shape a scraper produced. Orchestration code
// switches on this tag instead of on the concrete scraper type.
type RecordKind string

const (
	KindActivity      RecordKind = "activity"
	KindAccommodation RecordKind = "accommodation"
)

// Activity is a raw tour/activity listing as extracted from a page. It is
// transient: consumed by the normalizer, never persisted in this form.
type Activity struct {
	SourceID    string   `json:"source_id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location,omitempty"`
	Price       string   `json:"price,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	Images      []string `json:"images,omitempty"`
	Highlights  []string `json:"highlights,omitempty"`
	Includes    []string `json:"includes,omitempty"`
	Excludes    []string `json:"excludes,omitempty"`
}

// Accommodation is a raw lodging listing. Same lifecycle as Activity.
type Accommodation struct {
	SourceID      string   `json:"source_id,omitempty"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	City          string   `json:"city,omitempty"`
	Country       string   `json:"country,omitempty"`
	PricePerNight string   `json:"price_per_night,omitempty"`
	Images        []string `json:"images,omitempty"`
	Amenities     []string `json:"amenities,omitempty"`
}

// Listings is the tagged result every scraper returns, regardless of site.
type Listings struct {
	Kind           RecordKind      `json:"kind"`
	Activities     []Activity      `json:"activities,omitempty"`
	Accommodations []Accommodation `json:"accommodations,omitempty"`
}

// Len returns the number of raw records carried, whatever the kind.
func (l Listings) Len() int {
	if l.Kind == KindAccommodation {
		return len(l.Accommodations)
	}
	return len(l.Activities)
}

// TourStatus values for a processed tour within a scan.
const (
	TourEnabled  = "enabled"
	TourDisabled = "disabled"
)

// TourMetadata carries the scan provenance of a processed tour.
type TourMetadata struct {
	Images     []string   `json:"images,omitempty"`
	Highlights []string   `json:"highlights,omitempty"`
	Included   []string   `json:"included,omitempty"`
	Excluded   []string   `json:"excluded,omitempty"`
	SourceURL  string     `json:"source_url"`
	ScannedAt  time.Time  `json:"scanned_at"`
	Type       RecordKind `json:"type"`
}

// ProcessedTour is the canonical normalized shape produced by a scan.
// Name and Destination are always set (defaulted to "Unknown" when the raw
// record carries nothing). Price nil means "unknown", which is distinct from
// a legitimate zero price. Never mutated after creation within a scan.
type ProcessedTour struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Destination string       `json:"destination"`
	Duration    string       `json:"duration"`
	Status      string       `json:"status"`
	Description string       `json:"description,omitempty"`
	Price       *float64     `json:"price,omitempty"`
	Currency    string       `json:"currency"`
	Metadata    TourMetadata `json:"metadata"`
}

// Tour is the persisted entity read back during discovery. Only tours with
// status "published" are eligible for matching.
type Tour struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Destination  string    `json:"destination"`
	City         string    `json:"city,omitempty"`
	Country      string    `json:"country,omitempty"`
	Price        float64   `json:"price"`
	Currency     string    `json:"currency"`
	Duration     string    `json:"duration,omitempty"`
	DurationDays int       `json:"duration_days,omitempty"`
	Categories   []string  `json:"categories,omitempty"`
	Highlights   []string  `json:"highlights,omitempty"`
	Included     []string  `json:"included,omitempty"`
	Excluded     []string  `json:"excluded,omitempty"`
	Rating       float64   `json:"rating"`
	ReviewCount  int       `json:"review_count"`
	BookingCount int       `json:"booking_count"`
	Featured     bool      `json:"featured"`
	Verified     bool      `json:"verified"`
	Status       string    `json:"status"`
	SourceURL    string    `json:"source_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ScoredTour pairs a tour with its transient match score during ranking.
// Scores are recomputed on every discovery call and never persisted.
type ScoredTour struct {
	Tour       Tour `json:"tour"`
	MatchScore int  `json:"match_score"`
}

// DiscoveryCriteria is the ephemeral query object for tour discovery.
type DiscoveryCriteria struct {
	Destination string   `json:"destination"`
	Interests   []string `json:"interests,omitempty"`
	Duration    int      `json:"duration,omitempty"`
	Travelers   int      `json:"travelers,omitempty"`
	Budget      float64  `json:"budget,omitempty"`
	Category    string   `json:"category,omitempty"`
}

// LegacyItem is one record of pre-existing editorial content imported into
// the discovery fallback pool.
type LegacyItem struct {
	Title       string   `json:"title"`
	Destination string   `json:"destination"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

// PriceRange summarizes the min/max prices found in a scan.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ScanSummary describes the outcome of a website scan.
type ScanSummary struct {
	TotalFound   int         `json:"total_found"`
	Destinations []string    `json:"destinations"`
	PriceRange   *PriceRange `json:"price_range,omitempty"`
	WebsiteURL   string      `json:"website_url"`
	ScanDate     time.Time   `json:"scan_date"`
	ScraperUsed  string      `json:"scraper_used"`
}

// ScanResult is the full payload returned by a scan operation.
type ScanResult struct {
	Tours   []ProcessedTour `json:"tours"`
	Summary ScanSummary     `json:"summary"`
	Errors  []string        `json:"errors,omitempty"`
}
