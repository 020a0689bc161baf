package scraper

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Kind identifies which site scraper handles a URL.
type Kind string

const (
	KindTripAdvisor  Kind = "tripadvisor"
	KindBooking      Kind = "bookingcom"
	KindGetYourGuide Kind = "getyourguide"
	KindTourOperator Kind = "touroperator"
)

// partnerHosts are known tour partner sites handled by the generic operator
// scraper under their own rate-limit key.
var partnerHosts = []string{
	"viator.com",
	"klook.com",
	"tourradar.com",
}

// hostPatterns is checked in priority order; the first match wins.
var hostPatterns = []struct {
	substr string
	kind   Kind
}{
	{"tripadvisor.", KindTripAdvisor},
	{"booking.com", KindBooking},
	{"getyourguide.", KindGetYourGuide},
}

// ForURL maps a URL's hostname to a scraper kind. Unknown hosts fall back to
// the generic tour operator scraper.
func ForURL(rawURL string) Kind {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return KindTourOperator
	}
	host := strings.ToLower(u.Hostname())

	for _, p := range hostPatterns {
		if strings.Contains(host, p.substr) {
			return p.kind
		}
	}
	for _, partner := range partnerHosts {
		if strings.HasSuffix(host, partner) {
			return KindTourOperator
		}
	}
	return KindTourOperator
}

// SiteKey derives the rate-limit key for a URL: its registrable hostname, or
// the raw input when unparsable.
func SiteKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return strings.ToLower(u.Hostname())
}

// Config carries everything a Factory needs to construct scrapers.
type Config struct {
	Window     time.Duration
	Requests   int
	UserAgents []string
	Strategy   RotationStrategy
	Options    Options
	Extractor  Extractor
}

func DefaultConfig() Config {
	return Config{
		Window:   60 * time.Second,
		Requests: 2,
		Strategy: RotateRandom,
		Options:  DefaultOptions(),
	}
}

// Factory builds site scrapers sharing one limiter set and one rotator. It is
// constructed by the caller and injected; there are no package-level
// instances.
type Factory struct {
	limiters  *LimiterSet
	agents    *UserAgentRotator
	opts      Options
	extractor Extractor
}

func NewFactory(cfg Config) *Factory {
	if cfg.Window <= 0 {
		cfg.Window = 60 * time.Second
	}
	if cfg.Requests <= 0 {
		cfg.Requests = 2
	}
	return &Factory{
		limiters:  NewLimiterSet(cfg.Window, cfg.Requests),
		agents:    NewUserAgentRotator(cfg.UserAgents, cfg.Strategy, time.Now().UnixNano()),
		opts:      cfg.Options,
		extractor: cfg.Extractor,
	}
}

// ForURL returns the scraper responsible for rawURL along with its kind.
// Callers own the returned scraper and must call Dispose when done.
func (f *Factory) ForURL(rawURL string) (Scraper, Kind, error) {
	kind := ForURL(rawURL)
	limiter := f.limiters.For(SiteKey(rawURL))

	switch kind {
	case KindTripAdvisor:
		return NewTripAdvisorScraper(limiter, f.agents, f.opts), kind, nil
	case KindBooking:
		return NewBookingScraper(limiter, f.agents, f.opts), kind, nil
	case KindGetYourGuide:
		return NewGetYourGuideScraper(limiter, f.agents, f.opts), kind, nil
	case KindTourOperator:
		return NewTourOperatorScraper(limiter, f.agents, f.opts, f.extractor), kind, nil
	default:
		return nil, kind, fmt.Errorf("unsupported scraper kind: %s", kind)
	}
}
