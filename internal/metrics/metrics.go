package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PagesScraped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourscan_pages_scraped_total",
			Help: "Total number of pages fetched during scans",
		},
		[]string{"scraper"},
	)

	PageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourscan_page_errors_total",
			Help: "Total number of per-page scrape failures",
		},
		[]string{"scraper"},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tourscan_scan_duration_seconds",
			Help:    "Duration of full website scans in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	ToursPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tourscan_tours_persisted_total",
			Help: "Total number of tours written to the store",
		},
	)

	DiscoveryQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tourscan_discovery_queries_total",
			Help: "Total number of discovery queries served",
		},
	)

	DiscoveryCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tourscan_discovery_cache_hits_total",
			Help: "Discovery queries answered from the cache",
		},
	)
)
