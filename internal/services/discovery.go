package services

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"tourscan/internal/metrics"
	"tourscan/internal/models"
	"tourscan/internal/storage"
)

const (
	candidateLimit = 30
	resultLimit    = 20
	fallbackFloor  = 5
)

// categoryNames maps user-facing interest categories to the category labels
// tours are stored under.
var categoryNames = map[string]string{
	"restaurants": "Food & Wine",
	"food":        "Food & Wine",
	"museums":     "Culture & History",
	"culture":     "Culture & History",
	"adventure":   "Adventure",
	"hiking":      "Adventure",
	"beaches":     "Beach & Relaxation",
	"nightlife":   "Nightlife",
	"shopping":    "Shopping",
	"nature":      "Nature & Wildlife",
	"wildlife":    "Nature & Wildlife",
}

// TourFinder is the read side of the tour store used by discovery.
type TourFinder interface {
	FindTours(ctx context.Context, filter storage.TourFilter) ([]models.Tour, error)
	FindLegacyContent(ctx context.Context, destination string, limit int) ([]models.Tour, error)
}

// DiscoveryService ranks stored tours against a traveler's criteria.
type DiscoveryService struct {
	store  TourFinder
	cache  *storage.DiscoveryCache
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewDiscoveryService(store TourFinder, cache *storage.DiscoveryCache, logger *zap.Logger, seed int64) *DiscoveryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiscoveryService{
		store:  store,
		cache:  cache,
		logger: logger,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// DiscoverTours returns up to 20 ranked tours for the criteria. Discovery
// fails soft: any storage error yields an empty list, never an error to the
// caller.
func (s *DiscoveryService) DiscoverTours(ctx context.Context, criteria models.DiscoveryCriteria) []models.Tour {
	metrics.DiscoveryQueries.Inc()

	cacheKey := storage.CacheKey(criteria)
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		metrics.DiscoveryCacheHits.Inc()
		return cached
	}

	filter := storage.TourFilter{
		Destination: criteria.Destination,
		Interests:   criteria.Interests,
		Category:    mapCategory(criteria.Category),
		MaxPrice:    priceCeiling(criteria),
		Limit:       candidateLimit,
	}

	candidates, err := s.store.FindTours(ctx, filter)
	if err != nil {
		s.logger.Warn("discovery query failed, returning empty result",
			zap.String("destination", criteria.Destination), zap.Error(err))
		return []models.Tour{}
	}

	scored := make([]models.ScoredTour, 0, len(candidates))
	for _, tour := range candidates {
		scored = append(scored, models.ScoredTour{
			Tour:       tour,
			MatchScore: calculateMatchScore(tour, criteria) + s.jitter(),
		})
	}

	// Featured and verified tours lead regardless of score; score breaks
	// the remaining ties.
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Tour.Featured != b.Tour.Featured {
			return a.Tour.Featured
		}
		if a.Tour.Verified != b.Tour.Verified {
			return a.Tour.Verified
		}
		return a.MatchScore > b.MatchScore
	})

	results := make([]models.Tour, 0, resultLimit)
	for _, st := range scored {
		if len(results) == resultLimit {
			break
		}
		results = append(results, st.Tour)
	}

	if len(results) < fallbackFloor {
		legacy, err := s.store.FindLegacyContent(ctx, criteria.Destination, fallbackFloor-len(results))
		if err != nil {
			s.logger.Warn("legacy content fallback failed", zap.Error(err))
		} else {
			results = append(results, legacy...)
		}
	}

	s.cache.Set(ctx, cacheKey, results)
	return results
}

// calculateMatchScore computes the deterministic part of a tour's relevance
// score. Jitter is added separately.
func calculateMatchScore(tour models.Tour, criteria models.DiscoveryCriteria) int {
	score := 0
	dest := strings.ToLower(criteria.Destination)

	if dest != "" && (containsFold(tour.Destination, dest) ||
		containsFold(tour.City, dest) || containsFold(tour.Country, dest)) {
		score += 50
	}

	haystack := strings.ToLower(tour.Name + " " + tour.Description + " " + strings.Join(tour.Categories, " "))
	for _, interest := range criteria.Interests {
		if interest != "" && strings.Contains(haystack, strings.ToLower(interest)) {
			score += 15
		}
	}

	if mapped := mapCategory(criteria.Category); mapped != "" {
		for _, c := range tour.Categories {
			if strings.EqualFold(c, mapped) {
				score += 20
				break
			}
		}
	}

	if criteria.Duration > 0 && tour.DurationDays > 0 {
		diff := criteria.Duration - tour.DurationDays
		if diff < 0 {
			diff = -diff
		}
		if bonus := 15 - diff*3; bonus > 0 {
			score += bonus
		}
	}

	if criteria.Budget > 0 && tour.Price > 0 {
		switch {
		case tour.Price <= criteria.Budget:
			score += 20
		case tour.Price <= criteria.Budget*1.5:
			score += 10
		}
	}

	if tour.Featured {
		score += 10
	}
	if tour.Rating >= 4.5 {
		score += 10
	}
	if tour.ReviewCount > 50 {
		score += 5
	}

	return score
}

// priceCeiling derives a per-day price cap from the budget, assuming a
// week-long trip when no duration is given.
func priceCeiling(criteria models.DiscoveryCriteria) float64 {
	if criteria.Budget <= 0 {
		return 0
	}
	days := criteria.Duration
	if days < 7 {
		days = 7
	}
	return criteria.Budget / float64(days) * 1.5
}

func mapCategory(category string) string {
	if category == "" {
		return ""
	}
	if mapped, ok := categoryNames[strings.ToLower(category)]; ok {
		return mapped
	}
	return category
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

// jitter returns a uniform value in [0, 5) to break ties and vary repeated
// identical queries.
func (s *DiscoveryService) jitter() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(5)
}
