package scraper

import (
	"math/rand"
	"sync"
)

// RotationStrategy selects how the next user agent is picked from the pool.
type RotationStrategy string

const (
	RotateRandom     RotationStrategy = "random"
	RotateSequential RotationStrategy = "sequential"
)

// defaultUserAgents is a pool of common desktop browser identities.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
}

// UserAgentRotator supplies a varying client identity string per request.
// Under the random strategy successive calls usually differ but may repeat;
// there is no exclusion-without-replacement guarantee. Instances share no
// state with each other.
type UserAgentRotator struct {
	mu       sync.Mutex
	pool     []string
	strategy RotationStrategy
	next     int
	rng      *rand.Rand
}

// NewUserAgentRotator builds a rotator over pool. An empty pool falls back to
// the default browser identities.
func NewUserAgentRotator(pool []string, strategy RotationStrategy, seed int64) *UserAgentRotator {
	if len(pool) == 0 {
		pool = defaultUserAgents
	}
	if strategy != RotateSequential {
		strategy = RotateRandom
	}
	return &UserAgentRotator{
		pool:     pool,
		strategy: strategy,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// GetNext returns the next identity string according to the strategy.
func (r *UserAgentRotator) GetNext() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.strategy {
	case RotateSequential:
		ua := r.pool[r.next%len(r.pool)]
		r.next++
		return ua
	default:
		return r.pool[r.rng.Intn(len(r.pool))]
	}
}
