package execution

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// VenueBreaker wraps one venue's outbound calls in a circuit breaker and a
// token-bucket rate limiter, so a misbehaving venue API degrades into
// fast-failing requests instead of piling up retries against it.
type VenueBreaker struct {
	venue   string
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// NewVenueBreaker configures a breaker that trips after 5 consecutive
// failures and stays open for 30s, paired with a limiter allowing rps
// requests per second (burst capped at the same figure).
func NewVenueBreaker(venue string, rps float64) *VenueBreaker {
	settings := gobreaker.Settings{
		Name:        venue,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &VenueBreaker{
		venue:   venue,
		breaker: gobreaker.NewCircuitBreaker(settings),
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Execute waits for the rate limiter then runs fn through the circuit
// breaker, returning a wrapped error if the venue's breaker is open or the
// rate limiter's context expires first.
func (v *VenueBreaker) Execute(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	if err := v.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: rate limit wait: %w", v.venue, err)
	}
	result, err := v.breaker.Execute(fn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", v.venue, err)
	}
	return result, nil
}

// State reports the breaker's current state (closed/open/half-open).
func (v *VenueBreaker) State() gobreaker.State {
	return v.breaker.State()
}

// Router dispatches execution requests to per-venue breakers, creating one
// lazily on first use.
type Router struct {
	mu       sync.Mutex
	breakers map[string]*VenueBreaker
	defaultRPS float64
}

// NewRouter returns a router that gives every venue's breaker defaultRPS
// requests per second; there is no per-venue override.
func NewRouter(defaultRPS float64) *Router {
	return &Router{breakers: make(map[string]*VenueBreaker), defaultRPS: defaultRPS}
}

// Venue returns (creating if necessary) the breaker for venue.
func (r *Router) Venue(venue string) *VenueBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.breakers[venue]; ok {
		return b
	}
	b := NewVenueBreaker(venue, r.defaultRPS)
	r.breakers[venue] = b
	return b
}
