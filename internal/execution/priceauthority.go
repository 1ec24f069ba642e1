// Package execution routes trade decisions to paper or live venue
// executors, and validates/arbitrates the price feeds those decisions are
// priced against. It never decides whether to trade — rules and agents do
// that — only how a decided action reaches (or is held back from) a venue.
package execution

import (
	"fmt"
	"strings"
	"time"

	"github.com/sawpanic/riskdesk/internal/models"
	"github.com/sawpanic/riskdesk/internal/store"
	"github.com/sawpanic/riskdesk/internal/timeutil"
)

const priceCacheKeyPrefix = "price:"

// venuePriority is the fixed fallback order PriceAuthority checks, most
// trusted first.
var venuePriority = []string{"pyth", "kraken", "coingecko"}

// PriceResult is one symbol's resolved price, or the not-found zero value.
type PriceResult struct {
	Price      float64
	Confidence float64
	Source     string
	Ts         time.Time
	Found      bool
}

// PriceAuthority resolves a symbol's current price by checking each venue
// in venuePriority against the shared snapshot store, returning the first
// cached, positive price it finds.
type PriceAuthority struct {
	store store.SnapshotStore
}

// NewPriceAuthority returns an authority reading/writing through store.
func NewPriceAuthority(s store.SnapshotStore) *PriceAuthority {
	return &PriceAuthority{store: s}
}

func priceCacheKey(venue, symbol string) string {
	symbolKey := strings.NewReplacer("/", "_", "-", "_").Replace(strings.ToUpper(symbol))
	return fmt.Sprintf("%s%s:%s", priceCacheKeyPrefix, venue, symbolKey)
}

// asPriceResult normalizes a snapshot-store hit into a PriceResult. Ingest
// jobs cache a raw models.PriceTick under the same "price:<venue>:<symbol>"
// keyspace SetPrice writes PriceResult into; both shapes are accepted so
// GetPrice sees whichever producer actually wrote the price.
func asPriceResult(v interface{}, venue string) (PriceResult, bool) {
	switch cached := v.(type) {
	case PriceResult:
		if cached.Price <= 0 {
			return PriceResult{}, false
		}
		cached.Source = venue
		cached.Found = true
		return cached, true
	case models.PriceTick:
		if cached.Price <= 0 {
			return PriceResult{}, false
		}
		return PriceResult{
			Price: cached.Price, Confidence: cached.Confidence,
			Source: venue, Ts: cached.Ts, Found: true,
		}, true
	default:
		return PriceResult{}, false
	}
}

// GetPrice returns the highest-priority cached price for symbol, or a
// not-found result if no venue has a positive cached price.
func (a *PriceAuthority) GetPrice(symbol string) PriceResult {
	for _, venue := range venuePriority {
		v, ok := a.store.Get(priceCacheKey(venue, symbol))
		if !ok {
			continue
		}
		if cached, ok := asPriceResult(v, venue); ok {
			return cached
		}
	}
	return PriceResult{Source: "none", Found: false}
}

// SetPrice records venue's current price for symbol with a 120 second TTL,
// matching the feed refresh cadence.
func (a *PriceAuthority) SetPrice(symbol, venue string, price, confidence float64) {
	a.store.Set(priceCacheKey(venue, symbol), PriceResult{
		Price: price, Confidence: confidence, Source: venue, Ts: timeutil.NowUTC(), Found: true,
	}, 120*time.Second)
}

// VenueQuote is one venue's raw cached quote, used for cross-venue
// comparisons.
type VenueQuote struct {
	Venue  string
	Result PriceResult
}

// GetAllVenues returns every venue's cached quote for symbol that has a
// positive price, in priority order.
func (a *PriceAuthority) GetAllVenues(symbol string) []VenueQuote {
	var out []VenueQuote
	for _, venue := range venuePriority {
		v, ok := a.store.Get(priceCacheKey(venue, symbol))
		if !ok {
			continue
		}
		cached, ok := asPriceResult(v, venue)
		if !ok {
			continue
		}
		out = append(out, VenueQuote{Venue: venue, Result: cached})
	}
	return out
}
