package execution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/riskdesk/internal/models"
	"github.com/sawpanic/riskdesk/internal/store"
)

func TestGetPriceNotFoundWhenNoVenueCached(t *testing.T) {
	a := NewPriceAuthority(store.NewTTLMap(100))
	res := a.GetPrice("BTC-USD")
	assert.False(t, res.Found)
	assert.Equal(t, "none", res.Source)
}

func TestGetPricePrefersPythOverKrakenAndCoingecko(t *testing.T) {
	a := NewPriceAuthority(store.NewTTLMap(100))
	a.SetPrice("BTC-USD", "coingecko", 100.0, 0.9)
	a.SetPrice("BTC-USD", "kraken", 101.0, 0.9)
	a.SetPrice("BTC-USD", "pyth", 102.0, 0.95)

	res := a.GetPrice("BTC-USD")
	require.True(t, res.Found)
	assert.Equal(t, "pyth", res.Source)
	assert.Equal(t, 102.0, res.Price)
}

func TestGetPriceFallsBackWhenHigherPriorityVenueMissing(t *testing.T) {
	a := NewPriceAuthority(store.NewTTLMap(100))
	a.SetPrice("ETH-USD", "kraken", 50.0, 0.9)

	res := a.GetPrice("ETH-USD")
	require.True(t, res.Found)
	assert.Equal(t, "kraken", res.Source)
}

func TestGetPriceSkipsNonPositiveCachedPrice(t *testing.T) {
	a := NewPriceAuthority(store.NewTTLMap(100))
	a.SetPrice("SOL-USD", "pyth", 0, 0.9)
	a.SetPrice("SOL-USD", "kraken", 20.0, 0.9)

	res := a.GetPrice("SOL-USD")
	require.True(t, res.Found)
	assert.Equal(t, "kraken", res.Source)
}

func TestGetAllVenuesReturnsInPriorityOrder(t *testing.T) {
	a := NewPriceAuthority(store.NewTTLMap(100))
	a.SetPrice("BTC-USD", "coingecko", 100.0, 0.8)
	a.SetPrice("BTC-USD", "pyth", 102.0, 0.95)
	a.SetPrice("BTC-USD", "kraken", 101.0, 0.9)

	all := a.GetAllVenues("BTC-USD")
	require.Len(t, all, 3)
	assert.Equal(t, "pyth", all[0].Venue)
	assert.Equal(t, "kraken", all[1].Venue)
	assert.Equal(t, "coingecko", all[2].Venue)
}

func TestPriceCacheKeyNormalizesSymbol(t *testing.T) {
	assert.Equal(t, "price:pyth:BTC_USD", priceCacheKey("pyth", "btc/usd"))
	assert.Equal(t, "price:kraken:SOL_PERP", priceCacheKey("kraken", "sol-perp"))
}

func TestGetPriceReadsRawIngestPriceTick(t *testing.T) {
	s := store.NewTTLMap(100)
	ts := time.Now().UTC().Add(-5 * time.Second)
	s.Set(priceCacheKey("kraken", "XBTUSD"), models.PriceTick{
		Symbol: "XBTUSD", Venue: "kraken", Price: 61234.5, Confidence: 1.0, Ts: ts,
	}, time.Minute)

	a := NewPriceAuthority(s)
	res := a.GetPrice("XBTUSD")
	require.True(t, res.Found)
	assert.Equal(t, "kraken", res.Source)
	assert.Equal(t, 61234.5, res.Price)
	assert.WithinDuration(t, ts, res.Ts, time.Millisecond)
}

func TestGetPriceIgnoresNonPositiveIngestPriceTick(t *testing.T) {
	s := store.NewTTLMap(100)
	s.Set(priceCacheKey("pyth", "SOL_USD"), models.PriceTick{Venue: "pyth", Price: 0}, time.Minute)
	s.Set(priceCacheKey("kraken", "SOL_USD"), models.PriceTick{Venue: "kraken", Price: 140.0, Ts: time.Now()}, time.Minute)

	a := NewPriceAuthority(s)
	res := a.GetPrice("SOL-USD")
	require.True(t, res.Found)
	assert.Equal(t, "kraken", res.Source)
}
