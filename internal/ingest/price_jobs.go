package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/sawpanic/riskdesk/internal/models"
	"github.com/sawpanic/riskdesk/internal/store"
	"github.com/sawpanic/riskdesk/internal/timeutil"
)

// priceJob is the shared shape behind Kraken, CoinGecko, and Pyth: fetch one
// venue's price for one symbol, store it with a TTL proportional to the
// polling period, and nothing else. Divergence/price-authority logic reads
// these snapshots later; the ingest layer doesn't judge the price itself.
type priceJob struct {
	venue   string
	symbol  string
	ttl     time.Duration
	fetch   PriceFetchFunc
	snaps   store.SnapshotStore
}

func (j *priceJob) Name() string { return "price_ingest:" + j.venue }

func (j *priceJob) Run(ctx context.Context) error {
	if j.fetch == nil {
		return fmt.Errorf("%s: %w", j.Name(), ErrNoFetcher)
	}
	price, confidence, err := j.fetch(ctx, j.symbol)
	if err != nil {
		return fmt.Errorf("%s: fetch: %w", j.Name(), err)
	}
	if price <= 0 {
		return fmt.Errorf("%s: invalid price %.8f for %s", j.Name(), price, j.symbol)
	}

	tick := models.PriceTick{
		Symbol:     j.symbol,
		Venue:      j.venue,
		Price:      price,
		Confidence: confidence,
		Ts:         timeutil.NowUTC(),
	}
	j.snaps.Set(fmt.Sprintf("price:%s:%s", j.venue, j.symbol), tick, j.ttl)
	return nil
}

// NewKrakenJob polls Kraken's ticker endpoint every 30s (ttl=120s, 4x
// period) for pair, e.g. "SOLUSD".
func NewKrakenJob(pair string, fetch PriceFetchFunc, snaps store.SnapshotStore) Job {
	return &priceJob{venue: "kraken", symbol: pair, ttl: 120 * time.Second, fetch: fetch, snaps: snaps}
}

// NewCoinGeckoJob polls CoinGecko's simple-price endpoint every 60s
// (ttl=120s, 2x period) for symbol, e.g. "SOLANA/USD".
func NewCoinGeckoJob(symbol string, fetch PriceFetchFunc, snaps store.SnapshotStore) Job {
	return &priceJob{venue: "coingecko", symbol: symbol, ttl: 120 * time.Second, fetch: fetch, snaps: snaps}
}

// NewPythJob polls Pyth's Hermes price-feed endpoint every 30s (ttl=120s,
// 4x period) for symbol, e.g. "SOL/USD".
func NewPythJob(symbol string, fetch PriceFetchFunc, snaps store.SnapshotStore) Job {
	return &priceJob{venue: "pyth", symbol: symbol, ttl: 120 * time.Second, fetch: fetch, snaps: snaps}
}
