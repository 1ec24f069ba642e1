package ingest

import (
	"context"
	"errors"
)

// ErrNoFetcher is returned by a job whose Fetcher seam was never wired to a
// real client. The concrete HTTP/WebSocket client for each venue is an
// external collaborator outside this repo's scope; jobs here model the
// fetch-then-store-then-emit shape around an injected function.
var ErrNoFetcher = errors.New("ingest: no fetcher configured")

// PriceFetchFunc fetches one venue's current price for symbol.
type PriceFetchFunc func(ctx context.Context, symbol string) (price, confidence float64, err error)

// FundingFetchFunc fetches one venue's current funding rate for market.
type FundingFetchFunc func(ctx context.Context, market string) (rate float64, err error)

// TariffFetchFunc fetches WITS tariff records for a reporter/partner/product
// triple, returning the per-component tariff rate breakdown.
type TariffFetchFunc func(ctx context.Context, reporter, partner, product string) (components map[string]float64, err error)

// NewsFetchFunc fetches recent news articles matching keywords, returning
// each article's negative-tone score (the only field the shock-spike
// computation needs).
type NewsFetchFunc func(ctx context.Context, keywords []string) (negToneScores []float64, err error)
