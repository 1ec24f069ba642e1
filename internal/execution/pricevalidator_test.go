package execution

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/riskdesk/internal/eventbus"
	"github.com/sawpanic/riskdesk/internal/models"
	"github.com/sawpanic/riskdesk/internal/store"
)

func TestValidateOKWhenVenuesAgree(t *testing.T) {
	v := NewPriceValidator(store.NewTTLMap(100), nil)
	res := v.Validate(context.Background(), map[string]float64{"pyth": 100.0, "kraken": 100.02, "coingecko": 99.99})
	assert.Equal(t, "OK", res.Status)
	assert.Empty(t, res.Reason)
}

func TestValidateWarnsOnPythVsKrakenDeviation(t *testing.T) {
	v := NewPriceValidator(store.NewTTLMap(100), nil)
	res := v.Validate(context.Background(), map[string]float64{"pyth": 100.0, "kraken": 101.0, "coingecko": 100.0})
	assert.Equal(t, "WARNING", res.Status)
	assert.Contains(t, res.Reason, "pyth vs kraken")
}

func TestValidateChecksKrakenVsCoingeckoOnlyWhenPythMissing(t *testing.T) {
	v := NewPriceValidator(store.NewTTLMap(100), nil)
	res := v.Validate(context.Background(), map[string]float64{"kraken": 100.0, "coingecko": 105.0})
	assert.Equal(t, "WARNING", res.Status)
	_, hasPair := res.DeviationBps["kraken_vs_coingecko"]
	assert.True(t, hasPair)
}

func TestValidateSkipsKrakenVsCoingeckoWhenPythPresent(t *testing.T) {
	v := NewPriceValidator(store.NewTTLMap(100), nil)
	res := v.Validate(context.Background(), map[string]float64{"pyth": 100.0, "kraken": 100.0, "coingecko": 200.0})
	_, hasPair := res.DeviationBps["kraken_vs_coingecko"]
	assert.False(t, hasPair)
}

func TestValidateEmitsThrottledDislocationAlert(t *testing.T) {
	bus := eventbus.New(nil, zerolog.Nop())
	var alertCount int
	bus.Subscribe(eventbus.PriceDislocationAlert, func(ctx context.Context, evt models.Event) { alertCount++ })

	s := store.NewTTLMap(100)
	v := NewPriceValidator(s, bus)
	prices := map[string]float64{"pyth": 100.0, "kraken": 101.0, "coingecko": 100.0}

	first := v.Validate(context.Background(), prices)
	require.Equal(t, "WARNING", first.Status)
	require.NotNil(t, first.LastAlertTs)

	second := v.Validate(context.Background(), prices)
	assert.Equal(t, first.LastAlertTs, second.LastAlertTs)
	assert.Equal(t, 1, alertCount)
}

func TestIsSafeReflectsLastValidation(t *testing.T) {
	v := NewPriceValidator(store.NewTTLMap(100), nil)
	assert.True(t, v.IsSafe())
	v.Validate(context.Background(), map[string]float64{"pyth": 100.0, "kraken": 150.0})
	assert.False(t, v.IsSafe())
}

func TestPairDeviationBpsRequiresBothPositive(t *testing.T) {
	_, ok := pairDeviationBps(0, 100)
	assert.False(t, ok)
	dev, ok := pairDeviationBps(101, 100)
	require.True(t, ok)
	assert.InDelta(t, 100.0, dev, 0.01)
}
