package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actionTypes(actions []Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.ActionType
	}
	return out
}

func TestEvaluateNoRulesFireOnQuietContext(t *testing.T) {
	e := NewEngine(defaultThresholds())
	actions := e.Evaluate(Context{VolRegime: "normal"})
	assert.Empty(t, actions)
}

func TestTariffVolReduceFiresOnHighVolAndRoc(t *testing.T) {
	e := NewEngine(defaultThresholds())
	actions := e.Evaluate(Context{TariffRateOfChange: 6.0, VolRegime: "high"})
	require.Contains(t, actionTypes(actions), "reduce_exposure")
}

func TestTariffVolReduceDoesNotFireOnNormalVol(t *testing.T) {
	e := NewEngine(defaultThresholds())
	actions := e.Evaluate(Context{TariffRateOfChange: 6.0, VolRegime: "normal"})
	assert.NotContains(t, actionTypes(actions), "reduce_exposure")
}

func TestShockThrottleFiresAboveThreshold(t *testing.T) {
	e := NewEngine(defaultThresholds())
	actions := e.Evaluate(Context{ShockScore: 2.5})
	require.Contains(t, actionTypes(actions), "enable_risk_throttle")
}

func TestDivergenceHedgeRequiresBothSignals(t *testing.T) {
	e := NewEngine(defaultThresholds())

	actions := e.Evaluate(Context{DivergenceAlertActive: true, FundingRegimeFlipped: false})
	assert.NotContains(t, actionTypes(actions), "hedge")

	actions = e.Evaluate(Context{DivergenceAlertActive: true, FundingRegimeFlipped: true})
	assert.Contains(t, actionTypes(actions), "hedge")
}

func TestNegativeCarryReduceFiresBelowThreshold(t *testing.T) {
	e := NewEngine(defaultThresholds())
	actions := e.Evaluate(Context{CarryScore: -0.2})
	require.Contains(t, actionTypes(actions), "reduce_long_perp")
}

func TestStableRotationFiresOnShockOrTariff(t *testing.T) {
	e := NewEngine(defaultThresholds())

	actions := e.Evaluate(Context{ShockScore: 2.0})
	assert.Contains(t, actionTypes(actions), "rotate_to_stables")

	actions = e.Evaluate(Context{TariffRateOfChange: 9.0})
	assert.Contains(t, actionTypes(actions), "rotate_to_stables")
}

func TestInferSideMapsActionsToSell(t *testing.T) {
	assert.Equal(t, "sell", inferSide("reduce_exposure"))
	assert.Equal(t, "sell", inferSide("hedge"))
	assert.Equal(t, "none", inferSide("enable_risk_throttle"))
}

func TestActionsCarryVenueMarketAndSuggestedSize(t *testing.T) {
	e := NewEngine(defaultThresholds())
	ctx := Context{ShockScore: 5.0, Venue: "hyperliquid", Market: "BTC-PERP", SuggestedSize: 1.5}

	actions := e.Evaluate(ctx)

	require.NotEmpty(t, actions)
	for _, a := range actions {
		assert.Equal(t, "hyperliquid", a.Venue)
		assert.Equal(t, "BTC-PERP", a.Market)
		assert.Equal(t, 1.5, a.Size)
		assert.False(t, a.Ts.IsZero())
	}
}

func TestLoadThresholdsMissingFileReturnsDefaults(t *testing.T) {
	thresholds, err := LoadThresholds("/nonexistent/path/thresholds.yaml")
	require.NoError(t, err)
	assert.Equal(t, defaultThresholds(), thresholds)
}

func TestLoadThresholdsEmptyPathReturnsDefaults(t *testing.T) {
	thresholds, err := LoadThresholds("")
	require.NoError(t, err)
	assert.Equal(t, defaultThresholds(), thresholds)
}
