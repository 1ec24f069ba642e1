package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunProducesBothStrategyResults(t *testing.T) {
	state := MarketState{
		CurrentPrice: 50000, PriceChangePct: 2.0, Volatility: 0.04,
		ShockScore: 3.0, TariffRateOfChange: 10.0, VolRegime: "high",
	}
	result := Run(DefaultConfigA(), DefaultConfigB(), state)

	assert.Equal(t, "Config A (Default)", result.StrategyA.ConfigName)
	assert.Equal(t, "Config B (Aggressive)", result.StrategyB.ConfigName)
	assert.Contains(t, []string{"A", "B"}, result.Winner)
	assert.GreaterOrEqual(t, result.PnLDifference, 0.0)
}

func TestRunOnQuietStateProducesNoDecisions(t *testing.T) {
	state := MarketState{CurrentPrice: 100, VolRegime: "normal"}
	result := Run(DefaultConfigA(), DefaultConfigB(), state)

	assert.Equal(t, 0, result.StrategyA.TradeCount)
	assert.Equal(t, 0, result.StrategyB.TradeCount)
	assert.Equal(t, 0.0, result.StrategyA.TotalPnL)
}

func TestRunFillsDefaultCurrentPriceWhenZero(t *testing.T) {
	result := Run(DefaultConfigA(), DefaultConfigB(), MarketState{})
	assert.Equal(t, 100.0, result.CurrentPriceUsed)
}

func TestConfigBScalesSizeMoreThanConfigA(t *testing.T) {
	state := MarketState{
		CurrentPrice: 50000, PriceChangePct: 5.0, ShockScore: 3.0,
		TariffRateOfChange: 10.0, VolRegime: "high",
	}
	resultA := simulate(DefaultConfigA(), state)
	resultB := simulate(DefaultConfigB(), state)

	require.NotEmpty(t, resultA.Decisions)
	require.NotEmpty(t, resultB.Decisions)
	assert.Greater(t, resultB.VolScaleFactor, resultA.VolScaleFactor)
}

func TestSimulateComputesVaRFromMonteCarlo(t *testing.T) {
	state := MarketState{CurrentPrice: 100, Volatility: 0.05}
	result := simulate(DefaultConfigA(), state)
	assert.NotEqual(t, 0.0, result.VaR95)
}

func TestHighlightsNoteHitRateAndDrawdownDifferences(t *testing.T) {
	state := MarketState{
		CurrentPrice: 50000, PriceChangePct: -8.0, ShockScore: 3.0,
		TariffRateOfChange: 10.0, VolRegime: "high", SuggestedSize: 1.0,
	}
	result := Run(DefaultConfigA(), DefaultConfigB(), state)
	assert.NotEmpty(t, result.Highlights)
}

func TestDefaultConfigsHaveDistinctThresholds(t *testing.T) {
	a := DefaultConfigA()
	b := DefaultConfigB()
	assert.NotEqual(t, a.Thresholds, b.Thresholds)
	assert.Equal(t, 1.0, a.VolScaleFactor)
	assert.Equal(t, 1.5, b.VolScaleFactor)
}
