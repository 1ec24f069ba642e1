package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/riskdesk/internal/models"
)

func liq(v float64) *float64 { return &v }

func TestRiskAgentWarnsOnThinLiquidationDistance(t *testing.T) {
	a := NewRiskAgent()
	signals := a.Evaluate(RiskInput{
		Positions:    []models.Position{{Venue: "hyperliquid", Market: "BTC-PERP", SignedSize: 1, EntryPrice: 100, LiqPrice: liq(97)}},
		CurrentPrice: 100,
	})
	assert.Len(t, signals, 1)
	assert.Equal(t, "RISK_WARNING", signals[0].Signal)
}

func TestRiskAgentIgnoresPositionWithoutLiqPrice(t *testing.T) {
	a := NewRiskAgent()
	signals := a.Evaluate(RiskInput{
		Positions:    []models.Position{{Venue: "hyperliquid", Market: "BTC-PERP", SignedSize: 1, EntryPrice: 100}},
		CurrentPrice: 100,
	})
	assert.Empty(t, signals)
}

func TestRiskAgentThrottleRecommendedOnShockAndVol(t *testing.T) {
	a := NewRiskAgent()
	signals := a.Evaluate(RiskInput{ShockScore: 2.0, VolRegime: "extreme"})
	assert.Len(t, signals, 1)
	assert.Equal(t, "THROTTLE_RECOMMENDED", signals[0].Signal)
}

func TestRiskAgentMarginWarningAboveHalf(t *testing.T) {
	a := NewRiskAgent()
	signals := a.Evaluate(RiskInput{MarginUsage: 0.55})
	assert.Len(t, signals, 1)
	assert.Equal(t, "MARGIN_WARNING", signals[0].Signal)
}

func TestRiskAgentQuietStateProducesNoSignals(t *testing.T) {
	a := NewRiskAgent()
	signals := a.Evaluate(RiskInput{ShockScore: 0.1, VolRegime: "normal", MarginUsage: 0.1})
	assert.Empty(t, signals)
}
