package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLiquidityAgentFlagsDepegAboveFiftyBps(t *testing.T) {
	a := NewLiquidityAgent()
	signals := a.Evaluate(LiquidityInput{StablecoinHealth: []StablecoinDepeg{{Symbol: "USDC", DepegBps: 60}}})
	assert.Len(t, signals, 1)
	assert.Equal(t, "STABLE_DEPEG_DETECTED", signals[0].Signal)
}

func TestLiquidityAgentFlagsExtremeImbalanceBothDirections(t *testing.T) {
	a := NewLiquidityAgent()
	buy := a.Evaluate(LiquidityInput{OBImbalance: 0.6})
	sell := a.Evaluate(LiquidityInput{OBImbalance: -0.6})
	assert.Contains(t, buy[0].Reason, "buy-heavy")
	assert.Contains(t, sell[0].Reason, "sell-heavy")
}

func TestLiquidityAgentFlagsWideSpread(t *testing.T) {
	a := NewLiquidityAgent()
	signals := a.Evaluate(LiquidityInput{SpreadBps: 40})
	assert.Len(t, signals, 1)
	assert.Equal(t, "WIDE_SPREAD", signals[0].Signal)
}

func TestLiquidityAgentQuietStateProducesNoSignals(t *testing.T) {
	a := NewLiquidityAgent()
	signals := a.Evaluate(LiquidityInput{OBImbalance: 0.1, SpreadBps: 5})
	assert.Empty(t, signals)
}
