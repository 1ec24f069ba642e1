package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHyperliquidAgentFlagsImbalance(t *testing.T) {
	a := NewHyperliquidAgent()
	signals := a.Evaluate(MicrostructureInput{OBImbalance: 0.6})
	assert.Len(t, signals, 1)
	assert.Equal(t, "bullish", signals[0].Direction)
}

func TestHyperliquidAgentFlagsSpreadCompression(t *testing.T) {
	a := NewHyperliquidAgent()
	signals := a.Evaluate(MicrostructureInput{SpreadBps: 2})
	assert.Len(t, signals, 1)
	assert.Equal(t, "low", signals[0].Severity)
}

func TestHyperliquidAgentFlagsTradeAggression(t *testing.T) {
	a := NewHyperliquidAgent()
	signals := a.Evaluate(MicrostructureInput{TradeAggression: -0.7})
	assert.Len(t, signals, 1)
	assert.Equal(t, "bearish", signals[0].Direction)
}

func TestHyperliquidAgentFlagsThinningDepth(t *testing.T) {
	a := NewHyperliquidAgent()
	signals := a.Evaluate(MicrostructureInput{BidDepth: 10000, AskDepth: 5000})
	assert.Len(t, signals, 1)
	assert.Equal(t, "LIQUIDITY_THINNING_WARNING", signals[0].Signal)
}

func TestHyperliquidAgentQuietStateProducesNoSignals(t *testing.T) {
	a := NewHyperliquidAgent()
	signals := a.Evaluate(MicrostructureInput{OBImbalance: 0.1, SpreadBps: 20, TradeAggression: 0.1, BidDepth: 40000, AskDepth: 40000})
	assert.Empty(t, signals)
}
