package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreTradeCheckApprovesCleanMarket(t *testing.T) {
	a := NewExecutionAgent()
	v := a.PreTradeCheck(PreTradeOrder{Venue: "hyperliquid", Market: "BTC-PERP", Side: "buy", Size: 1}, MarketSnapshot{SpreadBps: 10, LiquidityDepth: 1000, PriceIntegrity: "OK"})
	assert.True(t, v.Allowed)
	assert.Empty(t, v.Reasons)
	assert.Equal(t, "TRADE_APPROVED", v.Signal.Signal)
}

func TestPreTradeCheckBlocksWideSpread(t *testing.T) {
	a := NewExecutionAgent()
	v := a.PreTradeCheck(PreTradeOrder{}, MarketSnapshot{SpreadBps: 60, LiquidityDepth: 1000, PriceIntegrity: "OK"})
	require.False(t, v.Allowed)
	assert.Equal(t, "AGENT_BLOCKED", v.Signal.Type)
}

func TestPreTradeCheckBlocksThinDepth(t *testing.T) {
	a := NewExecutionAgent()
	v := a.PreTradeCheck(PreTradeOrder{}, MarketSnapshot{SpreadBps: 5, LiquidityDepth: 10, PriceIntegrity: "OK"})
	assert.False(t, v.Allowed)
}

func TestPreTradeCheckIgnoresZeroDepthAsUnreported(t *testing.T) {
	a := NewExecutionAgent()
	v := a.PreTradeCheck(PreTradeOrder{}, MarketSnapshot{SpreadBps: 5, LiquidityDepth: 0, PriceIntegrity: "OK"})
	assert.True(t, v.Allowed)
}

func TestPreTradeCheckBlocksPriceIntegrityWarning(t *testing.T) {
	a := NewExecutionAgent()
	v := a.PreTradeCheck(PreTradeOrder{}, MarketSnapshot{SpreadBps: 5, LiquidityDepth: 1000, PriceIntegrity: "WARNING"})
	assert.False(t, v.Allowed)
	assert.Contains(t, v.Reasons[0], "Price integrity")
}

func TestExecutionAgentEvaluateWatchesIntegrityAndSpread(t *testing.T) {
	a := NewExecutionAgent()
	signals := a.Evaluate(ExecutionWatchInput{PriceIntegrity: "WARNING", SpreadBps: 60})
	assert.Len(t, signals, 2)
}
