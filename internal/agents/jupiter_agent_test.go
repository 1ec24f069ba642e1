package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJupiterAgentFlagsStaleQuote(t *testing.T) {
	a := NewJupiterAgent()
	signals := a.Evaluate(JupiterInput{QuoteAgeSeconds: 65})
	require.NotEmpty(t, signals)
	assert.Equal(t, "JUPITER_QUOTE_STALE", signals[0].Signal)
	assert.Equal(t, "high", signals[0].Severity)
}

func TestJupiterAgentFlagsComplexRoute(t *testing.T) {
	a := NewJupiterAgent()
	signals := a.Evaluate(JupiterInput{RouteHops: 5})
	require.NotEmpty(t, signals)
	assert.Equal(t, "JUPITER_ROUTE_COMPLEX", signals[0].Signal)
	assert.Equal(t, "high", signals[0].Severity)
}

func TestJupiterAgentFlagsHighPriceImpact(t *testing.T) {
	a := NewJupiterAgent()
	signals := a.Evaluate(JupiterInput{PriceImpactBps: 120})
	require.NotEmpty(t, signals)
	assert.Equal(t, "block_execution", signals[0].ProposedAction)
}

func TestJupiterAgentFlagsSolanaCongestion(t *testing.T) {
	a := NewJupiterAgent()
	signals := a.Evaluate(JupiterInput{RPCLatencyMs: 2000, SlotDelta: 15})
	require.NotEmpty(t, signals)
	var found bool
	for _, s := range signals {
		if s.Signal == "SOLANA_CONGESTION_WARNING" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestJupiterAgentFlagsLowExecutionQuality(t *testing.T) {
	a := NewJupiterAgent()
	signals := a.Evaluate(JupiterInput{SpreadBps: 150, PriceImpactBps: 150, RPCLatencyMs: 2500, OBDepth: 100})
	var found bool
	for _, s := range signals {
		if s.Signal == "JUPITER_LOW_QUALITY" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestJupiterAgentQuietStateProducesNoSignals(t *testing.T) {
	a := NewJupiterAgent()
	signals := a.Evaluate(JupiterInput{QuoteAgeSeconds: 5, RouteHops: 1, PriceImpactBps: 5, SpreadBps: 5})
	assert.Empty(t, signals)
}
