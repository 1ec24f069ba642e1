package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHedgingAgentQuietStateReturnsNil(t *testing.T) {
	a := NewHedgingAgent()
	signals := a.Evaluate(HedgingInput{PredictorProb: 0.5, VolRegime: "normal", FundingRegime: "neutral"})
	assert.Nil(t, signals)
}

func TestHedgingAgentHighShockReducesBeta(t *testing.T) {
	a := NewHedgingAgent()
	signals := a.Evaluate(HedgingInput{ShockScore: 80, PredictorProb: 0.5})
	require.NotEmpty(t, signals)
	assert.Equal(t, "HEDGE_PROPOSAL", signals[0].Signal)
	assert.Less(t, signals[0].Detail["target_beta"].(float64), 1.0)
}

func TestHedgingAgentBearishPredictorTiltsShortDelta(t *testing.T) {
	a := NewHedgingAgent()
	signals := a.Evaluate(HedgingInput{PredictorProb: 0.2})
	require.NotEmpty(t, signals)
	assert.Equal(t, "bearish", signals[0].Direction)
}

func TestHedgingAgentMultipleHighUrgencyTriggersAddRebalance(t *testing.T) {
	a := NewHedgingAgent()
	signals := a.Evaluate(HedgingInput{MaxStableDepeg: 100, MarginUsage: 0.9, PredictorProb: 0.5})
	var sawRebalance, sawThrottle bool
	for _, s := range signals {
		if s.Signal == "HEDGE_REBALANCE_SUGGESTED" {
			sawRebalance = true
		}
		if s.Signal == "HEDGE_THROTTLE_RECOMMENDED" {
			sawThrottle = true
		}
	}
	assert.True(t, sawRebalance)
	assert.True(t, sawThrottle)
}

func TestHedgingAgentConfidenceNeverExceedsPointNineFive(t *testing.T) {
	a := NewHedgingAgent()
	signals := a.Evaluate(HedgingInput{ShockScore: 200, VolRegime: "extreme", MarginUsage: 0.95, MaxStableDepeg: 200, PredictorProb: 0.1})
	require.NotEmpty(t, signals)
	assert.LessOrEqual(t, signals[0].Confidence, 0.95)
}
