package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasisEngineInvalidOnNonPositiveSpot(t *testing.T) {
	e := NewBasisEngine()
	r := e.Compute(100, 100, 0, 0.0001, 0.0001)
	assert.True(t, r.Invalid)
	require.Len(t, e.History(10), 1)
}

func TestBasisEngineComputesPositiveBasis(t *testing.T) {
	e := NewBasisEngine()
	r := e.Compute(101, 100.5, 100, 0.0002, 0.0001)
	assert.False(t, r.Invalid)
	assert.Greater(t, r.HLSpotBasisBps, 0.0)
	assert.Greater(t, r.FundingDiffBps, 0.0)
}

func TestBasisEngineHistoryBoundedAndNewestFirst(t *testing.T) {
	e := NewBasisEngine()
	for i := 0; i < BasisMaxHistory+10; i++ {
		e.Compute(101, 100.5, 100, 0.0001, 0.0001)
	}
	hist := e.History(0)
	assert.Len(t, hist, BasisMaxHistory)

	latest := e.Compute(105, 100.5, 100, 0.0001, 0.0001)
	hist = e.History(1)
	require.Len(t, hist, 1)
	assert.Equal(t, latest.HLPerpPrice, hist[0].HLPerpPrice)
}

func TestAssessFeasibilityPerfectConditions(t *testing.T) {
	score := AssessFeasibility(5, 0.9, "ok")
	assert.Equal(t, 100, score)
}

func TestAssessFeasibilityDeductsForWideSpreadThinLiquidityBadIntegrity(t *testing.T) {
	score := AssessFeasibility(150, 0.1, "stale")
	assert.Equal(t, 100-40-30-25, score)
}

func TestAssessFeasibilityFloorsAtZero(t *testing.T) {
	score := AssessFeasibility(500, 0.01, "stale")
	assert.GreaterOrEqual(t, score, 0)
}
