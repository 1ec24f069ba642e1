package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSpreadPctZeroMidpoint(t *testing.T) {
	_, ok := ComputeSpreadPct(5, -5)
	assert.False(t, ok)
}

func TestComputeSpreadPctBasic(t *testing.T) {
	pct, ok := ComputeSpreadPct(101, 99)
	require.True(t, ok)
	assert.InDelta(t, 2.0, pct, 0.01)
}

func TestDetectDivergenceNoAlertsWhenBelowThreshold(t *testing.T) {
	now := time.Now().UTC()
	points := []SpreadPoint{
		{Ts: now, SpreadPct: 0.1},
		{Ts: now.Add(time.Minute), SpreadPct: 0.2},
	}
	alerts := DetectDivergence(points, 1.0, time.Minute)
	assert.Empty(t, alerts)
}

func TestDetectDivergenceFlushesCompletedRun(t *testing.T) {
	now := time.Now().UTC()
	points := []SpreadPoint{
		{Ts: now, SpreadPct: 0.1},
		{Ts: now.Add(5 * time.Minute), SpreadPct: 2.0},
		{Ts: now.Add(10 * time.Minute), SpreadPct: 2.5},
		{Ts: now.Add(15 * time.Minute), SpreadPct: 0.1},
	}
	alerts := DetectDivergence(points, 1.0, time.Minute)
	require.Len(t, alerts, 1)
	assert.False(t, alerts[0].Ongoing)
	assert.InDelta(t, 2.5, alerts[0].MaxSpreadPct, 0.01)
}

func TestDetectDivergenceMarksOngoingRun(t *testing.T) {
	now := time.Now().UTC()
	points := []SpreadPoint{
		{Ts: now, SpreadPct: 2.0},
		{Ts: now.Add(5 * time.Minute), SpreadPct: 2.5},
	}
	alerts := DetectDivergence(points, 1.0, time.Minute)
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].Ongoing)
}

func TestDetectDivergenceEmptyInput(t *testing.T) {
	assert.Nil(t, DetectDivergence(nil, 1.0, time.Minute))
}

func TestComputeBasisZeroSpotReturnsZero(t *testing.T) {
	assert.Equal(t, 0.0, ComputeBasis(100, 0))
}

func TestComputeBasisPositive(t *testing.T) {
	assert.InDelta(t, 1.0, ComputeBasis(101, 100), 0.01)
}
