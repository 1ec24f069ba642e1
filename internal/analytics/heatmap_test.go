package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeLiquidationHeatmapMonotonicByDrop(t *testing.T) {
	positions := []HeatmapPosition{{Size: 1, EntryPrice: 50000}}
	hm := ComputeLiquidationHeatmap(50000, positions, 0.4, 0.5)

	require.NotEmpty(t, hm.Grid)
	for _, lev := range hm.LeverageLevels {
		prev := -1.0
		for _, drop := range hm.PriceDropsPct {
			prob := hm.Grid[lev][drop]
			assert.GreaterOrEqual(t, prob, prev)
			prev = prob
		}
	}
}

func TestComputeLiquidationHeatmapMonotonicByLeverage(t *testing.T) {
	positions := []HeatmapPosition{{Size: 1, EntryPrice: 50000}}
	hm := ComputeLiquidationHeatmap(50000, positions, 0.4, 0.5)

	require.True(t, len(hm.LeverageLevels) > 1)
	for _, drop := range hm.PriceDropsPct {
		prev := -1.0
		for _, lev := range hm.LeverageLevels {
			prob := hm.Grid[lev][drop]
			assert.GreaterOrEqual(t, prob, prev)
			prev = prob
		}
	}
}

func TestComputeLiquidationHeatmapTotalNotional(t *testing.T) {
	positions := []HeatmapPosition{{Size: 2, EntryPrice: 50000}, {Size: 1, EntryPrice: 0}}
	hm := ComputeLiquidationHeatmap(50000, positions, 0.4, 0.5)

	assert.Equal(t, 150000.0, hm.TotalNotional)
	assert.Equal(t, 2, hm.PositionsCount)
}

func TestLiquidationProbabilityClampedToOneAtFullLoss(t *testing.T) {
	prob := liquidationProbability(10, 50, 0.4, 0.5)
	assert.Equal(t, 1.0, prob)
}
