package analytics

import (
	"math"
	"time"
)

var heatmapLeverageLevels = []int{1, 2, 3, 5, 7, 10}
var heatmapPriceDropsPct = []float64{5, 10, 15, 20, 25, 30, 35, 40, 45, 50}

// HeatmapPosition is the minimal position shape the heatmap needs to
// size aggregate notional.
type HeatmapPosition struct {
	Size       float64
	EntryPrice float64
}

// LiquidationHeatmap is a grid of liquidation probability by leverage
// level and hypothetical price drop, monotone non-decreasing along both
// axes.
type LiquidationHeatmap struct {
	CurrentPrice   float64
	LeverageLevels []int
	PriceDropsPct  []float64
	Grid           map[int]map[float64]float64
	VolUsed        float64
	MarginUsage    float64
	TotalNotional  float64
	PositionsCount int
	Ts             time.Time
}

// ComputeLiquidationHeatmap estimates, for each (leverage, price-drop)
// cell, the probability a position at that leverage is liquidated by
// that drop, given realized volatility and current margin usage. Both
// axes are enforced monotone (deeper drops and higher leverage never
// have a lower probability than a shallower/lower-leverage neighbor).
func ComputeLiquidationHeatmap(currentPrice float64, positions []HeatmapPosition, vol, marginUsage float64) LiquidationHeatmap {
	vol = math.Max(vol, 0)
	marginUsage = clamp(marginUsage, 0, 1)
	currentPrice = math.Max(currentPrice, 0.01)

	grid := make(map[int]map[float64]float64, len(heatmapLeverageLevels))
	for _, lev := range heatmapLeverageLevels {
		row := make(map[float64]float64, len(heatmapPriceDropsPct))
		prevProb := 0.0
		for _, drop := range heatmapPriceDropsPct {
			prob := liquidationProbability(lev, drop, vol, marginUsage)
			prob = math.Max(prob, prevProb)
			row[drop] = prob
			prevProb = prob
		}
		grid[lev] = row
	}

	for _, drop := range heatmapPriceDropsPct {
		prevProb := 0.0
		for _, lev := range heatmapLeverageLevels {
			enforced := math.Max(grid[lev][drop], prevProb)
			grid[lev][drop] = enforced
			prevProb = enforced
		}
	}

	var totalNotional float64
	for _, pos := range positions {
		entry := pos.EntryPrice
		if entry == 0 {
			entry = currentPrice
		}
		totalNotional += math.Abs(pos.Size) * entry
	}

	return LiquidationHeatmap{
		CurrentPrice:   currentPrice,
		LeverageLevels: heatmapLeverageLevels,
		PriceDropsPct:  heatmapPriceDropsPct,
		Grid:           grid,
		VolUsed:        round4(vol),
		MarginUsage:    round4(marginUsage),
		TotalNotional:  round2(totalNotional),
		PositionsCount: len(positions),
		Ts:             time.Now().UTC(),
	}
}

func liquidationProbability(leverage int, dropPct, vol, marginUsage float64) float64 {
	maintenanceMargin := 1.0 / float64(leverage)
	lossFraction := dropPct / 100.0
	effectiveLoss := lossFraction * float64(leverage)

	if effectiveLoss >= 1.0 {
		return 1.0
	}

	volAnnual := math.Max(vol, 0.01)
	volDaily := volAnnual / math.Sqrt(365)

	z := lossFraction / volDaily
	probFromVol := 1.0
	if z > 0 {
		probFromVol = math.Min(1.0, math.Exp(-0.5*z*z))
	}

	marginFactor := 0.5 + 0.5*math.Min(marginUsage, 1.0)

	var baseProb float64
	if effectiveLoss >= 1.0-maintenanceMargin {
		baseProb = math.Min(1.0, effectiveLoss/(1.0-maintenanceMargin+0.001))
	} else {
		baseProb = effectiveLoss / math.Max(1.0-maintenanceMargin, 0.01)
	}

	combined := baseProb * marginFactor * (0.6 + 0.4*probFromVol)
	return round4(clamp(combined, 0, 1))
}
