package analytics

import (
	"strconv"
	"time"
)

var slippageSizeBuckets = []float64{100, 500, 1000, 5000, 10000, 50000, 100000}
var slippageThresholdsBps = []float64{10, 25, 50}

// SlippageCurvePoint is the expected slippage at one order-size bucket.
type SlippageCurvePoint struct {
	SizeUSD              float64
	ExpectedSlippageBps  float64
}

// SlippageDataQuality scores how much real input data backed a slippage
// estimate, versus falling back to model defaults.
type SlippageDataQuality struct {
	Score           int
	Quality         string // good|fair|sparse
	DataSourcesUsed int
}

// SlippageCurve is a venue's full size/impact curve.
type SlippageCurve struct {
	Venue       string
	Curve       []SlippageCurvePoint
	DataQuality SlippageDataQuality
	Ts          time.Time
}

// EstimateSlippageCurve models expected slippage in bps across a fixed
// ladder of order sizes, scaling impact by orderbook depth and recent
// realized slippage.
func EstimateSlippageCurve(obDepth, spreadBps, volatility, recentSlippageBps float64, venue string) SlippageCurve {
	depth := obDepth
	if depth < 1000.0 {
		depth = 1000.0
	}

	baseSlip := spreadBps * 0.5
	if baseSlip < 0.5 {
		baseSlip = 0.5
	}
	if recentSlippageBps > 0 {
		baseSlip = (baseSlip + recentSlippageBps) / 2.0
	}

	volMultiplier := 1.0 + volatility*10.0

	curve := make([]SlippageCurvePoint, 0, len(slippageSizeBuckets))
	for _, size := range slippageSizeBuckets {
		depthRatio := size / depth
		impactBps := baseSlip + depthRatio*50.0*volMultiplier
		curve = append(curve, SlippageCurvePoint{SizeUSD: size, ExpectedSlippageBps: round2(impactBps)})
	}

	return SlippageCurve{
		Venue:       venue,
		Curve:       curve,
		DataQuality: computeSlippageDataQuality(obDepth, spreadBps, recentSlippageBps),
		Ts:          time.Now().UTC(),
	}
}

// MaxSafeSizes is the largest order size at each slippage threshold that
// a venue's curve keeps within budget.
type MaxSafeSizes struct {
	Venue         string
	MaxSafeSizes  map[string]float64 // "10bps" -> size_usd
	ThresholdsBps []float64
	Curve         []SlippageCurvePoint
	DataQuality   SlippageDataQuality
	Notes         []string
	Ts            time.Time
}

// ComputeMaxSafeSizes derives, for each of the fixed bps thresholds, the
// largest size bucket whose estimated slippage stays at or under it.
func ComputeMaxSafeSizes(obDepth, spreadBps, volatility, recentSlippageBps float64, venue string) MaxSafeSizes {
	curveData := EstimateSlippageCurve(obDepth, spreadBps, volatility, recentSlippageBps, venue)

	safeSizes := make(map[string]float64, len(slippageThresholdsBps))
	for _, threshold := range slippageThresholdsBps {
		var maxSize float64
		for _, point := range curveData.Curve {
			if point.ExpectedSlippageBps <= threshold {
				maxSize = point.SizeUSD
			} else {
				break
			}
		}
		safeSizes[bpsKey(threshold)] = maxSize
	}

	var notes []string
	if obDepth == 0 {
		notes = append(notes, "no orderbook depth data, estimate based on spread only")
	}
	if recentSlippageBps == 0 {
		notes = append(notes, "no recent slippage data, using model estimate only")
	}
	if volatility > 0.05 {
		notes = append(notes, "high volatility environment, actual slippage may exceed estimate")
	}

	return MaxSafeSizes{
		Venue:         venue,
		MaxSafeSizes:  safeSizes,
		ThresholdsBps: slippageThresholdsBps,
		Curve:         curveData.Curve,
		DataQuality:   curveData.DataQuality,
		Notes:         notes,
		Ts:            time.Now().UTC(),
	}
}

func computeSlippageDataQuality(obDepth, spreadBps, recentSlippage float64) SlippageDataQuality {
	score := 30
	sources := 0

	if obDepth > 0 {
		score += 30
		sources++
	}
	if spreadBps > 0 {
		score += 20
		sources++
	}
	if recentSlippage > 0 {
		score += 20
		sources++
	}

	quality := "sparse"
	switch {
	case score >= 70:
		quality = "good"
	case score >= 50:
		quality = "fair"
	}

	return SlippageDataQuality{Score: score, Quality: quality, DataSourcesUsed: sources}
}

func bpsKey(threshold float64) string {
	return strconv.Itoa(int(threshold)) + "bps"
}
