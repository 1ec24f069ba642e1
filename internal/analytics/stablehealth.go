package analytics

import (
	"math"
	"time"
)

const (
	stableDepegWarnBps  = 20.0
	stableDepegAlertBps = 50.0
	stableVolumeSpikeZ  = 2.0
)

// StableHealth is one stablecoin's depeg status at a point in time.
type StableHealth struct {
	Symbol   string
	Price    float64
	Peg      float64
	DepegBps float64
	Status   string // ok|warning|alert
	Ts       time.Time
}

// ComputeDepegBps is the absolute basis-point deviation from peg.
func ComputeDepegBps(price, peg float64) float64 {
	if peg == 0 {
		return 0
	}
	return math.Abs(price-peg) / peg * 10000.0
}

// ComputeStableHealth classifies each symbol's current depeg severity.
func ComputeStableHealth(prices map[string]float64, peg float64) map[string]StableHealth {
	now := time.Now().UTC()
	out := make(map[string]StableHealth, len(prices))
	for symbol, price := range prices {
		depeg := ComputeDepegBps(price, peg)
		status := "ok"
		switch {
		case depeg > stableDepegAlertBps:
			status = "alert"
		case depeg > stableDepegWarnBps:
			status = "warning"
		}
		out[symbol] = StableHealth{
			Symbol: symbol, Price: price, Peg: peg,
			DepegBps: round2(depeg), Status: status, Ts: now,
		}
	}
	return out
}

// StableLiquidityDepth summarizes top-of-book depth and spread for a
// stablecoin pair.
type StableLiquidityDepth struct {
	BidDepth   float64
	AskDepth   float64
	MidPrice   float64
	SpreadBps  float64
	TotalDepth float64
}

// ComputeStableLiquidityDepth sums the top 10 levels on each side and
// computes the top-of-book spread.
func ComputeStableLiquidityDepth(bids, asks []PriceLevelQty) StableLiquidityDepth {
	bidDepth := sumQty(bids, 10)
	askDepth := sumQty(asks, 10)

	var mid, spreadBps float64
	if len(bids) > 0 && len(asks) > 0 {
		bestBid, bestAsk := bids[0].Price, asks[0].Price
		mid = (bestBid + bestAsk) / 2.0
		if mid > 0 {
			spreadBps = (bestAsk - bestBid) / mid * 10000.0
		}
	}

	return StableLiquidityDepth{
		BidDepth: round2(bidDepth), AskDepth: round2(askDepth),
		MidPrice: round(mid, 6), SpreadBps: round2(spreadBps),
		TotalDepth: round2(bidDepth + askDepth),
	}
}

// StableStress is a composite 0-1 stress verdict with contributing
// factor labels.
type StableStress struct {
	StressScore float64
	IsStressed  bool
	Factors     []string
}

// DetectStableStress combines depeg, volume z-score, and spread into a
// single stress score, flagging stressed once the score exceeds 0.5.
func DetectStableStress(depegBps, volumeZ, spreadBps float64) StableStress {
	var score float64
	var factors []string

	switch {
	case depegBps > stableDepegAlertBps:
		score += 0.4
		factors = append(factors, "depeg")
	case depegBps > stableDepegWarnBps:
		score += 0.2
		factors = append(factors, "depeg")
	}

	if volumeZ > stableVolumeSpikeZ {
		score += 0.3
		factors = append(factors, "volume_spike")
	}

	if spreadBps > 30 {
		score += 0.3
		factors = append(factors, "wide_spread")
	}

	score = math.Min(score, 1.0)

	return StableStress{
		StressScore: round4(score),
		IsStressed:  score > 0.5,
		Factors:     factors,
	}
}

// ComputePegBreakProbability estimates the probability of a sustained
// depeg. With fewer than 5 historical readings it falls back to a
// simple linear-in-depeg heuristic; otherwise it z-scores the current
// reading against history and squashes through a shifted sigmoid.
func ComputePegBreakProbability(depegBps float64, depegHistory []float64) float64 {
	if len(depegHistory) < 5 {
		if depegBps > stableDepegAlertBps {
			return round4(math.Min(depegBps/200.0, 0.95))
		}
		return round4(math.Min(depegBps/500.0, 0.3))
	}

	meanD := mean(depegHistory)
	var sumSq float64
	for _, x := range depegHistory {
		d := x - meanD
		sumSq += d * d
	}
	stdD := math.Max(math.Sqrt(sumSq/float64(len(depegHistory))), 0.01)

	z := (depegBps - meanD) / stdD
	prob := sigmoid(0.5 * (z - 2.0))
	return round4(clamp(prob, 0, 1))
}

// StableAlert is a depeg warning/alert event derived from ComputeStableHealth
// output.
type StableAlert struct {
	Type     string // STABLE_DEPEG_ALERT|STABLE_DEPEG_WARNING
	Symbol   string
	DepegBps float64
	Price    float64
	Ts       time.Time
}

// GetStableAlerts converts warning/alert statuses into emittable alerts.
func GetStableAlerts(health map[string]StableHealth) []StableAlert {
	var alerts []StableAlert
	for symbol, h := range health {
		switch h.Status {
		case "alert":
			alerts = append(alerts, StableAlert{Type: "STABLE_DEPEG_ALERT", Symbol: symbol, DepegBps: h.DepegBps, Price: h.Price, Ts: h.Ts})
		case "warning":
			alerts = append(alerts, StableAlert{Type: "STABLE_DEPEG_WARNING", Symbol: symbol, DepegBps: h.DepegBps, Price: h.Price, Ts: h.Ts})
		}
	}
	return alerts
}
