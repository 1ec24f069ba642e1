package analytics

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// OrderbookImbalance summarizes one snapshot's depth-weighted bid/ask
// pressure.
type OrderbookImbalance struct {
	BidVolume      float64
	AskVolume      float64
	Imbalance      float64
	Bias           string // bullish|bearish|neutral
	LiquidityThin  bool
	Ts             time.Time
}

// ComputeOrderbookImbalance sums the top `levels` rungs on each side. A
// combined volume under 100 units is flagged thin regardless of the side
// imbalance.
func ComputeOrderbookImbalance(bids, asks []PriceLevelQty, levels int) OrderbookImbalance {
	bidVol := sumQty(bids, levels)
	askVol := sumQty(asks, levels)
	total := bidVol + askVol

	var imbalance float64
	if total != 0 {
		imbalance = (bidVol - askVol) / total
	}

	bias := "neutral"
	switch {
	case imbalance > 0.2:
		bias = "bullish"
	case imbalance < -0.2:
		bias = "bearish"
	}

	return OrderbookImbalance{
		BidVolume:     round2(bidVol),
		AskVolume:     round2(askVol),
		Imbalance:     round4(imbalance),
		Bias:          bias,
		LiquidityThin: total < 100.0,
		Ts:            time.Now().UTC(),
	}
}

// PriceLevelQty is the minimal (price, qty) pair microstructure needs;
// kept separate from models.PriceLevel so this package has no import-time
// dependency on the wider model graph.
type PriceLevelQty struct {
	Price float64
	Qty   float64
}

func sumQty(levels []PriceLevelQty, n int) float64 {
	if n > len(levels) {
		n = len(levels)
	}
	var sum float64
	for _, l := range levels[:n] {
		sum += l.Qty
	}
	return sum
}

// DislocationAlert flags a pairwise cross-venue price gap.
type DislocationAlert struct {
	VenueA, VenueB     string
	PriceA, PriceB     float64
	SpreadBps          float64
	Ts                 time.Time
}

// DetectDislocation compares every pair of venue prices and flags pairs
// whose spread exceeds thresholdBps. Requires at least minVenues quoted
// prices to run at all.
func DetectDislocation(prices map[string]float64, thresholdBps float64, minVenues int) []DislocationAlert {
	if len(prices) < minVenues {
		return nil
	}

	type quote struct {
		venue string
		price float64
	}
	var quotes []quote
	for v, p := range prices {
		if p > 0 {
			quotes = append(quotes, quote{v, p})
		}
	}
	if len(quotes) < 2 {
		return nil
	}

	var alerts []DislocationAlert
	now := time.Now().UTC()
	for i := 0; i < len(quotes); i++ {
		for j := i + 1; j < len(quotes); j++ {
			a, b := quotes[i], quotes[j]
			mid := (a.price + b.price) / 2.0
			if mid == 0 {
				continue
			}
			spreadBps := math.Abs(a.price-b.price) / mid * 10000.0
			if spreadBps > thresholdBps {
				alerts = append(alerts, DislocationAlert{
					VenueA: a.venue, VenueB: b.venue,
					PriceA: round4(a.price), PriceB: round4(b.price),
					SpreadBps: round2(spreadBps),
					Ts:        now,
				})
			}
		}
	}
	return alerts
}

// BasisOpportunity is emitted when a perp/spot basis exceeds threshold.
type BasisOpportunity struct {
	PerpVenue, SpotVenue string
	PerpPrice, SpotPrice float64
	BasisBps             float64
	Direction            string // short_perp_long_spot|long_perp_short_spot
	Ts                   time.Time
}

// DetectBasisOpportunity returns nil if the basis is within threshold or
// either price is zero.
func DetectBasisOpportunity(perpPrice, spotPrice float64, perpVenue, spotVenue string, thresholdBps float64) *BasisOpportunity {
	if spotPrice == 0 || perpPrice == 0 {
		return nil
	}
	basisBps := (perpPrice - spotPrice) / spotPrice * 10000.0
	if math.Abs(basisBps) <= thresholdBps {
		return nil
	}
	direction := "long_perp_short_spot"
	if basisBps > 0 {
		direction = "short_perp_long_spot"
	}
	return &BasisOpportunity{
		PerpVenue: perpVenue, SpotVenue: spotVenue,
		PerpPrice: round4(perpPrice), SpotPrice: round4(spotPrice),
		BasisBps:  round2(basisBps),
		Direction: direction,
		Ts:        time.Now().UTC(),
	}
}

// ConvergenceSpeed is the mean-reversion half-life fit of a spread series.
type ConvergenceSpeed struct {
	HalfLife            *float64
	MeanReversionSpeed float64
}

// ComputeConvergenceSpeed fits an AR(1)-style regression of spread changes
// on spread levels, forced through the origin (Δspread_t = beta*spread_t),
// and converts a negative beta (mean-reverting) into a half-life. A
// non-negative beta (divergent or random-walk) returns a nil half-life.
func ComputeConvergenceSpeed(spreadSeries []float64) ConvergenceSpeed {
	if len(spreadSeries) < 3 {
		return ConvergenceSpeed{}
	}

	levels := spreadSeries[:len(spreadSeries)-1]
	changes := make([]float64, len(levels))
	for i := range levels {
		changes[i] = spreadSeries[i+1] - spreadSeries[i]
	}

	allZero := true
	for _, l := range levels {
		if l != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return ConvergenceSpeed{}
	}

	// origin=true forces the fit through zero, matching beta = Σxy/Σxx.
	_, beta := stat.LinearRegression(levels, changes, nil, true)

	var halfLife *float64
	if beta < 0 {
		hl := round2(-math.Ln2 / beta)
		halfLife = &hl
	}

	return ConvergenceSpeed{
		HalfLife:           halfLife,
		MeanReversionSpeed: round(math.Abs(beta), 6),
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
