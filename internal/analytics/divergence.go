package analytics

import (
	"math"
	"time"
)

// SpreadPoint is one timestamped cross-venue spread reading.
type SpreadPoint struct {
	Ts          time.Time
	SpreadPct   float64
}

// DivergenceAlert marks a sustained period where |spread| exceeded a
// threshold for at least minDuration.
type DivergenceAlert struct {
	Start           time.Time
	End             time.Time
	DurationMinutes float64
	MaxSpreadPct    float64
	MeanSpreadPct   float64
	Ongoing         bool
}

// ComputeSpreadPct computes the percentage spread between two prices
// around their midpoint. Returns (0, false) if the midpoint is zero.
func ComputeSpreadPct(priceA, priceB float64) (float64, bool) {
	midpoint := (priceA + priceB) / 2.0
	if midpoint == 0 {
		return 0, false
	}
	return (priceA - priceB) / midpoint * 100.0, true
}

// DetectDivergence scans a time-ordered series of spread points and emits
// one alert per contiguous run where |spread| exceeds thresholdPct,
// provided that run lasted at least minDuration. A run still in progress
// at the end of the series is reported as Ongoing.
func DetectDivergence(points []SpreadPoint, thresholdPct float64, minDuration time.Duration) []DivergenceAlert {
	if len(points) == 0 {
		return nil
	}

	var alerts []DivergenceAlert
	inDivergence := false
	var start time.Time
	var windowStart int

	flush := func(endIdx int, end time.Time, ongoing bool) {
		duration := end.Sub(start)
		if duration < minDuration {
			return
		}
		window := points[windowStart : endIdx+1]
		maxAbs, sum := 0.0, 0.0
		for _, p := range window {
			if math.Abs(p.SpreadPct) > maxAbs {
				maxAbs = math.Abs(p.SpreadPct)
			}
			sum += p.SpreadPct
		}
		alerts = append(alerts, DivergenceAlert{
			Start:           start,
			End:             end,
			DurationMinutes: round2(duration.Minutes()),
			MaxSpreadPct:    round4(maxAbs),
			MeanSpreadPct:   round4(sum / float64(len(window))),
			Ongoing:         ongoing,
		})
	}

	for i, p := range points {
		isAbove := math.Abs(p.SpreadPct) > thresholdPct
		switch {
		case isAbove && !inDivergence:
			inDivergence = true
			start = p.Ts
			windowStart = i
		case !isAbove && inDivergence:
			inDivergence = false
			flush(i, p.Ts, false)
		}
	}

	if inDivergence {
		last := points[len(points)-1]
		flush(len(points)-1, last.Ts, true)
	}

	return alerts
}

// ComputeBasis returns the perp-over-spot basis as a percentage.
func ComputeBasis(perpPrice, spotPrice float64) float64 {
	if spotPrice == 0 {
		return 0
	}
	return (perpPrice - spotPrice) / spotPrice * 100.0
}
