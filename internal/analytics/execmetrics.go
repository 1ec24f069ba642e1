package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	execMetricsRollingWindow        = 100
	slippageAnomalyThresholdBps     = 50.0
	slippageAnomalyZScore           = 2.5
)

// Fill is one recorded order execution.
type Fill struct {
	OrderTs            time.Time
	FillTs             time.Time
	ExpectedPrice      float64
	FillPrice          float64
	Venue              string
	Market             string
	LatencyMs          float64
	SlippageBps        float64
	SignedSlippageBps  float64
	RecordedAt         time.Time
}

// SlippageAnomaly is the verdict of one anomaly check against venue
// history.
type SlippageAnomaly struct {
	IsAnomaly   bool
	SlippageBps float64
	Venue       string
	Method      string // absolute_threshold|z_score
	ZScore      *float64
	MeanBps     *float64
	StdBps      *float64
	Reason      string
}

// VenueBreakdown summarizes one venue's rolling fill quality.
type VenueBreakdown struct {
	FillCount         int
	LatencyP50Ms      float64
	LatencyP95Ms      float64
	SlippageMeanBps   float64
	SlippageP95Bps    float64
}

// ExecutionQualityReport is the output of ExecutionMetrics.EQI.
type ExecutionQualityReport struct {
	EQIScore        float64
	FillCount       int
	LatencyP50Ms    float64
	LatencyP95Ms    float64
	SlippageMeanBps float64
	SlippageP50Bps  float64
	SlippageP95Bps  float64
	Anomalies       []SlippageAnomaly
	VenueBreakdown  map[string]VenueBreakdown
	Ts              time.Time
}

// ExecutionMetrics tracks a rolling window of fills per venue (and a
// 10x-wider combined window) to score execution quality and flag
// slippage anomalies. Prometheus gauges mirror the latest EQI snapshot
// for scraping.
type ExecutionMetrics struct {
	rollingWindow int
	perVenue      map[string][]Fill
	allFills      []Fill

	eqiGauge      prometheus.Gauge
	slippageGauge *prometheus.GaugeVec
}

// NewExecutionMetrics wires Prometheus gauges into the given registerer.
// Registration failures (e.g. duplicate registration in tests) are
// ignored, matching the teacher's best-effort metrics registration.
func NewExecutionMetrics(reg prometheus.Registerer, rollingWindow int) *ExecutionMetrics {
	if rollingWindow <= 0 {
		rollingWindow = execMetricsRollingWindow
	}
	m := &ExecutionMetrics{
		rollingWindow: rollingWindow,
		perVenue:      make(map[string][]Fill),
		eqiGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "riskdesk",
			Subsystem: "execution",
			Name:      "quality_index",
			Help:      "Execution quality index, 0-100, blending latency and slippage percentiles.",
		}),
		slippageGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "riskdesk",
			Subsystem: "execution",
			Name:      "slippage_p95_bps",
			Help:      "Rolling p95 slippage in bps, by venue.",
		}, []string{"venue"}),
	}
	if reg != nil {
		_ = reg.Register(m.eqiGauge)
		_ = reg.Register(m.slippageGauge)
	}
	return m
}

// RecordFill appends a fill to both the venue-specific and combined
// rolling windows and returns its computed latency/slippage.
func (m *ExecutionMetrics) RecordFill(orderTs, fillTs time.Time, expectedPrice, fillPrice float64, venue, market string) Fill {
	latencyMs := fillTs.Sub(orderTs).Seconds() * 1000.0
	if latencyMs < 0 {
		latencyMs = 0
	}

	var slippageBps, signedSlippageBps float64
	if expectedPrice > 0 {
		slippageBps = math.Abs(fillPrice-expectedPrice) / expectedPrice * 10000.0
		signedSlippageBps = (fillPrice - expectedPrice) / expectedPrice * 10000.0
	}

	fill := Fill{
		OrderTs: orderTs, FillTs: fillTs,
		ExpectedPrice: expectedPrice, FillPrice: fillPrice,
		Venue: venue, Market: market,
		LatencyMs: latencyMs, SlippageBps: slippageBps, SignedSlippageBps: signedSlippageBps,
		RecordedAt: time.Now().UTC(),
	}

	m.perVenue[venue] = appendBounded(m.perVenue[venue], fill, m.rollingWindow)
	m.allFills = appendBounded(m.allFills, fill, m.rollingWindow*10)

	if m.slippageGauge != nil {
		m.slippageGauge.WithLabelValues(venue).Set(percentile(venueSlippages(m.perVenue[venue]), 95))
	}

	return fill
}

func appendBounded(xs []Fill, f Fill, max int) []Fill {
	xs = append(xs, f)
	if len(xs) > max {
		xs = xs[len(xs)-max:]
	}
	return xs
}

// EQI computes the combined execution quality index across all recorded
// fills: 40% latency score, 60% slippage score, each penalizing a higher
// p95. Also surfaces the last 20 fills' anomaly verdicts and a
// per-venue breakdown.
func (m *ExecutionMetrics) EQI() ExecutionQualityReport {
	if len(m.allFills) == 0 {
		return ExecutionQualityReport{EQIScore: 100.0, VenueBreakdown: map[string]VenueBreakdown{}, Ts: time.Now().UTC()}
	}

	latencies := make([]float64, len(m.allFills))
	slippages := make([]float64, len(m.allFills))
	for i, f := range m.allFills {
		latencies[i] = f.LatencyMs
		slippages[i] = f.SlippageBps
	}
	sort.Float64s(latencies)
	sort.Float64s(slippages)

	latP50 := percentile(latencies, 50)
	latP95 := percentile(latencies, 95)
	slipMean := mean(slippages)
	slipP50 := percentile(slippages, 50)
	slipP95 := percentile(slippages, 95)

	latencyScore := math.Max(0, 100.0-latP95/10.0)
	slippageScore := math.Max(0, 100.0-slipP95/5.0)
	eqi := clamp(latencyScore*0.4+slippageScore*0.6, 0, 100)

	var anomalies []SlippageAnomaly
	start := 0
	if len(m.allFills) > 20 {
		start = len(m.allFills) - 20
	}
	for _, f := range m.allFills[start:] {
		a := m.DetectSlippageAnomaly(f.SlippageBps, f.Venue)
		if a.IsAnomaly {
			anomalies = append(anomalies, a)
		}
	}

	breakdown := make(map[string]VenueBreakdown, len(m.perVenue))
	for venue, fills := range m.perVenue {
		if len(fills) == 0 {
			continue
		}
		vLat := make([]float64, len(fills))
		vSlip := make([]float64, len(fills))
		for i, f := range fills {
			vLat[i] = f.LatencyMs
			vSlip[i] = f.SlippageBps
		}
		sort.Float64s(vLat)
		sort.Float64s(vSlip)
		breakdown[venue] = VenueBreakdown{
			FillCount:       len(fills),
			LatencyP50Ms:    round2(percentile(vLat, 50)),
			LatencyP95Ms:    round2(percentile(vLat, 95)),
			SlippageMeanBps: round2(mean(vSlip)),
			SlippageP95Bps:  round2(percentile(vSlip, 95)),
		}
	}

	if m.eqiGauge != nil {
		m.eqiGauge.Set(eqi)
	}

	return ExecutionQualityReport{
		EQIScore:        round2(eqi),
		FillCount:       len(m.allFills),
		LatencyP50Ms:    round2(latP50),
		LatencyP95Ms:    round2(latP95),
		SlippageMeanBps: round2(slipMean),
		SlippageP50Bps:  round2(slipP50),
		SlippageP95Bps:  round2(slipP95),
		Anomalies:       anomalies,
		VenueBreakdown:  breakdown,
		Ts:              time.Now().UTC(),
	}
}

// DetectSlippageAnomaly flags a fill's slippage as anomalous either by an
// absolute bps threshold (when a venue has under 5 recorded fills, or its
// historical slippage has near-zero variance) or by z-score against the
// venue's rolling history.
func (m *ExecutionMetrics) DetectSlippageAnomaly(slippageBps float64, venue string) SlippageAnomaly {
	venueFills := m.perVenue[venue]

	if len(venueFills) < 5 {
		isAnomaly := slippageBps > slippageAnomalyThresholdBps
		return SlippageAnomaly{
			IsAnomaly: isAnomaly, SlippageBps: round2(slippageBps), Venue: venue,
			Method: "absolute_threshold", Reason: anomalyReason(isAnomaly, "within threshold"),
		}
	}

	historical := make([]float64, len(venueFills))
	for i, f := range venueFills {
		historical[i] = f.SlippageBps
	}
	meanSlip := mean(historical)
	stdSlip := math.Sqrt(variancePop(historical, meanSlip))

	if stdSlip < 0.01 {
		isAnomaly := slippageBps > slippageAnomalyThresholdBps
		m2, s2 := round2(meanSlip), round2(stdSlip)
		return SlippageAnomaly{
			IsAnomaly: isAnomaly, SlippageBps: round2(slippageBps), Venue: venue,
			Method: "absolute_threshold", MeanBps: &m2, StdBps: &s2,
			Reason: anomalyReason(isAnomaly, "within threshold"),
		}
	}

	z := (slippageBps - meanSlip) / stdSlip
	isAnomaly := z > slippageAnomalyZScore || slippageBps > slippageAnomalyThresholdBps
	zr, m2, s2 := round2(z), round2(meanSlip), round2(stdSlip)

	return SlippageAnomaly{
		IsAnomaly: isAnomaly, SlippageBps: round2(slippageBps), Venue: venue,
		Method: "z_score", ZScore: &zr, MeanBps: &m2, StdBps: &s2,
		Reason: anomalyReason(isAnomaly, "within normal range"),
	}
}

func anomalyReason(isAnomaly bool, okMsg string) string {
	if isAnomaly {
		return "exceeds anomaly threshold"
	}
	return okMsg
}

func venueSlippages(fills []Fill) []float64 {
	out := make([]float64, len(fills))
	for i, f := range fills {
		out[i] = f.SlippageBps
	}
	sort.Float64s(out)
	return out
}

func variancePop(xs []float64, m float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sumSq float64
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return sumSq / float64(len(xs))
}

// percentile linearly interpolates within an already-sorted slice.
func percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	k := float64(len(sorted)-1) * (pct / 100.0)
	f := int(k)
	c := f + 1
	if c >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	d := k - float64(f)
	return sorted[f] + d*(sorted[c]-sorted[f])
}
