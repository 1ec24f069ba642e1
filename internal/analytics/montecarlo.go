package analytics

import (
	"math"
	"sort"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	monteCarloDefaultPaths = 2000
	monteCarloMaxPaths     = 10000
	monteCarloHistBins     = 50
)

// MonteCarloParams configures one simulation run.
type MonteCarloParams struct {
	CurrentPrice    float64
	PositionSize    float64
	Volatility      float64
	HorizonHours    float64
	NPaths          int
	Drift           float64
	FundingRate     float64
	ShockAdjustment float64
	LiqPrice        *float64
	Source          rand.Source // nil uses a fresh time-seeded source
}

// MonteCarloHistogram is a fixed-bin PnL distribution.
type MonteCarloHistogram struct {
	Counts []int
	Edges  []float64
}

// MonteCarloResult is the full output of MonteCarloEngine.Run.
type MonteCarloResult struct {
	CurrentPrice     float64
	PositionSize     float64
	Volatility       float64
	HorizonHours     float64
	NPaths           int
	VaR95            float64
	VaR99            float64
	CVaR95           float64
	CVaR99           float64
	ExpectedPnL      float64
	MedianPnL        float64
	StdPnL           float64
	ProbLoss5Pct     float64
	ProbLoss10Pct    float64
	ProbLiquidation  float64
	Histogram        MonteCarloHistogram
	Ts               time.Time
}

// MonteCarloEngine runs geometric-Brownian-motion price path simulations
// to size VaR/CVaR and liquidation probability for a position.
type MonteCarloEngine struct{}

// Run simulates NPaths (clamped to [100, monteCarloMaxPaths]) GBM price
// paths over HorizonHours and derives risk statistics from the resulting
// PnL distribution.
func (MonteCarloEngine) Run(p MonteCarloParams) MonteCarloResult {
	nPaths := p.NPaths
	if nPaths < 100 {
		nPaths = 100
	}
	if nPaths > monteCarloMaxPaths {
		nPaths = monteCarloMaxPaths
	}

	volAdj := p.Volatility * (1.0 + p.ShockAdjustment)
	dt := p.HorizonHours / (365.25 * 24.0)
	sqrtDt := math.Sqrt(dt)

	src := p.Source
	if src == nil {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	fundingCost := math.Abs(p.PositionSize) * p.CurrentPrice * p.FundingRate * (p.HorizonHours / 8.0)

	endPrices := make([]float64, nPaths)
	pnl := make([]float64, nPaths)
	for i := 0; i < nPaths; i++ {
		z := normal.Rand()
		logReturn := (p.Drift-0.5*volAdj*volAdj)*dt + volAdj*sqrtDt*z
		endPrices[i] = p.CurrentPrice * math.Exp(logReturn)
		pnl[i] = p.PositionSize*(endPrices[i]-p.CurrentPrice) - fundingCost
	}

	sorted := append([]float64(nil), pnl...)
	sort.Float64s(sorted)

	var_95 := -stat.Quantile(0.05, stat.Empirical, sorted, nil)
	var_99 := -stat.Quantile(0.01, stat.Empirical, sorted, nil)
	cvar95 := -tailMean(sorted, 0.05)
	cvar99 := -tailMean(sorted, 0.01)

	meanPnL := stat.Mean(pnl, nil)
	medianPnL := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	stdPnL := stat.StdDev(pnl, nil)

	lossThreshold5 := math.Abs(p.PositionSize*p.CurrentPrice) * 0.05
	lossThreshold10 := math.Abs(p.PositionSize*p.CurrentPrice) * 0.10
	probLoss5 := fractionBelow(pnl, -lossThreshold5)
	probLoss10 := fractionBelow(pnl, -lossThreshold10)

	probLiq := 0.0
	if p.LiqPrice != nil && p.PositionSize != 0 {
		liq := *p.LiqPrice
		hits := 0
		for _, endPrice := range endPrices {
			if p.PositionSize > 0 {
				if endPrice <= liq {
					hits++
				}
			} else if endPrice >= liq {
				hits++
			}
		}
		probLiq = float64(hits) / float64(nPaths)
	}

	counts, edges := histogram(pnl, monteCarloHistBins)

	return MonteCarloResult{
		CurrentPrice:    p.CurrentPrice,
		PositionSize:    p.PositionSize,
		Volatility:      p.Volatility,
		HorizonHours:    p.HorizonHours,
		NPaths:          nPaths,
		VaR95:           round2(var_95),
		VaR99:           round2(var_99),
		CVaR95:          round2(cvar95),
		CVaR99:          round2(cvar99),
		ExpectedPnL:     round2(meanPnL),
		MedianPnL:       round2(medianPnL),
		StdPnL:          round2(stdPnL),
		ProbLoss5Pct:    round4(probLoss5),
		ProbLoss10Pct:   round4(probLoss10),
		ProbLiquidation: round4(probLiq),
		Histogram:       MonteCarloHistogram{Counts: counts, Edges: edges},
		Ts:              time.Now().UTC(),
	}
}

// tailMean averages the lowest fraction of a sorted slice (at least one
// element), matching np.mean(pnl_sorted[:max(int(frac*n), 1)]).
func tailMean(sorted []float64, frac float64) float64 {
	n := int(frac * float64(len(sorted)))
	if n < 1 {
		n = 1
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	return mean(sorted[:n])
}

func fractionBelow(xs []float64, threshold float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	count := 0
	for _, x := range xs {
		if x < threshold {
			count++
		}
	}
	return float64(count) / float64(len(xs))
}

func histogram(xs []float64, bins int) ([]int, []float64) {
	if len(xs) == 0 || bins <= 0 {
		return nil, nil
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	if lo == hi {
		hi = lo + 1
	}

	edges := make([]float64, bins+1)
	width := (hi - lo) / float64(bins)
	for i := range edges {
		edges[i] = round2(lo + width*float64(i))
	}

	counts := make([]int, bins)
	for _, x := range xs {
		idx := int((x - lo) / width)
		if idx < 0 {
			idx = 0
		}
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}
	return counts, edges
}
