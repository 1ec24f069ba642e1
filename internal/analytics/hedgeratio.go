package analytics

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

const (
	hedgeRatioDefaultWindow = 30
	hedgeRatioMinObs        = 5
)

// PairCorrelation is a pairwise Pearson correlation between two assets'
// recent return series.
type PairCorrelation struct {
	Pair         string
	Correlation  *float64
	SampleSize   int
	Window       int
	Note         string
}

// RollingCorrelations computes pairwise correlations over the trailing
// window observations of each asset's return series.
func RollingCorrelations(returns map[string][]float64, window int) []PairCorrelation {
	if window <= 0 {
		window = hedgeRatioDefaultWindow
	}
	assets := sortedKeys(returns)

	var out []PairCorrelation
	for i, a1 := range assets {
		for _, a2 := range assets[i+1:] {
			r1, r2 := returns[a1], returns[a2]
			n := minInt3(len(r1), len(r2), window)
			pair := a1 + "_vs_" + a2
			if n < hedgeRatioMinObs {
				out = append(out, PairCorrelation{
					Pair: pair, SampleSize: n, Window: window,
					Note: "insufficient data",
				})
				continue
			}
			s1, s2 := tail(r1, n), tail(r2, n)
			corr, ok := pearson(s1, s2)
			pc := PairCorrelation{Pair: pair, SampleSize: n, Window: window}
			if ok {
				c := round4(corr)
				pc.Correlation = &c
			}
			out = append(out, pc)
		}
	}
	return out
}

// HedgeRatioResult is the output of ComputeHedgeRatio.
type HedgeRatioResult struct {
	HedgeRatio           *float64
	RSquared             *float64
	HedgeEffectiveness   *float64
	Confidence           float64
	SampleSize           int
	Window               int
	Note                 string
	RecommendedHedgeLeg  string
}

// ComputeHedgeRatio regresses an asset's returns on a candidate hedge
// instrument's returns (beta = Cov(asset,hedge)/Var(hedge)) over the
// trailing window observations, and recommends a hedge leg from beta's
// sign and magnitude.
func ComputeHedgeRatio(assetReturns, hedgeReturns []float64, window int) HedgeRatioResult {
	if window <= 0 {
		window = hedgeRatioDefaultWindow
	}
	n := minInt3(len(assetReturns), len(hedgeReturns), window)
	if n < hedgeRatioMinObs {
		return HedgeRatioResult{SampleSize: n, Window: window, Note: "insufficient data"}
	}

	y := tail(assetReturns, n)
	x := tail(hedgeReturns, n)

	varX := stat.Variance(x, nil)
	if varX < 1e-12 {
		return HedgeRatioResult{
			SampleSize: n, Window: window,
			Note: "zero variance in hedge instrument",
		}
	}

	beta := stat.Covariance(y, x, nil) / varX

	var rSquared float64
	if stat.Variance(y, nil) >= 1e-12 {
		if corr, ok := pearson(y, x); ok {
			rSquared = corr * corr
		}
	}

	confidence := 0.4 + (float64(n)/float64(window))*0.3 + rSquared*0.25
	if confidence > 0.95 {
		confidence = 0.95
	}

	betaR := round4(beta)
	r2 := round4(rSquared)
	eff := r2

	return HedgeRatioResult{
		HedgeRatio:          &betaR,
		RSquared:            &r2,
		HedgeEffectiveness:  &eff,
		Confidence:          round4(confidence),
		SampleSize:          n,
		Window:              window,
		RecommendedHedgeLeg: recommendHedgeLeg(beta),
	}
}

func recommendHedgeLeg(beta float64) string {
	switch {
	case beta > 0.5:
		return "short_hl_perp"
	case beta < -0.5:
		return "long_hl_perp"
	case beta < 0.2 && beta > -0.2:
		return "spot_reduction"
	default:
		return "drift_perp_hedge"
	}
}

func pearson(x, y []float64) (float64, bool) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	if n < 2 {
		return 0, false
	}
	sx := math.Sqrt(stat.Variance(x, nil))
	sy := math.Sqrt(stat.Variance(y, nil))
	if sx < 1e-12 || sy < 1e-12 {
		return 0, false
	}
	return stat.Correlation(x, y, nil), true
}

func tail(xs []float64, n int) []float64 {
	return xs[len(xs)-n:]
}

func minInt3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func sortedKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Deterministic ordering matters for reproducible pair labels.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// FullHedgeAnalysis bundles correlations, hedge ratios against a primary
// asset, and macro-shock correlations into one report.
type FullHedgeAnalysis struct {
	Correlations           []PairCorrelation
	HedgeRatios            map[string]HedgeRatioResult
	MacroCorrelations      map[string]*float64
	BestHedge              string
	BestHedgeEffectiveness float64
	Window                 int
	Ts                     time.Time
}

// ComputeFullHedgeAnalysis finds, for a primary asset, which of the other
// assets in returns is the most effective hedge, and separately measures
// each asset's correlation with a macro shock series.
func ComputeFullHedgeAnalysis(returns map[string][]float64, macroShockSeries []float64, window int, primaryAsset string) FullHedgeAnalysis {
	if window <= 0 {
		window = hedgeRatioDefaultWindow
	}

	corr := RollingCorrelations(returns, window)

	hedgeRatios := map[string]HedgeRatioResult{}
	if primary, ok := returns[primaryAsset]; ok {
		for asset, series := range returns {
			if asset == primaryAsset {
				continue
			}
			hedgeRatios[primaryAsset+"_hedged_by_"+asset] = ComputeHedgeRatio(primary, series, window)
		}
	}

	macroCorr := map[string]*float64{}
	if len(macroShockSeries) >= hedgeRatioMinObs {
		for asset, series := range returns {
			n := minInt3(len(series), len(macroShockSeries), window)
			if n < hedgeRatioMinObs {
				continue
			}
			if c, ok := pearson(tail(series, n), tail(macroShockSeries, n)); ok {
				v := round4(c)
				macroCorr[asset] = &v
			}
		}
	}

	var bestHedge string
	var bestEff float64
	for name, hr := range hedgeRatios {
		if hr.HedgeEffectiveness != nil && *hr.HedgeEffectiveness > bestEff {
			bestEff = *hr.HedgeEffectiveness
			bestHedge = name
		}
	}

	return FullHedgeAnalysis{
		Correlations:           corr,
		HedgeRatios:            hedgeRatios,
		MacroCorrelations:      macroCorr,
		BestHedge:              bestHedge,
		BestHedgeEffectiveness: round4(bestEff),
		Window:                 window,
		Ts:                     time.Now().UTC(),
	}
}
