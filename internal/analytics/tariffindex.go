// Package analytics holds the desk's stateless computation modules:
// pure functions (or small structs with a bounded ring history) over
// ticks and snapshots, producing the scores and alerts the rules engine
// and agents consume. Every module here takes its dependencies (weights,
// thresholds, prior state) as constructor or call arguments rather than
// reading module-level globals, so the same analyzer can run concurrently
// against multiple symbols or inside the sandbox/replay engines.
package analytics

// TariffComponent is one (country, product) contribution to the index.
type TariffComponent struct {
	Country      string
	Product      string
	TariffRate   float64
	Weight       float64
	Contribution float64
}

// TariffRow is one observed tariff rate, with an optional prior rate used
// to compute rate-of-change.
type TariffRow struct {
	Country        string
	Product        string
	TariffRate     float64
	PrevTariffRate float64
	HasPrev        bool
}

// TariffIndexResult is the output of TariffIndexCalculator.Calculate.
type TariffIndexResult struct {
	IndexLevel   float64
	RateOfChange float64
	Components   []TariffComponent
}

// TariffIndexCalculator combines per-country and per-product weights into
// a single 0-100 tariff index.
type TariffIndexCalculator struct {
	CountryWeights map[string]float64
	ProductWeights map[string]float64
}

// Calculate computes the weighted tariff index over rows. A row's combined
// weight is the product of its country and product weight when both are
// set, or the larger of the two when only one is (matching the original
// implementation's "or the more specific signal wins" fallback).
func (c TariffIndexCalculator) Calculate(rows []TariffRow) TariffIndexResult {
	if len(rows) == 0 {
		return TariffIndexResult{}
	}

	components := make([]TariffComponent, 0, len(rows))
	var weightedSum, totalWeight float64

	for _, row := range rows {
		weight := c.combinedWeight(row.Country, row.Product)
		contribution := row.TariffRate * weight
		weightedSum += contribution
		totalWeight += weight

		components = append(components, TariffComponent{
			Country:      row.Country,
			Product:      row.Product,
			TariffRate:   row.TariffRate,
			Weight:       weight,
			Contribution: contribution,
		})
	}

	var rawIndex float64
	if totalWeight > 0 {
		rawIndex = weightedSum / totalWeight
	}
	indexLevel := normalizeTariff(rawIndex, 100.0)

	rateOfChange := c.rateOfChange(rows, indexLevel)

	return TariffIndexResult{
		IndexLevel:   round4(indexLevel),
		RateOfChange: round4(rateOfChange),
		Components:   components,
	}
}

func (c TariffIndexCalculator) rateOfChange(rows []TariffRow, indexLevel float64) float64 {
	hasPrev := false
	for _, r := range rows {
		if r.HasPrev {
			hasPrev = true
			break
		}
	}
	if !hasPrev {
		return 0
	}

	var prevWeighted, prevTotal float64
	for _, row := range rows {
		weight := c.combinedWeight(row.Country, row.Product)
		prevWeighted += row.PrevTariffRate * weight
		prevTotal += weight
	}
	var prevRaw float64
	if prevTotal > 0 {
		prevRaw = prevWeighted / prevTotal
	}
	prevIndex := normalizeTariff(prevRaw, 100.0)

	if prevIndex > 0 {
		return (indexLevel - prevIndex) / prevIndex * 100.0
	}
	if indexLevel > 0 {
		return 100.0
	}
	return 0.0
}

func (c TariffIndexCalculator) combinedWeight(country, product string) float64 {
	cw := c.CountryWeights[country]
	pw := c.ProductWeights[product]
	if cw != 0 && pw != 0 {
		return cw * pw
	}
	return maxFloat(cw, pw)
}

func normalizeTariff(value, maxRate float64) float64 {
	clamped := clamp(value, 0, maxRate)
	return clamped / maxRate * 100.0
}
