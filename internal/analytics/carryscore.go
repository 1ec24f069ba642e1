package analytics

// CarryAnnualizationFactor assumes funding compounds three times a day.
const CarryAnnualizationFactor = 365 * 3

// ComputeCarryScore annualizes a per-period funding rate.
func ComputeCarryScore(fundingRate float64) float64 {
	return fundingRate * CarryAnnualizationFactor
}
