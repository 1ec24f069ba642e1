package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAdaptiveWeightsDisabledPassesThrough(t *testing.T) {
	result := ComputeAdaptiveWeights(AdaptiveWeightsInputs{ShockScore: 90}, false)
	assert.False(t, result.AdaptiveEnabled)
	assert.Equal(t, defaultStrategyWeights, result.Weights)
}

func TestComputeAdaptiveWeightsSumsToOne(t *testing.T) {
	result := ComputeAdaptiveWeights(AdaptiveWeightsInputs{
		ShockScore: 80, FundingSkew: 0.08, VolRegime: "extreme", TariffIndex: 90,
	}, true)

	var total float64
	for _, w := range result.Weights {
		total += w
	}
	assert.InDelta(t, 1.0, total, 1e-3)
}

func TestComputeAdaptiveWeightsShockTiltsMacro(t *testing.T) {
	quiet := ComputeAdaptiveWeights(AdaptiveWeightsInputs{}, true)
	shocked := ComputeAdaptiveWeights(AdaptiveWeightsInputs{ShockScore: 85}, true)

	assert.Greater(t, shocked.Weights["macro"], quiet.Weights["macro"])
	require.NotEmpty(t, shocked.Adjustments)
}

func TestComputeAdaptiveWeightsHighVolTiltsMicrostructure(t *testing.T) {
	quiet := ComputeAdaptiveWeights(AdaptiveWeightsInputs{VolRegime: "normal"}, true)
	highVol := ComputeAdaptiveWeights(AdaptiveWeightsInputs{VolRegime: "high"}, true)

	assert.Greater(t, highVol.Weights["microstructure"], quiet.Weights["microstructure"])
}
