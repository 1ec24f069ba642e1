package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMacroAgentFiresOnAllThreeThresholds(t *testing.T) {
	a := NewMacroAgent()
	signals := a.Evaluate(MacroInput{TariffMomentum: 6.0, ShockScore: 2.5, TariffIndex: 75})
	assert.Len(t, signals, 3)
}

func TestMacroAgentQuietStateProducesNoSignals(t *testing.T) {
	a := NewMacroAgent()
	signals := a.Evaluate(MacroInput{TariffMomentum: 1.0, ShockScore: 0.5, TariffIndex: 40})
	assert.Empty(t, signals)
}

func TestMacroAgentTariffAccelerationCarriesWeightAdjustment(t *testing.T) {
	a := NewMacroAgent()
	signals := a.Evaluate(MacroInput{TariffMomentum: 6.0})
	assert.Equal(t, "TARIFF_ACCELERATION", signals[0].Signal)
	assert.NotNil(t, signals[0].Detail["weight_adjustment"])
}
