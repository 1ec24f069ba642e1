package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFundingArbDetectorNoneBelowThreshold(t *testing.T) {
	d := NewFundingArbDetector()
	sig := d.Detect(0.0001, 0.00011)
	assert.Equal(t, "none", sig.ArbSignal)
	assert.Equal(t, 1, sig.HistoryLen)
}

func TestFundingArbDetectorSignalsShortHLLongDrift(t *testing.T) {
	d := NewFundingArbDetector()
	sig := d.Detect(0.002, -0.001)
	assert.Equal(t, "short_hl_long_drift", sig.ArbSignal)
	assert.Greater(t, sig.SpreadBps, 0.0)
	assert.Greater(t, sig.ExpectedNetCarry, 0.0)
}

func TestFundingArbDetectorSignalsLongHLShortDrift(t *testing.T) {
	d := NewFundingArbDetector()
	sig := d.Detect(-0.002, 0.001)
	assert.Equal(t, "long_hl_short_drift", sig.ArbSignal)
}

func TestFundingArbDetectorConfidenceCappedAt95(t *testing.T) {
	d := NewFundingArbDetector()
	for i := 0; i < 10; i++ {
		d.Detect(0.05, -0.05)
	}
	sig := d.Detect(0.05, -0.05)
	assert.LessOrEqual(t, sig.Confidence, 0.95)
}

func TestFundingArbDetectorHistoryBounded(t *testing.T) {
	d := NewFundingArbDetector()
	for i := 0; i < FundingArbMaxHistory+20; i++ {
		d.Detect(0.001, 0.0001)
	}
	assert.Equal(t, FundingArbMaxHistory, d.History())
}
