package analytics

import "math"

// ShockHistory is a bounded window of prior raw shock scores, used to
// z-score the current reading. Callers own and pass this in rather than
// the module keeping its own global history, per the DI requirement.
type ShockHistory struct {
	Raw []float64
}

// ShockResult is the output of ComputeShockScore.
type ShockResult struct {
	Attention float64
	Tone      float64
	Raw       float64
	Score     float64 // z-scored against history once enough history exists
}

// ComputeAttentionScore scales article volume logarithmically so 10 vs 100
// articles is a meaningful but not linear jump.
func ComputeAttentionScore(articleCount int) float64 {
	if articleCount <= 0 {
		return 0
	}
	return math.Log1p(float64(articleCount))
}

// ComputeToneScore returns the magnitude of negative average article tone,
// 0 if the average tone is net positive.
func ComputeToneScore(avgTone float64) float64 {
	return math.Max(-avgTone, 0)
}

// ComputeShockScore combines attention and tone into a raw shock reading,
// then z-scores it against history.Raw once at least two prior points
// exist. With fewer than two points, or a zero-variance history, it falls
// back to (resp. returns 0 for) the raw reading, matching the original
// fallback behavior.
func ComputeShockScore(attention, tone float64, history ShockHistory) ShockResult {
	raw := attention * (1.0 + tone)

	if len(history.Raw) < 2 {
		return ShockResult{Attention: attention, Tone: tone, Raw: raw, Score: raw}
	}

	m := mean(history.Raw)
	std := sampleStdDev(history.Raw)
	if std == 0 {
		return ShockResult{Attention: attention, Tone: tone, Raw: raw, Score: 0}
	}

	z := (raw - m) / std
	return ShockResult{Attention: attention, Tone: tone, Raw: raw, Score: z}
}

// IsSpike reports whether score exceeds threshold (default use: 2.0).
func IsSpike(score, threshold float64) bool {
	return score > threshold
}
