package service

import (
	"math"

	"viracoach/internal/types"
)

// Sub-score weights. They sum to 1.0; the weighted base is then adjusted by
// flat bonuses and penalties before clamping into [0,100].
const (
	weightHook            = 0.18
	weightVisuals         = 0.20
	weightAudio           = 0.25
	weightEngagement      = 0.27
	weightVisualDiversity = 0.10
)

// ComputeTotalScore folds the judged sub-scores and qualitative matrices
// into the single virality score. The base is rounded before adjustments,
// so the adjustment arithmetic stays in integers.
func ComputeTotalScore(scores types.ReportScores, matrices types.ReportMatrices) int {
	base := float64(scores.Hook)*weightHook +
		float64(scores.Visuals)*weightVisuals +
		float64(scores.Audio)*weightAudio +
		float64(scores.Engagement)*weightEngagement +
		float64(scores.VisualDiversity)*weightVisualDiversity

	adjust := 0
	switch matrices.Emotion {
	case "joy", "inspiration":
		adjust += 6
	}
	switch matrices.Tone {
	case "funny", "relatable":
		adjust += 6
	}
	switch matrices.FacialSync {
	case "ok", "good":
		adjust += 4
	case "none":
		adjust -= 5
	}
	if scores.Hook <= 30 {
		adjust -= 6
	}
	if scores.Audio < 40 {
		adjust -= 5
	}

	total := int(math.Round(base)) + adjust
	if total < 0 {
		return 0
	}
	if total > 100 {
		return 100
	}
	return total
}
