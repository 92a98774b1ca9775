package featureweight

import (
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/config"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
)

// normalizeTraditional turns raw per-feature deviations into a
// Sigma==1 traditional-weight vector, honoring an explicit caller
// override if supplied.
func normalizeTraditional(cfg config.Config, raw map[types.FeatureName]float64) map[types.FeatureName]float64 {
	if len(cfg.FeatureWeights) > 0 {
		return normalizeToSum1(cfg.FeatureWeights)
	}
	return normalizeToSum1(raw)
}

func normalizeToSum1(weights map[types.FeatureName]float64) map[types.FeatureName]float64 {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	out := make(map[types.FeatureName]float64, len(weights))
	if sum <= 0 {
		// Degenerate: every feature deviates by zero. Fall back to a
		// uniform split so Sigma==1 still holds.
		n := float64(len(weights))
		if n == 0 {
			return out
		}
		for f := range weights {
			out[f] = 1.0 / n
		}
		return out
	}
	for f, w := range weights {
		out[f] = w / sum
	}
	return out
}

// enhancedAndFinal computes enhancedWeight =
// traditional*(1+separation*confidenceWeight), then renormalizes to
// Sigma==1.
func enhancedAndFinal(cfg config.Config, traditional map[types.FeatureName]float64, separation map[types.FeatureName]float64) (enhanced, final map[types.FeatureName]float64) {
	enhanced = make(map[types.FeatureName]float64, len(traditional))
	for f, tw := range traditional {
		enhanced[f] = tw * (1 + separation[f]*cfg.ConfidenceWeight)
	}
	final = normalizeToSum1(enhanced)
	return enhanced, final
}

// overallReliability rolls per-feature good/bad confidences up into a
// single weighted model-reliability summary.
func overallReliability(final map[types.FeatureName]float64, good, bad map[types.FeatureName]float64, validFeatures, totalFeatures int) types.ModelReliability {
	overallGood, overallBad := 0.0, 0.0
	for f, w := range final {
		overallGood += w * good[f]
		overallBad += w * bad[f]
	}
	reliability := (overallGood + overallBad) / 2
	ratio := 0.0
	if totalFeatures > 0 {
		ratio = float64(validFeatures) / float64(totalFeatures)
	}
	return types.ModelReliability{
		OverallGoodConfidence: overallGood,
		OverallBadConfidence:  overallBad,
		ModelReliability:      reliability,
		ValidFeaturesRatio:    ratio,
	}
}
