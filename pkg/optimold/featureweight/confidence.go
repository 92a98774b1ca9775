package featureweight

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"

	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/config"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/errs"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
)

// featureConfidence is the intermediate per-feature confidence result,
// before weight normalization.
type featureConfidence struct {
	Feature              types.FeatureName
	TraditionalWeightRaw float64 // un-normalized, before Sigma==1 pass
	SeparationConfidence float64
	GoodConfidence       float64
	BadConfidence        float64
	SampleSizeGood       int
	SampleSizeBad        int
	Degraded             bool
	Warnings             []errs.Warning
}

// computeFeatureConfidence derives bootstrap confidence, separation,
// and traditional-weight figures for a single feature.
func computeFeatureConfidence(cfg config.Config, stage string, feature types.FeatureName, target config.Target, good, bad []float64, seed uint64) featureConfidence {
	result := featureConfidence{Feature: feature, SampleSizeGood: len(good), SampleSizeBad: len(bad)}

	if len(good) < cfg.MinSampleSize || len(bad) < cfg.MinSampleSize {
		result.Degraded = true
		result.GoodConfidence = 0.5
		result.BadConfidence = 0.5
		result.SeparationConfidence = 0
		result.Warnings = append(result.Warnings, errs.Warnf(errs.InsufficientData, stage,
			"feature %s: sample sizes (good=%d, bad=%d) below min_sample_size=%d, using neutral confidences",
			feature, len(good), len(bad), cfg.MinSampleSize))
		result.TraditionalWeightRaw = traditionalDeviation(cfg, target, good)
		return result
	}

	rng := rand.New(rand.NewSource(seed))
	goodMeans := bootstrapMeans(rng, good, cfg.NBootstrap)
	badMeans := bootstrapMeans(rng, bad, cfg.NBootstrap)

	goodLo, goodHi := confidenceInterval(goodMeans, cfg.ConfidenceLevel)
	badLo, badHi := confidenceInterval(badMeans, cfg.ConfidenceLevel)
	separation := overlapConfidence(goodLo, goodHi, badLo, badHi)

	_, p, ok := mannWhitneyU(good, bad)
	statisticalSignificance := 0.0
	if ok {
		statisticalSignificance = 1 - p
	}

	combined := append(append([]float64(nil), good...), bad...)
	maxObserved := maxAbs(combined)

	goodMean := stat.Mean(good, nil)
	badMean := stat.Mean(bad, nil)

	targetAchievementGood := achievement(target, goodMean, maxObserved)
	targetAchievementBad := achievement(target, badMean, maxObserved)

	// distanceFromIdeal uses the bootstrap-mean-stabilized estimate of
	// the same achievement formula (smoother than the raw sample mean),
	// giving this term a distinct character from targetAchievement.
	distanceFromIdealGood := meanAchievement(target, goodMeans, maxObserved)
	distanceFromIdealBad := meanAchievement(target, badMeans, maxObserved)

	result.SeparationConfidence = separation
	result.GoodConfidence = clamp01(0.4*targetAchievementGood + 0.3*separation + 0.2*statisticalSignificance + 0.1*distanceFromIdealGood)
	result.BadConfidence = clamp01(0.4*(1-targetAchievementBad) + 0.3*separation + 0.2*statisticalSignificance + 0.1*(1-distanceFromIdealBad))
	result.TraditionalWeightRaw = traditionalDeviation(cfg, target, good)

	if !ok {
		result.Warnings = append(result.Warnings, errs.Warnf(errs.NumericEdgeCase, stage,
			"feature %s: Mann-Whitney U test undefined, statistical_significance set to 0", feature))
	}

	return result
}

// achievement computes the target_achievement score for a mean value
// against a target.
func achievement(target config.Target, mean, maxObserved float64) float64 {
	if target.Minimize {
		if maxObserved <= 0 {
			return 1 // nothing observed to minimize against; treat as fully achieved
		}
		return clamp01(1 - mean/maxObserved)
	}
	denom := math.Max(target.Value, 1e-9)
	return clamp01(1 - math.Abs(mean-target.Value)/denom)
}

func meanAchievement(target config.Target, means []float64, maxObserved float64) float64 {
	if len(means) == 0 {
		return 0.5
	}
	sum := 0.0
	for _, m := range means {
		sum += achievement(target, m, maxObserved)
	}
	return sum / float64(len(means))
}

// traditionalDeviation computes featureDeviation: |mean(good)-target|
// for numeric targets, or mean(good) for 'minimize'.
func traditionalDeviation(cfg config.Config, target config.Target, good []float64) float64 {
	if len(good) == 0 {
		return 0
	}
	mean := stat.Mean(good, nil)
	var deviation float64
	if target.Minimize {
		deviation = mean
	} else {
		deviation = math.Abs(mean - target.Value)
	}
	if cfg.Scaling == config.ScalingRelative && !target.Minimize {
		deviation /= math.Max(target.Value, 1e-9)
	}
	if deviation < 0 {
		deviation = -deviation
	}
	return deviation
}

func maxAbs(xs []float64) float64 {
	max := 0.0
	for _, x := range xs {
		a := math.Abs(x)
		if a > max {
			max = a
		}
	}
	return max
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
