// Package featureweight implements the Feature Weight Engine: it
// consumes the good/bad groups split upstream by package performance,
// bootstraps per-feature confidence scores, and produces
// confidence-enhanced normalized weights.
//
// Bootstrap resampling is bounded-parallel across features: each
// feature gets its own goroutine and its own seeded PRNG (baseSeed XOR
// hash(featureName)), and results are sorted by feature name before
// normalization so output is byte-identical regardless of worker count
// or goroutine scheduling order.
package featureweight

import (
	"errors"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/config"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/errs"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
)

const stage = "featureweight"

// Report is the Feature Weight Engine's full output.
type Report struct {
	Rows        []types.FeatureWeightRow // sorted by Feature name
	Reliability types.ModelReliability
	Warnings    []errs.Warning
}

// Run computes confidence-enhanced feature weights end to end over the
// good/bad sample sets produced by package performance.
func Run(cfg config.Config, good, bad []types.PerformanceSample) (*Report, error) {
	goodByFeature := groupByFeature(good)
	badByFeature := groupByFeature(bad)

	baseSeed := defaultSeed(cfg)

	type featureResult struct {
		feature types.FeatureName
		conf    featureConfidence
	}

	results := make([]featureResult, len(types.AllFeatures))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workerLimit(len(types.AllFeatures)))

	for i, feature := range types.AllFeatures {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, feature types.FeatureName) {
			defer wg.Done()
			defer func() { <-sem }()

			target := cfg.Targets[feature]
			seed := seedFor(baseSeed, feature)
			conf := computeFeatureConfidence(cfg, stage, feature, target, goodByFeature[feature], badByFeature[feature], seed)
			results[i] = featureResult{feature: feature, conf: conf}
		}(i, feature)
	}
	wg.Wait()

	// Deterministic ordering regardless of goroutine completion order:
	// sort by feature name before any downstream normalization.
	sort.Slice(results, func(i, j int) bool { return results[i].feature < results[j].feature })

	var warnings []errs.Warning
	rawTraditional := make(map[types.FeatureName]float64, len(results))
	separation := make(map[types.FeatureName]float64, len(results))
	goodConf := make(map[types.FeatureName]float64, len(results))
	badConf := make(map[types.FeatureName]float64, len(results))
	degraded := make(map[types.FeatureName]bool, len(results))
	sampleSizeGood := make(map[types.FeatureName]int, len(results))
	sampleSizeBad := make(map[types.FeatureName]int, len(results))

	validFeatures := 0
	for _, r := range results {
		c := r.conf
		rawTraditional[c.Feature] = c.TraditionalWeightRaw
		separation[c.Feature] = c.SeparationConfidence
		goodConf[c.Feature] = c.GoodConfidence
		badConf[c.Feature] = c.BadConfidence
		degraded[c.Feature] = c.Degraded
		sampleSizeGood[c.Feature] = c.SampleSizeGood
		sampleSizeBad[c.Feature] = c.SampleSizeBad
		if !c.Degraded {
			validFeatures++
		}
		warnings = append(warnings, c.Warnings...)
	}

	if validFeatures == 0 {
		return nil, errs.New(errs.InsufficientData, stage, errAllFeaturesDegraded)
	}

	traditional := normalizeTraditional(cfg, rawTraditional)
	enhanced, final := enhancedAndFinal(cfg, traditional, separation)
	reliability := overallReliability(final, goodConf, badConf, validFeatures, len(types.AllFeatures))

	rows := make([]types.FeatureWeightRow, 0, len(types.AllFeatures))
	for _, feature := range types.AllFeatures {
		rows = append(rows, types.FeatureWeightRow{
			Feature:              feature,
			TraditionalWeight:    traditional[feature],
			SeparationConfidence: separation[feature],
			EnhancedWeight:       enhanced[feature],
			FinalWeight:          final[feature],
			GoodConfidence:       goodConf[feature],
			BadConfidence:        badConf[feature],
			SampleSizeGood:       sampleSizeGood[feature],
			SampleSizeBad:        sampleSizeBad[feature],
			Degraded:             degraded[feature],
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Feature < rows[j].Feature })

	return &Report{Rows: rows, Reliability: reliability, Warnings: warnings}, nil
}

func groupByFeature(samples []types.PerformanceSample) map[types.FeatureName][]float64 {
	out := map[types.FeatureName][]float64{
		types.FeatureNGRate:        make([]float64, 0, len(samples)),
		types.FeatureCavityRate:    make([]float64, 0, len(samples)),
		types.FeatureCycleTimeRate: make([]float64, 0, len(samples)),
		types.FeatureCapacityRate:  make([]float64, 0, len(samples)),
	}
	for _, s := range samples {
		out[types.FeatureNGRate] = append(out[types.FeatureNGRate], s.ShiftNGRate)
		out[types.FeatureCavityRate] = append(out[types.FeatureCavityRate], s.ShiftCavityRate)
		out[types.FeatureCycleTimeRate] = append(out[types.FeatureCycleTimeRate], s.ShiftCycleTimeRate)
		out[types.FeatureCapacityRate] = append(out[types.FeatureCapacityRate], s.ShiftCapacityRate)
	}
	return out
}

func workerLimit(n int) int {
	limit := runtime.GOMAXPROCS(0)
	if limit > n {
		limit = n
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}

// defaultSeed returns cfg.RandomSeed if set. Reproducibility is only
// guaranteed when the caller supplies a seed, so an unset seed is
// drawn from the runtime clock instead of a fixed fallback.
func defaultSeed(cfg config.Config) int64 {
	if cfg.RandomSeed != nil {
		return *cfg.RandomSeed
	}
	return time.Now().UnixNano()
}

var errAllFeaturesDegraded = errors.New("every feature failed min_sample_size")
