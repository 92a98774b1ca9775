package featureweight

import (
	"hash/fnv"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"

	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
)

// seedFor derives a per-feature bootstrap seed from a base seed as
// baseSeed XOR hash(featureName). This lets bootstrap resampling be
// parallelized across features while staying reproducible regardless
// of worker count or scheduling order.
func seedFor(base int64, feature types.FeatureName) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	return uint64(base) ^ h.Sum64()
}

// bootstrapMeans draws nBootstrap resamples of size min(50, len(sample))
// with replacement from sample, recording each resample's mean.
func bootstrapMeans(rng *rand.Rand, sample []float64, nBootstrap int) []float64 {
	n := len(sample)
	if n == 0 {
		return nil
	}
	resampleSize := n
	if resampleSize > 50 {
		resampleSize = 50
	}

	means := make([]float64, nBootstrap)
	buf := make([]float64, resampleSize)
	for b := 0; b < nBootstrap; b++ {
		for i := 0; i < resampleSize; i++ {
			buf[i] = sample[rng.Intn(n)]
		}
		means[b] = stat.Mean(buf, nil)
	}
	return means
}

// confidenceInterval returns the two-sided interval at level (e.g. 0.95)
// from a set of bootstrap means, via the percentile method.
func confidenceInterval(means []float64, level float64) (lo, hi float64) {
	if len(means) == 0 {
		return 0, 0
	}
	sorted := append([]float64(nil), means...)
	sort.Float64s(sorted)

	alpha := 1 - level
	loP := alpha / 2
	hiP := 1 - alpha/2
	lo = stat.Quantile(loP, stat.Empirical, sorted, nil)
	hi = stat.Quantile(hiP, stat.Empirical, sorted, nil)
	return lo, hi
}

// overlapConfidence maps the overlap of two confidence intervals to
// [0,1]: 1 - overlapLength/unionLength, clamped.
func overlapConfidence(loA, hiA, loB, hiB float64) float64 {
	unionLo := min2(loA, loB)
	unionHi := max2(hiA, hiB)
	unionLen := unionHi - unionLo
	if unionLen <= 0 {
		return 1 // degenerate: identical point intervals, treat as fully separated
	}

	overlapLo := max2(loA, loB)
	overlapHi := min2(hiA, hiB)
	overlapLen := overlapHi - overlapLo
	if overlapLen < 0 {
		overlapLen = 0
	}

	conf := 1 - overlapLen/unionLen
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}

func min2(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max2(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
