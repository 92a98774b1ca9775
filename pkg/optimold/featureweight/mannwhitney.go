package featureweight

import (
	"math"
	"sort"
)

// mannWhitneyU computes the two-sided Mann-Whitney U p-value for samples
// a and b, using the normal approximation with a tie correction (the
// standard large-sample approximation; exact enumeration is infeasible
// for the sample sizes this engine operates on). ok is false when the
// test is undefined (either sample empty, or zero variance in the
// combined rank distribution), in which case p is returned as 1 and the
// caller sets statistical_significance to 0.
func mannWhitneyU(a, b []float64) (u float64, pValue float64, ok bool) {
	n1, n2 := len(a), len(b)
	if n1 == 0 || n2 == 0 {
		return 0, 1, false
	}

	type labeled struct {
		value float64
		group int // 0 = a, 1 = b
	}
	combined := make([]labeled, 0, n1+n2)
	for _, v := range a {
		combined = append(combined, labeled{v, 0})
	}
	for _, v := range b {
		combined = append(combined, labeled{v, 1})
	}
	sort.Slice(combined, func(i, j int) bool { return combined[i].value < combined[j].value })

	ranks := make([]float64, len(combined))
	var tieCorrection float64
	i := 0
	for i < len(combined) {
		j := i
		for j < len(combined) && combined[j].value == combined[i].value {
			j++
		}
		tieCount := j - i
		avgRank := float64(i+j+1) / 2.0 // 1-indexed average rank
		for k := i; k < j; k++ {
			ranks[k] = avgRank
		}
		if tieCount > 1 {
			t := float64(tieCount)
			tieCorrection += t*t*t - t
		}
		i = j
	}

	rankSumA := 0.0
	for idx, l := range combined {
		if l.group == 0 {
			rankSumA += ranks[idx]
		}
	}

	uA := rankSumA - float64(n1*(n1+1))/2.0
	uB := float64(n1*n2) - uA
	u = math.Min(uA, uB)

	nTotal := float64(n1 + n2)
	meanU := float64(n1*n2) / 2.0
	varianceU := float64(n1*n2) / 12.0 * ((nTotal + 1) - tieCorrection/(nTotal*(nTotal-1)))
	if varianceU <= 0 || nTotal <= 1 {
		return u, 1, false
	}
	stdU := math.Sqrt(varianceU)

	// continuity-corrected z
	z := (u - meanU + 0.5) / stdU
	p := 2 * normalCDF(z)
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}
	return u, p, true
}

// normalCDF is the standard normal cumulative distribution function,
// via the complementary error function. Its caller passes z at most
// 0.5/stdU (u<=meanU by taking the smaller of uA/uB, plus the
// continuity correction) and clamps the doubled result to 1.
func normalCDF(z float64) float64 {
	return 0.5 * math.Erfc(-z/math.Sqrt2)
}
