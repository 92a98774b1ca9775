// Package stability implements the Stability Index Engine: per-mold
// cavity/cycle stability indices and four capacity estimates derived
// from shift-level production records. A single read-only analyzer
// wrapping typed inputs and returning a report struct, with
// decimal.Decimal carrying every quantity downstream capacity math
// depends on.
package stability

import (
	"fmt"
	"math"
	"sort"

	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/errs"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

const stage = "stability"

// ShiftSecondsBasis is the 8-hour-shift constant (28800 = 3600*8) used
// to convert a shot count into an observed cycle time. It is ambiguous
// whether this threshold applies per-calendar-day or per-shift when
// shifts overlap midnight; this implementation does not attempt to
// reinterpret shift boundaries around midnight — each working
// ProductionRecord is treated as one observation of
// ObservedCycleSeconds, applying the "observed cycle per day as
// 3600*8/moldShot" formula at record granularity.
const ShiftSecondsBasis = 3600 * 8

// ObservedCycleSeconds computes the observed seconds-per-shot for one
// working record (moldShot>0 is the caller's responsibility to filter).
func ObservedCycleSeconds(moldShot decimal.Decimal) float64 {
	shots, _ := moldShot.Float64()
	return float64(ShiftSecondsBasis) / shots
}

// Params bundles the two scalar operating parameters this engine
// requires in addition to the records/mold inputs.
type Params struct {
	Efficiency            float64 // (0,1]
	Loss                  float64 // [0,1), Efficiency>Loss
	TotalRecordsThreshold int     // >=1
}

// Report is the Stability Index Engine's full output for one invocation.
type Report struct {
	Rows     []types.StabilityRow
	Warnings []errs.Warning
	// InvalidMolds lists molds excluded for structural reasons (e.g.
	// non-positive SettingCycleSeconds), for the InvalidItemsReport.
	InvalidMolds []types.MoldID
}

// Run computes stability rows for every mold referenced by records,
// restricted to molds present in molds. Molds with no working records at
// all are simply omitted from the output (callers requesting a specific
// mold via RowByMold should treat a missing row as InsufficientData).
func Run(params Params, molds []types.Mold, records []types.ProductionRecord) (*Report, error) {
	report := &Report{}

	byMold := make(map[types.MoldID]types.Mold, len(molds))
	for _, m := range molds {
		byMold[m.MoldID] = m
	}

	working := make(map[types.MoldID][]types.ProductionRecord)
	for _, r := range records {
		if !r.IsWorking() {
			continue
		}
		working[r.MoldID] = append(working[r.MoldID], r)
	}

	// Deterministic iteration order: sort mold IDs.
	moldIDs := make([]types.MoldID, 0, len(working))
	for id := range working {
		moldIDs = append(moldIDs, id)
	}
	sort.Slice(moldIDs, func(i, j int) bool { return moldIDs[i] < moldIDs[j] })

	for _, id := range moldIDs {
		mold, ok := byMold[id]
		if !ok {
			report.Warnings = append(report.Warnings, errs.Warnf(errs.InconsistentReference, stage,
				"production records reference unknown mold %s", id))
			continue
		}
		if mold.SettingCycleSeconds.Sign() <= 0 {
			report.InvalidMolds = append(report.InvalidMolds, id)
			report.Warnings = append(report.Warnings, errs.Warnf(errs.NumericEdgeCase, stage,
				"mold %s has non-positive setting cycle, excluded", id))
			continue
		}

		row, warns, err := computeRow(params, mold, working[id])
		if err != nil {
			return nil, err
		}
		report.Warnings = append(report.Warnings, warns...)
		report.Rows = append(report.Rows, row)
	}

	return report, nil
}

func computeRow(params Params, mold types.Mold, records []types.ProductionRecord) (types.StabilityRow, []errs.Warning, error) {
	var warnings []errs.Warning
	totalRecords := len(records)
	if totalRecords < 1 {
		return types.StabilityRow{}, nil, errs.New(errs.InsufficientData, stage,
			fmt.Errorf("mold %s has no working production records", mold.MoldID))
	}

	cavityStandard := float64(mold.CavityStandard)
	settingCycle, _ := mold.SettingCycleSeconds.Float64()

	cavities := make([]float64, totalRecords)
	cycles := make([]float64, totalRecords)
	for i, r := range records {
		cavities[i] = float64(r.ObservedCavity)
		cycles[i] = ObservedCycleSeconds(r.MoldShot)
	}

	cavityIdx, cw := cavityStabilityIndex(cavities, cavityStandard, totalRecords, params.TotalRecordsThreshold)
	cycleIdx, yw := cycleStabilityIndex(cycles, settingCycle, totalRecords, params.TotalRecordsThreshold)
	warnings = append(warnings, cw...)
	warnings = append(warnings, yw...)

	overall := 0.6*cavityIdx + 0.4*cycleIdx

	theoretical := decimal.NewFromFloat(3600.0 / settingCycle * cavityStandard)
	effective := theoretical.Mul(decimal.NewFromFloat(overall))
	estimated := theoretical.Mul(decimal.NewFromFloat(params.Efficiency - params.Loss))

	alpha := math.Max(0.1, math.Min(1.0, float64(totalRecords)/float64(params.TotalRecordsThreshold)))
	balanced := effective.Mul(decimal.NewFromFloat(alpha)).Add(estimated.Mul(decimal.NewFromFloat(1 - alpha)))

	return types.StabilityRow{
		MoldID:               mold.MoldID,
		CavityStabilityIndex: cavityIdx,
		CycleStabilityIndex:  cycleIdx,
		OverallStability:     overall,
		TheoreticalCapacity:  theoretical,
		EffectiveCapacity:    effective,
		EstimatedCapacity:    estimated,
		BalancedCapacity:     balanced,
		TrustCoefficient:     alpha,
		TotalRecords:         totalRecords,
	}, warnings, nil
}

// coefficientOfVariation returns stddev/mean, handling two edge cases:
// n=1 is treated as CV=0 (full consistency); an undefined (NaN)
// computation signals the caller via the neutral return to fall back
// to a 0.5 "feature" value instead.
func coefficientOfVariation(xs []float64) (cv float64, neutral bool) {
	n := len(xs)
	if n == 1 {
		return 0, false
	}
	mean, std := stat.MeanStdDev(xs, nil)
	if mean == 0 || math.IsNaN(std) {
		return 0, true
	}
	cv = std / mean
	if math.IsNaN(cv) || math.IsInf(cv, 0) {
		return 0, true
	}
	return cv, false
}

func cavityStabilityIndex(cavities []float64, cavityStandard float64, totalRecords, threshold int) (float64, []errs.Warning) {
	var warnings []errs.Warning
	n := len(cavities)

	matches := 0
	for _, c := range cavities {
		if c == cavityStandard {
			matches++
		}
	}
	accuracyRate := float64(matches) / float64(n)

	cv, neutral := coefficientOfVariation(cavities)
	var consistency float64
	if neutral {
		consistency = 0.5
		warnings = append(warnings, errs.Warnf(errs.NumericEdgeCase, stage, "cavity coefficient of variation undefined, using neutral consistency"))
	} else {
		consistency = math.Max(0, 1-cv)
	}

	mean := stat.Mean(cavities, nil)
	utilization := math.Min(1, mean/cavityStandard)

	completeness := math.Min(1, float64(totalRecords)/float64(threshold))

	idx := 0.40*accuracyRate + 0.30*consistency + 0.20*utilization + 0.10*completeness
	return idx, warnings
}

func cycleStabilityIndex(cycles []float64, settingCycle float64, totalRecords, threshold int) (float64, []errs.Warning) {
	var warnings []errs.Warning
	n := len(cycles)

	sumDev := 0.0
	withinRange := 0
	withinOutlierBand := 0
	for _, c := range cycles {
		dev := math.Abs(c-settingCycle) / settingCycle
		sumDev += dev
		if dev <= 0.2 {
			withinRange++
		}
		if dev <= 1.0 {
			withinOutlierBand++
		}
	}
	accuracyScore := math.Max(0, 1-sumDev/float64(n))
	rangeCompliance := float64(withinRange) / float64(n)
	outlierPenalty := math.Max(0, 1-(1-float64(withinOutlierBand)/float64(n)))

	cv, neutral := coefficientOfVariation(cycles)
	var consistency float64
	if neutral {
		consistency = 0.5
		warnings = append(warnings, errs.Warnf(errs.NumericEdgeCase, stage, "cycle coefficient of variation undefined, using neutral consistency"))
	} else {
		consistency = math.Max(0, 1-cv)
	}

	completeness := math.Min(1, float64(totalRecords)/float64(threshold))

	idx := 0.30*accuracyScore + 0.25*consistency + 0.25*rangeCompliance + 0.10*outlierPenalty + 0.10*completeness
	return idx, warnings
}

// RowByMold indexes a Report's rows by mold ID for O(1) downstream lookup.
func (r *Report) RowByMold() map[types.MoldID]types.StabilityRow {
	out := make(map[types.MoldID]types.StabilityRow, len(r.Rows))
	for _, row := range r.Rows {
		out[row.MoldID] = row
	}
	return out
}
