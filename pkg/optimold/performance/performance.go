// Package performance implements the Performance Aggregator & Good/Bad
// Classifier: splits historical completed orders into good/bad groups
// and derives the four per-sample performance features the Feature
// Weight Engine consumes.
package performance

import (
	"fmt"
	"sort"

	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/errs"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/stability"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
	"github.com/shopspring/decimal"
)

const stage = "performance"

// Params bundles the scalar operating parameters the classifier needs.
type Params struct {
	Efficiency float64
	Loss       float64
}

// Report is the Performance Aggregator's output.
type Report struct {
	Good     []types.PerformanceSample
	Bad      []types.PerformanceSample
	Warnings []errs.Warning
}

type shiftKey struct {
	PONo      string
	RecordDay string
	Shift     types.ShiftID
}

// Run classifies every MOLDED order into good/bad and emits one
// PerformanceSample per (poNo, moldId, machineCode) completed combination.
func Run(
	params Params,
	molds []types.Mold,
	machines []types.Machine,
	statRows []types.StabilityRow,
	orderStatuses []types.OrderStatus,
	purchaseOrders []types.PurchaseOrder,
	records []types.ProductionRecord,
) (*Report, error) {
	report := &Report{}

	moldByID := make(map[types.MoldID]types.Mold, len(molds))
	for _, m := range molds {
		moldByID[m.MoldID] = m
	}
	machineByID := make(map[types.MachineID]types.Machine, len(machines))
	for _, m := range machines {
		machineByID[m.MachineID] = m
	}
	statByMold := make(map[types.MoldID]types.StabilityRow, len(statRows))
	for _, s := range statRows {
		statByMold[s.MoldID] = s
	}
	poByNo := make(map[string]types.PurchaseOrder, len(purchaseOrders))
	for _, po := range purchaseOrders {
		poByNo[po.PONo] = po
	}

	recordsByPO := make(map[string][]types.ProductionRecord)
	for _, r := range records {
		if !r.IsWorking() {
			continue
		}
		recordsByPO[r.PONo] = append(recordsByPO[r.PONo], r)
	}

	completed := make([]types.OrderStatus, 0, len(orderStatuses))
	for _, s := range orderStatuses {
		if s.IsComplete() {
			completed = append(completed, s)
		}
	}
	sort.Slice(completed, func(i, j int) bool { return completed[i].PONo < completed[j].PONo })

	for _, os := range completed {
		po, ok := poByNo[os.PONo]
		if !ok {
			report.Warnings = append(report.Warnings, errs.Warnf(errs.InconsistentReference, stage,
				"completed PO %s missing from purchase order master", os.PONo))
			continue
		}
		mold, ok := moldByID[os.LastMoldID]
		if !ok {
			report.Warnings = append(report.Warnings, errs.Warnf(errs.InconsistentReference, stage,
				"PO %s references unknown mold %s", os.PONo, os.LastMoldID))
			continue
		}
		statRow, ok := statByMold[os.LastMoldID]
		if !ok {
			report.Warnings = append(report.Warnings, errs.Warnf(errs.InsufficientData, stage,
				"no stability row for mold %s, skipping PO %s", os.LastMoldID, os.PONo))
			continue
		}
		poRecords := recordsByPO[os.PONo]
		if len(poRecords) == 0 {
			report.Warnings = append(report.Warnings, errs.Warnf(errs.InsufficientData, stage,
				"completed PO %s has no production records", os.PONo))
			continue
		}

		group, err := classify(params, mold, po, poRecords)
		if err != nil {
			return nil, err
		}

		byMachine := make(map[types.MachineID][]types.ProductionRecord)
		for _, r := range poRecords {
			byMachine[r.MachineID] = append(byMachine[r.MachineID], r)
		}
		machineIDs := make([]types.MachineID, 0, len(byMachine))
		for id := range byMachine {
			machineIDs = append(machineIDs, id)
		}
		sort.Slice(machineIDs, func(i, j int) bool { return machineIDs[i] < machineIDs[j] })

		for _, machineID := range machineIDs {
			machine, ok := machineByID[machineID]
			if !ok {
				report.Warnings = append(report.Warnings, errs.Warnf(errs.InconsistentReference, stage,
					"production record references unknown machine %s", machineID))
				continue
			}
			sample := sampleFor(mold, statRow, os.PONo, machine.MachineCode, byMachine[machineID], group)
			if group == types.GroupGood {
				report.Good = append(report.Good, sample)
			} else {
				report.Bad = append(report.Bad, sample)
			}
		}
	}

	return report, nil
}

// classify applies the good/bad rule: a completed PO is "good" if
// actualShiftsUsed <= moldEstimatedShiftUsed.
func classify(params Params, mold types.Mold, po types.PurchaseOrder, records []types.ProductionRecord) (types.SampleGroup, error) {
	denom := params.Efficiency - params.Loss
	if denom <= 0 {
		return "", errs.New(errs.InvalidConfig, stage, fmt.Errorf("efficiency-loss must be positive, got %v", denom))
	}

	settingCycle, _ := mold.SettingCycleSeconds.Float64()
	itemQty, _ := po.ItemQuantity.Float64()
	cavityStandard := float64(mold.CavityStandard)

	moldFullTotalShots := itemQty / cavityStandard
	moldFullTotalSeconds := moldFullTotalShots * settingCycle
	moldFullShiftUsed := moldFullTotalSeconds / float64(stability.ShiftSecondsBasis)
	moldEstimatedShiftUsed := moldFullShiftUsed / denom

	distinctShifts := make(map[shiftKey]struct{}, len(records))
	for _, r := range records {
		distinctShifts[shiftKey{PONo: r.PONo, RecordDay: r.RecordDate.Format("2006-01-02"), Shift: r.ShiftID}] = struct{}{}
	}
	actualShiftsUsed := float64(len(distinctShifts))

	if actualShiftsUsed <= moldEstimatedShiftUsed {
		return types.GroupGood, nil
	}
	return types.GroupBad, nil
}

// sampleFor computes the four per-sample performance features for one
// (PO, mold, machine) group of records.
func sampleFor(mold types.Mold, statRow types.StabilityRow, poNo string, machineCode types.MachineCode, records []types.ProductionRecord, group types.SampleGroup) types.PerformanceSample {
	var goodQty, defectQty, cavitySum, cycleRateSum decimal.Decimal
	cavityStandard := decimal.NewFromInt(int64(mold.CavityStandard))
	n := decimal.NewFromInt(int64(len(records)))

	for _, r := range records {
		goodQty = goodQty.Add(r.ItemGoodQty)
		defectQty = defectQty.Add(r.ItemDefectQty)
		cavitySum = cavitySum.Add(decimal.NewFromInt(int64(r.ObservedCavity)))
		observedCycle := ObservedCycle(r.MoldShot)
		if observedCycle > 0 {
			cycleRateSum = cycleRateSum.Add(decimal.NewFromFloat(mold.SettingCycleSeconds.InexactFloat64() / observedCycle))
		}
	}

	producedTotal := goodQty.Add(defectQty)

	ngRate := 0.0
	if producedTotal.IsPositive() {
		ngRate, _ = defectQty.Div(producedTotal).Float64()
	}

	avgCavity := 0.0
	if !n.IsZero() {
		avg, _ := cavitySum.Div(n).Div(cavityStandard).Float64()
		avgCavity = avg
	}

	avgCycleRate := 0.0
	if !n.IsZero() {
		avgCycleRate, _ = cycleRateSum.Div(n).Float64()
	}

	// BalancedCapacity is units/hour; a shift is 8 hours, so per-shift
	// capacity is BalancedCapacity*8. producedPerShift is this PO's
	// average per-shift output across its contributing records.
	balancedPerShift := statRow.BalancedCapacity.InexactFloat64() * 8

	producedPerShift := 0.0
	if !n.IsZero() {
		totalQty, _ := producedTotal.Float64()
		producedPerShift = totalQty / float64(len(records))
	}
	capacityRate := 0.0
	if balancedPerShift > 0 {
		capacityRate = producedPerShift / balancedPerShift
	}

	return types.PerformanceSample{
		MoldID:             mold.MoldID,
		MachineCode:        machineCode,
		PONo:               poNo,
		Group:              group,
		ShiftNGRate:        ngRate,
		ShiftCavityRate:    avgCavity,
		ShiftCycleTimeRate: avgCycleRate,
		ShiftCapacityRate:  capacityRate,
	}
}

// ObservedCycle wraps stability.ObservedCycleSeconds so a zero MoldShot
// (which should already have been filtered upstream) returns 0 rather
// than +Inf, the neutral-value convention used across numeric edge
// cases in this package.
func ObservedCycle(moldShot decimal.Decimal) float64 {
	if moldShot.Sign() <= 0 {
		return 0
	}
	return stability.ObservedCycleSeconds(moldShot)
}
