// Package orchestrator wires the five engines into a fixed batch
// pipeline: Stability -> Performance -> FeatureWeight -> PriorityMatrix
// -> {Tier-1, Tier-2} -> combined Plan. It drives this sequence of pure
// stages end to end, accumulating warnings instead of aborting on
// recoverable issues.
package orchestrator

import (
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/assignment"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/assignment/tier1"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/assignment/tier2"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/config"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/errs"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/featureweight"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/fingerprint"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/performance"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/prioritymatrix"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/repository"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/stability"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
)

// hoursPerDay is the day-length used to turn the per-hour
// BalancedCapacity into a per-day figure for lead-time/load math; it
// follows the system's own 8-hour-shift, 3-shift-per-day convention
// (ShiftSecondsBasis*3/3600 == 24).
const hoursPerDay = 24.0

// Result is one orchestrator invocation's complete output.
type Result struct {
	RunID         string
	Stability     *stability.Report
	FeatureWeight *featureweight.Report
	Priority      types.PriorityMatrix
	Plan          assignment.Plan
	Warnings      []errs.Warning
	FromCache     bool
}

// Run executes the full pipeline over a snapshot. store may be nil,
// disabling the fingerprint short-circuit. regenerate forces
// recomputation even on a fingerprint hit.
func Run(cfg config.Config, snap types.Snapshot, store repository.PriorOutputStore, log *logrus.Logger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.New()
	}

	runID := uuid.New().String()
	logger := log.WithField("run_id", runID)

	fp := fingerprint.Of(snap)
	if store != nil && !cfg.Regenerate {
		if cached, ok := store.Get(fp); ok {
			logger.WithField("fingerprint", fp).Info("snapshot unchanged, reusing prior outputs")
			return &Result{
				RunID:         runID,
				Stability:     cached.Stability,
				FeatureWeight: cached.FeatureWeight,
				Priority:      cached.Priority,
				Plan:          cached.Plan,
				FromCache:     true,
			}, nil
		}
	}

	var warnings []errs.Warning

	stabilityReport, err := stability.Run(stability.Params{
		Efficiency: cfg.Efficiency, Loss: cfg.Loss, TotalRecordsThreshold: cfg.TotalRecordsThreshold,
	}, snap.Molds, snap.ProductionRecords)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, stabilityReport.Warnings...)
	logWarnings(logger, stabilityReport.Warnings)

	perfReport, err := performance.Run(performance.Params{Efficiency: cfg.Efficiency, Loss: cfg.Loss},
		snap.Molds, snap.Machines, stabilityReport.Rows, snap.OrderStatuses, snap.PurchaseOrders, snap.ProductionRecords)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, perfReport.Warnings...)
	logWarnings(logger, perfReport.Warnings)

	featureReport, err := featureweight.Run(cfg, perfReport.Good, perfReport.Bad)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, featureReport.Warnings...)
	logWarnings(logger, featureReport.Warnings)

	finalWeights := make(map[types.FeatureName]float64, len(featureReport.Rows))
	for _, row := range featureReport.Rows {
		finalWeights[row.Feature] = row.FinalWeight
	}

	aggregates := aggregateByMoldMachine(perfReport.Good)
	priority := prioritymatrix.Run(finalWeights, aggregates)

	statByMold := stabilityReport.RowByMold()
	pendingMolds, totalQtyByMold, posByMold := pendingMoldQuantities(snap)

	var tier1Pending []tier1.Pending
	leadTimeByMold := map[types.MoldID]float64{}
	var leadTimes []assignment.LeadTimeBreakdown
	for _, mold := range pendingMolds {
		row, ok := statByMold[mold]
		capacityPerDay := 0.0
		if ok {
			capacityPerDay = row.BalancedCapacity.InexactFloat64() * hoursPerDay
		}
		breakdown := assignment.BuildLeadTimeBreakdown(mold, totalQtyByMold[mold], capacityPerDay)
		leadTimes = append(leadTimes, breakdown)
		leadTimeByMold[mold] = breakdown.LeadTimeDays
		tier1Pending = append(tier1Pending, tier1.Pending{MoldID: mold, LeadTime: breakdown.LeadTimeDays})
	}

	machineLoad := machineLoadFromMolding(snap, statByMold)

	tier1Result := tier1.Run(priority, tier1Pending, machineLoad, cfg.MaxLoadThreshold)

	moldSpecByID := snap.MoldSpecByID()
	var tier2Pending []tier2.Pending
	for _, mold := range tier1Result.Unassigned {
		spec := moldSpecByID[mold]
		tier2Pending = append(tier2Pending, tier2.Pending{
			MoldID:             mold,
			TotalQuantity:      totalQtyByMold[mold],
			LeadTime:           leadTimeByMold[mold],
			CompatibleMachines: spec.CompatibleMachineCodes,
		})
	}
	tier2Result := tier2.Run(tier2Pending, tier1Result.Load, cfg.MaxLoadThreshold, true, cfg.PriorityOrder)

	tier1ByPO := expandAssignmentsByPO(tier1Result.Assignments, posByMold)
	tier2ByPO := expandAssignmentsByPO(tier2Result.Assignments, posByMold)
	unassignedPOCount := 0
	for _, mold := range tier2Result.Unassigned {
		unassignedPOCount += len(posByMold[mold])
	}

	infeasible := infeasibleWarnings(tier2Result.Unassigned, tier2Result.Overloaded)
	warnings = append(warnings, infeasible...)
	logWarnings(logger, infeasible)

	invalidByStage := countWarningsByStage(warnings)
	plan := assignment.Combine(tier1ByPO, tier2ByPO, tier2Result.Unassigned, unassignedPOCount, leadTimes, invalidByStage)

	if store != nil {
		store.Put(fp, repository.StoredOutputs{
			Stability:     stabilityReport,
			FeatureWeight: featureReport,
			Priority:      priority,
			Plan:          plan,
		})
	}

	return &Result{
		RunID:         runID,
		Stability:     stabilityReport,
		FeatureWeight: featureReport,
		Priority:      priority,
		Plan:          plan,
		Warnings:      warnings,
	}, nil
}

// aggregateByMoldMachine folds the good sample set into per-(mold,
// machine) mean feature values, the input the Priority Matrix Engine
// scores against.
func aggregateByMoldMachine(good []types.PerformanceSample) []prioritymatrix.AggregateMetric {
	type key struct {
		mold    types.MoldID
		machine types.MachineCode
	}
	sums := map[key]map[types.FeatureName]float64{}
	counts := map[key]int{}

	for _, s := range good {
		k := key{s.MoldID, s.MachineCode}
		if sums[k] == nil {
			sums[k] = map[types.FeatureName]float64{}
		}
		sums[k][types.FeatureNGRate] += s.ShiftNGRate
		sums[k][types.FeatureCavityRate] += s.ShiftCavityRate
		sums[k][types.FeatureCycleTimeRate] += s.ShiftCycleTimeRate
		sums[k][types.FeatureCapacityRate] += s.ShiftCapacityRate
		counts[k]++
	}

	keys := make([]key, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].mold != keys[j].mold {
			return keys[i].mold < keys[j].mold
		}
		return keys[i].machine < keys[j].machine
	})

	out := make([]prioritymatrix.AggregateMetric, 0, len(keys))
	for _, k := range keys {
		n := float64(counts[k])
		metrics := map[types.FeatureName]float64{}
		for f, sum := range sums[k] {
			metrics[f] = sum / n
		}
		out = append(out, prioritymatrix.AggregateMetric{MoldID: k.mold, MachineCode: k.machine, Metrics: metrics})
	}
	return out
}

// pendingMoldQuantities derives the distinct molds awaiting assignment,
// their total outstanding quantity, and the PO numbers contributing to
// that total, so a later mold-level assignment can be attributed back
// to the individual POs it covers.
func pendingMoldQuantities(snap types.Snapshot) ([]types.MoldID, map[types.MoldID]float64, map[types.MoldID][]string) {
	poByNo := snap.PurchaseOrderByNo()
	total := map[types.MoldID]float64{}
	pos := map[types.MoldID][]string{}
	for _, s := range snap.OrderStatuses {
		if s.State != types.StatePending {
			continue
		}
		po, ok := poByNo[s.PONo]
		if !ok {
			continue
		}
		qty, _ := po.ItemQuantity.Float64()
		total[s.LastMoldID] += qty
		pos[s.LastMoldID] = append(pos[s.LastMoldID], s.PONo)
	}

	molds := make([]types.MoldID, 0, len(total))
	for m := range total {
		molds = append(molds, m)
	}
	sort.Slice(molds, func(i, j int) bool { return molds[i] < molds[j] })
	for m := range pos {
		sort.Strings(pos[m])
	}
	return molds, total, pos
}

// expandAssignmentsByPO turns each mold-level assignment into one
// assignment row per pending PO that mold covers, so the final plan
// says which PO went to which machine, not only which mold.
// PriorityInMachine is renumbered sequentially per machine as it
// expands, preserving the original per-machine ordering while keeping
// every row's slot unique even when a mold covers several POs.
func expandAssignmentsByPO(assignments []types.Assignment, posByMold map[types.MoldID][]string) []types.Assignment {
	out := make([]types.Assignment, 0, len(assignments))
	priorityCounter := map[types.MachineCode]int{}
	for _, a := range assignments {
		pos := posByMold[a.MoldID]
		if len(pos) == 0 {
			priorityCounter[a.MachineCode]++
			row := a
			row.PriorityInMachine = priorityCounter[a.MachineCode]
			out = append(out, row)
			continue
		}
		for _, po := range pos {
			priorityCounter[a.MachineCode]++
			row := a
			row.PONo = po
			row.PriorityInMachine = priorityCounter[a.MachineCode]
			out = append(out, row)
		}
	}
	return out
}

// machineLoadFromMolding derives each machine's currently committed
// load in days from in-progress (MOLDING) POs' remaining work.
func machineLoadFromMolding(snap types.Snapshot, statByMold map[types.MoldID]types.StabilityRow) map[types.MachineCode]float64 {
	machineByID := snap.MachineByID()
	load := map[types.MachineCode]float64{}
	for _, s := range snap.OrderStatuses {
		if s.State != types.StateMolding {
			continue
		}
		row, ok := statByMold[s.LastMoldID]
		if !ok {
			continue
		}
		machine, ok := machineByID[s.LastMachineID]
		if !ok {
			continue
		}
		capacityPerDay := row.BalancedCapacity.InexactFloat64() * hoursPerDay
		if capacityPerDay <= 0 {
			continue
		}
		remain, _ := s.ItemRemain.Float64()
		load[machine.MachineCode] += remain / capacityPerDay
	}
	return load
}

// infeasibleWarnings reports, without raising, every mold neither tier
// could place. overloaded carries the compatible-but-over-capacity
// machines Tier-2 recorded for a mold, when any were found.
func infeasibleWarnings(unassigned []types.MoldID, overloaded map[types.MoldID][]types.MachineCode) []errs.Warning {
	out := make([]errs.Warning, 0, len(unassigned))
	for _, mold := range unassigned {
		if machines := overloaded[mold]; len(machines) > 0 {
			out = append(out, errs.Warnf(errs.OptimizationInfeasible, "assignment",
				"mold %s could not be placed: overloaded compatible machines %v", mold, machines))
			continue
		}
		out = append(out, errs.Warnf(errs.OptimizationInfeasible, "assignment",
			"mold %s could not be placed: no compatible machine within load threshold", mold))
	}
	return out
}

func countWarningsByStage(warnings []errs.Warning) map[string]int {
	out := map[string]int{}
	for _, w := range warnings {
		out[w.Stage]++
	}
	return out
}

func logWarnings(logger *logrus.Entry, warnings []errs.Warning) {
	for _, w := range warnings {
		logger.WithFields(logrus.Fields{"stage": w.Stage, "kind": w.Kind}).Warn(w.Message)
	}
}
