package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/assignment"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/errs"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/featureweight"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/stability"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
)

func marshalIndent(v any) (string, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(body) + "\n", nil
}

func renderStabilityText(report *stability.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "STABILITY (%d molds, %d invalid, %d warnings)\n", len(report.Rows), len(report.InvalidMolds), len(report.Warnings))
	for _, row := range report.Rows {
		fmt.Fprintf(&b, "  %-10s cavity=%.3f cycle=%.3f overall=%.3f trust=%.2f records=%d\n",
			row.MoldID, row.CavityStabilityIndex, row.CycleStabilityIndex, row.OverallStability, row.TrustCoefficient, row.TotalRecords)
	}
	appendWarnings(&b, report.Warnings)
	return b.String()
}

func renderWeightsText(report *featureweight.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "FEATURE WEIGHTS (reliability=%.3f valid_ratio=%.2f)\n",
		report.Reliability.ModelReliability, report.Reliability.ValidFeaturesRatio)
	for _, row := range report.Rows {
		fmt.Fprintf(&b, "  %-20s final=%.3f traditional=%.3f enhanced=%.3f degraded=%v n_good=%d n_bad=%d\n",
			row.Feature, row.FinalWeight, row.TraditionalWeight, row.EnhancedWeight, row.Degraded, row.SampleSizeGood, row.SampleSizeBad)
	}
	appendWarnings(&b, report.Warnings)
	return b.String()
}

func renderPriorityText(matrix types.PriorityMatrix) string {
	var b strings.Builder
	b.WriteString("PRIORITY MATRIX\n")

	molds := make([]types.MoldID, 0, len(matrix.Ranks))
	for m := range matrix.Ranks {
		molds = append(molds, m)
	}
	sort.Slice(molds, func(i, j int) bool { return molds[i] < molds[j] })

	for _, mold := range molds {
		row := matrix.Ranks[mold]
		machines := make([]types.MachineCode, 0, len(row))
		for m := range row {
			machines = append(machines, m)
		}
		sort.Slice(machines, func(i, j int) bool { return machines[i] < machines[j] })

		fmt.Fprintf(&b, "  %-10s", mold)
		for _, machine := range machines {
			fmt.Fprintf(&b, " %s=rank%d(score=%.3f)", machine, row[machine], matrix.Scores[mold][machine])
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderPlanText(plan assignment.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ASSIGNMENT PLAN (pending=%d tier1=%d tier2=%d unassigned=%d)\n",
		plan.Counters.TotalPending, plan.Counters.AssignedTier1, plan.Counters.AssignedTier2, plan.Counters.Unassigned)
	for _, a := range plan.Assignments {
		fmt.Fprintf(&b, "  PO=%-8s %-10s -> %-8s priority=%-3d source=%s\n", a.PONo, a.MoldID, a.MachineCode, a.PriorityInMachine, a.Source)
	}
	if len(plan.Unassigned) > 0 {
		b.WriteString("  unassigned:")
		for _, m := range plan.Unassigned {
			fmt.Fprintf(&b, " %s", m)
		}
		b.WriteString("\n")
	}
	if len(plan.LeadTimes) > 0 {
		b.WriteString("  lead times:\n")
		for _, lt := range plan.LeadTimes {
			fmt.Fprintf(&b, "    %-10s qty=%.0f capacity/day=%.1f lead_time_days=%.2f\n",
				lt.MoldID, lt.TotalQuantity, lt.BalancedCapacityPerDay, lt.LeadTimeDays)
		}
	}
	return b.String()
}

func appendWarnings(b *strings.Builder, warnings []errs.Warning) {
	if len(warnings) == 0 {
		return
	}
	b.WriteString("  warnings:\n")
	for _, w := range warnings {
		fmt.Fprintf(b, "    %s\n", w.String())
	}
}
