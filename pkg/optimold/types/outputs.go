package types

import "github.com/shopspring/decimal"

// StabilityRow is the Stability Index Engine's per-mold output.
type StabilityRow struct {
	MoldID               MoldID
	CavityStabilityIndex float64 // in [0,1]
	CycleStabilityIndex  float64 // in [0,1]
	OverallStability     float64 // 0.6*cavity + 0.4*cycle, in [0,1]
	TheoreticalCapacity  decimal.Decimal // units/hour
	EffectiveCapacity    decimal.Decimal // units/hour
	EstimatedCapacity    decimal.Decimal // units/hour
	BalancedCapacity     decimal.Decimal // units/hour
	TrustCoefficient     float64         // alpha, in [0.1, 1.0]
	TotalRecords         int
}

// SampleGroup classifies a PerformanceSample as coming from a
// historically "good" or "bad" completed order.
type SampleGroup string

const (
	GroupGood SampleGroup = "good"
	GroupBad  SampleGroup = "bad"
)

// PerformanceSample is one (poNo, moldId, machineCode) completed-order
// feature row.
type PerformanceSample struct {
	MoldID      MoldID
	MachineCode MachineCode
	PONo        string
	Group       SampleGroup

	ShiftNGRate        float64 // minimize; defectQty/(goodQty+defectQty)
	ShiftCavityRate    float64 // target 1.0; observedCavity/cavityStandard
	ShiftCycleTimeRate float64 // target 1.0; settingCycle/observedCycle (higher=faster than the setting)
	ShiftCapacityRate  float64 // target 1.0; producedPerShift/balancedCapacityPerShift
}

// FeatureName identifies one of the four performance features tracked by
// the Feature Weight Engine.
type FeatureName string

const (
	FeatureNGRate        FeatureName = "shiftNGRate"
	FeatureCavityRate    FeatureName = "shiftCavityRate"
	FeatureCycleTimeRate FeatureName = "shiftCycleTimeRate"
	FeatureCapacityRate  FeatureName = "shiftCapacityRate"
)

// AllFeatures is the canonical, stable-ordered feature list used whenever
// engines must iterate features deterministically.
var AllFeatures = []FeatureName{
	FeatureNGRate,
	FeatureCavityRate,
	FeatureCycleTimeRate,
	FeatureCapacityRate,
}

// FeatureWeightRow is the Feature Weight Engine's per-feature output
// Sigma(FinalWeight) across all rows == 1.
type FeatureWeightRow struct {
	Feature              FeatureName
	TraditionalWeight    float64
	SeparationConfidence float64
	EnhancedWeight       float64
	FinalWeight          float64
	GoodConfidence       float64
	BadConfidence        float64
	SampleSizeGood       int
	SampleSizeBad        int
	Degraded             bool // true if neutral confidences were assigned (sample below min_sample_size)
}

// ModelReliability is the Feature Weight Engine's overall summary block.
type ModelReliability struct {
	OverallGoodConfidence float64
	OverallBadConfidence  float64
	ModelReliability      float64
	ValidFeaturesRatio    float64
}

// PriorityMatrix holds the mold x machine rank matrix. Rank
// 0 means incompatible/unseen; otherwise ranks are dense per mold row
// starting at 1 (lower rank == higher priority).
type PriorityMatrix struct {
	// Ranks[moldID][machineCode] = dense rank, or absent/0 if incompatible.
	Ranks map[MoldID]map[MachineCode]int
	// Scores[moldID][machineCode] = raw weighted score backing the rank.
	Scores map[MoldID]map[MachineCode]float64
}

// RankOf returns the rank for (mold, machine), or 0 if absent.
func (m PriorityMatrix) RankOf(mold MoldID, machine MachineCode) int {
	row, ok := m.Ranks[mold]
	if !ok {
		return 0
	}
	return row[machine]
}

// AssignmentSource tags which optimizer tier produced an Assignment.
type AssignmentSource string

const (
	SourceHistBased          AssignmentSource = "histBased"
	SourceCompatibilityBased AssignmentSource = "compatibilityBased"
)

// Assignment is one row of the final plan.
type Assignment struct {
	PONo              string
	MoldID            MoldID
	MachineCode       MachineCode
	PriorityInMachine int
	Source            AssignmentSource
}
