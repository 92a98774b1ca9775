// Package repository defines the prior-output store the orchestrator
// consults for its fingerprint-keyed change-log short-circuit: when a
// snapshot's fingerprint matches a stored one, the orchestrator reuses
// that run's artifacts instead of recomputing.
package repository

import (
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/assignment"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/featureweight"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/fingerprint"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/stability"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
)

// StoredOutputs bundles every artifact one orchestrator invocation
// produced, keyed externally by its input fingerprint.
type StoredOutputs struct {
	Stability     *stability.Report
	FeatureWeight *featureweight.Report
	Priority      types.PriorityMatrix
	Plan          assignment.Plan
}

// PriorOutputStore is the persistence boundary the core treats as an
// external collaborator: the core only ever asks for the prior output
// matching a fingerprint, or records a new one.
type PriorOutputStore interface {
	Get(fp fingerprint.Fingerprint) (StoredOutputs, bool)
	Put(fp fingerprint.Fingerprint, outputs StoredOutputs)
}
