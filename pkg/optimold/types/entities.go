// Package types holds the entities of the manufacturing planning core,
// shared immutably across every engine (stability, feature weight,
// priority matrix, two-tier assignment). Nothing in this package mutates
// after construction; engines consume these by value or read-only slice.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoldID identifies a mold across the snapshot.
type MoldID string

// MachineID identifies a machine row; MachineCode is the human-facing,
// uniqueness-at-a-point-in-time identifier used by the priority matrix
// and assignment plan.
type MachineID string
type MachineCode string

// ShiftID is one of the three numbered production shifts or the
// administrative "HC" catch-all shift.
type ShiftID string

const (
	Shift1  ShiftID = "1"
	Shift2  ShiftID = "2"
	Shift3  ShiftID = "3"
	ShiftHC ShiftID = "HC"
)

func (s ShiftID) Valid() bool {
	switch s {
	case Shift1, Shift2, Shift3, ShiftHC:
		return true
	default:
		return false
	}
}

// TonnageRange is a mold's compatible clamping-force window.
type TonnageRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Contains reports whether a machine's tonnage falls within the range
// (inclusive on both ends).
func (r TonnageRange) Contains(tonnage decimal.Decimal) bool {
	return !tonnage.LessThan(r.Min) && !tonnage.GreaterThan(r.Max)
}

// Mold is the injection mold master record.
type Mold struct {
	MoldID             MoldID
	CavityStandard     int             // >=1
	SettingCycleSeconds decimal.Decimal // >0; designed seconds per shot
	TonnageRange       TonnageRange
}

// Machine is the injection molding machine master record.
type Machine struct {
	MachineID   MachineID
	MachineCode MachineCode
	Tonnage     decimal.Decimal
	ActiveFlag  bool
}

// MoldSpec records which machine codes a mold is technically compatible
// with, normally derived from a tonnage intersection against the machine
// roster. Must be non-empty for any mold that may be assigned.
type MoldSpec struct {
	MoldID               MoldID
	CompatibleMachineCodes []MachineCode
}

// ProductionRecord is one (moldId, machineId, shift, day) shop-floor
// observation. A record with MoldShot == 0 is "non-working" and excluded
// from stability computation.
type ProductionRecord struct {
	RecordDate     time.Time
	ShiftID        ShiftID
	MachineID      MachineID
	MoldID         MoldID
	ItemCode       string
	PONo           string
	MoldShot       decimal.Decimal // >=0
	ItemGoodQty    decimal.Decimal // >=0
	ItemDefectQty  decimal.Decimal // >=0
	ObservedCavity int
}

// IsWorking reports whether this record should participate in stability
// aggregation: a record with MoldShot=0 is non-working.
func (r ProductionRecord) IsWorking() bool {
	return r.MoldShot.IsPositive()
}

// PurchaseOrder is an external customer/production order.
type PurchaseOrder struct {
	PONo            string // unique
	ItemCode        string
	ItemName        string
	ItemQuantity    decimal.Decimal // >0
	POETA           time.Time
	POReceivedDate  time.Time
}

// OrderState is the lifecycle state of an OrderStatus row.
type OrderState string

const (
	StatePending OrderState = "PENDING"
	StateMolding OrderState = "MOLDING"
	StatePaused  OrderState = "PAUSED"
	StateMolded  OrderState = "MOLDED"
)

// ETAStatus tracks whether a PO is expected to land on time.
type ETAStatus string

const (
	ETAPending ETAStatus = "PENDING"
	ETAOnTime  ETAStatus = "ONTIME"
	ETALate    ETAStatus = "LATE"
)

// OrderStatus is the mutable-in-the-source-system, read-only-to-the-core
// lifecycle row for a purchase order.
type OrderStatus struct {
	PONo          string
	State         OrderState
	ItemRemain    decimal.Decimal // >=0; State==MOLDED iff ItemRemain==0
	ETAStatus     ETAStatus
	LastMachineID MachineID
	LastMoldID    MoldID
	StartedDate   *time.Time
	EndDate       *time.Time
}

// IsComplete mirrors the invariant "state=MOLDED ⇔ itemRemain=0".
func (s OrderStatus) IsComplete() bool {
	return s.State == StateMolded && s.ItemRemain.IsZero()
}

// PriorityOrder selects the Tier-2 mold sort key.
type PriorityOrder string

const (
	Priority1 PriorityOrder = "PRIORITY_1" // (compat asc, leadTime desc, qty asc)
	Priority2 PriorityOrder = "PRIORITY_2" // (qty asc, compat asc, leadTime desc)
	Priority3 PriorityOrder = "PRIORITY_3" // (leadTime desc, qty asc, compat asc)
)

func (p PriorityOrder) String() string { return string(p) }
