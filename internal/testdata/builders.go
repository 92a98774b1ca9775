// Package testdata provides small snapshot-fixture builders shared
// across package tests.
package testdata

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
)

// Mold returns a minimal, valid Mold fixture.
func Mold(id types.MoldID, cavityStandard int, settingCycleSeconds float64) types.Mold {
	return types.Mold{
		MoldID:              id,
		CavityStandard:      cavityStandard,
		SettingCycleSeconds: decimal.NewFromFloat(settingCycleSeconds),
		TonnageRange:        types.TonnageRange{Min: decimal.NewFromInt(50), Max: decimal.NewFromInt(300)},
	}
}

// Machine returns a minimal, active Machine fixture.
func Machine(id types.MachineID, code types.MachineCode, tonnage float64) types.Machine {
	return types.Machine{
		MachineID:   id,
		MachineCode: code,
		Tonnage:     decimal.NewFromFloat(tonnage),
		ActiveFlag:  true,
	}
}

// WorkingRecord returns a ProductionRecord that satisfies IsWorking().
func WorkingRecord(mold types.MoldID, machine types.MachineID, po string, moldShot, goodQty, defectQty float64, observedCavity int, day time.Time) types.ProductionRecord {
	return types.ProductionRecord{
		RecordDate:     day,
		ShiftID:        types.Shift1,
		MachineID:      machine,
		MoldID:         mold,
		PONo:           po,
		MoldShot:       decimal.NewFromFloat(moldShot),
		ItemGoodQty:    decimal.NewFromFloat(goodQty),
		ItemDefectQty:  decimal.NewFromFloat(defectQty),
		ObservedCavity: observedCavity,
	}
}

// CompletedOrder returns a PurchaseOrder + OrderStatus pair representing
// one fully molded order, the shape Performance.Run consumes.
func CompletedOrder(po string, itemQty float64, mold types.MoldID, machine types.MachineID, day time.Time) (types.PurchaseOrder, types.OrderStatus) {
	started := day
	ended := day
	return types.PurchaseOrder{
			PONo: po, ItemCode: "IC-" + po, ItemName: "fixture item",
			ItemQuantity: decimal.NewFromFloat(itemQty), POETA: day, POReceivedDate: day,
		}, types.OrderStatus{
			PONo: po, State: types.StateMolded, ItemRemain: decimal.Zero,
			ETAStatus: types.ETAOnTime, LastMachineID: machine, LastMoldID: mold,
			StartedDate: &started, EndDate: &ended,
		}
}

// PendingOrder returns a PurchaseOrder + OrderStatus pair for an order
// not yet started, pre-targeted at a mold for lead-time computation.
func PendingOrder(po string, itemQty float64, mold types.MoldID, day time.Time) (types.PurchaseOrder, types.OrderStatus) {
	return types.PurchaseOrder{
			PONo: po, ItemCode: "IC-" + po, ItemName: "fixture item",
			ItemQuantity: decimal.NewFromFloat(itemQty), POETA: day, POReceivedDate: day,
		}, types.OrderStatus{
			PONo: po, State: types.StatePending, ItemRemain: decimal.NewFromFloat(itemQty), LastMoldID: mold,
		}
}
