package core

import "slices"

// Receipt lifecycle. A WR only ever leaves ACTIVE; every other status is terminal.
//
//	ACTIVE → INACTIVE   (consumed as consolidation input)
//	ACTIVE → SHIPPED    (dispatched)
//	ACTIVE → CANCELLED  (receipt voided)
var receiptTransitions = map[WRStatus][]WRStatus{
	WRStatusActive: {WRStatusInactive, WRStatusShipped, WRStatusCancelled},
}

// Shipment lifecycle.
//
//	PLANNED → PACKED → SHIPPED → DELIVERED
//	PLANNED | PACKED → CANCELLED
var shipmentTransitions = map[ShipmentStatus][]ShipmentStatus{
	ShipmentStatusPlanned: {ShipmentStatusPacked, ShipmentStatusShipped, ShipmentStatusCancelled},
	ShipmentStatusPacked:  {ShipmentStatusShipped, ShipmentStatusCancelled},
	ShipmentStatusShipped: {ShipmentStatusDelivered},
}

func (s WRStatus) Valid() bool {
	switch s {
	case WRStatusActive, WRStatusInactive, WRStatusShipped, WRStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a WR in status s may move to next.
func (s WRStatus) CanTransitionTo(next WRStatus) bool {
	return slices.Contains(receiptTransitions[s], next)
}

// InInventory reports whether a WR in status s may hold a Balance.
func (s WRStatus) InInventory() bool {
	return s == WRStatusActive
}

func (s ShipmentStatus) Valid() bool {
	switch s {
	case ShipmentStatusPlanned, ShipmentStatusPacked, ShipmentStatusShipped,
		ShipmentStatusDelivered, ShipmentStatusCancelled:
		return true
	}
	return false
}

func (s ShipmentStatus) CanTransitionTo(next ShipmentStatus) bool {
	return slices.Contains(shipmentTransitions[s], next)
}

// Open reports whether items may still be attached or the shipment dispatched.
func (s ShipmentStatus) Open() bool {
	return s == ShipmentStatusPlanned || s == ShipmentStatusPacked
}

// transitionReceipt applies next to wr or rejects with ErrInvalidState.
func transitionReceipt(wr *WarehouseReceipt, next WRStatus) error {
	if !wr.Status.CanTransitionTo(next) {
		return reject(ErrInvalidState, "WR %s is %s and cannot become %s", wr.WRNumber, wr.Status, next)
	}
	wr.Status = next
	return nil
}

// transitionShipment applies next to s or rejects with ErrInvalidState.
func transitionShipment(s *Shipment, next ShipmentStatus) error {
	if !s.Status.CanTransitionTo(next) {
		return reject(ErrInvalidState, "shipment %s is %s and cannot become %s", s.ShipmentNumber, s.Status, next)
	}
	s.Status = next
	return nil
}
