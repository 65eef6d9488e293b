package app

import (
	"context"
	"io"

	"github.com/carlosf02/acg-propack/internal/core"
)

// ApplicationService is the single interface all adapters (CLI, Web) call.
// It decouples presentation from the inventory engine. Implementations must
// contain no display logic of any kind.
type ApplicationService interface {
	// ReceiveWR registers a new warehouse receipt, optionally placing it at a location.
	ReceiveWR(ctx context.Context, req ReceiveWRRequest) (*ReceiptResult, error)

	// MoveWR relocates a WR's single unit to another storage location.
	MoveWR(ctx context.Context, req MoveWRRequest) (*MoveResult, error)

	// Consolidate merges two or more WRs of one client into a new output WR.
	Consolidate(ctx context.Context, req ConsolidateRequest) (*ConsolidateResult, error)

	// CancelWR cancels an ACTIVE WR, removing it from inventory if placed.
	CancelWR(ctx context.Context, req CancelWRRequest) (*ReceiptResult, error)

	// CreateShipment opens a PLANNED shipment.
	CreateShipment(ctx context.Context, req CreateShipmentRequest) (*ShipmentResult, error)

	// AddShipmentItems attaches WRs to an open shipment, skipping ones already attached.
	AddShipmentItems(ctx context.Context, req AddShipmentItemsRequest) (*AddItemsResult, error)

	// ShipShipment dispatches every WR on the shipment and removes them from inventory.
	ShipShipment(ctx context.Context, req ShipShipmentRequest) (*ShipmentResult, error)

	// PackShipment moves a PLANNED shipment to PACKED.
	PackShipment(ctx context.Context, shipmentID int64, actor *core.Actor) (*ShipmentResult, error)

	// CancelShipment cancels a PLANNED or PACKED shipment.
	CancelShipment(ctx context.Context, shipmentID int64, actor *core.Actor) (*ShipmentResult, error)

	// DeliverShipment marks a SHIPPED shipment as DELIVERED.
	DeliverShipment(ctx context.Context, shipmentID int64, actor *core.Actor) (*ShipmentResult, error)

	TraceReceipt(ctx context.Context, wrID int64) (*core.ReceiptTrace, error)
	TraceShipment(ctx context.Context, shipmentID int64) (*core.ShipmentTrace, error)

	// LedgerHistory returns ledger lines matching the query, most recent first.
	LedgerHistory(ctx context.Context, q LedgerQuery) (*LedgerResult, error)

	// ExportLedger writes the ledger lines matching the query to w as XLSX.
	ExportLedger(ctx context.Context, w io.Writer, q LedgerQuery) error
}
