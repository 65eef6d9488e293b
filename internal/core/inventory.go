package core

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// InventoryService mutates the balance projection and appends the ledger
// entries that explain each change. Every method is one unit of work.
type InventoryService interface {
	// Receive creates an ACTIVE WR. When a location is given the WR enters
	// inventory there with a RECEIVE transaction.
	Receive(ctx context.Context, in ReceiveInput) (*ReceiveResult, error)
	// Move relocates one WR, or puts it away if it has no balance yet.
	Move(ctx context.Context, in MoveInput) (*MoveResult, error)
	// Consolidate merges two or more WRs into a new output WR.
	Consolidate(ctx context.Context, in ConsolidateInput) (*ConsolidateResult, error)
	// CancelReceipt voids an ACTIVE WR, removing it from inventory if needed.
	CancelReceipt(ctx context.Context, wrID int64, actor *Actor, notes string) (*WarehouseReceipt, error)
}

// NumberGenerator issues human-facing document numbers.
type NumberGenerator interface {
	NextWRNumber() string
	NextShipmentNumber() string
}

type inventoryService struct {
	store   Store
	numbers NumberGenerator
	log     *zap.Logger
	now     func() time.Time
}

// NewInventoryService constructs an InventoryService over store.
func NewInventoryService(store Store, numbers NumberGenerator, log *zap.Logger) InventoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &inventoryService{store: store, numbers: numbers, log: log, now: time.Now}
}

func requireActor(actor *Actor) error {
	if actor == nil || actor.ID == 0 {
		return reject(ErrUnauthenticated, "user tracking is missing: an authenticated actor is required")
	}
	return nil
}
