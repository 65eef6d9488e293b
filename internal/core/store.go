package core

import (
	"context"
	"time"
)

// Store is the single shared datastore behind the engine.
type Store interface {
	Reader
	// InTx runs fn as one unit of work. If fn returns an error every write is
	// discarded and every lock released; otherwise the work is committed.
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is a unit of work. Lock methods take exclusive row locks in ascending id
// order and hold them until the unit of work ends; callers must lock before
// reading anything whose content a precondition depends on.
type Tx interface {
	// LockReceipts locks and returns the WRs that exist among ids, ordered by id.
	LockReceipts(ctx context.Context, ids []int64) ([]WarehouseReceipt, error)
	// LockBalances locks and returns every balance row held by the given WRs.
	LockBalances(ctx context.Context, wrIDs []int64) ([]Balance, error)
	// LockShipment locks one shipment row. Returns ErrNotFound when absent.
	LockShipment(ctx context.Context, id int64) (*Shipment, error)

	GetClient(ctx context.Context, id int64) (*Client, error)
	GetLocation(ctx context.Context, id int64) (*StorageLocation, error)
	ShipmentItems(ctx context.Context, shipmentID int64) ([]ShipmentItem, error)

	InsertReceipt(ctx context.Context, wr *WarehouseReceipt) error
	// UpdateReceiptStates persists Status and ParentWRID of each WR.
	UpdateReceiptStates(ctx context.Context, wrs []WarehouseReceipt) error

	InsertBalance(ctx context.Context, b *Balance) error
	// MoveBalance persists LocationID and WarehouseID of b.
	MoveBalance(ctx context.Context, b *Balance) error
	DeleteBalances(ctx context.Context, ids []int64) error

	// InsertTransaction appends a transaction and its lines, assigning ids.
	InsertTransaction(ctx context.Context, txn *Transaction) error

	InsertRepackOperation(ctx context.Context, op *RepackOperation) error
	InsertRepackLinks(ctx context.Context, links []RepackLink) error

	InsertShipment(ctx context.Context, s *Shipment) error
	UpdateShipment(ctx context.Context, s *Shipment) error
	InsertShipmentItems(ctx context.Context, items []ShipmentItem) error
}

// Reader serves lock-free reads for views that never mutate state.
type Reader interface {
	GetReceipt(ctx context.Context, id int64) (*WarehouseReceipt, error)
	GetShipment(ctx context.Context, id int64) (*Shipment, error)
	// BalanceForWR returns the WR's balance, or ErrNotFound.
	BalanceForWR(ctx context.Context, wrID int64) (*Balance, error)
	GetClientByID(ctx context.Context, id int64) (*Client, error)
	GetLocationByID(ctx context.Context, id int64) (*StorageLocation, error)
	GetWarehouse(ctx context.Context, id int64) (*Warehouse, error)

	// RepackLinksByOutput returns the edges whose output is wrID.
	RepackLinksByOutput(ctx context.Context, wrID int64) ([]RepackLink, error)
	// RepackLinksByInput returns the edges whose input is wrID.
	RepackLinksByInput(ctx context.Context, wrID int64) ([]RepackLink, error)
	GetRepackOperation(ctx context.Context, id int64) (*RepackOperation, error)

	// ShipmentsForWR returns shipments the WR is attached to, newest membership first.
	ShipmentsForWR(ctx context.Context, wrID int64) ([]Shipment, error)
	ListShipmentItems(ctx context.Context, shipmentID int64) ([]ShipmentItem, error)
	ReceiptsByIDs(ctx context.Context, ids []int64) ([]WarehouseReceipt, error)

	// TransactionsByReference returns transactions with the given reference, oldest first.
	TransactionsByReference(ctx context.Context, refType, refID string) ([]Transaction, error)
	// LedgerEntries returns ledger lines matching f, most recent first.
	LedgerEntries(ctx context.Context, f LedgerFilter) ([]LedgerEntry, error)
}

// LedgerFilter narrows a ledger history query. Zero fields are ignored.
type LedgerFilter struct {
	ClientID int64
	WRID     int64
	Type     TxnType
	From     time.Time
	To       time.Time
	Limit    int
}
