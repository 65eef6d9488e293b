package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type WRStatus string

const (
	WRStatusActive    WRStatus = "ACTIVE"
	WRStatusInactive  WRStatus = "INACTIVE"
	WRStatusShipped   WRStatus = "SHIPPED"
	WRStatusCancelled WRStatus = "CANCELLED"
)

type ShipmentStatus string

const (
	ShipmentStatusPlanned   ShipmentStatus = "PLANNED"
	ShipmentStatusPacked    ShipmentStatus = "PACKED"
	ShipmentStatusShipped   ShipmentStatus = "SHIPPED"
	ShipmentStatusDelivered ShipmentStatus = "DELIVERED"
	ShipmentStatusCancelled ShipmentStatus = "CANCELLED"
)

type LocationType string

const (
	LocationReceiving LocationType = "RECEIVING"
	LocationStorage   LocationType = "STORAGE"
	LocationPacking   LocationType = "PACKING"
	LocationShipping  LocationType = "SHIPPING"
	LocationStaging   LocationType = "STAGING"
)

type WeightUnit string

const (
	WeightLB WeightUnit = "LB"
	WeightKG WeightUnit = "KG"
)

type DimensionUnit string

const (
	DimensionIN DimensionUnit = "IN"
	DimensionCM DimensionUnit = "CM"
)

type RepackOperationType string

const (
	RepackConsolidate RepackOperationType = "CONSOLIDATE"
	RepackRepack      RepackOperationType = "REPACK"
)

// Reference types recorded on ledger transactions.
const (
	RefWRReceive = "WR_RECEIVE"
	RefWRMove    = "WR_MOVE"
	RefWRCancel  = "WR_CANCEL"
	RefRepackOp  = "REPACK_OP"
	RefShipment  = "SHIPMENT"
)

// Actor is the authenticated caller performing an operation.
type Actor struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Client owns warehouse receipts. Managed by external CRUD.
type Client struct {
	ID         int64  `json:"id"`
	ClientCode string `json:"client_code"`
	Name       string `json:"name"`
	IsActive   bool   `json:"is_active"`
}

// Warehouse is a physical site. Managed by external CRUD.
type Warehouse struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// StorageLocation is a slot inside a warehouse. Code is unique per warehouse.
type StorageLocation struct {
	ID           int64        `json:"id"`
	WarehouseID  int64        `json:"warehouse_id"`
	Code         string       `json:"code"`
	Description  string       `json:"description,omitempty"`
	LocationType LocationType `json:"location_type"`
	IsActive     bool         `json:"is_active"`
}

// Measurements are the optional physical attributes of a WR.
type Measurements struct {
	WeightValue   *decimal.Decimal `json:"weight_value,omitempty"`
	WeightUnit    WeightUnit       `json:"weight_unit"`
	Length        *decimal.Decimal `json:"length,omitempty"`
	Width         *decimal.Decimal `json:"width,omitempty"`
	Height        *decimal.Decimal `json:"height,omitempty"`
	DimensionUnit DimensionUnit    `json:"dimension_unit"`
}

// WarehouseReceipt is the atomic inventory unit. WRs are never deleted.
type WarehouseReceipt struct {
	ID                  int64    `json:"id"`
	WRNumber            string   `json:"wr_number"`
	ClientID            int64    `json:"client_id"`
	ReceivedWarehouseID *int64   `json:"received_warehouse_id,omitempty"`
	TrackingNumber      *string  `json:"tracking_number,omitempty"`
	Carrier             string   `json:"carrier,omitempty"`
	Status              WRStatus `json:"status"`
	ParentWRID          *int64   `json:"parent_wr_id,omitempty"`
	Description         string   `json:"description,omitempty"`
	Notes               string   `json:"notes,omitempty"`
	Measurements
	ReceivedAt time.Time `json:"received_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Balance is the current location of one in-inventory WR.
// At most one Balance exists per WR.
type Balance struct {
	ID          int64     `json:"id"`
	ClientID    int64     `json:"client_id"`
	WarehouseID int64     `json:"warehouse_id"`
	LocationID  int64     `json:"location_id"`
	WRID        int64     `json:"wr_id"`
	OnHandQty   int       `json:"on_hand_qty"`
	ReservedQty int       `json:"reserved_qty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Transaction is one immutable ledger entry.
type Transaction struct {
	ID              int64             `json:"id"`
	ClientID        int64             `json:"client_id"`
	Type            TxnType           `json:"txn_type"`
	ReferenceType   *string           `json:"reference_type,omitempty"`
	ReferenceID     *string           `json:"reference_id,omitempty"`
	PerformedBy     int64             `json:"performed_by"`
	PerformedByName string            `json:"performed_by_name"`
	PerformedAt     time.Time         `json:"performed_at"`
	Notes           string            `json:"notes"`
	Lines           []TransactionLine `json:"lines"`
}

// TransactionLine is one WR's movement within a Transaction.
// A nil FromLocationID means the WR entered inventory, a nil ToLocationID
// means it left.
type TransactionLine struct {
	ID             int64  `json:"id"`
	TransactionID  int64  `json:"transaction_id"`
	WRID           int64  `json:"wr_id"`
	FromLocationID *int64 `json:"from_location_id"`
	ToLocationID   *int64 `json:"to_location_id"`
	Qty            int    `json:"qty"`
}

type RepackOperation struct {
	ID            int64               `json:"id"`
	ClientID      int64               `json:"client_id"`
	PerformedBy   int64               `json:"performed_by"`
	PerformedAt   time.Time           `json:"performed_at"`
	OperationType RepackOperationType `json:"operation_type"`
	Notes         string              `json:"notes"`
}

// RepackLink is one input→output edge of a repack operation.
type RepackLink struct {
	ID                int64 `json:"id"`
	RepackOperationID int64 `json:"repack_operation_id"`
	InputWRID         int64 `json:"input_wr_id"`
	OutputWRID        int64 `json:"output_wr_id"`
}

// Destination is the ship-to address of a Shipment.
type Destination struct {
	Name         string `json:"destination_name"`
	AddressLine1 string `json:"destination_address_line1"`
	AddressLine2 string `json:"destination_address_line2"`
	City         string `json:"destination_city"`
	State        string `json:"destination_state"`
	Zip          string `json:"destination_zip"`
}

type Shipment struct {
	ID              int64          `json:"id"`
	ShipmentNumber  string         `json:"shipment_number"`
	ClientID        int64          `json:"client_id"`
	FromWarehouseID *int64         `json:"from_warehouse_id,omitempty"`
	Status          ShipmentStatus `json:"status"`
	Destination
	Carrier        string     `json:"carrier"`
	TrackingNumber string     `json:"tracking_number"`
	ShippedAt      *time.Time `json:"shipped_at"`
	Notes          string     `json:"notes"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type ShipmentItem struct {
	ID         int64     `json:"id"`
	ShipmentID int64     `json:"shipment_id"`
	WRID       int64     `json:"wr_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// LedgerEntry is a transaction line joined with its transaction header
// and location codes, as returned by history queries.
type LedgerEntry struct {
	TransactionID    int64     `json:"transaction_id"`
	ClientID         int64     `json:"client_id"`
	TxnType          TxnType   `json:"txn_type"`
	PerformedAt      time.Time `json:"performed_at"`
	PerformedBy      string    `json:"performed_by"`
	WRID             int64     `json:"wr_id"`
	WRNumber         string    `json:"wr_number"`
	FromLocationID   *int64    `json:"from_location_id"`
	FromLocationCode *string   `json:"from_location_code"`
	ToLocationID     *int64    `json:"to_location_id"`
	ToLocationCode   *string   `json:"to_location_code"`
	Qty              int       `json:"qty"`
	ReferenceType    *string   `json:"reference_type"`
	ReferenceID      *string   `json:"reference_id"`
	Notes            string    `json:"notes"`
}

func int64Ptr(v int64) *int64 { return &v }

func strPtr(s string) *string { return &s }
