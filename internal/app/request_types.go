package app

import (
	"time"

	"github.com/carlosf02/acg-propack/internal/core"
	"github.com/shopspring/decimal"
)

// MeasurementsInput carries the optional physical attributes of a WR.
type MeasurementsInput struct {
	WeightValue   *decimal.Decimal `json:"weight_value"`
	WeightUnit    string           `json:"weight_unit" validate:"omitempty,oneof=LB KG"`
	Length        *decimal.Decimal `json:"length"`
	Width         *decimal.Decimal `json:"width"`
	Height        *decimal.Decimal `json:"height"`
	DimensionUnit string           `json:"dimension_unit" validate:"omitempty,oneof=IN CM"`
}

func (m MeasurementsInput) toCore() core.Measurements {
	return core.Measurements{
		WeightValue:   m.WeightValue,
		WeightUnit:    core.WeightUnit(m.WeightUnit),
		Length:        m.Length,
		Width:         m.Width,
		Height:        m.Height,
		DimensionUnit: core.DimensionUnit(m.DimensionUnit),
	}
}

// ReceiveWRRequest is the input for registering a warehouse receipt.
type ReceiveWRRequest struct {
	ClientID       int64      `json:"client_id" validate:"required,gt=0"`
	WRNumber       string     `json:"wr_number" validate:"omitempty,max=64"`
	LocationID     *int64     `json:"location_id" validate:"omitempty,gt=0"`
	TrackingNumber *string    `json:"tracking_number" validate:"omitempty,max=128"`
	Carrier        string     `json:"carrier" validate:"max=64"`
	Description    string     `json:"description"`
	Notes          string     `json:"notes"`
	ReceivedAt     *time.Time `json:"received_at"`
	MeasurementsInput
	Actor *core.Actor `json:"-"`
}

// MoveWRRequest relocates one WR. FromLocationID is an optimistic check
// against the WR's current location.
type MoveWRRequest struct {
	WRID           int64       `json:"wr_id" validate:"required,gt=0"`
	ToLocationID   int64       `json:"to_location_id" validate:"required,gt=0"`
	FromLocationID *int64      `json:"from_location_id" validate:"omitempty,gt=0"`
	Notes          string      `json:"notes"`
	Actor          *core.Actor `json:"-"`
}

// OutputWRInput describes the WR produced by a consolidation.
type OutputWRInput struct {
	WRNumber       string  `json:"wr_number" validate:"omitempty,max=64"`
	TrackingNumber *string `json:"tracking_number" validate:"omitempty,max=128"`
	Carrier        string  `json:"carrier" validate:"max=64"`
	Description    string  `json:"description"`
	Notes          string  `json:"notes"`
	MeasurementsInput
}

// ConsolidateRequest merges InputWRIDs into one new WR at ToLocationID.
type ConsolidateRequest struct {
	ClientID     int64         `json:"client_id" validate:"required,gt=0"`
	InputWRIDs   []int64       `json:"input_wr_ids" validate:"required,min=2,dive,gt=0"`
	ToLocationID int64         `json:"to_location_id" validate:"required,gt=0"`
	Output       OutputWRInput `json:"output"`
	Notes        string        `json:"notes"`
	Actor        *core.Actor   `json:"-"`
}

// CancelWRRequest cancels an ACTIVE WR.
type CancelWRRequest struct {
	WRID  int64       `json:"-"`
	Notes string      `json:"notes"`
	Actor *core.Actor `json:"-"`
}

// CreateShipmentRequest opens a PLANNED shipment.
type CreateShipmentRequest struct {
	ClientID        int64  `json:"client_id" validate:"required,gt=0"`
	ShipmentNumber  string `json:"shipment_number" validate:"omitempty,max=64"`
	FromWarehouseID *int64 `json:"from_warehouse_id" validate:"omitempty,gt=0"`
	core.Destination
	Carrier        string      `json:"carrier" validate:"max=64"`
	TrackingNumber string      `json:"tracking_number" validate:"max=128"`
	Notes          string      `json:"notes"`
	Actor          *core.Actor `json:"-"`
}

// AddShipmentItemsRequest attaches WRs to an open shipment.
type AddShipmentItemsRequest struct {
	ShipmentID int64       `json:"-"`
	WRIDs      []int64     `json:"wr_ids" validate:"required,min=1,dive,gt=0"`
	Actor      *core.Actor `json:"-"`
}

// ShipShipmentRequest dispatches a shipment. Nil fields keep the stored value.
type ShipShipmentRequest struct {
	ShipmentID     int64       `json:"-"`
	Carrier        *string     `json:"carrier" validate:"omitempty,max=64"`
	TrackingNumber *string     `json:"tracking_number" validate:"omitempty,max=128"`
	ShippedAt      *time.Time  `json:"shipped_at"`
	Notes          *string     `json:"notes"`
	Actor          *core.Actor `json:"-"`
}

// LedgerQuery narrows a ledger history read. Zero fields are ignored.
type LedgerQuery struct {
	ClientID int64
	WRID     int64
	Type     string
	From     time.Time
	To       time.Time
	Limit    int
}
