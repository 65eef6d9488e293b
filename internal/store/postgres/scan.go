package postgres

import (
	"strings"

	"github.com/carlosf02/acg-propack/internal/core"
	"github.com/shopspring/decimal"
)

type rowScanner interface {
	Scan(dest ...any) error
}

const receiptColumns = `id, wr_number, client_id, received_warehouse_id, tracking_number, carrier, status,
	parent_wr_id, description, notes, weight_value, weight_unit, length, width, height, dimension_unit,
	received_at, created_at, updated_at`

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func scanReceipt(row rowScanner) (core.WarehouseReceipt, error) {
	var (
		wr                          core.WarehouseReceipt
		weight, length, width, high decimal.NullDecimal
	)
	err := row.Scan(
		&wr.ID, &wr.WRNumber, &wr.ClientID, &wr.ReceivedWarehouseID, &wr.TrackingNumber, &wr.Carrier, &wr.Status,
		&wr.ParentWRID, &wr.Description, &wr.Notes, &weight, &wr.WeightUnit, &length, &width, &high, &wr.DimensionUnit,
		&wr.ReceivedAt, &wr.CreatedAt, &wr.UpdatedAt,
	)
	if err != nil {
		return wr, err
	}
	wr.WeightValue = decimalPtr(weight)
	wr.Length = decimalPtr(length)
	wr.Width = decimalPtr(width)
	wr.Height = decimalPtr(high)
	return wr, nil
}

const balanceColumns = `id, client_id, warehouse_id, location_id, wr_id, on_hand_qty, reserved_qty, created_at, updated_at`

func scanBalance(row rowScanner) (core.Balance, error) {
	var b core.Balance
	err := row.Scan(&b.ID, &b.ClientID, &b.WarehouseID, &b.LocationID, &b.WRID, &b.OnHandQty, &b.ReservedQty, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

const shipmentColumns = `id, shipment_number, client_id, from_warehouse_id, status,
	destination_name, destination_address_line1, destination_address_line2, destination_city, destination_state, destination_zip,
	carrier, tracking_number, shipped_at, notes, created_at, updated_at`

func scanShipment(row rowScanner) (core.Shipment, error) {
	var s core.Shipment
	err := row.Scan(
		&s.ID, &s.ShipmentNumber, &s.ClientID, &s.FromWarehouseID, &s.Status,
		&s.Name, &s.AddressLine1, &s.AddressLine2, &s.City, &s.State, &s.Zip,
		&s.Carrier, &s.TrackingNumber, &s.ShippedAt, &s.Notes, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

const locationColumns = `id, warehouse_id, code, description, location_type, is_active`

func scanLocation(row rowScanner) (core.StorageLocation, error) {
	var l core.StorageLocation
	err := row.Scan(&l.ID, &l.WarehouseID, &l.Code, &l.Description, &l.LocationType, &l.IsActive)
	return l, err
}

func scanClient(row rowScanner) (core.Client, error) {
	var c core.Client
	err := row.Scan(&c.ID, &c.ClientCode, &c.Name, &c.IsActive)
	return c, err
}

const itemColumns = `id, shipment_id, wr_id, created_at`

func scanItem(row rowScanner) (core.ShipmentItem, error) {
	var it core.ShipmentItem
	err := row.Scan(&it.ID, &it.ShipmentID, &it.WRID, &it.CreatedAt)
	return it, err
}

const linkColumns = `id, repack_operation_id, input_wr_id, output_wr_id`

func scanLink(row rowScanner) (core.RepackLink, error) {
	var l core.RepackLink
	err := row.Scan(&l.ID, &l.RepackOperationID, &l.InputWRID, &l.OutputWRID)
	return l, err
}

// qualify prefixes every column in a column list with alias.
func qualify(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
