package postgres

import (
	"context"
	"fmt"

	"github.com/carlosf02/acg-propack/internal/core"
)

func queryAll[T any](ctx context.Context, q pgxQuerier, scan func(rowScanner) (T, error), action, sql string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", action, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan while trying to %s: %w", action, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to %s: %w", action, err)
	}
	return out, nil
}

type pgTx struct {
	q pgxQuerier
}

var _ core.Tx = (*pgTx)(nil)

// ── Lock primitives ──────────────────────────────────────────────────────────

func (t *pgTx) LockReceipts(ctx context.Context, ids []int64) ([]core.WarehouseReceipt, error) {
	return queryAll(ctx, t.q, scanReceipt, "lock warehouse receipts",
		`SELECT `+receiptColumns+` FROM warehouse_receipts WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
}

func (t *pgTx) LockBalances(ctx context.Context, wrIDs []int64) ([]core.Balance, error) {
	return queryAll(ctx, t.q, scanBalance, "lock inventory balances",
		`SELECT `+balanceColumns+` FROM inventory_balances WHERE wr_id = ANY($1) ORDER BY id FOR UPDATE`, wrIDs)
}

func (t *pgTx) LockShipment(ctx context.Context, id int64) (*core.Shipment, error) {
	sh, err := scanShipment(t.q.QueryRow(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "shipment", id, "lock shipment")
	}
	return &sh, nil
}

// ── Reads inside the unit of work ────────────────────────────────────────────

func (t *pgTx) GetClient(ctx context.Context, id int64) (*core.Client, error) {
	return getClient(ctx, t.q, id)
}

func (t *pgTx) GetLocation(ctx context.Context, id int64) (*core.StorageLocation, error) {
	return getLocation(ctx, t.q, id)
}

func (t *pgTx) ShipmentItems(ctx context.Context, shipmentID int64) ([]core.ShipmentItem, error) {
	return listItems(ctx, t.q, shipmentID)
}

// ── Writes ───────────────────────────────────────────────────────────────────

func (t *pgTx) InsertReceipt(ctx context.Context, wr *core.WarehouseReceipt) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO warehouse_receipts (wr_number, client_id, received_warehouse_id, tracking_number, carrier, status,
			parent_wr_id, description, notes, weight_value, weight_unit, length, width, height, dimension_unit, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at`,
		wr.WRNumber, wr.ClientID, wr.ReceivedWarehouseID, wr.TrackingNumber, wr.Carrier, wr.Status,
		wr.ParentWRID, wr.Description, wr.Notes, wr.WeightValue, wr.WeightUnit, wr.Length, wr.Width, wr.Height,
		wr.DimensionUnit, wr.ReceivedAt,
	).Scan(&wr.ID, &wr.CreatedAt, &wr.UpdatedAt)
	if err != nil {
		return mapError(err, "insert warehouse receipt")
	}
	return nil
}

func (t *pgTx) UpdateReceiptStates(ctx context.Context, wrs []core.WarehouseReceipt) error {
	for _, wr := range wrs {
		tag, err := t.q.Exec(ctx,
			`UPDATE warehouse_receipts SET status = $2, parent_wr_id = $3, updated_at = now() WHERE id = $1`,
			wr.ID, wr.Status, wr.ParentWRID)
		if err != nil {
			return mapError(err, fmt.Sprintf("update warehouse receipt %s", wr.WRNumber))
		}
		if tag.RowsAffected() == 0 {
			return core.NotFound("warehouse receipt", wr.ID)
		}
	}
	return nil
}

func (t *pgTx) InsertBalance(ctx context.Context, b *core.Balance) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO inventory_balances (client_id, warehouse_id, location_id, wr_id, on_hand_qty, reserved_qty)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		b.ClientID, b.WarehouseID, b.LocationID, b.WRID, b.OnHandQty, b.ReservedQty,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return mapError(err, "insert inventory balance")
	}
	return nil
}

func (t *pgTx) MoveBalance(ctx context.Context, b *core.Balance) error {
	err := t.q.QueryRow(ctx, `
		UPDATE inventory_balances SET location_id = $2, warehouse_id = $3, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		b.ID, b.LocationID, b.WarehouseID,
	).Scan(&b.UpdatedAt)
	if err != nil {
		return notFound(err, "inventory balance", b.ID, "move inventory balance")
	}
	return nil
}

func (t *pgTx) DeleteBalances(ctx context.Context, ids []int64) error {
	tag, err := t.q.Exec(ctx, `DELETE FROM inventory_balances WHERE id = ANY($1)`, ids)
	if err != nil {
		return mapError(err, "delete inventory balances")
	}
	if int(tag.RowsAffected()) != len(ids) {
		return fmt.Errorf("failed to delete inventory balances: deleted %d of %d rows", tag.RowsAffected(), len(ids))
	}
	return nil
}

func (t *pgTx) InsertTransaction(ctx context.Context, txn *core.Transaction) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO inventory_transactions (client_id, txn_type, reference_type, reference_id,
			performed_by, performed_by_name, performed_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		txn.ClientID, txn.Type, txn.ReferenceType, txn.ReferenceID,
		txn.PerformedBy, txn.PerformedByName, txn.PerformedAt, txn.Notes,
	).Scan(&txn.ID)
	if err != nil {
		return mapError(err, "insert inventory transaction")
	}

	for i := range txn.Lines {
		l := &txn.Lines[i]
		l.TransactionID = txn.ID
		err := t.q.QueryRow(ctx, `
			INSERT INTO inventory_transaction_lines (transaction_id, wr_id, from_location_id, to_location_id, qty)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			l.TransactionID, l.WRID, l.FromLocationID, l.ToLocationID, l.Qty,
		).Scan(&l.ID)
		if err != nil {
			return mapError(err, fmt.Sprintf("insert transaction line for WR %d", l.WRID))
		}
	}
	return nil
}

func (t *pgTx) InsertRepackOperation(ctx context.Context, op *core.RepackOperation) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO repack_operations (client_id, performed_by, performed_at, operation_type, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		op.ClientID, op.PerformedBy, op.PerformedAt, op.OperationType, op.Notes,
	).Scan(&op.ID)
	if err != nil {
		return mapError(err, "insert repack operation")
	}
	return nil
}

func (t *pgTx) InsertRepackLinks(ctx context.Context, links []core.RepackLink) error {
	for i := range links {
		l := &links[i]
		err := t.q.QueryRow(ctx, `
			INSERT INTO repack_links (repack_operation_id, input_wr_id, output_wr_id)
			VALUES ($1, $2, $3)
			RETURNING id`,
			l.RepackOperationID, l.InputWRID, l.OutputWRID,
		).Scan(&l.ID)
		if err != nil {
			return mapError(err, "insert repack link")
		}
	}
	return nil
}

func (t *pgTx) InsertShipment(ctx context.Context, s *core.Shipment) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO shipments (shipment_number, client_id, from_warehouse_id, status,
			destination_name, destination_address_line1, destination_address_line2,
			destination_city, destination_state, destination_zip,
			carrier, tracking_number, shipped_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`,
		s.ShipmentNumber, s.ClientID, s.FromWarehouseID, s.Status,
		s.Name, s.AddressLine1, s.AddressLine2, s.City, s.State, s.Zip,
		s.Carrier, s.TrackingNumber, s.ShippedAt, s.Notes,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return mapError(err, "insert shipment")
	}
	return nil
}

func (t *pgTx) UpdateShipment(ctx context.Context, s *core.Shipment) error {
	err := t.q.QueryRow(ctx, `
		UPDATE shipments SET status = $2, carrier = $3, tracking_number = $4, shipped_at = $5, notes = $6,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		s.ID, s.Status, s.Carrier, s.TrackingNumber, s.ShippedAt, s.Notes,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return notFound(err, "shipment", s.ID, "update shipment")
	}
	return nil
}

func (t *pgTx) InsertShipmentItems(ctx context.Context, items []core.ShipmentItem) error {
	for i := range items {
		it := &items[i]
		err := t.q.QueryRow(ctx, `
			INSERT INTO shipment_items (shipment_id, wr_id)
			VALUES ($1, $2)
			RETURNING id, created_at`,
			it.ShipmentID, it.WRID,
		).Scan(&it.ID, &it.CreatedAt)
		if err != nil {
			return mapError(err, fmt.Sprintf("add WR %d to shipment", it.WRID))
		}
	}
	return nil
}
