package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/carlosf02/acg-propack/internal/core"
)

func getClient(ctx context.Context, q pgxQuerier, id int64) (*core.Client, error) {
	c, err := scanClient(q.QueryRow(ctx,
		`SELECT id, client_code, name, is_active FROM clients WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "client", id, "get client")
	}
	return &c, nil
}

func getLocation(ctx context.Context, q pgxQuerier, id int64) (*core.StorageLocation, error) {
	l, err := scanLocation(q.QueryRow(ctx,
		`SELECT `+locationColumns+` FROM storage_locations WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "storage location", id, "get storage location")
	}
	return &l, nil
}

func listItems(ctx context.Context, q pgxQuerier, shipmentID int64) ([]core.ShipmentItem, error) {
	return queryAll(ctx, q, scanItem, "list shipment items",
		`SELECT `+itemColumns+` FROM shipment_items WHERE shipment_id = $1 ORDER BY id`, shipmentID)
}

func (s *Store) GetReceipt(ctx context.Context, id int64) (*core.WarehouseReceipt, error) {
	wr, err := scanReceipt(s.pool.QueryRow(ctx,
		`SELECT `+receiptColumns+` FROM warehouse_receipts WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "warehouse receipt", id, "get warehouse receipt")
	}
	return &wr, nil
}

func (s *Store) GetShipment(ctx context.Context, id int64) (*core.Shipment, error) {
	sh, err := scanShipment(s.pool.QueryRow(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "shipment", id, "get shipment")
	}
	return &sh, nil
}

func (s *Store) BalanceForWR(ctx context.Context, wrID int64) (*core.Balance, error) {
	b, err := scanBalance(s.pool.QueryRow(ctx,
		`SELECT `+balanceColumns+` FROM inventory_balances WHERE wr_id = $1 ORDER BY id LIMIT 1`, wrID))
	if err != nil {
		return nil, notFound(err, "inventory balance for warehouse receipt", wrID, "get inventory balance")
	}
	return &b, nil
}

func (s *Store) GetClientByID(ctx context.Context, id int64) (*core.Client, error) {
	return getClient(ctx, s.pool, id)
}

func (s *Store) GetLocationByID(ctx context.Context, id int64) (*core.StorageLocation, error) {
	return getLocation(ctx, s.pool, id)
}

func (s *Store) GetWarehouse(ctx context.Context, id int64) (*core.Warehouse, error) {
	var w core.Warehouse
	err := s.pool.QueryRow(ctx,
		`SELECT id, code, name, is_active FROM warehouses WHERE id = $1`, id,
	).Scan(&w.ID, &w.Code, &w.Name, &w.IsActive)
	if err != nil {
		return nil, notFound(err, "warehouse", id, "get warehouse")
	}
	return &w, nil
}

func (s *Store) RepackLinksByOutput(ctx context.Context, wrID int64) ([]core.RepackLink, error) {
	return queryAll(ctx, s.pool, scanLink, "list repack inputs",
		`SELECT `+linkColumns+` FROM repack_links WHERE output_wr_id = $1 ORDER BY id`, wrID)
}

func (s *Store) RepackLinksByInput(ctx context.Context, wrID int64) ([]core.RepackLink, error) {
	return queryAll(ctx, s.pool, scanLink, "list repack outputs",
		`SELECT `+linkColumns+` FROM repack_links WHERE input_wr_id = $1 ORDER BY id`, wrID)
}

func (s *Store) GetRepackOperation(ctx context.Context, id int64) (*core.RepackOperation, error) {
	var op core.RepackOperation
	err := s.pool.QueryRow(ctx, `
		SELECT id, client_id, performed_by, performed_at, operation_type, notes
		FROM repack_operations WHERE id = $1`, id,
	).Scan(&op.ID, &op.ClientID, &op.PerformedBy, &op.PerformedAt, &op.OperationType, &op.Notes)
	if err != nil {
		return nil, notFound(err, "repack operation", id, "get repack operation")
	}
	return &op, nil
}

func (s *Store) ShipmentsForWR(ctx context.Context, wrID int64) ([]core.Shipment, error) {
	return queryAll(ctx, s.pool, scanShipment, "list shipments for warehouse receipt", `
		SELECT `+qualify("s", shipmentColumns)+`
		FROM shipment_items si
		JOIN shipments s ON s.id = si.shipment_id
		WHERE si.wr_id = $1
		ORDER BY si.created_at DESC, si.id DESC`, wrID)
}

func (s *Store) ListShipmentItems(ctx context.Context, shipmentID int64) ([]core.ShipmentItem, error) {
	return listItems(ctx, s.pool, shipmentID)
}

func (s *Store) ReceiptsByIDs(ctx context.Context, ids []int64) ([]core.WarehouseReceipt, error) {
	return queryAll(ctx, s.pool, scanReceipt, "list warehouse receipts",
		`SELECT `+receiptColumns+` FROM warehouse_receipts WHERE id = ANY($1) ORDER BY id`, ids)
}

func (s *Store) TransactionsByReference(ctx context.Context, refType, refID string) ([]core.Transaction, error) {
	txns, err := queryAll(ctx, s.pool, func(row rowScanner) (core.Transaction, error) {
		var t core.Transaction
		err := row.Scan(&t.ID, &t.ClientID, &t.Type, &t.ReferenceType, &t.ReferenceID,
			&t.PerformedBy, &t.PerformedByName, &t.PerformedAt, &t.Notes)
		return t, err
	}, "list transactions by reference", `
		SELECT id, client_id, txn_type, reference_type, reference_id, performed_by, performed_by_name, performed_at, notes
		FROM inventory_transactions
		WHERE reference_type = $1 AND reference_id = $2
		ORDER BY id`, refType, refID)
	if err != nil {
		return nil, err
	}

	for i := range txns {
		lines, err := queryAll(ctx, s.pool, func(row rowScanner) (core.TransactionLine, error) {
			var l core.TransactionLine
			err := row.Scan(&l.ID, &l.TransactionID, &l.WRID, &l.FromLocationID, &l.ToLocationID, &l.Qty)
			return l, err
		}, "list transaction lines", `
			SELECT id, transaction_id, wr_id, from_location_id, to_location_id, qty
			FROM inventory_transaction_lines WHERE transaction_id = $1 ORDER BY id`, txns[i].ID)
		if err != nil {
			return nil, err
		}
		txns[i].Lines = lines
	}
	return txns, nil
}

func (s *Store) LedgerEntries(ctx context.Context, f core.LedgerFilter) ([]core.LedgerEntry, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if f.ClientID != 0 {
		add("t.client_id = $%d", f.ClientID)
	}
	if f.WRID != 0 {
		add("l.wr_id = $%d", f.WRID)
	}
	if f.Type != "" {
		add("t.txn_type = $%d", f.Type)
	}
	if !f.From.IsZero() {
		add("t.performed_at >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("t.performed_at < $%d", f.To)
	}

	query := `
		SELECT t.id, t.client_id, t.txn_type, t.performed_at, t.performed_by_name,
		       l.wr_id, wr.wr_number, l.from_location_id, fl.code, l.to_location_id, tl.code, l.qty,
		       t.reference_type, t.reference_id, t.notes
		FROM inventory_transaction_lines l
		JOIN inventory_transactions t ON t.id = l.transaction_id
		JOIN warehouse_receipts wr ON wr.id = l.wr_id
		LEFT JOIN storage_locations fl ON fl.id = l.from_location_id
		LEFT JOIN storage_locations tl ON tl.id = l.to_location_id`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY t.performed_at DESC, t.id DESC, l.id"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf("\n\t\tLIMIT $%d", len(args))
	}

	return queryAll(ctx, s.pool, func(row rowScanner) (core.LedgerEntry, error) {
		var e core.LedgerEntry
		err := row.Scan(&e.TransactionID, &e.ClientID, &e.TxnType, &e.PerformedAt, &e.PerformedBy,
			&e.WRID, &e.WRNumber, &e.FromLocationID, &e.FromLocationCode, &e.ToLocationID, &e.ToLocationCode, &e.Qty,
			&e.ReferenceType, &e.ReferenceID, &e.Notes)
		return e, err
	}, "query ledger entries", query, args...)
}
