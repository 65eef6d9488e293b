package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/carlosf02/acg-propack/internal/core"
)

func receiptsByIDs(st *state, ids []int64) []core.WarehouseReceipt {
	var out []core.WarehouseReceipt
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if wr, ok := st.receipts[id]; ok {
			out = append(out, wr)
		}
	}
	slices.SortFunc(out, func(a, b core.WarehouseReceipt) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func itemsOf(st *state, shipmentID int64) []core.ShipmentItem {
	var out []core.ShipmentItem
	for _, it := range st.items {
		if it.ShipmentID == shipmentID {
			out = append(out, it)
		}
	}
	return out
}

func (s *Store) GetReceipt(_ context.Context, id int64) (*core.WarehouseReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wr, ok := s.st.receipts[id]
	if !ok {
		return nil, core.NotFound("warehouse receipt", id)
	}
	return &wr, nil
}

func (s *Store) GetShipment(_ context.Context, id int64) (*core.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.st.shipments[id]
	if !ok {
		return nil, core.NotFound("shipment", id)
	}
	return &sh, nil
}

func (s *Store) BalanceForWR(_ context.Context, wrID int64) (*core.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *core.Balance
	for _, b := range s.st.balances {
		if b.WRID == wrID && (found == nil || b.ID < found.ID) {
			b := b
			found = &b
		}
	}
	if found == nil {
		return nil, core.NotFound("inventory balance for warehouse receipt", wrID)
	}
	return found, nil
}

func (s *Store) GetClientByID(_ context.Context, id int64) (*core.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.st.clients[id]
	if !ok {
		return nil, core.NotFound("client", id)
	}
	return &c, nil
}

func (s *Store) GetLocationByID(_ context.Context, id int64) (*core.StorageLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.st.locations[id]
	if !ok {
		return nil, core.NotFound("storage location", id)
	}
	return &l, nil
}

func (s *Store) GetWarehouse(_ context.Context, id int64) (*core.Warehouse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.st.warehouses[id]
	if !ok {
		return nil, core.NotFound("warehouse", id)
	}
	return &w, nil
}

func (s *Store) RepackLinksByOutput(_ context.Context, wrID int64) ([]core.RepackLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.RepackLink
	for _, l := range s.st.links {
		if l.OutputWRID == wrID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Store) RepackLinksByInput(_ context.Context, wrID int64) ([]core.RepackLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.RepackLink
	for _, l := range s.st.links {
		if l.InputWRID == wrID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Store) GetRepackOperation(_ context.Context, id int64) (*core.RepackOperation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	op, ok := s.st.ops[id]
	if !ok {
		return nil, core.NotFound("repack operation", id)
	}
	return &op, nil
}

func (s *Store) ShipmentsForWR(_ context.Context, wrID int64) ([]core.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []core.ShipmentItem
	for _, it := range s.st.items {
		if it.WRID == wrID {
			items = append(items, it)
		}
	}
	slices.SortFunc(items, func(a, b core.ShipmentItem) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	out := make([]core.Shipment, 0, len(items))
	for _, it := range items {
		out = append(out, s.st.shipments[it.ShipmentID])
	}
	return out, nil
}

func (s *Store) ListShipmentItems(_ context.Context, shipmentID int64) ([]core.ShipmentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return itemsOf(s.st, shipmentID), nil
}

func (s *Store) ReceiptsByIDs(_ context.Context, ids []int64) ([]core.WarehouseReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return receiptsByIDs(s.st, ids), nil
}

func (s *Store) TransactionsByReference(_ context.Context, refType, refID string) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Transaction
	for _, t := range s.st.txns {
		if t.ReferenceType != nil && *t.ReferenceType == refType &&
			t.ReferenceID != nil && *t.ReferenceID == refID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) LedgerEntries(_ context.Context, f core.LedgerFilter) ([]core.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	code := func(id *int64) *string {
		if id == nil {
			return nil
		}
		c := s.st.locations[*id].Code
		return &c
	}

	var out []core.LedgerEntry
	for _, t := range s.st.txns {
		if f.ClientID != 0 && t.ClientID != f.ClientID {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if !f.From.IsZero() && t.PerformedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !t.PerformedAt.Before(f.To) {
			continue
		}
		for _, l := range t.Lines {
			if f.WRID != 0 && l.WRID != f.WRID {
				continue
			}
			out = append(out, core.LedgerEntry{
				TransactionID:    t.ID,
				ClientID:         t.ClientID,
				TxnType:          t.Type,
				PerformedAt:      t.PerformedAt,
				PerformedBy:      t.PerformedByName,
				WRID:             l.WRID,
				WRNumber:         s.st.receipts[l.WRID].WRNumber,
				FromLocationID:   l.FromLocationID,
				FromLocationCode: code(l.FromLocationID),
				ToLocationID:     l.ToLocationID,
				ToLocationCode:   code(l.ToLocationID),
				Qty:              l.Qty,
				ReferenceType:    t.ReferenceType,
				ReferenceID:      t.ReferenceID,
				Notes:            t.Notes,
			})
		}
	}

	slices.SortStableFunc(out, func(a, b core.LedgerEntry) int {
		if c := b.PerformedAt.Compare(a.PerformedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.TransactionID, a.TransactionID)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}
