package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/carlosf02/acg-propack/internal/core"
)

// tx writes to a private copy of the state. Exclusion comes from the store
// mutex, so the lock primitives only read.
type tx struct {
	st    *state
	store *Store
}

var _ core.Tx = (*tx)(nil)

func (t *tx) LockReceipts(_ context.Context, ids []int64) ([]core.WarehouseReceipt, error) {
	return receiptsByIDs(t.st, ids), nil
}

func (t *tx) LockBalances(_ context.Context, wrIDs []int64) ([]core.Balance, error) {
	want := make(map[int64]bool, len(wrIDs))
	for _, id := range wrIDs {
		want[id] = true
	}
	var out []core.Balance
	for _, b := range t.st.balances {
		if want[b.WRID] {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b core.Balance) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (t *tx) LockShipment(_ context.Context, id int64) (*core.Shipment, error) {
	sh, ok := t.st.shipments[id]
	if !ok {
		return nil, core.NotFound("shipment", id)
	}
	return &sh, nil
}

func (t *tx) GetClient(_ context.Context, id int64) (*core.Client, error) {
	c, ok := t.st.clients[id]
	if !ok {
		return nil, core.NotFound("client", id)
	}
	return &c, nil
}

func (t *tx) GetLocation(_ context.Context, id int64) (*core.StorageLocation, error) {
	l, ok := t.st.locations[id]
	if !ok {
		return nil, core.NotFound("storage location", id)
	}
	return &l, nil
}

func (t *tx) ShipmentItems(_ context.Context, shipmentID int64) ([]core.ShipmentItem, error) {
	return itemsOf(t.st, shipmentID), nil
}

func (t *tx) InsertReceipt(_ context.Context, wr *core.WarehouseReceipt) error {
	if _, ok := t.st.clients[wr.ClientID]; !ok {
		return core.NotFound("client", wr.ClientID)
	}
	for _, other := range t.st.receipts {
		if other.WRNumber == wr.WRNumber {
			return core.Conflict("warehouse receipt number %s already exists", wr.WRNumber)
		}
		if wr.TrackingNumber != nil && other.TrackingNumber != nil &&
			other.ClientID == wr.ClientID && *other.TrackingNumber == *wr.TrackingNumber {
			return core.Conflict("tracking number %s already exists for this client", *wr.TrackingNumber)
		}
	}
	now := t.store.now()
	wr.ID = t.st.nextID()
	wr.CreatedAt, wr.UpdatedAt = now, now
	t.st.receipts[wr.ID] = *wr
	return nil
}

func (t *tx) UpdateReceiptStates(_ context.Context, wrs []core.WarehouseReceipt) error {
	now := t.store.now()
	for _, wr := range wrs {
		cur, ok := t.st.receipts[wr.ID]
		if !ok {
			return core.NotFound("warehouse receipt", wr.ID)
		}
		cur.Status = wr.Status
		cur.ParentWRID = wr.ParentWRID
		cur.UpdatedAt = now
		t.st.receipts[wr.ID] = cur
	}
	return nil
}

func (t *tx) InsertBalance(_ context.Context, b *core.Balance) error {
	if _, ok := t.st.receipts[b.WRID]; !ok {
		return core.NotFound("warehouse receipt", b.WRID)
	}
	if _, ok := t.st.locations[b.LocationID]; !ok {
		return core.NotFound("storage location", b.LocationID)
	}
	for _, other := range t.st.balances {
		if other.WRID != b.WRID {
			continue
		}
		if !t.store.looseBalances || other.LocationID == b.LocationID {
			return core.Conflict("warehouse receipt %d already has an inventory balance", b.WRID)
		}
	}
	now := t.store.now()
	b.ID = t.st.nextID()
	b.CreatedAt, b.UpdatedAt = now, now
	t.st.balances[b.ID] = *b
	return nil
}

func (t *tx) MoveBalance(_ context.Context, b *core.Balance) error {
	cur, ok := t.st.balances[b.ID]
	if !ok {
		return core.NotFound("inventory balance", b.ID)
	}
	cur.LocationID = b.LocationID
	cur.WarehouseID = b.WarehouseID
	cur.UpdatedAt = t.store.now()
	t.st.balances[b.ID] = cur
	*b = cur
	return nil
}

func (t *tx) DeleteBalances(_ context.Context, ids []int64) error {
	for _, id := range ids {
		if _, ok := t.st.balances[id]; !ok {
			return core.NotFound("inventory balance", id)
		}
		delete(t.st.balances, id)
	}
	return nil
}

func (t *tx) InsertTransaction(_ context.Context, txn *core.Transaction) error {
	txn.ID = t.st.nextID()
	lines := make([]core.TransactionLine, len(txn.Lines))
	for i, l := range txn.Lines {
		if _, ok := t.st.receipts[l.WRID]; !ok {
			return core.NotFound("warehouse receipt", l.WRID)
		}
		l.ID = t.st.nextID()
		l.TransactionID = txn.ID
		lines[i] = l
	}
	txn.Lines = lines
	stored := *txn
	stored.Lines = slices.Clone(lines)
	t.st.txns = append(t.st.txns, stored)
	return nil
}

func (t *tx) InsertRepackOperation(_ context.Context, op *core.RepackOperation) error {
	op.ID = t.st.nextID()
	t.st.ops[op.ID] = *op
	return nil
}

func (t *tx) InsertRepackLinks(_ context.Context, links []core.RepackLink) error {
	for i := range links {
		l := &links[i]
		if l.InputWRID == l.OutputWRID {
			return fmt.Errorf("repack link input and output must differ (WR %d)", l.InputWRID)
		}
		for _, other := range t.st.links {
			if other.RepackOperationID == l.RepackOperationID && other.InputWRID == l.InputWRID {
				return core.Conflict("WR %d is already an input of repack operation %d", l.InputWRID, l.RepackOperationID)
			}
		}
		l.ID = t.st.nextID()
		t.st.links = append(t.st.links, *l)
	}
	return nil
}

func (t *tx) InsertShipment(_ context.Context, s *core.Shipment) error {
	for _, other := range t.st.shipments {
		if other.ShipmentNumber == s.ShipmentNumber {
			return core.Conflict("shipment number %s already exists", s.ShipmentNumber)
		}
	}
	now := t.store.now()
	s.ID = t.st.nextID()
	s.CreatedAt, s.UpdatedAt = now, now
	t.st.shipments[s.ID] = *s
	return nil
}

func (t *tx) UpdateShipment(_ context.Context, s *core.Shipment) error {
	if _, ok := t.st.shipments[s.ID]; !ok {
		return core.NotFound("shipment", s.ID)
	}
	s.UpdatedAt = t.store.now()
	t.st.shipments[s.ID] = *s
	return nil
}

func (t *tx) InsertShipmentItems(_ context.Context, items []core.ShipmentItem) error {
	now := t.store.now()
	for i := range items {
		it := &items[i]
		for _, other := range t.st.items {
			if other.ShipmentID == it.ShipmentID && other.WRID == it.WRID {
				return core.Conflict("WR %d is already on shipment %d", it.WRID, it.ShipmentID)
			}
		}
		it.ID = t.st.nextID()
		it.CreatedAt = now
		t.st.items = append(t.st.items, *it)
	}
	return nil
}
