package core_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/carlosf02/acg-propack/internal/core"
	"github.com/carlosf02/acg-propack/internal/store/memory"
)

type seqNumbers struct {
	mu sync.Mutex
	n  int
}

func (s *seqNumbers) next(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%04d", prefix, s.n)
}

func (s *seqNumbers) NextWRNumber() string       { return s.next("WR") }
func (s *seqNumbers) NextShipmentNumber() string { return s.next("SHP") }

// fixture is two warehouses: W1 with LOC-1 and LOC-2, W2 with LOC-3.
type fixture struct {
	store   *memory.Store
	inv     core.InventoryService
	ship    core.ShipmentService
	trace   core.TraceService
	actor   *core.Actor
	client  core.Client
	other   core.Client
	w1, w2  core.Warehouse
	loc1    core.StorageLocation
	loc2    core.StorageLocation
	loc3    core.StorageLocation
	ctx     context.Context
	numbers *seqNumbers
}

func newFixture(t *testing.T, opts ...memory.Option) *fixture {
	t.Helper()
	st := memory.New(opts...)
	numbers := &seqNumbers{}
	f := &fixture{
		store:   st,
		inv:     core.NewInventoryService(st, numbers, nil),
		ship:    core.NewShipmentService(st, numbers, nil),
		trace:   core.NewTraceService(st),
		actor:   &core.Actor{ID: 1, Username: "operator"},
		ctx:     context.Background(),
		numbers: numbers,
	}
	f.client = st.AddClient(core.Client{ClientCode: "ACME", Name: "Acme Corp", IsActive: true})
	f.other = st.AddClient(core.Client{ClientCode: "GLOBEX", Name: "Globex", IsActive: true})
	f.w1 = st.AddWarehouse(core.Warehouse{Code: "W1", Name: "Main", IsActive: true})
	f.w2 = st.AddWarehouse(core.Warehouse{Code: "W2", Name: "Overflow", IsActive: true})
	f.loc1 = f.mustLocation(t, f.w1.ID, "LOC-1")
	f.loc2 = f.mustLocation(t, f.w1.ID, "LOC-2")
	f.loc3 = f.mustLocation(t, f.w2.ID, "LOC-3")
	return f
}

func (f *fixture) mustLocation(t *testing.T, warehouseID int64, code string) core.StorageLocation {
	t.Helper()
	loc, err := f.store.AddLocation(core.StorageLocation{
		WarehouseID:  warehouseID,
		Code:         code,
		LocationType: core.LocationStorage,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("AddLocation(%s): %v", code, err)
	}
	return loc
}

// receive creates an ACTIVE WR for client, placed at loc when loc is non-nil.
func (f *fixture) receive(t *testing.T, clientID int64, loc *core.StorageLocation) *core.WarehouseReceipt {
	t.Helper()
	in := core.ReceiveInput{ClientID: clientID, Actor: f.actor}
	if loc != nil {
		in.LocationID = &loc.ID
	}
	res, err := f.inv.Receive(f.ctx, in)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	return res.Receipt
}

func (f *fixture) balanceOf(t *testing.T, wrID int64) *core.Balance {
	t.Helper()
	b, err := f.store.BalanceForWR(f.ctx, wrID)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		t.Fatalf("BalanceForWR(%d): %v", wrID, err)
	}
	return b
}

func (f *fixture) receipt(t *testing.T, id int64) *core.WarehouseReceipt {
	t.Helper()
	wr, err := f.store.GetReceipt(f.ctx, id)
	if err != nil {
		t.Fatalf("GetReceipt(%d): %v", id, err)
	}
	return wr
}

// snapshot captures the mutable projection so tests can assert an operation
// left no trace.
type snapshot struct {
	balances []core.Balance
	txns     int
	links    int
}

func (f *fixture) snapshot() snapshot {
	return snapshot{
		balances: f.store.Balances(),
		txns:     len(f.store.Transactions()),
		links:    len(f.store.RepackLinks()),
	}
}

func (f *fixture) assertUnchanged(t *testing.T, before snapshot) {
	t.Helper()
	after := f.snapshot()
	if after.txns != before.txns {
		t.Errorf("ledger grew from %d to %d transactions", before.txns, after.txns)
	}
	if after.links != before.links {
		t.Errorf("repack links grew from %d to %d", before.links, after.links)
	}
	if len(after.balances) != len(before.balances) {
		t.Fatalf("balance count changed from %d to %d", len(before.balances), len(after.balances))
	}
	for i := range before.balances {
		if after.balances[i].LocationID != before.balances[i].LocationID || after.balances[i].WRID != before.balances[i].WRID {
			t.Errorf("balance %d changed: %+v -> %+v", before.balances[i].ID, before.balances[i], after.balances[i])
		}
	}
}

func assertKind(t *testing.T, err, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v rejection, got nil", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v rejection, got %v", kind, err)
	}
}
