package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/carlosf02/acg-propack/internal/core"
	"github.com/carlosf02/acg-propack/internal/db"
	"github.com/carlosf02/acg-propack/internal/store/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type uuidNumbers struct{}

func (uuidNumbers) NextWRNumber() string       { return "WR-" + uuid.NewString()[:8] }
func (uuidNumbers) NextShipmentNumber() string { return "SHP-" + uuid.NewString()[:8] }

type seeded struct {
	pool   *pgxpool.Pool
	store  *postgres.Store
	inv    core.InventoryService
	ship   core.ShipmentService
	actor  *core.Actor
	client int64
	loc1   int64
	loc2   int64
}

func setupTestDB(t *testing.T) *seeded {
	t.Helper()
	_ = godotenv.Load("../../../.env")

	// Use a dedicated TEST database; the tables are truncated on every run.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	if err := db.Migrate(ctx, dbURL, zap.NewNop()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	pool, err := db.NewPool(ctx, dbURL, 8)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE shipment_items, shipments, repack_links, repack_operations,
			inventory_transaction_lines, inventory_transactions, inventory_balances,
			warehouse_receipts, storage_locations, warehouses, clients RESTART IDENTITY CASCADE;

		INSERT INTO clients (client_code, name) VALUES ('ACME', 'Acme Corp');
		INSERT INTO warehouses (code, name) VALUES ('W1', 'Main');
		INSERT INTO storage_locations (warehouse_id, code) VALUES (1, 'LOC-1'), (1, 'LOC-2');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	st := postgres.New(pool)
	return &seeded{
		pool:   pool,
		store:  st,
		inv:    core.NewInventoryService(st, uuidNumbers{}, nil),
		ship:   core.NewShipmentService(st, uuidNumbers{}, nil),
		actor:  &core.Actor{ID: 1, Username: "operator"},
		client: 1,
		loc1:   1,
		loc2:   2,
	}
}

func (s *seeded) receive(t *testing.T) *core.WarehouseReceipt {
	t.Helper()
	loc := s.loc1
	res, err := s.inv.Receive(context.Background(), core.ReceiveInput{
		ClientID:   s.client,
		LocationID: &loc,
		Actor:      s.actor,
	})
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	return res.Receipt
}

func TestPostgres_MoveRoundTrip(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	wr := s.receive(t)

	for i, to := range []int64{s.loc2, s.loc1} {
		res, err := s.inv.Move(ctx, core.MoveInput{WRID: wr.ID, ToLocationID: to, Actor: s.actor})
		if err != nil {
			t.Fatalf("move %d: %v", i, err)
		}
		if res.Balance.LocationID != to {
			t.Errorf("move %d: balance at %d, want %d", i, res.Balance.LocationID, to)
		}
	}

	bal, err := s.store.BalanceForWR(ctx, wr.ID)
	if err != nil {
		t.Fatalf("BalanceForWR: %v", err)
	}
	if bal.LocationID != s.loc1 {
		t.Errorf("final location = %d, want %d", bal.LocationID, s.loc1)
	}

	entries, err := s.store.LedgerEntries(ctx, core.LedgerFilter{WRID: wr.ID})
	if err != nil {
		t.Fatalf("LedgerEntries: %v", err)
	}
	want := []core.TxnType{core.TxnMove, core.TxnMove, core.TxnReceive}
	if len(entries) != len(want) {
		t.Fatalf("ledger has %d entries, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e.TxnType != want[i] {
			t.Errorf("entry %d = %s, want %s", i, e.TxnType, want[i])
		}
	}
	if entries[0].FromLocationCode == nil || *entries[0].FromLocationCode != "LOC-2" {
		t.Errorf("latest move from = %v, want LOC-2", entries[0].FromLocationCode)
	}
}

func TestPostgres_UniqueConstraintsAreConflicts(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	tracking := "1Z999"
	in := core.ReceiveInput{ClientID: s.client, WRNumber: "WR-DUP", TrackingNumber: &tracking, Actor: s.actor}
	if _, err := s.inv.Receive(ctx, in); err != nil {
		t.Fatalf("first Receive: %v", err)
	}

	tests := []struct {
		name string
		in   core.ReceiveInput
	}{
		{"duplicate number", core.ReceiveInput{ClientID: s.client, WRNumber: "WR-DUP", Actor: s.actor}},
		{"duplicate tracking", core.ReceiveInput{ClientID: s.client, TrackingNumber: &tracking, Actor: s.actor}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.inv.Receive(ctx, tt.in)
			if !errors.Is(err, core.ErrConflict) {
				t.Fatalf("err = %v, want ErrConflict", err)
			}
		})
	}
}

func TestPostgres_LedgerIsAppendOnly(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	s.receive(t)

	if _, err := s.pool.Exec(ctx, `UPDATE inventory_transactions SET notes = 'edited'`); err == nil {
		t.Error("UPDATE on inventory_transactions should be rejected")
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM inventory_transaction_lines`); err == nil {
		t.Error("DELETE on inventory_transaction_lines should be rejected")
	}
}

func TestPostgres_ConcurrentMovesSerialize(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	wr := s.receive(t)
	from := s.loc1

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.inv.Move(ctx, core.MoveInput{
				WRID:                   wr.ID,
				ToLocationID:           s.loc2,
				ExpectedFromLocationID: &from,
				Actor:                  s.actor,
			})
		}(i)
	}
	wg.Wait()

	var ok, stale int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, core.ErrPreconditionFailed), errors.Is(err, core.ErrNoOp):
			stale++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || stale != 1 {
		t.Fatalf("ok=%d stale=%d, want exactly one winner", ok, stale)
	}

	var moves int
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM inventory_transactions WHERE txn_type = 'MOVE'`).Scan(&moves); err != nil {
		t.Fatal(err)
	}
	if moves != 1 {
		t.Errorf("MOVE transactions = %d, want 1", moves)
	}
}

func TestPostgres_ShipmentLifecycle(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	a, b := s.receive(t), s.receive(t)

	sh, err := s.ship.CreateShipment(ctx, core.CreateShipmentInput{ClientID: s.client, Actor: s.actor})
	if err != nil {
		t.Fatalf("CreateShipment: %v", err)
	}
	added, err := s.ship.AddItems(ctx, sh.ID, []int64{a.ID, b.ID, a.ID}, s.actor)
	if err != nil {
		t.Fatalf("AddItems: %v", err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}
	if _, err := s.ship.Ship(ctx, core.ShipInput{ShipmentID: sh.ID, Actor: s.actor}); err != nil {
		t.Fatalf("Ship: %v", err)
	}

	for _, id := range []int64{a.ID, b.ID} {
		if _, err := s.store.BalanceForWR(ctx, id); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("WR %d balance err = %v, want ErrNotFound", id, err)
		}
		wr, err := s.store.GetReceipt(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if wr.Status != core.WRStatusShipped {
			t.Errorf("WR %d status = %s, want SHIPPED", id, wr.Status)
		}
	}
}
