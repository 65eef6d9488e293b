package core_test

import (
	"strings"
	"testing"

	"github.com/carlosf02/acg-propack/internal/core"
	"github.com/carlosf02/acg-propack/internal/store/memory"
)

func TestMove_RoundTrip(t *testing.T) {
	f := newFixture(t)
	wr := f.receive(t, f.client.ID, nil)

	// First putaway: no balance yet, no from.
	res, err := f.inv.Move(f.ctx, core.MoveInput{WRID: wr.ID, ToLocationID: f.loc1.ID, Actor: f.actor})
	if err != nil {
		t.Fatalf("putaway: %v", err)
	}
	if res.FromLocationID != nil {
		t.Errorf("first putaway from = %d, want nil", *res.FromLocationID)
	}

	hops := []core.StorageLocation{f.loc2, f.loc1}
	for _, to := range hops {
		if _, err := f.inv.Move(f.ctx, core.MoveInput{WRID: wr.ID, ToLocationID: to.ID, Actor: f.actor}); err != nil {
			t.Fatalf("move to %s: %v", to.Code, err)
		}
	}

	bal := f.balanceOf(t, wr.ID)
	if bal == nil || bal.LocationID != f.loc1.ID {
		t.Fatalf("final balance = %+v, want at LOC-1", bal)
	}
	if n := len(f.store.Balances()); n != 1 {
		t.Errorf("balance rows = %d, want 1", n)
	}

	txns := f.store.Transactions()
	var moves []core.Transaction
	for _, txn := range txns {
		if txn.Type == core.TxnMove {
			moves = append(moves, txn)
		}
	}
	if len(moves) != 3 {
		t.Fatalf("MOVE transactions = %d, want 3", len(moves))
	}
	want := []struct{ from, to *int64 }{
		{nil, &f.loc1.ID},
		{&f.loc1.ID, &f.loc2.ID},
		{&f.loc2.ID, &f.loc1.ID},
	}
	for i, m := range moves {
		if len(m.Lines) != 1 {
			t.Fatalf("move %d has %d lines", i, len(m.Lines))
		}
		l := m.Lines[0]
		if !sameLoc(l.FromLocationID, want[i].from) || !sameLoc(l.ToLocationID, want[i].to) {
			t.Errorf("move %d line = %v -> %v, want %v -> %v", i, l.FromLocationID, l.ToLocationID, want[i].from, want[i].to)
		}
		if m.ReferenceType == nil || *m.ReferenceType != core.RefWRMove {
			t.Errorf("move %d reference type = %v, want WR_MOVE", i, m.ReferenceType)
		}
	}
}

func sameLoc(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func TestMove_StaleFromLocationIsRejectedWithoutSideEffects(t *testing.T) {
	f := newFixture(t)
	wr := f.receive(t, f.client.ID, &f.loc1)
	before := f.snapshot()

	_, err := f.inv.Move(f.ctx, core.MoveInput{
		WRID:                   wr.ID,
		ToLocationID:           f.loc3.ID,
		ExpectedFromLocationID: &f.loc2.ID,
		Actor:                  f.actor,
	})
	assertKind(t, err, core.ErrPreconditionFailed)
	f.assertUnchanged(t, before)
}

func TestMove_Rejections(t *testing.T) {
	f := newFixture(t)
	placed := f.receive(t, f.client.ID, &f.loc1)
	unplaced := f.receive(t, f.client.ID, nil)
	cancelled := f.receive(t, f.client.ID, &f.loc2)
	if _, err := f.inv.CancelReceipt(f.ctx, cancelled.ID, f.actor, ""); err != nil {
		t.Fatalf("CancelReceipt: %v", err)
	}

	tests := []struct {
		name string
		in   core.MoveInput
		kind error
	}{
		{"no actor", core.MoveInput{WRID: placed.ID, ToLocationID: f.loc2.ID}, core.ErrUnauthenticated},
		{"same location", core.MoveInput{WRID: placed.ID, ToLocationID: f.loc1.ID, Actor: f.actor}, core.ErrNoOp},
		{"from given without balance", core.MoveInput{WRID: unplaced.ID, ToLocationID: f.loc1.ID, ExpectedFromLocationID: &f.loc2.ID, Actor: f.actor}, core.ErrPreconditionFailed},
		{"cancelled wr", core.MoveInput{WRID: cancelled.ID, ToLocationID: f.loc1.ID, Actor: f.actor}, core.ErrInvalidState},
		{"unknown wr", core.MoveInput{WRID: 9999, ToLocationID: f.loc1.ID, Actor: f.actor}, core.ErrNotFound},
		{"unknown location", core.MoveInput{WRID: placed.ID, ToLocationID: 9999, Actor: f.actor}, core.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.snapshot()
			_, err := f.inv.Move(f.ctx, tt.in)
			assertKind(t, err, tt.kind)
			f.assertUnchanged(t, before)
		})
	}
}

func TestMove_MatchingFromLocationAcrossWarehouses(t *testing.T) {
	f := newFixture(t)
	wr := f.receive(t, f.client.ID, &f.loc1)

	res, err := f.inv.Move(f.ctx, core.MoveInput{
		WRID:                   wr.ID,
		ToLocationID:           f.loc3.ID,
		ExpectedFromLocationID: &f.loc1.ID,
		Actor:                  f.actor,
		Notes:                  "rebalance",
	})
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if res.Balance.WarehouseID != f.w2.ID || res.Balance.LocationID != f.loc3.ID {
		t.Errorf("balance = %+v, want W2/LOC-3", res.Balance)
	}
	if res.FromLocationID == nil || *res.FromLocationID != f.loc1.ID {
		t.Errorf("from = %v, want LOC-1", res.FromLocationID)
	}
	if res.Transaction.Notes != "rebalance" {
		t.Errorf("notes = %q", res.Transaction.Notes)
	}
}

func TestMove_InactiveDestination(t *testing.T) {
	f := newFixture(t)
	wr := f.receive(t, f.client.ID, &f.loc1)
	if err := f.store.SetLocationActive(f.loc2.ID, false); err != nil {
		t.Fatal(err)
	}
	_, err := f.inv.Move(f.ctx, core.MoveInput{WRID: wr.ID, ToLocationID: f.loc2.ID, Actor: f.actor})
	assertKind(t, err, core.ErrInvalidState)
}

func TestMove_DuplicateBalancesAreDataIntegrityErrors(t *testing.T) {
	f := newFixture(t, memory.WithoutBalanceUniqueness())
	wr := f.receive(t, f.client.ID, &f.loc1)

	err := f.store.InTx(f.ctx, func(tx core.Tx) error {
		return tx.InsertBalance(f.ctx, &core.Balance{
			ClientID: f.client.ID, WarehouseID: f.w1.ID, LocationID: f.loc2.ID, WRID: wr.ID, OnHandQty: 1,
		})
	})
	if err != nil {
		t.Fatalf("seeding duplicate balance: %v", err)
	}

	before := f.snapshot()
	_, err = f.inv.Move(f.ctx, core.MoveInput{WRID: wr.ID, ToLocationID: f.loc3.ID, Actor: f.actor})
	assertKind(t, err, core.ErrDataIntegrity)
	if !strings.Contains(err.Error(), wr.WRNumber) {
		t.Errorf("message %q should name the WR", err.Error())
	}
	f.assertUnchanged(t, before)
}
