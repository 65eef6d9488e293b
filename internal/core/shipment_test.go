package core_test

import (
	"testing"
	"time"

	"github.com/carlosf02/acg-propack/internal/core"
)

func (f *fixture) newShipment(t *testing.T, clientID int64, from *int64) *core.Shipment {
	t.Helper()
	sh, err := f.ship.CreateShipment(f.ctx, core.CreateShipmentInput{
		ClientID:        clientID,
		FromWarehouseID: from,
		Destination:     core.Destination{Name: "Acme Caracas", City: "Caracas"},
		Notes:           "fragile",
		Actor:           f.actor,
	})
	if err != nil {
		t.Fatalf("CreateShipment: %v", err)
	}
	return sh
}

func TestShip_Conservation(t *testing.T) {
	f := newFixture(t)
	a := f.receive(t, f.client.ID, &f.loc1)
	b := f.receive(t, f.client.ID, &f.loc2)
	staying := f.receive(t, f.client.ID, &f.loc1)
	sh := f.newShipment(t, f.client.ID, &f.w1.ID)

	n, err := f.ship.AddItems(f.ctx, sh.ID, []int64{a.ID, b.ID}, f.actor)
	if err != nil || n != 2 {
		t.Fatalf("AddItems = %d, %v", n, err)
	}

	carrier, tracking, notes := "DHL", "1Z999", "door 4"
	at := time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC)
	got, err := f.ship.Ship(f.ctx, core.ShipInput{
		ShipmentID: sh.ID, Actor: f.actor, Carrier: &carrier, TrackingNumber: &tracking, ShippedAt: &at, Notes: &notes,
	})
	if err != nil {
		t.Fatalf("Ship: %v", err)
	}

	if got.Status != core.ShipmentStatusShipped {
		t.Errorf("status = %s, want SHIPPED", got.Status)
	}
	if got.ShippedAt == nil || !got.ShippedAt.Equal(at) {
		t.Errorf("shipped_at = %v, want %v", got.ShippedAt, at)
	}
	if got.Carrier != "DHL" || got.TrackingNumber != "1Z999" {
		t.Errorf("carrier/tracking = %s/%s", got.Carrier, got.TrackingNumber)
	}
	if got.Notes != "fragile\ndoor 4" {
		t.Errorf("notes = %q, want appended with newline", got.Notes)
	}

	for _, wr := range []*core.WarehouseReceipt{a, b} {
		if s := f.receipt(t, wr.ID).Status; s != core.WRStatusShipped {
			t.Errorf("WR %s status = %s, want SHIPPED", wr.WRNumber, s)
		}
		if f.balanceOf(t, wr.ID) != nil {
			t.Errorf("WR %s still has a balance", wr.WRNumber)
		}
	}
	if f.balanceOf(t, staying.ID) == nil {
		t.Error("unshipped WR lost its balance")
	}

	var ships []core.Transaction
	for _, txn := range f.store.Transactions() {
		if txn.Type == core.TxnShip {
			ships = append(ships, txn)
		}
	}
	if len(ships) != 1 {
		t.Fatalf("SHIP transactions = %d, want 1", len(ships))
	}
	if len(ships[0].Lines) != 2 || ships[0].Notes != "door 4" {
		t.Errorf("ship txn = %d lines, notes %q", len(ships[0].Lines), ships[0].Notes)
	}
	for _, l := range ships[0].Lines {
		if l.ToLocationID != nil || l.FromLocationID == nil {
			t.Errorf("ship line %+v must be an exit", l)
		}
	}
}

func TestShip_DefaultNotesAndTimestamp(t *testing.T) {
	f := newFixture(t)
	wr := f.receive(t, f.client.ID, &f.loc1)
	sh := f.newShipment(t, f.client.ID, nil)
	if _, err := f.ship.AddItems(f.ctx, sh.ID, []int64{wr.ID}, f.actor); err != nil {
		t.Fatal(err)
	}

	got, err := f.ship.Ship(f.ctx, core.ShipInput{ShipmentID: sh.ID, Actor: f.actor})
	if err != nil {
		t.Fatalf("Ship: %v", err)
	}
	if got.ShippedAt == nil {
		t.Error("shipped_at should default to now")
	}
	if got.Notes != "fragile" {
		t.Errorf("notes = %q, want unchanged", got.Notes)
	}
	txns := f.store.Transactions()
	last := txns[len(txns)-1]
	if last.Notes != "Shipped via "+sh.ShipmentNumber {
		t.Errorf("ship txn notes = %q", last.Notes)
	}
}

func TestShip_EmptyShipment(t *testing.T) {
	f := newFixture(t)
	sh := f.newShipment(t, f.client.ID, nil)
	before := f.snapshot()

	_, err := f.ship.Ship(f.ctx, core.ShipInput{ShipmentID: sh.ID, Actor: f.actor})
	assertKind(t, err, core.ErrEmptyShipment)
	f.assertUnchanged(t, before)

	got, _ := f.store.GetShipment(f.ctx, sh.ID)
	if got.Status != core.ShipmentStatusPlanned {
		t.Errorf("status = %s, want PLANNED", got.Status)
	}
}

func TestShip_ItemLeftInventoryAfterAttach(t *testing.T) {
	f := newFixture(t)
	a := f.receive(t, f.client.ID, &f.loc1)
	b := f.receive(t, f.client.ID, &f.loc1)
	c := f.receive(t, f.client.ID, &f.loc1)
	sh := f.newShipment(t, f.client.ID, nil)
	if _, err := f.ship.AddItems(f.ctx, sh.ID, []int64{a.ID}, f.actor); err != nil {
		t.Fatal(err)
	}
	// a is consumed into a new WR while sitting on the shipment.
	if _, err := f.inv.Consolidate(f.ctx, core.ConsolidateInput{
		ClientID: f.client.ID, InputWRIDs: []int64{a.ID, b.ID, c.ID}, ToLocationID: f.loc2.ID, Actor: f.actor,
	}); err != nil {
		t.Fatalf("Consolidate: %v", err)
	}

	before := f.snapshot()
	_, err := f.ship.Ship(f.ctx, core.ShipInput{ShipmentID: sh.ID, Actor: f.actor})
	assertKind(t, err, core.ErrInvalidState)
	f.assertUnchanged(t, before)
}

func TestShip_TwiceIsRejected(t *testing.T) {
	f := newFixture(t)
	wr := f.receive(t, f.client.ID, &f.loc1)
	sh := f.newShipment(t, f.client.ID, nil)
	if _, err := f.ship.AddItems(f.ctx, sh.ID, []int64{wr.ID}, f.actor); err != nil {
		t.Fatal(err)
	}
	if _, err := f.ship.Ship(f.ctx, core.ShipInput{ShipmentID: sh.ID, Actor: f.actor}); err != nil {
		t.Fatal(err)
	}
	_, err := f.ship.Ship(f.ctx, core.ShipInput{ShipmentID: sh.ID, Actor: f.actor})
	assertKind(t, err, core.ErrInvalidState)
}

func TestAddItems_SkipsDuplicates(t *testing.T) {
	f := newFixture(t)
	a := f.receive(t, f.client.ID, &f.loc1)
	b := f.receive(t, f.client.ID, &f.loc1)
	sh := f.newShipment(t, f.client.ID, nil)

	n, err := f.ship.AddItems(f.ctx, sh.ID, []int64{a.ID}, f.actor)
	if err != nil || n != 1 {
		t.Fatalf("first AddItems = %d, %v", n, err)
	}
	n, err = f.ship.AddItems(f.ctx, sh.ID, []int64{a.ID, b.ID, b.ID}, f.actor)
	if err != nil {
		t.Fatalf("second AddItems: %v", err)
	}
	if n != 1 {
		t.Errorf("added = %d, want 1", n)
	}
	n, err = f.ship.AddItems(f.ctx, sh.ID, []int64{a.ID, b.ID}, f.actor)
	if err != nil || n != 0 {
		t.Errorf("third AddItems = %d, %v; want 0, nil", n, err)
	}

	items, err := f.store.ListShipmentItems(f.ctx, sh.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Errorf("items = %d, want 2", len(items))
	}
}

func TestAddItems_Rejections(t *testing.T) {
	f := newFixture(t)
	ok := f.receive(t, f.client.ID, &f.loc1)
	inW2 := f.receive(t, f.client.ID, &f.loc3)
	unplaced := f.receive(t, f.client.ID, nil)
	foreign := f.receive(t, f.other.ID, &f.loc1)
	sh := f.newShipment(t, f.client.ID, &f.w1.ID)
	cancelled := f.newShipment(t, f.client.ID, nil)
	if _, err := f.ship.Cancel(f.ctx, cancelled.ID, f.actor); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		shipmentID int64
		ids        []int64
		actor      *core.Actor
		kind       error
	}{
		{"wrong warehouse", sh.ID, []int64{ok.ID, inW2.ID}, f.actor, core.ErrWarehouseMismatch},
		{"no balance", sh.ID, []int64{unplaced.ID}, f.actor, core.ErrMissingBalance},
		{"unknown wr", sh.ID, []int64{9999}, f.actor, core.ErrMissingBalance},
		{"foreign wr", sh.ID, []int64{foreign.ID}, f.actor, core.ErrOwnershipMismatch},
		{"closed shipment", cancelled.ID, []int64{ok.ID}, f.actor, core.ErrInvalidState},
		{"unknown shipment", 9999, []int64{ok.ID}, f.actor, core.ErrNotFound},
		{"empty request", sh.ID, nil, f.actor, core.ErrInvalidArgument},
		{"no actor", sh.ID, []int64{ok.ID}, nil, core.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ship.AddItems(f.ctx, tt.shipmentID, tt.ids, tt.actor)
			assertKind(t, err, tt.kind)
			items, _ := f.store.ListShipmentItems(f.ctx, sh.ID)
			if len(items) != 0 {
				t.Errorf("items = %d after rejection, want 0", len(items))
			}
		})
	}
}

func TestShipmentLifecycle(t *testing.T) {
	f := newFixture(t)
	wr := f.receive(t, f.client.ID, &f.loc1)
	sh := f.newShipment(t, f.client.ID, nil)
	if sh.Status != core.ShipmentStatusPlanned || sh.ShipmentNumber == "" {
		t.Fatalf("new shipment = %s/%q", sh.Status, sh.ShipmentNumber)
	}

	if _, err := f.ship.MarkDelivered(f.ctx, sh.ID, f.actor); err == nil {
		t.Fatal("PLANNED shipment must not be delivered")
	}
	packed, err := f.ship.Pack(f.ctx, sh.ID, f.actor)
	if err != nil || packed.Status != core.ShipmentStatusPacked {
		t.Fatalf("Pack = %v, %v", packed, err)
	}
	if n, err := f.ship.AddItems(f.ctx, sh.ID, []int64{wr.ID}, f.actor); err != nil || n != 1 {
		t.Fatalf("AddItems on PACKED = %d, %v", n, err)
	}
	if _, err := f.ship.Ship(f.ctx, core.ShipInput{ShipmentID: sh.ID, Actor: f.actor}); err != nil {
		t.Fatalf("Ship: %v", err)
	}
	_, err = f.ship.Cancel(f.ctx, sh.ID, f.actor)
	assertKind(t, err, core.ErrInvalidState)

	delivered, err := f.ship.MarkDelivered(f.ctx, sh.ID, f.actor)
	if err != nil || delivered.Status != core.ShipmentStatusDelivered {
		t.Fatalf("MarkDelivered = %v, %v", delivered, err)
	}
}

func TestCreateShipment_DuplicateNumberConflicts(t *testing.T) {
	f := newFixture(t)
	in := core.CreateShipmentInput{ClientID: f.client.ID, ShipmentNumber: "SHP-1", Actor: f.actor}
	if _, err := f.ship.CreateShipment(f.ctx, in); err != nil {
		t.Fatal(err)
	}
	_, err := f.ship.CreateShipment(f.ctx, in)
	assertKind(t, err, core.ErrConflict)
}
