package core_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/carlosf02/acg-propack/internal/core"
)

// race runs every op at once and returns their errors.
func race(ops ...func() error) []error {
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, len(ops))
	for i, op := range ops {
		i, op := i, op
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs[i] = op()
		}()
	}
	close(start)
	wg.Wait()
	return errs
}

func countNil(errs []error) int {
	n := 0
	for _, err := range errs {
		if err == nil {
			n++
		}
	}
	return n
}

func TestConcurrentMovesFromSameLocation(t *testing.T) {
	f := newFixture(t)
	wr := f.receive(t, f.client.ID, &f.loc1)

	move := func(to int64) func() error {
		return func() error {
			_, err := f.inv.Move(f.ctx, core.MoveInput{
				WRID: wr.ID, ToLocationID: to, ExpectedFromLocationID: &f.loc1.ID, Actor: f.actor,
			})
			return err
		}
	}
	errs := race(move(f.loc2.ID), move(f.loc3.ID))

	if countNil(errs) != 1 {
		t.Fatalf("errors = %v, want exactly one success", errs)
	}
	for _, err := range errs {
		if err != nil && !errors.Is(err, core.ErrPreconditionFailed) {
			t.Errorf("loser error = %v, want precondition failed", err)
		}
	}
	if n := len(f.store.Balances()); n != 1 {
		t.Errorf("balances = %d, want 1", n)
	}
}

func TestConcurrentShipAndConsolidate(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newFixture(t)
		a := f.receive(t, f.client.ID, &f.loc1)
		b := f.receive(t, f.client.ID, &f.loc1)
		sh := f.newShipment(t, f.client.ID, nil)
		if _, err := f.ship.AddItems(f.ctx, sh.ID, []int64{a.ID}, f.actor); err != nil {
			t.Fatal(err)
		}

		errs := race(
			func() error {
				_, err := f.ship.Ship(f.ctx, core.ShipInput{ShipmentID: sh.ID, Actor: f.actor})
				return err
			},
			func() error {
				_, err := f.inv.Consolidate(f.ctx, core.ConsolidateInput{
					ClientID: f.client.ID, InputWRIDs: []int64{a.ID, b.ID}, ToLocationID: f.loc2.ID, Actor: f.actor,
				})
				return err
			},
		)
		if countNil(errs) != 1 {
			t.Fatalf("round %d: errors = %v, want exactly one success", i, errs)
		}
		for _, err := range errs {
			if err != nil && !errors.Is(err, core.ErrInvalidState) {
				t.Errorf("round %d: loser error = %v, want invalid state", i, err)
			}
		}
		if got := f.balanceOf(t, a.ID); got != nil {
			t.Errorf("round %d: WR a still has balance %+v", i, got)
		}
	}
}

func TestDisjointMovesAllSucceed(t *testing.T) {
	f := newFixture(t)
	var ops []func() error
	for i := 0; i < 10; i++ {
		wr := f.receive(t, f.client.ID, &f.loc1)
		ops = append(ops, func() error {
			_, err := f.inv.Move(f.ctx, core.MoveInput{WRID: wr.ID, ToLocationID: f.loc2.ID, Actor: f.actor})
			return err
		})
	}
	errs := race(ops...)
	if countNil(errs) != len(ops) {
		t.Fatalf("errors = %v, want all to succeed", errs)
	}
	for _, b := range f.store.Balances() {
		if b.LocationID != f.loc2.ID {
			t.Errorf("balance %d at %d, want LOC-2", b.ID, b.LocationID)
		}
	}
}
