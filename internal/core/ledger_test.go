package core_test

import (
	"errors"
	"testing"
	"time"

	"github.com/carlosf02/acg-propack/internal/core"
)

func ptr(v int64) *int64 { return &v }

func TestNewTransaction_LineShapes(t *testing.T) {
	actor := &core.Actor{ID: 7, Username: "clerk"}
	tests := []struct {
		name    string
		typ     core.TxnType
		from    *int64
		to      *int64
		wantErr bool
	}{
		{"receive entry", core.TxnReceive, nil, ptr(1), false},
		{"receive with from", core.TxnReceive, ptr(1), ptr(2), true},
		{"putaway entry", core.TxnPutaway, nil, ptr(1), false},
		{"move relocation", core.TxnMove, ptr(1), ptr(2), false},
		{"move first putaway", core.TxnMove, nil, ptr(2), false},
		{"move without to", core.TxnMove, ptr(1), nil, true},
		{"move same location", core.TxnMove, ptr(3), ptr(3), true},
		{"consume exit", core.TxnRepackConsume, ptr(1), nil, false},
		{"consume with to", core.TxnRepackConsume, ptr(1), ptr(2), true},
		{"produce entry", core.TxnRepackProduce, nil, ptr(4), false},
		{"produce exit", core.TxnRepackProduce, ptr(4), nil, true},
		{"ship exit", core.TxnShip, ptr(1), nil, false},
		{"ship without from", core.TxnShip, nil, nil, true},
		{"adjust exit", core.TxnAdjust, ptr(1), nil, false},
		{"adjust entry", core.TxnAdjust, nil, ptr(1), false},
		{"adjust empty", core.TxnAdjust, nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := core.NewTransaction(core.TransactionDraft{
				ClientID: 1,
				Type:     tt.typ,
				Actor:    actor,
				Lines:    []core.TransactionLine{{WRID: 10, FromLocationID: tt.from, ToLocationID: tt.to, Qty: 1}},
			}, time.Now())
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidArgument) {
					t.Fatalf("expected invalid argument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewTransaction_Rejections(t *testing.T) {
	actor := &core.Actor{ID: 7, Username: "clerk"}
	line := core.TransactionLine{WRID: 10, ToLocationID: ptr(1), Qty: 1}

	tests := []struct {
		name  string
		draft core.TransactionDraft
		kind  error
	}{
		{"no actor", core.TransactionDraft{ClientID: 1, Type: core.TxnReceive, Lines: []core.TransactionLine{line}}, core.ErrUnauthenticated},
		{"unknown type", core.TransactionDraft{ClientID: 1, Type: "TELEPORT", Actor: actor, Lines: []core.TransactionLine{line}}, core.ErrInvalidArgument},
		{"no client", core.TransactionDraft{Type: core.TxnReceive, Actor: actor, Lines: []core.TransactionLine{line}}, core.ErrInvalidArgument},
		{"no lines", core.TransactionDraft{ClientID: 1, Type: core.TxnReceive, Actor: actor}, core.ErrInvalidArgument},
		{"duplicate wr", core.TransactionDraft{ClientID: 1, Type: core.TxnReceive, Actor: actor, Lines: []core.TransactionLine{line, line}}, core.ErrInvalidArgument},
		{"fractional qty", core.TransactionDraft{ClientID: 1, Type: core.TxnReceive, Actor: actor,
			Lines: []core.TransactionLine{{WRID: 10, ToLocationID: ptr(1), Qty: 2}}}, core.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := core.NewTransaction(tt.draft, time.Now())
			assertKind(t, err, tt.kind)
		})
	}
}

func TestNewTransaction_CarriesReferenceAndActor(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	txn, err := core.NewTransaction(core.TransactionDraft{
		ClientID:      3,
		Type:          core.TxnShip,
		ReferenceType: core.RefShipment,
		ReferenceID:   "42",
		Actor:         &core.Actor{ID: 9, Username: "dispatcher"},
		Notes:         "Shipped via SHP-1",
		Lines:         []core.TransactionLine{{WRID: 5, FromLocationID: ptr(2), Qty: 1}},
	}, at)
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	if txn.ReferenceType == nil || *txn.ReferenceType != core.RefShipment || *txn.ReferenceID != "42" {
		t.Errorf("reference = %v/%v, want SHIPMENT/42", txn.ReferenceType, txn.ReferenceID)
	}
	if txn.PerformedBy != 9 || txn.PerformedByName != "dispatcher" {
		t.Errorf("performed by = %d/%s", txn.PerformedBy, txn.PerformedByName)
	}
	if !txn.PerformedAt.Equal(at) {
		t.Errorf("performed at = %v, want %v", txn.PerformedAt, at)
	}
}

func TestParseTxnType(t *testing.T) {
	if got, err := core.ParseTxnType("REPACK_CONSUME"); err != nil || got != core.TxnRepackConsume {
		t.Errorf("ParseTxnType(REPACK_CONSUME) = %q, %v", got, err)
	}
	if _, err := core.ParseTxnType("repack_consume"); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("lowercase type should be rejected, got %v", err)
	}
}
