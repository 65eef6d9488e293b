package core

import (
	"context"
	"fmt"
	"time"
)

// TxnType is the closed set of ledger event types.
type TxnType string

const (
	TxnReceive       TxnType = "RECEIVE"
	TxnPutaway       TxnType = "PUTAWAY"
	TxnMove          TxnType = "MOVE"
	TxnRepackConsume TxnType = "REPACK_CONSUME"
	TxnRepackProduce TxnType = "REPACK_PRODUCE"
	TxnShip          TxnType = "SHIP"
	TxnAdjust        TxnType = "ADJUST"
)

// endpointRule says whether a line's from/to location must, may, or must not be set.
type endpointRule int

const (
	endpointForbidden endpointRule = iota
	endpointOptional
	endpointRequired
)

type lineShape struct {
	from endpointRule
	to   endpointRule
}

var lineShapes = map[TxnType]lineShape{
	TxnReceive:       {from: endpointForbidden, to: endpointRequired},
	TxnPutaway:       {from: endpointForbidden, to: endpointRequired},
	TxnMove:          {from: endpointOptional, to: endpointRequired},
	TxnRepackConsume: {from: endpointRequired, to: endpointForbidden},
	TxnRepackProduce: {from: endpointForbidden, to: endpointRequired},
	TxnShip:          {from: endpointRequired, to: endpointForbidden},
	TxnAdjust:        {from: endpointOptional, to: endpointOptional},
}

// Valid reports whether t is a known transaction type.
func (t TxnType) Valid() bool {
	_, ok := lineShapes[t]
	return ok
}

// ParseTxnType converts s into a TxnType.
func ParseTxnType(s string) (TxnType, error) {
	t := TxnType(s)
	if !t.Valid() {
		return "", reject(ErrInvalidArgument, "unknown transaction type %q", s)
	}
	return t, nil
}

func checkEndpoint(rule endpointRule, loc *int64, side string, t TxnType) error {
	switch {
	case rule == endpointRequired && loc == nil:
		return fmt.Errorf("%s line requires a %s location", t, side)
	case rule == endpointForbidden && loc != nil:
		return fmt.Errorf("%s line must not have a %s location", t, side)
	}
	return nil
}

// ValidateLine checks one line against the shape table for t.
func (t TxnType) ValidateLine(l TransactionLine) error {
	shape, ok := lineShapes[t]
	if !ok {
		return fmt.Errorf("unknown transaction type %q", t)
	}
	if err := checkEndpoint(shape.from, l.FromLocationID, "from", t); err != nil {
		return err
	}
	if err := checkEndpoint(shape.to, l.ToLocationID, "to", t); err != nil {
		return err
	}
	if l.FromLocationID == nil && l.ToLocationID == nil {
		return fmt.Errorf("%s line for WR %d has neither from nor to location", t, l.WRID)
	}
	if l.FromLocationID != nil && l.ToLocationID != nil && *l.FromLocationID == *l.ToLocationID {
		return fmt.Errorf("%s line for WR %d has identical from and to location %d", t, l.WRID, *l.FromLocationID)
	}
	if l.Qty != 1 {
		return fmt.Errorf("%s line for WR %d has qty %d; whole-WR lines carry qty 1", t, l.WRID, l.Qty)
	}
	return nil
}

// TransactionDraft is the input to NewTransaction.
type TransactionDraft struct {
	ClientID      int64
	Type          TxnType
	ReferenceType string
	ReferenceID   string
	Actor         *Actor
	Notes         string
	Lines         []TransactionLine
}

// NewTransaction builds a ledger transaction and validates every line against
// the shape table for its type. A WR may appear at most once per transaction.
func NewTransaction(d TransactionDraft, at time.Time) (*Transaction, error) {
	if d.Actor == nil {
		return nil, reject(ErrUnauthenticated, "ledger: transaction requires an actor")
	}
	if !d.Type.Valid() {
		return nil, reject(ErrInvalidArgument, "ledger: unknown transaction type %q", d.Type)
	}
	if d.ClientID == 0 {
		return nil, reject(ErrInvalidArgument, "ledger: %s transaction requires a client", d.Type)
	}
	if len(d.Lines) == 0 {
		return nil, reject(ErrInvalidArgument, "ledger: %s transaction requires at least one line", d.Type)
	}

	seen := make(map[int64]bool, len(d.Lines))
	lines := make([]TransactionLine, len(d.Lines))
	for i, l := range d.Lines {
		if seen[l.WRID] {
			return nil, reject(ErrInvalidArgument, "ledger: WR %d appears twice in one %s transaction", l.WRID, d.Type)
		}
		seen[l.WRID] = true
		if err := d.Type.ValidateLine(l); err != nil {
			return nil, reject(ErrInvalidArgument, "ledger: %v", err)
		}
		lines[i] = l
	}

	txn := &Transaction{
		ClientID:        d.ClientID,
		Type:            d.Type,
		PerformedBy:     d.Actor.ID,
		PerformedByName: d.Actor.Username,
		PerformedAt:     at,
		Notes:           d.Notes,
		Lines:           lines,
	}
	if d.ReferenceType != "" {
		txn.ReferenceType = strPtr(d.ReferenceType)
		txn.ReferenceID = strPtr(d.ReferenceID)
	}
	return txn, nil
}

// post validates a draft and appends it to the ledger inside tx.
func post(ctx context.Context, tx Tx, d TransactionDraft, at time.Time) (*Transaction, error) {
	txn, err := NewTransaction(d, at)
	if err != nil {
		return nil, err
	}
	if err := tx.InsertTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to append %s transaction: %w", d.Type, err)
	}
	return txn, nil
}

// entryLine is an inventory entry (nil → to).
func entryLine(wrID, to int64) TransactionLine {
	return TransactionLine{WRID: wrID, ToLocationID: int64Ptr(to), Qty: 1}
}

// exitLine is an inventory exit (from → nil).
func exitLine(wrID, from int64) TransactionLine {
	return TransactionLine{WRID: wrID, FromLocationID: int64Ptr(from), Qty: 1}
}
