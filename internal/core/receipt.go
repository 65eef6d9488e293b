package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ReceiveInput describes a newly received package.
type ReceiveInput struct {
	ClientID       int64
	WRNumber       string // generated when empty
	LocationID     *int64 // when set, the WR enters inventory here
	TrackingNumber *string
	Carrier        string
	Description    string
	Notes          string
	Measurements
	ReceivedAt *time.Time
	Actor      *Actor
}

type ReceiveResult struct {
	Receipt     *WarehouseReceipt
	Transaction *Transaction // nil when no location was given
	Balance     *Balance     // nil when no location was given
}

// Validate checks that every measurement is non-negative and every unit known.
func (m Measurements) Validate() error {
	fields := []struct {
		name  string
		value *decimal.Decimal
	}{
		{"weight_value", m.WeightValue},
		{"length", m.Length},
		{"width", m.Width},
		{"height", m.Height},
	}
	for _, f := range fields {
		if f.value != nil && f.value.IsNegative() {
			return reject(ErrInvalidArgument, "%s must be non-negative, got %s", f.name, f.value.String())
		}
	}
	switch m.WeightUnit {
	case "", WeightLB, WeightKG:
	default:
		return reject(ErrInvalidArgument, "unknown weight unit %q", m.WeightUnit)
	}
	switch m.DimensionUnit {
	case "", DimensionIN, DimensionCM:
	default:
		return reject(ErrInvalidArgument, "unknown dimension unit %q", m.DimensionUnit)
	}
	return nil
}

func (m *Measurements) applyDefaults() {
	if m.WeightUnit == "" {
		m.WeightUnit = WeightLB
	}
	if m.DimensionUnit == "" {
		m.DimensionUnit = DimensionIN
	}
}

// normalizeTracking trims a tracking number; blank becomes nil.
func normalizeTracking(t *string) *string {
	if t == nil {
		return nil
	}
	s := strings.TrimSpace(*t)
	if s == "" {
		return nil
	}
	return &s
}

func (s *inventoryService) Receive(ctx context.Context, in ReceiveInput) (*ReceiveResult, error) {
	if err := requireActor(in.Actor); err != nil {
		return nil, err
	}
	if in.ClientID == 0 {
		return nil, reject(ErrInvalidArgument, "client is required")
	}
	if err := in.Measurements.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	wr := &WarehouseReceipt{
		WRNumber:       strings.TrimSpace(in.WRNumber),
		ClientID:       in.ClientID,
		TrackingNumber: normalizeTracking(in.TrackingNumber),
		Carrier:        in.Carrier,
		Status:         WRStatusActive,
		Description:    in.Description,
		Notes:          in.Notes,
		Measurements:   in.Measurements,
		ReceivedAt:     now,
	}
	wr.Measurements.applyDefaults()
	if in.ReceivedAt != nil {
		wr.ReceivedAt = *in.ReceivedAt
	}
	if wr.WRNumber == "" {
		wr.WRNumber = s.numbers.NextWRNumber()
	}

	result := &ReceiveResult{Receipt: wr}
	err := s.store.InTx(ctx, func(tx Tx) error {
		client, err := tx.GetClient(ctx, in.ClientID)
		if err != nil {
			return err
		}
		if !client.IsActive {
			return reject(ErrInvalidState, "client %s is inactive", client.ClientCode)
		}

		var loc *StorageLocation
		if in.LocationID != nil {
			if loc, err = tx.GetLocation(ctx, *in.LocationID); err != nil {
				return err
			}
			if !loc.IsActive {
				return reject(ErrInvalidState, "location %s is inactive", loc.Code)
			}
			wr.ReceivedWarehouseID = int64Ptr(loc.WarehouseID)
		}

		if err := tx.InsertReceipt(ctx, wr); err != nil {
			return err
		}
		if loc == nil {
			return nil
		}

		txn, err := post(ctx, tx, TransactionDraft{
			ClientID:      wr.ClientID,
			Type:          TxnReceive,
			ReferenceType: RefWRReceive,
			ReferenceID:   strconv.FormatInt(wr.ID, 10),
			Actor:         in.Actor,
			Notes:         fmt.Sprintf("Received %s", wr.WRNumber),
			Lines:         []TransactionLine{entryLine(wr.ID, loc.ID)},
		}, now)
		if err != nil {
			return err
		}
		bal := &Balance{
			ClientID:    wr.ClientID,
			WarehouseID: loc.WarehouseID,
			LocationID:  loc.ID,
			WRID:        wr.ID,
			OnHandQty:   1,
		}
		if err := tx.InsertBalance(ctx, bal); err != nil {
			return err
		}
		result.Transaction = txn
		result.Balance = bal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *inventoryService) CancelReceipt(ctx context.Context, wrID int64, actor *Actor, notes string) (*WarehouseReceipt, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var out *WarehouseReceipt
	err := s.store.InTx(ctx, func(tx Tx) error {
		set, err := lockReceipts(ctx, tx, []int64{wrID})
		if err != nil {
			return err
		}
		if err := set.requireReceipts([]int64{wrID}); err != nil {
			return err
		}
		wr := set.receipts[wrID]
		bal, err := set.balanceOf(s.log, wr)
		if err != nil {
			return err
		}
		if err := transitionReceipt(wr, WRStatusCancelled); err != nil {
			return err
		}

		if bal != nil {
			if notes == "" {
				notes = fmt.Sprintf("Receipt %s cancelled", wr.WRNumber)
			}
			if _, err := post(ctx, tx, TransactionDraft{
				ClientID:      wr.ClientID,
				Type:          TxnAdjust,
				ReferenceType: RefWRCancel,
				ReferenceID:   strconv.FormatInt(wr.ID, 10),
				Actor:         actor,
				Notes:         notes,
				Lines:         []TransactionLine{exitLine(wr.ID, bal.LocationID)},
			}, s.now()); err != nil {
				return err
			}
			if err := tx.DeleteBalances(ctx, []int64{bal.ID}); err != nil {
				return err
			}
		}

		if err := tx.UpdateReceiptStates(ctx, []WarehouseReceipt{*wr}); err != nil {
			return err
		}
		out = wr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
