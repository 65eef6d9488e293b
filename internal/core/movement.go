package core

import (
	"context"
	"strconv"

	"go.uber.org/zap"
)

type MoveInput struct {
	WRID         int64
	ToLocationID int64
	// ExpectedFromLocationID, when set, must equal the WR's current location.
	ExpectedFromLocationID *int64
	Actor                  *Actor
	Notes                  string
}

type MoveResult struct {
	Transaction *Transaction
	Balance     *Balance
	// FromLocationID is nil when the move was the WR's first putaway.
	FromLocationID *int64
}

func (s *inventoryService) Move(ctx context.Context, in MoveInput) (*MoveResult, error) {
	if err := requireActor(in.Actor); err != nil {
		return nil, err
	}

	var result *MoveResult
	err := s.store.InTx(ctx, func(tx Tx) error {
		set, err := lockReceipts(ctx, tx, []int64{in.WRID})
		if err != nil {
			return err
		}
		if err := set.requireReceipts([]int64{in.WRID}); err != nil {
			return err
		}
		wr := set.receipts[in.WRID]

		to, err := tx.GetLocation(ctx, in.ToLocationID)
		if err != nil {
			return err
		}
		if !to.IsActive {
			return reject(ErrInvalidState, "location %s is inactive", to.Code)
		}

		if wr.Status != WRStatusActive {
			return reject(ErrInvalidState, "WR %s is %s; only ACTIVE receipts can be moved", wr.WRNumber, wr.Status)
		}
		bal, err := set.balanceOf(s.log, wr)
		if err != nil {
			return err
		}

		if in.ExpectedFromLocationID != nil {
			if bal == nil {
				return reject(ErrPreconditionFailed,
					"WR %s has no current location but from_location %d was supplied",
					wr.WRNumber, *in.ExpectedFromLocationID)
			}
			if bal.LocationID != *in.ExpectedFromLocationID {
				return reject(ErrPreconditionFailed,
					"WR %s is at location %d, not at the supplied from_location %d",
					wr.WRNumber, bal.LocationID, *in.ExpectedFromLocationID)
			}
		}
		if bal != nil && bal.LocationID == to.ID {
			return reject(ErrNoOp, "WR %s is already at location %s", wr.WRNumber, to.Code)
		}

		line := TransactionLine{WRID: wr.ID, ToLocationID: int64Ptr(to.ID), Qty: 1}
		var from *int64
		if bal != nil {
			from = int64Ptr(bal.LocationID)
			line.FromLocationID = from
		}

		txn, err := post(ctx, tx, TransactionDraft{
			ClientID:      wr.ClientID,
			Type:          TxnMove,
			ReferenceType: RefWRMove,
			ReferenceID:   strconv.FormatInt(wr.ID, 10),
			Actor:         in.Actor,
			Notes:         in.Notes,
			Lines:         []TransactionLine{line},
		}, s.now())
		if err != nil {
			return err
		}

		if bal != nil {
			bal.LocationID = to.ID
			bal.WarehouseID = to.WarehouseID
			if err := tx.MoveBalance(ctx, bal); err != nil {
				return err
			}
		} else {
			bal = &Balance{
				ClientID:    wr.ClientID,
				WarehouseID: to.WarehouseID,
				LocationID:  to.ID,
				WRID:        wr.ID,
				OnHandQty:   1,
			}
			if err := tx.InsertBalance(ctx, bal); err != nil {
				return err
			}
		}

		result = &MoveResult{Transaction: txn, Balance: bal, FromLocationID: from}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("wr moved",
		zap.Int64("wr_id", in.WRID),
		zap.Int64p("from_location_id", result.FromLocationID),
		zap.Int64("to_location_id", in.ToLocationID),
		zap.Int64("transaction_id", result.Transaction.ID),
	)
	return result, nil
}
