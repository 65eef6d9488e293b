package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// OutputSpec describes the WR produced by a consolidation.
type OutputSpec struct {
	WRNumber       string // generated when empty
	TrackingNumber *string
	Carrier        string
	Description    string
	Notes          string
	Measurements
}

type ConsolidateInput struct {
	ClientID     int64
	InputWRIDs   []int64
	ToLocationID int64
	Output       OutputSpec
	Actor        *Actor
	Notes        string
}

type ConsolidateResult struct {
	Operation    *RepackOperation
	OutputWR     *WarehouseReceipt
	InputWRIDs   []int64
	ConsumeTxn   *Transaction
	ProduceTxn   *Transaction
	ToLocationID int64
	OutputBal    *Balance
}

func (s *inventoryService) Consolidate(ctx context.Context, in ConsolidateInput) (*ConsolidateResult, error) {
	if err := requireActor(in.Actor); err != nil {
		return nil, err
	}
	inputs := dedupe(in.InputWRIDs)
	if len(inputs) < 2 {
		return nil, reject(ErrInvalidArgument, "consolidation requires at least 2 distinct input WRs, got %d", len(inputs))
	}
	if in.ClientID == 0 {
		return nil, reject(ErrInvalidArgument, "client is required")
	}
	if err := in.Output.Measurements.Validate(); err != nil {
		return nil, err
	}

	var result *ConsolidateResult
	err := s.store.InTx(ctx, func(tx Tx) error {
		set, err := lockReceipts(ctx, tx, inputs)
		if err != nil {
			return err
		}
		if err := set.requireReceipts(inputs); err != nil {
			return err
		}

		to, err := tx.GetLocation(ctx, in.ToLocationID)
		if err != nil {
			return err
		}
		if !to.IsActive {
			return reject(ErrInvalidState, "location %s is inactive", to.Code)
		}

		for _, id := range inputs {
			wr := set.receipts[id]
			if wr.Status != WRStatusActive {
				return reject(ErrInvalidState, "WR %s is %s; only ACTIVE receipts can be consolidated", wr.WRNumber, wr.Status)
			}
			if wr.ClientID != in.ClientID {
				return reject(ErrOwnershipMismatch, "WR %s does not belong to client %d", wr.WRNumber, in.ClientID)
			}
		}

		balances := make(map[int64]*Balance, len(inputs))
		var missing []int64
		for _, id := range inputs {
			bal, err := set.balanceOf(s.log, set.receipts[id])
			if err != nil {
				return err
			}
			if bal == nil {
				missing = append(missing, id)
				continue
			}
			balances[id] = bal
		}
		if len(missing) > 0 {
			return reject(ErrMissingBalance, "missing active balance for WR IDs: %s", formatIDs(missing))
		}
		for _, id := range inputs {
			if b := balances[id]; b.WarehouseID != to.WarehouseID {
				return reject(ErrWarehouseMismatch,
					"WR %s is in warehouse %d but destination location %s is in warehouse %d",
					set.receipts[id].WRNumber, b.WarehouseID, to.Code, to.WarehouseID)
			}
		}

		now := s.now()
		op := &RepackOperation{
			ClientID:      in.ClientID,
			PerformedBy:   in.Actor.ID,
			PerformedAt:   now,
			OperationType: RepackConsolidate,
			Notes:         in.Notes,
		}
		if err := tx.InsertRepackOperation(ctx, op); err != nil {
			return err
		}
		opRef := strconv.FormatInt(op.ID, 10)

		output := &WarehouseReceipt{
			WRNumber:            strings.TrimSpace(in.Output.WRNumber),
			ClientID:            in.ClientID,
			ReceivedWarehouseID: int64Ptr(to.WarehouseID),
			TrackingNumber:      normalizeTracking(in.Output.TrackingNumber),
			Carrier:             in.Output.Carrier,
			Status:              WRStatusActive,
			Description:         in.Output.Description,
			Notes:               in.Output.Notes,
			Measurements:        in.Output.Measurements,
			ReceivedAt:          now,
		}
		output.Measurements.applyDefaults()
		if output.WRNumber == "" {
			output.WRNumber = s.numbers.NextWRNumber()
		}
		if err := tx.InsertReceipt(ctx, output); err != nil {
			return err
		}

		links := make([]RepackLink, len(inputs))
		updated := make([]WarehouseReceipt, len(inputs))
		consume := make([]TransactionLine, len(inputs))
		balanceIDs := make([]int64, len(inputs))
		for i, id := range inputs {
			wr := set.receipts[id]
			links[i] = RepackLink{RepackOperationID: op.ID, InputWRID: id, OutputWRID: output.ID}
			if err := transitionReceipt(wr, WRStatusInactive); err != nil {
				return err
			}
			wr.ParentWRID = int64Ptr(output.ID)
			updated[i] = *wr
			consume[i] = exitLine(id, balances[id].LocationID)
			balanceIDs[i] = balances[id].ID
		}
		if err := tx.InsertRepackLinks(ctx, links); err != nil {
			return err
		}
		if err := tx.UpdateReceiptStates(ctx, updated); err != nil {
			return err
		}

		consumeTxn, err := post(ctx, tx, TransactionDraft{
			ClientID:      in.ClientID,
			Type:          TxnRepackConsume,
			ReferenceType: RefRepackOp,
			ReferenceID:   opRef,
			Actor:         in.Actor,
			Notes:         fmt.Sprintf("Consumed for consolidation %d", op.ID),
			Lines:         consume,
		}, now)
		if err != nil {
			return err
		}
		if err := tx.DeleteBalances(ctx, balanceIDs); err != nil {
			return err
		}

		produceTxn, err := post(ctx, tx, TransactionDraft{
			ClientID:      in.ClientID,
			Type:          TxnRepackProduce,
			ReferenceType: RefRepackOp,
			ReferenceID:   opRef,
			Actor:         in.Actor,
			Notes:         fmt.Sprintf("Produced from consolidation %d", op.ID),
			Lines:         []TransactionLine{entryLine(output.ID, to.ID)},
		}, now)
		if err != nil {
			return err
		}
		outBal := &Balance{
			ClientID:    in.ClientID,
			WarehouseID: to.WarehouseID,
			LocationID:  to.ID,
			WRID:        output.ID,
			OnHandQty:   1,
		}
		if err := tx.InsertBalance(ctx, outBal); err != nil {
			return err
		}

		result = &ConsolidateResult{
			Operation:    op,
			OutputWR:     output,
			InputWRIDs:   inputs,
			ConsumeTxn:   consumeTxn,
			ProduceTxn:   produceTxn,
			ToLocationID: to.ID,
			OutputBal:    outBal,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("wrs consolidated",
		zap.Int64("repack_operation_id", result.Operation.ID),
		zap.Int64("output_wr_id", result.OutputWR.ID),
		zap.Int64s("input_wr_ids", result.InputWRIDs),
	)
	return result, nil
}
