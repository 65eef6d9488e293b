package core

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// lockedSet is the locked state of a set of WRs within one unit of work.
type lockedSet struct {
	receipts map[int64]*WarehouseReceipt
	balances map[int64][]Balance
}

// lockReceipts locks the WR rows and then the balance rows for ids. Unknown
// ids are simply absent from the result.
func lockReceipts(ctx context.Context, tx Tx, ids []int64) (*lockedSet, error) {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	wrs, err := tx.LockReceipts(ctx, sorted)
	if err != nil {
		return nil, fmt.Errorf("failed to lock warehouse receipts: %w", err)
	}
	balances, err := tx.LockBalances(ctx, sorted)
	if err != nil {
		return nil, fmt.Errorf("failed to lock inventory balances: %w", err)
	}

	set := &lockedSet{
		receipts: make(map[int64]*WarehouseReceipt, len(wrs)),
		balances: make(map[int64][]Balance, len(balances)),
	}
	for i := range wrs {
		set.receipts[wrs[i].ID] = &wrs[i]
	}
	for _, b := range balances {
		set.balances[b.WRID] = append(set.balances[b.WRID], b)
	}
	return set, nil
}

// requireReceipts rejects with ErrNotFound naming every id that has no WR row.
func (s *lockedSet) requireReceipts(ids []int64) error {
	var missing []int64
	for _, id := range ids {
		if _, ok := s.receipts[id]; !ok {
			missing = append(missing, id)
		}
	}
	switch len(missing) {
	case 0:
		return nil
	case 1:
		return NotFound("warehouse receipt", missing[0])
	}
	return reject(ErrNotFound, "warehouse receipts %s not found", formatIDs(missing))
}

// balanceOf returns the single balance of wr, nil when it has none, or
// ErrDataIntegrity when more than one row exists.
func (s *lockedSet) balanceOf(log *zap.Logger, wr *WarehouseReceipt) (*Balance, error) {
	rows := s.balances[wr.ID]
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return &rows[0], nil
	}
	ids := make([]int64, len(rows))
	for i, b := range rows {
		ids[i] = b.ID
	}
	log.Error("multiple active balances for one warehouse receipt; investigate inventory_balances",
		zap.Int64("wr_id", wr.ID),
		zap.String("wr_number", wr.WRNumber),
		zap.Int64s("balance_ids", ids),
	)
	return nil, reject(ErrDataIntegrity, "data integrity error: WR %s has %d active balances", wr.WRNumber, len(rows))
}

// dedupe returns ids without repeats, preserving first-seen order.
func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
