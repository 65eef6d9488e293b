package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// TraceService assembles read-only views of a WR's or shipment's history.
// It takes no locks.
type TraceService interface {
	TraceReceipt(ctx context.Context, wrID int64) (*ReceiptTrace, error)
	TraceShipment(ctx context.Context, shipmentID int64) (*ShipmentTrace, error)
}

type ReceiptTrace struct {
	Receipt           WarehouseReceipt `json:"receipt"`
	Client            *Client          `json:"client_details"`
	ReceivedWarehouse *Warehouse       `json:"received_warehouse_details"`
	CurrentBalance    *BalanceView     `json:"current_balance"`
	RepackLineage     *RepackLineage   `json:"repack_lineage"`
	ShipmentLinkage   *ShipmentSummary `json:"shipment_linkage"`
	InventoryHistory  []LedgerEntry    `json:"inventory_history"`
}

// BalanceView is a Balance with its location and warehouse codes resolved.
type BalanceView struct {
	Balance
	LocationCode  string `json:"location_code"`
	WarehouseCode string `json:"warehouse_code"`
}

type WRSummary struct {
	ID       int64    `json:"id"`
	WRNumber string   `json:"wr_number"`
	Status   WRStatus `json:"status"`
}

type RepackSummary struct {
	ID            int64               `json:"id"`
	OperationType RepackOperationType `json:"operation_type"`
	PerformedAt   time.Time           `json:"performed_at"`
}

type RepackLineage struct {
	ConsolidatedFrom []WRSummary    `json:"consolidated_from,omitempty"`
	ConsolidatedInto *WRSummary     `json:"consolidated_into,omitempty"`
	Operation        *RepackSummary `json:"operation,omitempty"`
}

type ShipmentSummary struct {
	ID             int64          `json:"id"`
	ShipmentNumber string         `json:"shipment_number"`
	Status         ShipmentStatus `json:"status"`
	ShippedAt      *time.Time     `json:"shipped_at"`
}

type ShipmentTrace struct {
	Shipment           Shipment            `json:"shipment"`
	Client             *Client             `json:"client_details"`
	FromWarehouse      *Warehouse          `json:"from_warehouse_details"`
	Items              []WRSummary         `json:"items"`
	TransactionLinkage *TransactionSummary `json:"transaction_linkage"`
}

type TransactionSummary struct {
	TransactionID int64     `json:"transaction_id"`
	PerformedAt   time.Time `json:"performed_at"`
	PerformedBy   string    `json:"performed_by"`
	LineCount     int       `json:"line_count"`
}

type traceService struct {
	reader Reader
}

func NewTraceService(reader Reader) TraceService {
	return &traceService{reader: reader}
}

func summarize(wr WarehouseReceipt) WRSummary {
	return WRSummary{ID: wr.ID, WRNumber: wr.WRNumber, Status: wr.Status}
}

func (s *traceService) TraceReceipt(ctx context.Context, wrID int64) (*ReceiptTrace, error) {
	wr, err := s.reader.GetReceipt(ctx, wrID)
	if err != nil {
		return nil, err
	}
	t := &ReceiptTrace{Receipt: *wr}

	if t.Client, err = s.reader.GetClientByID(ctx, wr.ClientID); err != nil {
		return nil, err
	}
	if wr.ReceivedWarehouseID != nil {
		if t.ReceivedWarehouse, err = s.reader.GetWarehouse(ctx, *wr.ReceivedWarehouseID); err != nil {
			return nil, err
		}
	}

	bal, err := s.reader.BalanceForWR(ctx, wr.ID)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, err
	default:
		view := &BalanceView{Balance: *bal}
		loc, err := s.reader.GetLocationByID(ctx, bal.LocationID)
		if err != nil {
			return nil, err
		}
		wh, err := s.reader.GetWarehouse(ctx, bal.WarehouseID)
		if err != nil {
			return nil, err
		}
		view.LocationCode = loc.Code
		view.WarehouseCode = wh.Code
		t.CurrentBalance = view
	}

	if t.RepackLineage, err = s.lineage(ctx, wr.ID); err != nil {
		return nil, err
	}

	shipments, err := s.reader.ShipmentsForWR(ctx, wr.ID)
	if err != nil {
		return nil, err
	}
	if len(shipments) > 0 {
		sh := shipments[0]
		t.ShipmentLinkage = &ShipmentSummary{
			ID:             sh.ID,
			ShipmentNumber: sh.ShipmentNumber,
			Status:         sh.Status,
			ShippedAt:      sh.ShippedAt,
		}
	}

	if t.InventoryHistory, err = s.reader.LedgerEntries(ctx, LedgerFilter{WRID: wr.ID}); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *traceService) lineage(ctx context.Context, wrID int64) (*RepackLineage, error) {
	var lin RepackLineage

	inputs, err := s.reader.RepackLinksByOutput(ctx, wrID)
	if err != nil {
		return nil, err
	}
	if len(inputs) > 0 {
		ids := make([]int64, len(inputs))
		for i, l := range inputs {
			ids[i] = l.InputWRID
		}
		wrs, err := s.reader.ReceiptsByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, w := range wrs {
			lin.ConsolidatedFrom = append(lin.ConsolidatedFrom, summarize(w))
		}
	}

	outputs, err := s.reader.RepackLinksByInput(ctx, wrID)
	if err != nil {
		return nil, err
	}
	if len(outputs) > 0 {
		link := outputs[0]
		out, err := s.reader.GetReceipt(ctx, link.OutputWRID)
		if err != nil {
			return nil, err
		}
		sum := summarize(*out)
		lin.ConsolidatedInto = &sum
		op, err := s.reader.GetRepackOperation(ctx, link.RepackOperationID)
		if err != nil {
			return nil, err
		}
		lin.Operation = &RepackSummary{ID: op.ID, OperationType: op.OperationType, PerformedAt: op.PerformedAt}
	}

	if lin.ConsolidatedFrom == nil && lin.ConsolidatedInto == nil {
		return nil, nil
	}
	return &lin, nil
}

func (s *traceService) TraceShipment(ctx context.Context, shipmentID int64) (*ShipmentTrace, error) {
	sh, err := s.reader.GetShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	t := &ShipmentTrace{Shipment: *sh, Items: []WRSummary{}}

	if t.Client, err = s.reader.GetClientByID(ctx, sh.ClientID); err != nil {
		return nil, err
	}
	if sh.FromWarehouseID != nil {
		if t.FromWarehouse, err = s.reader.GetWarehouse(ctx, *sh.FromWarehouseID); err != nil {
			return nil, err
		}
	}

	items, err := s.reader.ListShipmentItems(ctx, sh.ID)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		ids := make([]int64, len(items))
		for i, it := range items {
			ids[i] = it.WRID
		}
		wrs, err := s.reader.ReceiptsByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load shipment items: %w", err)
		}
		for _, w := range wrs {
			t.Items = append(t.Items, summarize(w))
		}
	}

	txns, err := s.reader.TransactionsByReference(ctx, RefShipment, strconv.FormatInt(sh.ID, 10))
	if err != nil {
		return nil, err
	}
	if len(txns) > 0 {
		txn := txns[0]
		t.TransactionLinkage = &TransactionSummary{
			TransactionID: txn.ID,
			PerformedAt:   txn.PerformedAt,
			PerformedBy:   txn.PerformedByName,
			LineCount:     len(txn.Lines),
		}
	}
	return t, nil
}
