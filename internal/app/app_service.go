package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/carlosf02/acg-propack/internal/core"
	"github.com/carlosf02/acg-propack/internal/metrics"
	"github.com/carlosf02/acg-propack/internal/report"
	"go.uber.org/zap"
)

type appService struct {
	inventory core.InventoryService
	shipments core.ShipmentService
	trace     core.TraceService
	reader    core.Reader
	metrics   *metrics.Recorder
	log       *zap.Logger
}

// NewAppService wires the engine services over store. rec may be nil.
func NewAppService(store core.Store, numbers core.NumberGenerator, rec *metrics.Recorder, log *zap.Logger) ApplicationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &appService{
		inventory: core.NewInventoryService(store, numbers, log.Named("inventory")),
		shipments: core.NewShipmentService(store, numbers, log.Named("shipments")),
		trace:     core.NewTraceService(store),
		reader:    store,
		metrics:   rec,
		log:       log,
	}
}

// observe records the outcome of one mutating operation. Rejections are
// logged at Info with their kind; anything else is an Error.
func (s *appService) observe(op string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		kind := core.KindOf(err)
		switch {
		case kind == nil:
			outcome = "error"
			s.log.Error("operation failed", zap.String("operation", op), zap.Error(err))
		default:
			outcome = outcomeLabel(kind)
			s.log.Info("operation rejected",
				zap.String("operation", op), zap.String("kind", outcome), zap.String("reason", err.Error()))
		}
	}
	s.metrics.Observe(op, outcome, started)
}

func outcomeLabel(kind error) string {
	return strings.ReplaceAll(kind.Error(), " ", "_")
}

func (s *appService) ReceiveWR(ctx context.Context, req ReceiveWRRequest) (res *ReceiptResult, err error) {
	defer func(started time.Time) { s.observe("receive", started, err) }(time.Now())

	out, err := s.inventory.Receive(ctx, core.ReceiveInput{
		ClientID:       req.ClientID,
		WRNumber:       strings.TrimSpace(req.WRNumber),
		LocationID:     req.LocationID,
		TrackingNumber: req.TrackingNumber,
		Carrier:        req.Carrier,
		Description:    req.Description,
		Notes:          req.Notes,
		Measurements:   req.MeasurementsInput.toCore(),
		ReceivedAt:     req.ReceivedAt,
		Actor:          req.Actor,
	})
	if err != nil {
		return nil, err
	}
	res = &ReceiptResult{Receipt: out.Receipt}
	if out.Transaction != nil {
		res.TransactionID = &out.Transaction.ID
	}
	if out.Balance != nil {
		res.BalanceID = &out.Balance.ID
	}
	return res, nil
}

func (s *appService) MoveWR(ctx context.Context, req MoveWRRequest) (res *MoveResult, err error) {
	defer func(started time.Time) { s.observe("move", started, err) }(time.Now())

	out, err := s.inventory.Move(ctx, core.MoveInput{
		WRID:                   req.WRID,
		ToLocationID:           req.ToLocationID,
		ExpectedFromLocationID: req.FromLocationID,
		Actor:                  req.Actor,
		Notes:                  req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &MoveResult{
		TransactionID:  out.Transaction.ID,
		WRID:           req.WRID,
		FromLocationID: out.FromLocationID,
		ToLocationID:   out.Balance.LocationID,
		BalanceID:      out.Balance.ID,
	}, nil
}

func (s *appService) Consolidate(ctx context.Context, req ConsolidateRequest) (res *ConsolidateResult, err error) {
	defer func(started time.Time) { s.observe("consolidate", started, err) }(time.Now())

	out, err := s.inventory.Consolidate(ctx, core.ConsolidateInput{
		ClientID:     req.ClientID,
		InputWRIDs:   req.InputWRIDs,
		ToLocationID: req.ToLocationID,
		Output: core.OutputSpec{
			WRNumber:       strings.TrimSpace(req.Output.WRNumber),
			TrackingNumber: req.Output.TrackingNumber,
			Carrier:        req.Output.Carrier,
			Description:    req.Output.Description,
			Notes:          req.Output.Notes,
			Measurements:   req.Output.MeasurementsInput.toCore(),
		},
		Actor: req.Actor,
		Notes: req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &ConsolidateResult{
		RepackOperationID:    out.Operation.ID,
		OutputWRID:           out.OutputWR.ID,
		OutputWRNumber:       out.OutputWR.WRNumber,
		InputWRIDs:           out.InputWRIDs,
		ConsumeTransactionID: out.ConsumeTxn.ID,
		ProduceTransactionID: out.ProduceTxn.ID,
		ToLocationID:         out.ToLocationID,
	}, nil
}

func (s *appService) CancelWR(ctx context.Context, req CancelWRRequest) (res *ReceiptResult, err error) {
	defer func(started time.Time) { s.observe("cancel_receipt", started, err) }(time.Now())

	wr, err := s.inventory.CancelReceipt(ctx, req.WRID, req.Actor, req.Notes)
	if err != nil {
		return nil, err
	}
	return &ReceiptResult{Receipt: wr}, nil
}

func (s *appService) CreateShipment(ctx context.Context, req CreateShipmentRequest) (res *ShipmentResult, err error) {
	defer func(started time.Time) { s.observe("create_shipment", started, err) }(time.Now())

	sh, err := s.shipments.CreateShipment(ctx, core.CreateShipmentInput{
		ClientID:        req.ClientID,
		ShipmentNumber:  strings.TrimSpace(req.ShipmentNumber),
		FromWarehouseID: req.FromWarehouseID,
		Destination:     req.Destination,
		Carrier:         req.Carrier,
		TrackingNumber:  req.TrackingNumber,
		Notes:           req.Notes,
		Actor:           req.Actor,
	})
	if err != nil {
		return nil, err
	}
	return &ShipmentResult{Shipment: sh}, nil
}

func (s *appService) AddShipmentItems(ctx context.Context, req AddShipmentItemsRequest) (res *AddItemsResult, err error) {
	defer func(started time.Time) { s.observe("add_shipment_items", started, err) }(time.Now())

	n, err := s.shipments.AddItems(ctx, req.ShipmentID, req.WRIDs, req.Actor)
	if err != nil {
		return nil, err
	}
	return &AddItemsResult{Count: n}, nil
}

func (s *appService) ShipShipment(ctx context.Context, req ShipShipmentRequest) (res *ShipmentResult, err error) {
	defer func(started time.Time) { s.observe("ship", started, err) }(time.Now())

	sh, err := s.shipments.Ship(ctx, core.ShipInput{
		ShipmentID:     req.ShipmentID,
		Actor:          req.Actor,
		Carrier:        req.Carrier,
		TrackingNumber: req.TrackingNumber,
		ShippedAt:      req.ShippedAt,
		Notes:          req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &ShipmentResult{Shipment: sh}, nil
}

func (s *appService) PackShipment(ctx context.Context, shipmentID int64, actor *core.Actor) (res *ShipmentResult, err error) {
	defer func(started time.Time) { s.observe("pack_shipment", started, err) }(time.Now())

	sh, err := s.shipments.Pack(ctx, shipmentID, actor)
	if err != nil {
		return nil, err
	}
	return &ShipmentResult{Shipment: sh}, nil
}

func (s *appService) CancelShipment(ctx context.Context, shipmentID int64, actor *core.Actor) (res *ShipmentResult, err error) {
	defer func(started time.Time) { s.observe("cancel_shipment", started, err) }(time.Now())

	sh, err := s.shipments.Cancel(ctx, shipmentID, actor)
	if err != nil {
		return nil, err
	}
	return &ShipmentResult{Shipment: sh}, nil
}

func (s *appService) DeliverShipment(ctx context.Context, shipmentID int64, actor *core.Actor) (res *ShipmentResult, err error) {
	defer func(started time.Time) { s.observe("deliver_shipment", started, err) }(time.Now())

	sh, err := s.shipments.MarkDelivered(ctx, shipmentID, actor)
	if err != nil {
		return nil, err
	}
	return &ShipmentResult{Shipment: sh}, nil
}

func (s *appService) TraceReceipt(ctx context.Context, wrID int64) (*core.ReceiptTrace, error) {
	return s.trace.TraceReceipt(ctx, wrID)
}

func (s *appService) TraceShipment(ctx context.Context, shipmentID int64) (*core.ShipmentTrace, error) {
	return s.trace.TraceShipment(ctx, shipmentID)
}

func (s *appService) ledgerFilter(q LedgerQuery) (core.LedgerFilter, error) {
	f := core.LedgerFilter{ClientID: q.ClientID, WRID: q.WRID, From: q.From, To: q.To, Limit: q.Limit}
	if q.Type != "" {
		t, err := core.ParseTxnType(q.Type)
		if err != nil {
			return f, err
		}
		f.Type = t
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return f, &core.RejectionError{Kind: core.ErrInvalidArgument, Message: "ledger range ends before it starts"}
	}
	return f, nil
}

func (s *appService) LedgerHistory(ctx context.Context, q LedgerQuery) (*LedgerResult, error) {
	f, err := s.ledgerFilter(q)
	if err != nil {
		return nil, err
	}
	entries, err := s.reader.LedgerEntries(ctx, f)
	if err != nil {
		return nil, err
	}
	return &LedgerResult{Entries: entries}, nil
}

func (s *appService) ExportLedger(ctx context.Context, w io.Writer, q LedgerQuery) error {
	if q.ClientID != 0 {
		if _, err := s.reader.GetClientByID(ctx, q.ClientID); err != nil {
			return err
		}
	}
	res, err := s.LedgerHistory(ctx, q)
	if err != nil {
		return err
	}
	if err := report.WriteLedgerXLSX(w, res.Entries); err != nil {
		return fmt.Errorf("failed to export ledger: %w", err)
	}
	s.log.Info("ledger exported", zap.Int64("client_id", q.ClientID), zap.Int("rows", len(res.Entries)))
	return nil
}
