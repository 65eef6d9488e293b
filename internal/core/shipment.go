package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ShipmentService plans and dispatches outbound shipments.
type ShipmentService interface {
	CreateShipment(ctx context.Context, in CreateShipmentInput) (*Shipment, error)
	// AddItems attaches WRs to an open shipment and returns how many were added.
	// WRs already on the shipment are skipped.
	AddItems(ctx context.Context, shipmentID int64, wrIDs []int64, actor *Actor) (int, error)
	// Ship dispatches every item, removing the WRs from inventory.
	Ship(ctx context.Context, in ShipInput) (*Shipment, error)
	Pack(ctx context.Context, shipmentID int64, actor *Actor) (*Shipment, error)
	Cancel(ctx context.Context, shipmentID int64, actor *Actor) (*Shipment, error)
	MarkDelivered(ctx context.Context, shipmentID int64, actor *Actor) (*Shipment, error)
}

type CreateShipmentInput struct {
	ClientID        int64
	ShipmentNumber  string // generated when empty
	FromWarehouseID *int64
	Destination
	Carrier        string
	TrackingNumber string
	Notes          string
	Actor          *Actor
}

type ShipInput struct {
	ShipmentID     int64
	Actor          *Actor
	Carrier        *string
	TrackingNumber *string
	ShippedAt      *time.Time
	Notes          *string
}

type shipmentService struct {
	store   Store
	numbers NumberGenerator
	log     *zap.Logger
	now     func() time.Time
}

// NewShipmentService constructs a ShipmentService over store.
func NewShipmentService(store Store, numbers NumberGenerator, log *zap.Logger) ShipmentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &shipmentService{store: store, numbers: numbers, log: log, now: time.Now}
}

func (s *shipmentService) CreateShipment(ctx context.Context, in CreateShipmentInput) (*Shipment, error) {
	if err := requireActor(in.Actor); err != nil {
		return nil, err
	}
	if in.ClientID == 0 {
		return nil, reject(ErrInvalidArgument, "client is required")
	}

	sh := &Shipment{
		ShipmentNumber:  strings.TrimSpace(in.ShipmentNumber),
		ClientID:        in.ClientID,
		FromWarehouseID: in.FromWarehouseID,
		Status:          ShipmentStatusPlanned,
		Destination:     in.Destination,
		Carrier:         in.Carrier,
		TrackingNumber:  in.TrackingNumber,
		Notes:           in.Notes,
	}
	if sh.ShipmentNumber == "" {
		sh.ShipmentNumber = s.numbers.NextShipmentNumber()
	}

	err := s.store.InTx(ctx, func(tx Tx) error {
		client, err := tx.GetClient(ctx, in.ClientID)
		if err != nil {
			return err
		}
		if !client.IsActive {
			return reject(ErrInvalidState, "client %s is inactive", client.ClientCode)
		}
		return tx.InsertShipment(ctx, sh)
	})
	if err != nil {
		return nil, err
	}
	return sh, nil
}

func (s *shipmentService) AddItems(ctx context.Context, shipmentID int64, wrIDs []int64, actor *Actor) (int, error) {
	if err := requireActor(actor); err != nil {
		return 0, err
	}
	if len(wrIDs) == 0 {
		return 0, reject(ErrInvalidArgument, "at least one WR id is required")
	}

	added := 0
	err := s.store.InTx(ctx, func(tx Tx) error {
		sh, err := tx.LockShipment(ctx, shipmentID)
		if err != nil {
			return err
		}
		if !sh.Status.Open() {
			return reject(ErrInvalidState, "cannot add items to shipment %s in status %s", sh.ShipmentNumber, sh.Status)
		}

		existing, err := tx.ShipmentItems(ctx, sh.ID)
		if err != nil {
			return err
		}
		attached := make(map[int64]bool, len(existing))
		for _, it := range existing {
			attached[it.WRID] = true
		}
		var candidates []int64
		for _, id := range dedupe(wrIDs) {
			if !attached[id] {
				candidates = append(candidates, id)
			}
		}
		if len(candidates) == 0 {
			return nil
		}

		set, err := lockReceipts(ctx, tx, candidates)
		if err != nil {
			return err
		}
		items := make([]ShipmentItem, 0, len(candidates))
		for _, id := range candidates {
			wr, ok := set.receipts[id]
			if !ok || len(set.balances[id]) == 0 {
				return reject(ErrMissingBalance, "WR %d has no active inventory balance", id)
			}
			bal, err := set.balanceOf(s.log, wr)
			if err != nil {
				return err
			}
			if wr.Status != WRStatusActive {
				return reject(ErrInvalidState, "WR %s is %s; only ACTIVE receipts can be shipped", wr.WRNumber, wr.Status)
			}
			if wr.ClientID != sh.ClientID {
				return reject(ErrOwnershipMismatch, "WR %s does not belong to the shipment's client", wr.WRNumber)
			}
			if sh.FromWarehouseID != nil && bal.WarehouseID != *sh.FromWarehouseID {
				return reject(ErrWarehouseMismatch,
					"WR %s is in warehouse %d; shipment %s ships from warehouse %d",
					wr.WRNumber, bal.WarehouseID, sh.ShipmentNumber, *sh.FromWarehouseID)
			}
			items = append(items, ShipmentItem{ShipmentID: sh.ID, WRID: id})
		}

		if err := tx.InsertShipmentItems(ctx, items); err != nil {
			return err
		}
		added = len(items)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func (s *shipmentService) Ship(ctx context.Context, in ShipInput) (*Shipment, error) {
	if err := requireActor(in.Actor); err != nil {
		return nil, err
	}

	var out *Shipment
	err := s.store.InTx(ctx, func(tx Tx) error {
		sh, err := tx.LockShipment(ctx, in.ShipmentID)
		if err != nil {
			return err
		}
		if !sh.Status.Open() {
			return reject(ErrInvalidState, "shipment %s is %s; only PLANNED or PACKED shipments can be shipped", sh.ShipmentNumber, sh.Status)
		}
		items, err := tx.ShipmentItems(ctx, sh.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return reject(ErrEmptyShipment, "shipment %s has no items", sh.ShipmentNumber)
		}

		ids := make([]int64, len(items))
		for i, it := range items {
			ids[i] = it.WRID
		}
		set, err := lockReceipts(ctx, tx, ids)
		if err != nil {
			return err
		}
		if err := set.requireReceipts(ids); err != nil {
			return err
		}

		lines := make([]TransactionLine, len(ids))
		updated := make([]WarehouseReceipt, len(ids))
		balanceIDs := make([]int64, len(ids))
		for i, id := range ids {
			wr := set.receipts[id]
			if wr.Status != WRStatusActive {
				return reject(ErrInvalidState, "WR %s is %s; only ACTIVE receipts can be shipped", wr.WRNumber, wr.Status)
			}
			if wr.ClientID != sh.ClientID {
				return reject(ErrOwnershipMismatch, "WR %s does not belong to the shipment's client", wr.WRNumber)
			}
			bal, err := set.balanceOf(s.log, wr)
			if err != nil {
				return err
			}
			if bal == nil {
				return reject(ErrMissingBalance, "WR %s has no active inventory balance", wr.WRNumber)
			}
			if err := transitionReceipt(wr, WRStatusShipped); err != nil {
				return err
			}
			lines[i] = exitLine(id, bal.LocationID)
			updated[i] = *wr
			balanceIDs[i] = bal.ID
		}

		now := s.now()
		notes := fmt.Sprintf("Shipped via %s", sh.ShipmentNumber)
		if in.Notes != nil && *in.Notes != "" {
			notes = *in.Notes
		}
		if _, err := post(ctx, tx, TransactionDraft{
			ClientID:      sh.ClientID,
			Type:          TxnShip,
			ReferenceType: RefShipment,
			ReferenceID:   strconv.FormatInt(sh.ID, 10),
			Actor:         in.Actor,
			Notes:         notes,
			Lines:         lines,
		}, now); err != nil {
			return err
		}
		if err := tx.UpdateReceiptStates(ctx, updated); err != nil {
			return err
		}
		if err := tx.DeleteBalances(ctx, balanceIDs); err != nil {
			return err
		}

		if err := transitionShipment(sh, ShipmentStatusShipped); err != nil {
			return err
		}
		shippedAt := now
		if in.ShippedAt != nil {
			shippedAt = *in.ShippedAt
		}
		sh.ShippedAt = &shippedAt
		if in.Carrier != nil {
			sh.Carrier = *in.Carrier
		}
		if in.TrackingNumber != nil {
			sh.TrackingNumber = *in.TrackingNumber
		}
		if in.Notes != nil && *in.Notes != "" {
			sh.Notes = appendNote(sh.Notes, *in.Notes)
		}
		if err := tx.UpdateShipment(ctx, sh); err != nil {
			return err
		}
		out = sh
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("shipment dispatched",
		zap.Int64("shipment_id", out.ID),
		zap.String("shipment_number", out.ShipmentNumber),
	)
	return out, nil
}

// appendNote joins existing and next with a newline when both are non-empty.
func appendNote(existing, next string) string {
	if existing == "" {
		return next
	}
	return existing + "\n" + next
}

func (s *shipmentService) Pack(ctx context.Context, shipmentID int64, actor *Actor) (*Shipment, error) {
	return s.transition(ctx, shipmentID, actor, ShipmentStatusPacked)
}

// Cancel abandons an open shipment. Its WRs stay in inventory.
func (s *shipmentService) Cancel(ctx context.Context, shipmentID int64, actor *Actor) (*Shipment, error) {
	return s.transition(ctx, shipmentID, actor, ShipmentStatusCancelled)
}

func (s *shipmentService) MarkDelivered(ctx context.Context, shipmentID int64, actor *Actor) (*Shipment, error) {
	return s.transition(ctx, shipmentID, actor, ShipmentStatusDelivered)
}

func (s *shipmentService) transition(ctx context.Context, shipmentID int64, actor *Actor, next ShipmentStatus) (*Shipment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var out *Shipment
	err := s.store.InTx(ctx, func(tx Tx) error {
		sh, err := tx.LockShipment(ctx, shipmentID)
		if err != nil {
			return err
		}
		if err := transitionShipment(sh, next); err != nil {
			return err
		}
		if err := tx.UpdateShipment(ctx, sh); err != nil {
			return err
		}
		out = sh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
