package web

import (
	"context"
	"net/http"

	"github.com/carlosf02/acg-propack/internal/app"
	"github.com/carlosf02/acg-propack/internal/core"
)

// apiCreateShipment handles POST /api/shipments.
func (h *Handler) apiCreateShipment(w http.ResponseWriter, r *http.Request) {
	var req app.CreateShipmentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	req.Actor = actorFromContext(r.Context())

	res, err := h.svc.CreateShipment(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, res.Shipment)
}

// apiAddShipmentItems handles POST /api/shipments/{id}/items.
func (h *Handler) apiAddShipmentItems(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req app.AddShipmentItemsRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	req.ShipmentID = id
	req.Actor = actorFromContext(r.Context())

	res, err := h.svc.AddShipmentItems(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// apiShip handles POST /api/shipments/{id}/ship.
func (h *Handler) apiShip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req app.ShipShipmentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	req.ShipmentID = id
	req.Actor = actorFromContext(r.Context())

	res, err := h.svc.ShipShipment(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res.Shipment)
}

type shipmentTransition func(ctx context.Context, shipmentID int64, actor *core.Actor) (*app.ShipmentResult, error)

// lifecycle serves the body-less shipment transitions (pack, cancel, deliver).
func (h *Handler) lifecycle(fn shipmentTransition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		res, err := fn(r.Context(), id, actorFromContext(r.Context()))
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, res.Shipment)
	}
}

func (h *Handler) apiPackShipment(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(h.svc.PackShipment)(w, r)
}

func (h *Handler) apiCancelShipment(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(h.svc.CancelShipment)(w, r)
}

func (h *Handler) apiDeliverShipment(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(h.svc.DeliverShipment)(w, r)
}

// apiTraceShipment handles GET /api/shipments/{id}/trace.
func (h *Handler) apiTraceShipment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	trace, err := h.svc.TraceShipment(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, trace)
}
