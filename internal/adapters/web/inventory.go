package web

import (
	"net/http"

	"github.com/carlosf02/acg-propack/internal/app"
)

// apiReceive handles POST /api/receipts.
func (h *Handler) apiReceive(w http.ResponseWriter, r *http.Request) {
	var req app.ReceiveWRRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	req.Actor = actorFromContext(r.Context())

	res, err := h.svc.ReceiveWR(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, res)
}

// apiCancelReceipt handles POST /api/receipts/{id}/cancel.
func (h *Handler) apiCancelReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req app.CancelWRRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	req.WRID = id
	req.Actor = actorFromContext(r.Context())

	res, err := h.svc.CancelWR(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// apiMove handles POST /api/inventory/move.
func (h *Handler) apiMove(w http.ResponseWriter, r *http.Request) {
	var req app.MoveWRRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	req.Actor = actorFromContext(r.Context())

	res, err := h.svc.MoveWR(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// apiConsolidate handles POST /api/repack/consolidate.
func (h *Handler) apiConsolidate(w http.ResponseWriter, r *http.Request) {
	var req app.ConsolidateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	req.Actor = actorFromContext(r.Context())

	res, err := h.svc.Consolidate(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, res)
}

// apiTraceReceipt handles GET /api/receipts/{id}/trace.
func (h *Handler) apiTraceReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	trace, err := h.svc.TraceReceipt(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, trace)
}
