package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/carlosf02/acg-propack/internal/core"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// rejectionStatus maps a rejection kind to its HTTP status and error code.
var rejectionStatus = []struct {
	kind   error
	status int
	code   string
}{
	{core.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHORIZED"},
	{core.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{core.ErrConflict, http.StatusConflict, "CONFLICT"},
	{core.ErrDataIntegrity, http.StatusInternalServerError, "DATA_INTEGRITY"},
	{core.ErrInvalidState, http.StatusBadRequest, "INVALID_STATE"},
	{core.ErrInvalidArgument, http.StatusBadRequest, "INVALID_ARGUMENT"},
	{core.ErrPreconditionFailed, http.StatusBadRequest, "PRECONDITION_FAILED"},
	{core.ErrNoOp, http.StatusBadRequest, "NO_OP"},
	{core.ErrMissingBalance, http.StatusBadRequest, "MISSING_BALANCE"},
	{core.ErrOwnershipMismatch, http.StatusBadRequest, "OWNERSHIP_MISMATCH"},
	{core.ErrWarehouseMismatch, http.StatusBadRequest, "WAREHOUSE_MISMATCH"},
	{core.ErrEmptyShipment, http.StatusBadRequest, "EMPTY_SHIPMENT"},
}

// writeServiceError maps an engine error to a response. Errors that are not
// rejections are logged and reported as a bare 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range rejectionStatus {
		if errors.Is(err, m.kind) {
			writeError(w, r, err.Error(), m.code, m.status)
			return
		}
	}
	h.log.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", requestIDFromContext(r.Context())),
		zap.Error(err))
	writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
}
