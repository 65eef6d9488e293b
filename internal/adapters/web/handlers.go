package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/carlosf02/acg-propack/internal/app"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator"
	"go.uber.org/zap"
)

// Options configures NewHandler.
type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	MaxBodyBytes   int64
	Logger         *zap.Logger
	// Metrics, when set, is served at /metrics.
	Metrics http.Handler
}

// Handler holds the ApplicationService and the request validator.
type Handler struct {
	svc       app.ApplicationService
	validate  *validator.Validate
	jwtSecret string
	log       *zap.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	h := &Handler{
		svc:       svc,
		validate:  validator.New(),
		jwtSecret: opts.JWTSecret,
		log:       log,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(opts.AllowedOrigins))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(maxBody))

		r.Get("/api/auth/me", h.me)

		// Inventory
		r.Post("/api/receipts", h.apiReceive)
		r.Post("/api/receipts/{id}/cancel", h.apiCancelReceipt)
		r.Get("/api/receipts/{id}/trace", h.apiTraceReceipt)
		r.Post("/api/inventory/move", h.apiMove)
		r.Post("/api/repack/consolidate", h.apiConsolidate)

		// Shipments
		r.Post("/api/shipments", h.apiCreateShipment)
		r.Post("/api/shipments/{id}/items", h.apiAddShipmentItems)
		r.Post("/api/shipments/{id}/pack", h.apiPackShipment)
		r.Post("/api/shipments/{id}/ship", h.apiShip)
		r.Post("/api/shipments/{id}/cancel", h.apiCancelShipment)
		r.Post("/api/shipments/{id}/deliver", h.apiDeliverShipment)
		r.Get("/api/shipments/{id}/trace", h.apiTraceShipment)

		// Ledger
		r.Get("/api/clients/{id}/ledger", h.apiLedger)
		r.Get("/api/clients/{id}/ledger.xlsx", h.apiLedgerXLSX)
	})

	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// pathID parses the {id} URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, fmt.Sprintf("invalid id %q", raw), "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
// An empty body decodes as the zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		case errors.Is(err, io.EOF):
			return true
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// decodeAndValidate decodes the body into v and runs struct validation on it.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if !decodeJSON(w, r, v) {
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeError(w, r, validationMessage(err), "VALIDATION_ERROR", http.StatusBadRequest)
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		msgs = append(msgs, msg)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
