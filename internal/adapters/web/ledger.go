package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/carlosf02/acg-propack/internal/app"
)

// ledgerQuery reads the shared ledger filters: type, from, to (RFC 3339 or
// YYYY-MM-DD), wr_id and limit.
func ledgerQuery(r *http.Request, clientID int64) (app.LedgerQuery, error) {
	q := app.LedgerQuery{ClientID: clientID, Type: r.URL.Query().Get("type")}
	var err error
	if q.From, err = parseTimeParam(r, "from"); err != nil {
		return q, err
	}
	if q.To, err = parseTimeParam(r, "to"); err != nil {
		return q, err
	}
	if v := r.URL.Query().Get("wr_id"); v != "" {
		if q.WRID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return q, fmt.Errorf("invalid wr_id %q", v)
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if q.Limit, err = strconv.Atoi(v); err != nil || q.Limit < 0 {
			return q, fmt.Errorf("invalid limit %q", v)
		}
	}
	return q, nil
}

func parseTimeParam(r *http.Request, name string) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: use RFC 3339 or YYYY-MM-DD", name, v)
	}
	return t, nil
}

// apiLedger handles GET /api/clients/{id}/ledger.
func (h *Handler) apiLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	q, err := ledgerQuery(r, id)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	res, err := h.svc.LedgerHistory(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// apiLedgerXLSX handles GET /api/clients/{id}/ledger.xlsx. The workbook is
// buffered so failures can still be reported as JSON.
func (h *Handler) apiLedgerXLSX(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	q, err := ledgerQuery(r, id)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var buf bytes.Buffer
	if err := h.svc.ExportLedger(r.Context(), &buf, q); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ledger-client-%d.xlsx"`, id))
	_, _ = w.Write(buf.Bytes())
}
