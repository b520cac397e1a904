package api

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"github.com/valdiviamed/snotcap/internal/services"
)

// AuditReader lists recent audit entries for the operator view.
type AuditReader interface {
	ListAudit(limit int) ([]services.AuditEntry, error)
}

// Router is the HTTP surface a form frontend talks to. It owns no state
// beyond the injected service, item prompts and store location.
type Router struct {
	svc     *services.SubmissionService
	items   []string
	csvPath string
	audit   AuditReader // nil leaves /api/audit empty
}

func NewRouter(svc *services.SubmissionService, items []string, csvPath string, audit AuditReader) *Router {
	return &Router{svc: svc, items: items, csvPath: csvPath, audit: audit}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/items", rt.handleItems)               // GET
	mux.HandleFunc("/api/submissions", rt.handleSubmit)        // POST
	mux.HandleFunc("/api/submissions/recent", rt.handleRecent) // GET
	mux.HandleFunc("/api/export", rt.handleExport)             // GET
	mux.HandleFunc("/api/audit", rt.handleAudit)               // GET
}

// GET /api/items — the questionnaire prompts, in order
func (rt *Router) handleItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	type outItem struct {
		Position int    `json:"position"`
		Text     string `json:"text"`
	}
	out := make([]outItem, 0, len(rt.items))
	for i, text := range rt.items {
		out = append(out, outItem{Position: i + 1, Text: text})
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "items": out})
}

// POST /api/submissions
// { consent, rut, visit_date, vas_0_10, snot22: [22 ints], notes }
func (rt *Router) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Consent   bool   `json:"consent"`
		RUT       string `json:"rut"`
		VisitDate string `json:"visit_date"`
		VAS       int    `json:"vas_0_10"`
		Scores    []int  `json:"snot22"`
		Notes     string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid", err.Error())
		return
	}
	res, err := rt.svc.Submit(r.Context(), services.SubmitRequest{
		Consent:   req.Consent,
		RUT:       req.RUT,
		VisitDate: req.VisitDate,
		VAS:       req.VAS,
		Scores:    req.Scores,
		Notes:     req.Notes,
	})
	if err != nil {
		code, status := errorStatus(err)
		writeError(w, status, code, err.Error())
		return
	}
	body := map[string]any{
		"ok":            true,
		"submission_id": res.SubmissionID,
		"sinks_written": res.SinksWritten,
		"snot22_total":  res.Record.Total,
		"vas_0_10":      res.Record.VAS,
		"record":        res.Record,
	}
	if res.RemoteWarning != "" {
		body["remote_warning"] = res.RemoteWarning
	}
	writeJSON(w, http.StatusCreated, body)
}

// GET /api/submissions/recent?limit=20
func (rt *Router) handleRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid", "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	recs, err := rt.svc.Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "local_write", err.Error())
		return
	}
	if recs == nil {
		recs = []*services.SubmissionRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(recs), "records": recs})
}

// GET /api/export — download the local CSV store
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	b, err := os.ReadFile(rt.csvPath)
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "not_found", "no records yet")
			return
		}
		writeError(w, http.StatusInternalServerError, "local_write", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=data.csv")
	_, _ = w.Write(b)
}

// GET /api/audit?limit=50
func (rt *Router) handleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}
	if rt.audit == nil {
		writeJSON(w, http.StatusOK, map[string]any{"count": 0, "entries": []services.AuditEntry{}})
		return
	}
	entries, err := rt.audit.ListAudit(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	if entries == nil {
		entries = []services.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(entries), "entries": entries})
}

func errorStatus(err error) (string, int) {
	if se, ok := services.AsServiceError(err); ok {
		switch se.Code {
		case services.ErrorConsentMissing, services.ErrorInvalidIdentifier, services.ErrorInvalid:
			return string(se.Code), http.StatusUnprocessableEntity
		case services.ErrorSaltUnconfigured:
			return string(se.Code), http.StatusServiceUnavailable
		default:
			return string(se.Code), http.StatusInternalServerError
		}
	}
	return "internal", http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]any{"error": msg, "code": code})
}
