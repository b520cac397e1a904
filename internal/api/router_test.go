package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/valdiviamed/snotcap/internal/services"
)

type stubRecordStore struct {
	records   []*services.SubmissionRecord
	appendErr error
}

func (s *stubRecordStore) EnsureStore() error { return nil }

func (s *stubRecordStore) Append(rec *services.SubmissionRecord) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	cp := *rec
	s.records = append(s.records, &cp)
	return nil
}

func (s *stubRecordStore) Recent(limit int) ([]*services.SubmissionRecord, error) {
	if limit > 0 && len(s.records) > limit {
		return s.records[len(s.records)-limit:], nil
	}
	return s.records, nil
}

type stubAuditReader struct {
	entries []services.AuditEntry
}

func (s *stubAuditReader) ListAudit(limit int) ([]services.AuditEntry, error) { return s.entries, nil }

func newTestMux(t *testing.T, store *stubRecordStore, salt string) *http.ServeMux {
	t.Helper()
	svc := services.NewSubmissionService(salt, false, store, nil, nil, zerolog.Nop())
	mux := http.NewServeMux()
	NewRouter(svc, services.PlaceholderItems(), "/nonexistent/data.csv", &stubAuditReader{}).Register(mux)
	return mux
}

func submitBody(consent bool, rut string) string {
	scores := make([]string, services.ItemCount)
	for i := range scores {
		scores[i] = "2"
	}
	b, _ := json.Marshal(map[string]any{
		"consent":    consent,
		"rut":        rut,
		"visit_date": "2026-08-30",
		"vas_0_10":   6,
		"notes":      "sin cambios",
	})
	// splice the score array in to keep the helper simple
	return strings.TrimSuffix(string(b), "}") + `,"snot22":[` + strings.Join(scores, ",") + `]}`
}

func TestHandleSubmitOK(t *testing.T) {
	store := &stubRecordStore{}
	mux := newTestMux(t, store, "pepper")

	req := httptest.NewRequest(http.MethodPost, "/api/submissions", strings.NewReader(submitBody(true, "12.345.678-5")))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		OK           bool     `json:"ok"`
		SubmissionID string   `json:"submission_id"`
		Sinks        []string `json:"sinks_written"`
		Total        int      `json:"snot22_total"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.OK || resp.SubmissionID == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Total != 2*services.ItemCount {
		t.Fatalf("total %d, want %d", resp.Total, 2*services.ItemCount)
	}
	if len(store.records) != 1 {
		t.Fatalf("store has %d records", len(store.records))
	}
}

func TestHandleSubmitErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		salt       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"consent", "pepper", submitBody(false, "12.345.678-5"), http.StatusUnprocessableEntity, "consent_missing"},
		{"identifier", "pepper", submitBody(true, "12.345.678-4"), http.StatusUnprocessableEntity, "invalid_identifier"},
		{"salt", "", submitBody(true, "12.345.678-5"), http.StatusServiceUnavailable, "salt_unconfigured"},
		{"garbage", "pepper", "{not json", http.StatusBadRequest, "invalid"},
	}
	for _, c := range cases {
		store := &stubRecordStore{}
		mux := newTestMux(t, store, c.salt)
		req := httptest.NewRequest(http.MethodPost, "/api/submissions", strings.NewReader(c.body))
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		if rr.Code != c.wantStatus {
			t.Fatalf("%s: status %d, want %d (body %s)", c.name, rr.Code, c.wantStatus, rr.Body.String())
		}
		var resp struct {
			Code string `json:"code"`
		}
		_ = json.Unmarshal(rr.Body.Bytes(), &resp)
		if resp.Code != c.wantCode {
			t.Fatalf("%s: code %q, want %q", c.name, resp.Code, c.wantCode)
		}
		if len(store.records) != 0 {
			t.Fatalf("%s: store written on rejected submission", c.name)
		}
	}
}

func TestHandleSubmitLocalWriteError(t *testing.T) {
	store := &stubRecordStore{appendErr: errors.New("disk full")}
	mux := newTestMux(t, store, "pepper")
	req := httptest.NewRequest(http.MethodPost, "/api/submissions", strings.NewReader(submitBody(true, "12.345.678-5")))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", rr.Code)
	}
}

func TestHandleRecent(t *testing.T) {
	store := &stubRecordStore{}
	mux := newTestMux(t, store, "pepper")
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/submissions", strings.NewReader(submitBody(true, "12.345.678-5")))
		mux.ServeHTTP(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/submissions/recent?limit=2", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var resp struct {
		Count   int                          `json:"count"`
		Records []*services.SubmissionRecord `json:"records"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 || len(resp.Records) != 2 {
		t.Fatalf("unexpected recent response: %+v", resp)
	}
}

func TestHandleItems(t *testing.T) {
	mux := newTestMux(t, &stubRecordStore{}, "pepper")
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var resp struct {
		Count int `json:"count"`
		Items []struct {
			Position int    `json:"position"`
			Text     string `json:"text"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != services.ItemCount || resp.Items[0].Position != 1 {
		t.Fatalf("unexpected items response: %+v", resp)
	}
}

func TestHandleExportMissingStore(t *testing.T) {
	mux := newTestMux(t, &stubRecordStore{}, "pepper")
	req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux := newTestMux(t, &stubRecordStore{}, "pepper")
	req := httptest.NewRequest(http.MethodGet, "/api/submissions", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d, want 405", rr.Code)
	}
}
