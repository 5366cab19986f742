package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/idoblueprint/guestlist/internal/config"
	"github.com/idoblueprint/guestlist/internal/guestimport"
	"github.com/idoblueprint/guestlist/internal/model"
	"github.com/idoblueprint/guestlist/internal/store/memstore"
)

func testServer(t *testing.T) (*Server, *memstore.Store) {
	t.Helper()

	st := memstore.New()
	svc := guestimport.NewService(st, guestimport.Options{})
	cfg := &config.Config{
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: 0, ShutdownTimeout: time.Second},
		Store:   config.StoreConfig{Driver: "memory", MaxConns: 20, MinConns: 4},
		Import:  config.ImportConfig{MaxFileSize: 1 << 20, Timeout: time.Minute, HistoryLimit: 5},
		Rate:    config.RateLimitConfig{Enabled: false},
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
	}
	return NewServer(cfg, st, svc), st
}

func doJSON(t *testing.T, s *Server, method, path, coupleID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if coupleID != "" {
		req.Header.Set(coupleIDHeader, coupleID)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func multipartUpload(t *testing.T, fileName, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte(content))
	for k, v := range fields {
		w.WriteField(k, v)
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

// ============================================================================
// Guest CRUD Tests
// ============================================================================

func TestCreateAndListGuests(t *testing.T) {
	s, _ := testServer(t)
	coupleID := uuid.New().String()

	rec := doJSON(t, s, http.MethodPost, "/api/guests", coupleID, map[string]string{
		"firstName": "Jane",
		"lastName":  "Smith",
		"email":     "jane@example.com",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}

	var created model.Guest
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created guest: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("created guest has no id")
	}
	if created.RSVPStatus != model.RSVPPending {
		t.Errorf("RSVPStatus = %q, want pending default", created.RSVPStatus)
	}
	if created.Country != model.DefaultCountry {
		t.Errorf("Country = %q, want default", created.Country)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/guests", coupleID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list struct {
		Guests []model.Guest `json:"guests"`
		Total  int           `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &list)
	if list.Total != 1 || len(list.Guests) != 1 {
		t.Errorf("list = %+v, want one guest", list)
	}
}

func TestCreateGuest_RequiresNames(t *testing.T) {
	s, _ := testServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/guests", uuid.New().String(), map[string]string{
		"firstName": "Jane",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGuests_NoCoupleSelected(t *testing.T) {
	s, _ := testServer(t)

	// No header and no configured default
	rec := doJSON(t, s, http.MethodGet, "/api/guests", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Code != "NO_COUPLE_SELECTED" {
		t.Errorf("code = %q, want NO_COUPLE_SELECTED", resp.Code)
	}
}

func TestGuests_MalformedCoupleHeader(t *testing.T) {
	s, _ := testServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/guests", "not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateGuest_PreservesIdentity(t *testing.T) {
	s, _ := testServer(t)
	coupleID := uuid.New().String()

	rec := doJSON(t, s, http.MethodPost, "/api/guests", coupleID, map[string]string{
		"firstName": "Jane", "lastName": "Smith",
	})
	var created model.Guest
	json.Unmarshal(rec.Body.Bytes(), &created)

	rec = doJSON(t, s, http.MethodPut, "/api/guests/"+created.ID.String(), coupleID, map[string]any{
		"firstName": "Janet", "lastName": "Smith", "coupleId": uuid.New().String(),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body)
	}

	var updated model.Guest
	json.Unmarshal(rec.Body.Bytes(), &updated)
	if updated.FirstName != "Janet" {
		t.Errorf("FirstName = %q", updated.FirstName)
	}
	if updated.ID != created.ID || updated.CoupleID != created.CoupleID {
		t.Error("update must not change id or couple")
	}
}

func TestGuestNotFound(t *testing.T) {
	s, _ := testServer(t)
	path := "/api/guests/" + uuid.New().String()

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec := doJSON(t, s, method, path, uuid.New().String(), nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", method, rec.Code)
		}
	}
}

func TestDeleteGuest(t *testing.T) {
	s, _ := testServer(t)
	coupleID := uuid.New().String()

	rec := doJSON(t, s, http.MethodPost, "/api/guests", coupleID, map[string]string{
		"firstName": "Jane", "lastName": "Smith",
	})
	var created model.Guest
	json.Unmarshal(rec.Body.Bytes(), &created)

	rec = doJSON(t, s, http.MethodDelete, "/api/guests/"+created.ID.String(), coupleID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/guests/"+created.ID.String(), coupleID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestGuestStats(t *testing.T) {
	s, _ := testServer(t)
	coupleID := uuid.New().String()

	doJSON(t, s, http.MethodPost, "/api/guests", coupleID, map[string]any{
		"firstName": "Jane", "lastName": "Smith", "rsvpStatus": "attending",
		"isWeddingParty": true, "invitedBy": "partner1",
	})
	doJSON(t, s, http.MethodPost, "/api/guests", coupleID, map[string]any{
		"firstName": "Bob", "lastName": "Jones",
	})

	rec := doJSON(t, s, http.MethodGet, "/api/guests/stats", coupleID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	var stats GuestStats
	json.Unmarshal(rec.Body.Bytes(), &stats)
	if stats.Total != 2 || stats.Attending != 1 || stats.Party != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.ByInvitedBy["partner1"] != 1 {
		t.Errorf("ByInvitedBy = %v", stats.ByInvitedBy)
	}
}

func TestListGuests_WeddingPartyFilter(t *testing.T) {
	s, _ := testServer(t)
	coupleID := uuid.New().String()

	doJSON(t, s, http.MethodPost, "/api/guests", coupleID, map[string]any{
		"firstName": "Jane", "lastName": "Smith", "isWeddingParty": true,
	})
	doJSON(t, s, http.MethodPost, "/api/guests", coupleID, map[string]any{
		"firstName": "Bob", "lastName": "Jones",
	})

	rec := doJSON(t, s, http.MethodGet, "/api/guests?weddingParty=true", coupleID, nil)
	var list struct {
		Guests []model.Guest `json:"guests"`
		Total  int           `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &list)
	if list.Total != 1 || len(list.Guests) != 1 || !list.Guests[0].IsWeddingParty {
		t.Errorf("filtered list = %+v", list)
	}
}

func TestExportGuests(t *testing.T) {
	s, _ := testServer(t)
	coupleID := uuid.New().String()
	doJSON(t, s, http.MethodPost, "/api/guests", coupleID, map[string]string{
		"firstName": "Jane", "lastName": "Smith",
	})

	rec := doJSON(t, s, http.MethodGet, "/api/guests/export", coupleID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "firstName,lastName,") {
		t.Errorf("export body starts %q", body[:40])
	}
	if !strings.Contains(body, "Jane,Smith") {
		t.Error("export missing guest row")
	}
}

// ============================================================================
// Import Endpoint Tests
// ============================================================================

const importBody = "firstName,lastName,email\nJane,Smith,jane@example.com\nBob,Jones,\n"

func TestImportTemplateDownload(t *testing.T) {
	s, _ := testServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/import/template", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("template status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	rows := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(rows) != 1 {
		t.Errorf("template has %d rows, want header only", len(rows))
	}
	cols := strings.Split(rows[0], ",")
	if len(cols) != len(guestimport.TargetFields) {
		t.Errorf("template has %d columns, want %d", len(cols), len(guestimport.TargetFields))
	}
}

func TestImportPreviewEndpoint(t *testing.T) {
	s, _ := testServer(t)

	body, contentType := multipartUpload(t, "guests.csv", importBody, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/import/preview", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("preview status = %d, body %s", rec.Code, rec.Body)
	}
	var resp PreviewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if resp.Preview.TotalRows != 2 {
		t.Errorf("TotalRows = %d, want 2", resp.Preview.TotalRows)
	}
	if !resp.Validation.IsValid {
		t.Errorf("validation = %+v", resp.Validation)
	}
}

func TestImportPreview_UnreadableFile(t *testing.T) {
	s, _ := testServer(t)

	body, contentType := multipartUpload(t, "guests.pdf", "junk", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/import/preview", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Code != "UNREADABLE_FILE" {
		t.Errorf("code = %q, want UNREADABLE_FILE", resp.Code)
	}
}

func TestImportRun_Waited(t *testing.T) {
	s, st := testServer(t)
	coupleID := uuid.New()

	body, contentType := multipartUpload(t, "guests.csv", importBody, map[string]string{
		"mode": "add_only",
		"wait": "true",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/import/", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(coupleIDHeader, coupleID.String())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d, body %s", rec.Code, rec.Body)
	}
	var result guestimport.ImportResult
	json.Unmarshal(rec.Body.Bytes(), &result)
	if result.Stats.Added != 2 {
		t.Errorf("Added = %d, want 2", result.Stats.Added)
	}

	guests, _ := st.Guests(req.Context(), coupleID)
	if len(guests) != 2 {
		t.Errorf("store has %d guests, want 2", len(guests))
	}
}

func TestImportRun_ValidationFailure(t *testing.T) {
	s, _ := testServer(t)

	bad := "firstName,lastName\nJane,Smith\n,Jones\n"
	body, contentType := multipartUpload(t, "guests.csv", bad, map[string]string{
		"mode": "sync",
		"wait": "true",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/import/", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(coupleIDHeader, uuid.New().String())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body %s", rec.Code, rec.Body)
	}
	var resp ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Code != "VALIDATION_FAILED" || resp.Validation == nil {
		t.Errorf("resp = %+v", resp)
	}
}

func TestImportRun_BadMode(t *testing.T) {
	s, _ := testServer(t)

	body, contentType := multipartUpload(t, "guests.csv", importBody, map[string]string{
		"mode": "merge",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/import/", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(coupleIDHeader, uuid.New().String())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestImportAsync_ProgressAndResult(t *testing.T) {
	s, _ := testServer(t)

	body, contentType := multipartUpload(t, "guests.csv", importBody, map[string]string{
		"mode": "add_only",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/import/", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(coupleIDHeader, uuid.New().String())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("start status = %d, body %s", rec.Code, rec.Body)
	}
	var started map[string]string
	json.Unmarshal(rec.Body.Bytes(), &started)
	id := started["importId"]
	if id == "" {
		t.Fatal("no importId in response")
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/import/%s/result", id), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("result status = %d", rec.Code)
	}
	var result guestimport.ImportResult
	json.Unmarshal(rec.Body.Bytes(), &result)
	if result.Stats.Added != 2 {
		t.Errorf("Added = %d, want 2", result.Stats.Added)
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/import/%s/progress", id), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("progress status = %d", rec.Code)
	}
}

func TestImportLookup_Unknown(t *testing.T) {
	s, _ := testServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/import/nope/result", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestImportHistoryEndpoint(t *testing.T) {
	s, _ := testServer(t)

	body, contentType := multipartUpload(t, "guests.csv", importBody, map[string]string{
		"mode": "add_only",
		"wait": "true",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/import/", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(coupleIDHeader, uuid.New().String())
	s.Router().ServeHTTP(httptest.NewRecorder(), req)

	rec := doJSON(t, s, http.MethodGet, "/api/imports", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d", rec.Code)
	}
	var history struct {
		Imports []guestimport.ImportResult `json:"imports"`
		Total   int                        `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &history)
	if history.Total != 1 {
		t.Errorf("history total = %d, want 1", history.Total)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := testServer(t)

	rec := doJSON(t, s, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}
