package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marketplace/internal/domain"
	"marketplace/internal/httputil"
	"marketplace/internal/repository/memory"
	"marketplace/internal/seed"
	serviceCatalog "marketplace/internal/service/catalog"
	serviceCommerce "marketplace/internal/service/commerce"
)

// Ids from the embedded demo fixture
const (
	stockFootage = "0b7c6a2e-4f1d-4c36-9a57-1f1f3c0d0001"
	naturePack   = "0b7c6a2e-4f1d-4c36-9a57-1f1f3c0d0002"
	waterfall    = "0b7c6a2e-4f1d-4c36-9a57-1f1f3c0d1001"
	paperGrain   = "0b7c6a2e-4f1d-4c36-9a57-1f1f3c0d1020"
)

// testUserHeader stands in for a verified bearer token
const testUserHeader = "X-Test-User"

type testServer struct {
	store   *memory.Store
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()

	fx, err := seed.LoadFixtureFile("")
	if err != nil {
		t.Fatalf("LoadFixtureFile failed: %v", err)
	}
	if _, err := seed.NewCatalogSeeder(store.Folders(), store.Assets(), logger).Seed(context.Background(), fx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	hierarchy := serviceCatalog.NewHierarchyResolver(store.Folders(), store.Assets(), logger)
	entitlement := serviceCommerce.NewEntitlementService(store.Purchases(), hierarchy, 4, logger)

	mux := http.NewServeMux()
	RegisterRoutes(mux, &Handlers{
		Health:    NewHealthHandler(nil, logger),
		Access:    NewAccessHandler(entitlement, logger),
		Prices:    NewPriceHandler(serviceCatalog.NewPriceResolver(hierarchy, logger), logger),
		Purchases: NewPurchaseHandler(serviceCommerce.NewPurchaseService(store.Purchases(), hierarchy, store.TransactionManager(), logger), logger),
		Catalog:   NewCatalogHandler(serviceCatalog.NewTreeService(store.Folders(), store.Assets(), entitlement, logger), hierarchy, logger),
		Delivery:  NewDeliveryHandler(serviceCommerce.NewDeliveryService(entitlement, hierarchy, store.Purchases(), logger), logger),
	})

	withUser := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := r.Header.Get(testUserHeader); user != "" {
			r = httputil.WithUserID(r, user)
		}
		mux.ServeHTTP(w, r)
	})

	return &testServer{store: store, handler: withUser}
}

func (s *testServer) do(t *testing.T, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set(testUserHeader, user)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func purchaseBody(ref string, items ...string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		kind, id, _ := strings.Cut(item, ":")
		lines = append(lines, fmt.Sprintf(`{"kind":%q,"target_id":%q}`, kind, id))
	}
	return fmt.Sprintf(`{"payment_ref":%q,"items":[%s]}`, ref, strings.Join(lines, ","))
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRecordPurchase(t *testing.T) {
	s := newTestServer(t)
	body := purchaseBody("pay-1", "folder:"+naturePack)

	rec := s.do(t, http.MethodPost, "/api/purchases", "", body)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/api/purchases", "user-1", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	first := decode(t, rec)
	purchaseID, _ := first["id"].(string)
	if !strings.HasPrefix(purchaseID, "pur_") {
		t.Errorf("unexpected purchase id %q", purchaseID)
	}
	if first["total_amount"] != float64(400) {
		t.Errorf("expected total 400, got %v", first["total_amount"])
	}

	rec = s.do(t, http.MethodPost, "/api/purchases", "user-1", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("replay: expected 200, got %d", rec.Code)
	}
	if decode(t, rec)["id"] != purchaseID {
		t.Error("replay returned a different purchase")
	}

	rec = s.do(t, http.MethodPost, "/api/purchases", "user-1", purchaseBody("pay-1", "leaf:"+paperGrain))
	if rec.Code != http.StatusConflict {
		t.Fatalf("reuse: expected 409, got %d", rec.Code)
	}
	problem := decode(t, rec)
	if problem["existing_purchase_id"] != purchaseID || problem["payment_ref"] != "pay-1" {
		t.Errorf("unexpected conflict body: %v", problem)
	}

	rec = s.do(t, http.MethodGet, "/api/purchases/"+purchaseID, "user-1", "")
	if rec.Code != http.StatusOK {
		t.Errorf("get: expected 200, got %d", rec.Code)
	}
	rec = s.do(t, http.MethodGet, "/api/purchases/"+purchaseID, "user-2", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get as other user: expected 404, got %d", rec.Code)
	}
}

func TestRecordPurchase_BadRequests(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"malformed json", `{"payment_ref":`, http.StatusBadRequest},
		{"unknown field", `{"payment_ref":"p","items":[],"coupon":"x"}`, http.StatusBadRequest},
		{"no items", `{"payment_ref":"p","items":[]}`, http.StatusBadRequest},
		{"unknown target", purchaseBody("p", "leaf:ffffffff-0000-4000-8000-000000000000"), http.StatusNotFound},
		{"folder not for sale", purchaseBody("p", "folder:"+stockFootage), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/purchases", "user-1", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("expected problem+json, got %q", ct)
			}
		})
	}
}

func TestCheckAccess(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/purchases", "user-1", purchaseBody("pay-1", "folder:"+naturePack))

	tests := []struct {
		name       string
		user       string
		nodeID     string
		wantStatus int
		wantAccess bool
	}{
		{"owner of bundle leaf", "user-1", waterfall, http.StatusOK, true},
		{"parent folder", "user-1", stockFootage, http.StatusOK, false},
		{"anonymous", "", waterfall, http.StatusOK, false},
		{"other user", "user-2", waterfall, http.StatusOK, false},
		{"malformed id", "user-1", "nope", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/api/access/"+tt.nodeID, tt.user, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if rec.Code != http.StatusOK {
				return
			}
			if got := decode(t, rec)["has_access"]; got != tt.wantAccess {
				t.Errorf("expected has_access=%v, got %v", tt.wantAccess, got)
			}
		})
	}
}

func TestCheckAccessBulk(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/purchases", "user-1", purchaseBody("pay-1", "folder:"+naturePack))

	body := fmt.Sprintf(`{"node_ids":[%q,%q,%q]}`, waterfall, stockFootage, paperGrain)
	rec := s.do(t, http.MethodPost, "/api/access/bulk", "user-1", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp bulkAccessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]bool{waterfall: true, stockFootage: false, paperGrain: false}
	for id, allowed := range want {
		if resp.Access[id] != allowed {
			t.Errorf("%s: expected %v, got %v", id, allowed, resp.Access[id])
		}
	}

	rec = s.do(t, http.MethodPost, "/api/access/bulk", "user-1", `{"node_ids":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty list: expected 400, got %d", rec.Code)
	}
}

func TestDownloadAsset(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/purchases", "user-1", purchaseBody("pay-1", "leaf:"+paperGrain))

	if rec := s.do(t, http.MethodGet, "/api/assets/"+paperGrain+"/download", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: expected 401, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/api/assets/"+waterfall+"/download", "user-1", ""); rec.Code != http.StatusForbidden {
		t.Errorf("not owned: expected 403, got %d", rec.Code)
	}

	rec := s.do(t, http.MethodGet, "/api/assets/"+paperGrain+"/download", "user-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("owned: expected 200, got %d", rec.Code)
	}
	if got := decode(t, rec)["download_url"]; got != "https://cdn.example.com/media/paper.jpg" {
		t.Errorf("unexpected download url %v", got)
	}

	s.store.DeleteAsset(paperGrain)
	rec = s.do(t, http.MethodGet, "/api/assets/"+paperGrain+"/download", "user-1", "")
	if rec.Code != http.StatusGone {
		t.Fatalf("removed: expected 410, got %d", rec.Code)
	}
	problem := decode(t, rec)
	if problem["node_id"] != paperGrain || problem["title"] != "Paper Grain" {
		t.Errorf("unexpected gone body: %v", problem)
	}
}

func TestDownloadFolder(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/purchases", "user-1", purchaseBody("pay-1", "folder:"+naturePack))

	rec := s.do(t, http.MethodGet, "/api/folders/"+naturePack+"/download", "user-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	assets, _ := decode(t, rec)["assets"].([]any)
	if len(assets) != 2 {
		t.Errorf("expected 2 assets, got %d", len(assets))
	}
}

func TestGetTree(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/catalog/video/tree", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	folders, _ := decode(t, rec)["folders"].([]any)
	if len(folders) != 1 {
		t.Errorf("expected 1 root folder, got %d", len(folders))
	}

	if rec := s.do(t, http.MethodGet, "/api/catalog/sculpture/tree", "", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown category: expected 400, got %d", rec.Code)
	}
}

func TestGetAncestors(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/catalog/video/folders/"+naturePack+"/ancestors", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var chain []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &chain); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(chain) != 2 || chain[0]["id"] != naturePack || chain[1]["id"] != stockFootage {
		t.Errorf("unexpected chain: %v", chain)
	}

	if rec := s.do(t, http.MethodGet, "/api/catalog/audio/folders/"+naturePack+"/ancestors", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("wrong category: expected 404, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/api/catalog/video/folders/"+waterfall+"/ancestors", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("leaf id: expected 404, got %d", rec.Code)
	}
}

func TestGetPrice(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/prices/"+naturePack, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	quote := decode(t, rec)
	if quote["amount"] != float64(400) || quote["bundle_savings"] != float64(-70) {
		t.Errorf("unexpected quote: %v", quote)
	}

	body := fmt.Sprintf(`{"node_ids":[%q,%q]}`, waterfall, paperGrain)
	rec = s.do(t, http.MethodPost, "/api/prices/preview", "", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("preview: expected 200, got %d", rec.Code)
	}
	if total := decode(t, rec)["total"]; total != float64(200) {
		t.Errorf("expected total 200, got %v", total)
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", fmt.Errorf("bad: %w", domain.ErrValidation), http.StatusBadRequest},
		{"not found", fmt.Errorf("x: %w", domain.ErrNotFound), http.StatusNotFound},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("x: %w", domain.ErrForbidden), http.StatusForbidden},
		{"conflict", fmt.Errorf("x: %w", domain.ErrConflict), http.StatusConflict},
		{"duplicate reference", &domain.DuplicateReferenceError{PaymentRef: "p", ExistingPurchaseID: "pur_x"}, http.StatusConflict},
		{"unavailable", &domain.UnavailableError{NodeID: waterfall}, http.StatusGone},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleError(rec, tt.err)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus == http.StatusInternalServerError && strings.Contains(rec.Body.String(), "boom") {
				t.Error("internal error details leaked")
			}
		})
	}
}
