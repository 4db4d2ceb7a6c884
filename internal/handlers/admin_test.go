package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/lumenweb/api/internal/domain"
	"github.com/lumenweb/api/internal/services"
)

func newAdminRouter(h *AdminHandlers) chi.Router {
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func TestUpsertCatalogEndpoint(t *testing.T) {
	catalogs := &stubCatalogService{}
	h := NewAdminHandlers(nil, catalogs, nil)

	payload := `{"packages":{"static":{"setup":65,"monthly":6}},"addons":{"logoDesign":20},"discounts":{"yearly":12}}`
	req := withIdentity(jsonRequest(http.MethodPut, "/pricing/eur", payload), "staff-1")
	rr := httptest.NewRecorder()
	newAdminRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if catalogs.saved == nil {
		t.Fatal("catalog was not saved")
	}
	if catalogs.saved.Currency != "EUR" {
		t.Fatalf("currency should come upper-cased from the path, got %q", catalogs.saved.Currency)
	}
	if catalogs.saved.Packages[domain.PackageStatic].Setup != 65 {
		t.Fatalf("static setup not stored: %+v", catalogs.saved.Packages)
	}
	if catalogs.saved.Discounts[domain.DurationYearly] != 12 {
		t.Fatalf("yearly discount not stored: %+v", catalogs.saved.Discounts)
	}
}

func TestUpsertCatalogRejectsUnknownKeys(t *testing.T) {
	h := NewAdminHandlers(nil, &stubCatalogService{}, nil)

	payload := `{"addons":{"mysteryFeature":10}}`
	req := withIdentity(jsonRequest(http.MethodPut, "/pricing/usd", payload), "staff-1")
	rr := httptest.NewRecorder()
	newAdminRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown add-on key should be rejected, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestUpsertCatalogRejectsInvalidPrices(t *testing.T) {
	h := NewAdminHandlers(nil, &stubCatalogService{err: services.ErrInvalidCatalog}, nil)

	payload := `{"addons":{"logoDesign":-5}}`
	req := withIdentity(jsonRequest(http.MethodPut, "/pricing/usd", payload), "staff-1")
	rr := httptest.NewRecorder()
	newAdminRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestMarkInvoicePaidEndpoint(t *testing.T) {
	paid := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	invoices := &stubInvoiceService{invoice: domain.Invoice{
		ID: "inv-1", Number: "INV-202608-000004",
		Status: domain.InvoiceStatusPaid, PaidAt: &paid,
	}}
	h := NewAdminHandlers(nil, nil, invoices)

	payload := `{"paidAt":"2026-08-30T10:00:00Z"}`
	req := withIdentity(jsonRequest(http.MethodPost, "/invoices/inv-1/pay", payload), "staff-1")
	rr := httptest.NewRecorder()
	newAdminRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !invoices.gotPaidAt.Equal(paid) {
		t.Fatalf("expected paidAt %v forwarded, got %v", paid, invoices.gotPaidAt)
	}

	var body invoicePayload
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Status != "paid" {
		t.Fatalf("expected paid status, got %s", body.Status)
	}
}

func TestMarkInvoicePaidAlreadySettled(t *testing.T) {
	h := NewAdminHandlers(nil, nil, &stubInvoiceService{err: services.ErrInvoiceAlreadySettled})

	req := withIdentity(jsonRequest(http.MethodPost, "/invoices/inv-1/pay", ""), "staff-1")
	rr := httptest.NewRecorder()
	newAdminRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rr.Code)
	}
}
