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

func TestListInvoicesFlagsOverdue(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	invoices := &stubInvoiceService{invoice: domain.Invoice{
		ID: "inv-1", Number: "INV-202608-000004", UserID: "uid-1",
		Status: domain.InvoiceStatusPending, Currency: "USD",
		SetupFee: 62, DueDate: now.AddDate(0, 0, -3),
	}}
	h := NewInvoiceHandlers(nil, invoices)
	h.clock = func() time.Time { return now }

	r := chi.NewRouter()
	h.Routes(r)

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), "uid-1")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Invoices []invoicePayload `json:"invoices"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(body.Invoices) != 1 {
		t.Fatalf("expected one invoice, got %d", len(body.Invoices))
	}
	if !body.Invoices[0].Overdue {
		t.Fatal("pending invoice past its due date should be flagged overdue")
	}
}

func TestGetInvoiceNotFound(t *testing.T) {
	h := NewInvoiceHandlers(nil, &stubInvoiceService{err: services.ErrInvoiceNotFound})

	r := chi.NewRouter()
	h.Routes(r)

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/inv-1", nil), "uid-1")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}
