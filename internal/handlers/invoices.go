package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/lumenweb/api/internal/domain"
	"github.com/lumenweb/api/internal/platform/auth"
	"github.com/lumenweb/api/internal/platform/httpx"
	"github.com/lumenweb/api/internal/services"
)

// InvoiceHandlers exposes read-only invoice endpoints for the client portal.
type InvoiceHandlers struct {
	authn    *auth.Authenticator
	invoices services.InvoiceService
	clock    func() time.Time
}

// NewInvoiceHandlers constructs handlers for the /invoices route group.
func NewInvoiceHandlers(authn *auth.Authenticator, invoices services.InvoiceService) *InvoiceHandlers {
	return &InvoiceHandlers{authn: authn, invoices: invoices, clock: time.Now}
}

// Routes wires the invoice endpoints onto the provided router.
func (h *InvoiceHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Get("/", h.listInvoices)
	r.Get("/{invoiceId}", h.getInvoice)
}

func (h *InvoiceHandlers) listInvoices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w, h.invoices != nil, "invoice")
	if !ok {
		return
	}

	query := services.InvoiceListQuery{Pager: paginationFromQuery(r)}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		query.Status = domain.InvoiceStatus(raw)
	}

	page, err := h.invoices.ListInvoices(ctx, identity.UID, query)
	if err != nil {
		writeInvoiceError(ctx, w, err)
		return
	}

	now := h.clock().UTC()
	items := make([]invoicePayload, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, invoicePayloadFrom(item, now))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"invoices":        items,
		"next_page_token": page.NextPageToken,
	})
}

func (h *InvoiceHandlers) getInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w, h.invoices != nil, "invoice")
	if !ok {
		return
	}

	invoice, err := h.invoices.GetInvoice(ctx, identity.UID, chi.URLParam(r, "invoiceId"))
	if err != nil {
		writeInvoiceError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, invoicePayloadFrom(invoice, h.clock().UTC()))
}

type invoiceLinePayload struct {
	Label           string  `json:"label"`
	Amount          float64 `json:"amount"`
	Recurring       bool    `json:"recurring"`
	BilledAsOneTime bool    `json:"billedAsOneTime,omitempty"`
}

type invoicePayload struct {
	ID         string               `json:"id"`
	Number     string               `json:"number"`
	ProjectID  string               `json:"projectId,omitempty"`
	Currency   string               `json:"currency"`
	SetupFee   float64              `json:"setupFee"`
	MonthlyFee float64              `json:"monthlyFee"`
	Lines      []invoiceLinePayload `json:"lines"`
	Status     string               `json:"status"`
	Overdue    bool                 `json:"overdue"`
	DueDate    string               `json:"dueDate,omitempty"`
	PaidAt     string               `json:"paidAt,omitempty"`
	CreatedAt  string               `json:"createdAt,omitempty"`
	UpdatedAt  string               `json:"updatedAt,omitempty"`
}

func invoicePayloadFrom(invoice domain.Invoice, now time.Time) invoicePayload {
	lines := make([]invoiceLinePayload, 0, len(invoice.Lines))
	for _, line := range invoice.Lines {
		lines = append(lines, invoiceLinePayload{
			Label:           line.Label,
			Amount:          line.Amount,
			Recurring:       line.Recurring,
			BilledAsOneTime: line.BilledAsOneTime,
		})
	}
	return invoicePayload{
		ID:         invoice.ID,
		Number:     invoice.Number,
		ProjectID:  invoice.ProjectID,
		Currency:   invoice.Currency,
		SetupFee:   invoice.SetupFee,
		MonthlyFee: invoice.MonthlyFee,
		Lines:      lines,
		Status:     string(invoice.Status),
		Overdue:    services.Overdue(invoice, now),
		DueDate:    formatTime(invoice.DueDate),
		PaidAt:     formatTimePtr(invoice.PaidAt),
		CreatedAt:  formatTime(invoice.CreatedAt),
		UpdatedAt:  formatTime(invoice.UpdatedAt),
	}
}

func writeInvoiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvoiceNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("invoice_not_found", "invoice not found", http.StatusNotFound))
	case errors.Is(err, services.ErrInvoiceInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_invoice_field", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrInvoiceAlreadySettled):
		httpx.WriteError(ctx, w, httpx.NewError("invoice_already_settled", err.Error(), http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invoice_error", "invoice operation failed", http.StatusInternalServerError))
	}
}
