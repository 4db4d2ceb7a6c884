package handlers

import (
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

// AdminHandlers exposes staff-only catalog and billing operations.
type AdminHandlers struct {
	authn    *auth.Authenticator
	catalogs services.CatalogService
	invoices services.InvoiceService
	clock    func() time.Time
}

// NewAdminHandlers constructs handlers for the /admin route group.
func NewAdminHandlers(authn *auth.Authenticator, catalogs services.CatalogService, invoices services.InvoiceService) *AdminHandlers {
	return &AdminHandlers{
		authn:    authn,
		catalogs: catalogs,
		invoices: invoices,
		clock:    time.Now,
	}
}

// Routes wires the admin endpoints onto the provided router. All routes require
// a staff or admin role.
func (h *AdminHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth(auth.RoleStaff, auth.RoleAdmin))
	}
	r.Get("/pricing/currencies", h.listCurrencies)
	r.Put("/pricing/{currency}", h.upsertCatalog)
	r.Post("/invoices/{invoiceId}/pay", h.markInvoicePaid)
}

func (h *AdminHandlers) listCurrencies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalogs == nil {
		httpx.WriteError(ctx, w, httpx.NewError("pricing_unavailable", "pricing service is unavailable", http.StatusServiceUnavailable))
		return
	}

	currencies, err := h.catalogs.Currencies(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("pricing_error", "failed to list currencies", http.StatusInternalServerError))
		return
	}
	if currencies == nil {
		currencies = []string{}
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"currencies": currencies})
}

type upsertCatalogRequest struct {
	Packages  map[string]packagePricePayload `json:"packages"`
	Addons    map[string]float64             `json:"addons"`
	Discounts map[string]float64             `json:"discounts"`
}

func (h *AdminHandlers) upsertCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalogs == nil {
		httpx.WriteError(ctx, w, httpx.NewError("pricing_unavailable", "pricing service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req upsertCatalogRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	catalog := domain.PriceCatalog{
		Currency:  strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "currency"))),
		Packages:  make(map[domain.PackageTier]domain.PackagePrice, len(req.Packages)),
		Addons:    make(map[domain.AddonKey]float64, len(req.Addons)),
		Discounts: make(map[domain.DurationKey]float64, len(req.Discounts)),
	}
	for raw, price := range req.Packages {
		tier, err := domain.ParsePackageTier(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_catalog", err.Error(), http.StatusBadRequest))
			return
		}
		catalog.Packages[tier] = domain.PackagePrice{Setup: price.Setup, Monthly: price.Monthly}
	}
	for raw, price := range req.Addons {
		key, err := domain.ParseAddonKey(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_catalog", err.Error(), http.StatusBadRequest))
			return
		}
		catalog.Addons[key] = price
	}
	for raw, percent := range req.Discounts {
		key, err := domain.ParseDuration(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_catalog", err.Error(), http.StatusBadRequest))
			return
		}
		catalog.Discounts[key] = percent
	}

	saved, err := h.catalogs.UpsertCatalog(ctx, catalog)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCurrency), errors.Is(err, services.ErrInvalidCatalog):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_catalog", err.Error(), http.StatusBadRequest))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("pricing_error", "failed to store price catalog", http.StatusInternalServerError))
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, catalogPayloadFrom(saved))
}

type markPaidRequest struct {
	PaidAt string `json:"paidAt"`
}

func (h *AdminHandlers) markInvoicePaid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.invoices == nil {
		httpx.WriteError(ctx, w, httpx.NewError("invoice_service_unavailable", "invoice service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var paidAt time.Time
	if r.ContentLength > 0 {
		var req markPaidRequest
		if err := decodeJSONBody(r, &req); err != nil {
			writeBodyError(w, r, err)
			return
		}
		if raw := strings.TrimSpace(req.PaidAt); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "paidAt must be an RFC3339 timestamp", http.StatusBadRequest))
				return
			}
			paidAt = parsed
		}
	}

	invoice, err := h.invoices.MarkPaid(ctx, chi.URLParam(r, "invoiceId"), paidAt)
	if err != nil {
		writeInvoiceError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, invoicePayloadFrom(invoice, h.clock().UTC()))
}
