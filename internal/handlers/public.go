package handlers

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/lumenweb/api/internal/domain"
	"github.com/lumenweb/api/internal/platform/httpx"
	"github.com/lumenweb/api/internal/services"
)

// PublicHandlers serves the unauthenticated marketing surface: the price
// catalog, quote calculation, and published content pages.
type PublicHandlers struct {
	catalogs services.CatalogService
	quotes   services.QuoteService
	currency services.CurrencyService
	content  services.ContentService
}

// NewPublicHandlers constructs handlers for the public route group.
func NewPublicHandlers(catalogs services.CatalogService, quotes services.QuoteService, currency services.CurrencyService, content services.ContentService) *PublicHandlers {
	return &PublicHandlers{
		catalogs: catalogs,
		quotes:   quotes,
		currency: currency,
		content:  content,
	}
}

// Routes wires the public endpoints onto the provided router.
func (h *PublicHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/pricing", h.getPricing)
	r.Post("/pricing/quote", h.postQuote)
	r.Get("/pages", h.listPages)
	r.Get("/pages/{slug}", h.getPage)
}

func (h *PublicHandlers) getPricing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalogs == nil {
		httpx.WriteError(ctx, w, httpx.NewError("pricing_unavailable", "pricing service is unavailable", http.StatusServiceUnavailable))
		return
	}

	currency := h.resolveCurrency(r)
	catalog, err := h.catalogs.Catalog(ctx, currency)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCurrency) {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_currency", err.Error(), http.StatusBadRequest))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("pricing_error", "failed to load price catalog", http.StatusInternalServerError))
		return
	}

	writeJSONResponse(w, http.StatusOK, catalogPayloadFrom(catalog))
}

type quoteRequest struct {
	Currency  string           `json:"currency"`
	Selection selectionRequest `json:"selection"`
}

func (h *PublicHandlers) postQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.quotes == nil {
		httpx.WriteError(ctx, w, httpx.NewError("pricing_unavailable", "pricing service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req quoteRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	sel, err := parseSelection(req.Selection)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_selection", err.Error(), http.StatusBadRequest))
		return
	}

	currency := req.Currency
	if strings.TrimSpace(currency) == "" {
		currency = h.resolveCurrency(r)
	}

	quote, err := h.quotes.Quote(ctx, currency, sel)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCurrency) {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_currency", err.Error(), http.StatusBadRequest))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("pricing_error", "failed to compute quote", http.StatusInternalServerError))
		return
	}

	writeJSONResponse(w, http.StatusOK, quotePayloadFrom(quote))
}

func (h *PublicHandlers) listPages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.content == nil {
		httpx.WriteError(ctx, w, httpx.NewError("content_unavailable", "content service is unavailable", http.StatusServiceUnavailable))
		return
	}

	page, err := h.content.ListPages(ctx, paginationFromQuery(r))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("content_error", "failed to list pages", http.StatusInternalServerError))
		return
	}

	items := make([]contentPagePayload, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, contentPagePayloadFrom(item, false))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"pages":           items,
		"next_page_token": page.NextPageToken,
	})
}

func (h *PublicHandlers) getPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.content == nil {
		httpx.WriteError(ctx, w, httpx.NewError("content_unavailable", "content service is unavailable", http.StatusServiceUnavailable))
		return
	}

	slug := chi.URLParam(r, "slug")
	page, err := h.content.PageBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, services.ErrPageNotFound) {
			httpx.WriteError(ctx, w, httpx.NewError("page_not_found", "page not found", http.StatusNotFound))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("content_error", "failed to load page", http.StatusInternalServerError))
		return
	}

	writeJSONResponse(w, http.StatusOK, contentPagePayloadFrom(page, true))
}

// resolveCurrency picks the display currency from the explicit query override or
// the caller's network origin. A nil currency service keeps the override only.
func (h *PublicHandlers) resolveCurrency(r *http.Request) string {
	override := strings.TrimSpace(r.URL.Query().Get("currency"))
	if h.currency == nil {
		return override
	}
	return h.currency.Resolve(r.Context(), services.CurrencyRequest{
		Override: override,
		ClientIP: clientIP(r),
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

func writeBodyError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	}
}

type packagePricePayload struct {
	Setup   float64 `json:"setup"`
	Monthly float64 `json:"monthly"`
}

type catalogPayload struct {
	Currency  string                         `json:"currency"`
	Packages  map[string]packagePricePayload `json:"packages"`
	Addons    map[string]float64             `json:"addons"`
	Discounts map[string]float64             `json:"discounts"`
	UpdatedAt string                         `json:"updatedAt,omitempty"`
}

func catalogPayloadFrom(catalog domain.PriceCatalog) catalogPayload {
	payload := catalogPayload{
		Currency:  catalog.Currency,
		Packages:  make(map[string]packagePricePayload, len(catalog.Packages)),
		Addons:    make(map[string]float64, len(catalog.Addons)),
		Discounts: make(map[string]float64, len(catalog.Discounts)),
		UpdatedAt: formatTime(catalog.UpdatedAt),
	}
	for tier, price := range catalog.Packages {
		payload.Packages[string(tier)] = packagePricePayload{Setup: price.Setup, Monthly: price.Monthly}
	}
	for key, price := range catalog.Addons {
		payload.Addons[string(key)] = price
	}
	for key, percent := range catalog.Discounts {
		payload.Discounts[string(key)] = percent
	}
	return payload
}

type contentPagePayload struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Summary     string `json:"summary,omitempty"`
	BodyHTML    string `json:"bodyHtml,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

func contentPagePayloadFrom(page domain.ContentPage, includeBody bool) contentPagePayload {
	payload := contentPagePayload{
		ID:          page.ID,
		Slug:        page.Slug,
		Title:       page.Title,
		Summary:     page.Summary,
		PublishedAt: formatTimePtr(page.PublishedAt),
		UpdatedAt:   formatTime(page.UpdatedAt),
	}
	if includeBody {
		payload.BodyHTML = page.BodyHTML
	}
	return payload
}
