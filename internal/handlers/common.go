package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	domain "github.com/lumenweb/api/internal/domain"
)

const maxRequestBodySize = 64 * 1024

var (
	errBodyTooLarge = errors.New("request body too large")
	errEmptyBody    = errors.New("request body is required")
)

func writeJSONResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func readLimitedBody(r *http.Request, limit int64) ([]byte, error) {
	if r == nil || r.Body == nil {
		return nil, errEmptyBody
	}
	if limit <= 0 {
		limit = maxRequestBodySize
	}
	reader := io.LimitReader(r.Body, limit+1)
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errEmptyBody
	}
	if int64(len(data)) > limit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

func decodeJSONBody(r *http.Request, dst any) error {
	data, err := readLimitedBody(r, maxRequestBodySize)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("invalid JSON payload: %w", err)
	}
	return nil
}

func paginationFromQuery(r *http.Request) domain.Pagination {
	query := r.URL.Query()
	pager := domain.Pagination{PageToken: strings.TrimSpace(query.Get("page_token"))}
	if raw := strings.TrimSpace(query.Get("page_size")); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			pager.PageSize = size
		}
	}
	return pager
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

// selectionRequest is the wire shape of a configurator selection.
type selectionRequest struct {
	Package         string   `json:"package"`
	HostingDuration string   `json:"hostingDuration"`
	EmailDuration   string   `json:"emailDuration"`
	EmailAccounts   int      `json:"emailAccounts"`
	ProductCount    int      `json:"productCount"`
	SelectedPages   []string `json:"selectedPages"`
	CustomPages     []string `json:"customPages"`
	Addons          []string `json:"addons"`
}

// parseSelection validates the wire selection against the closed catalog
// vocabulary. An absent package or duration falls back to its documented
// default; anything present but unrecognised is rejected outright.
func parseSelection(req selectionRequest) (domain.Selection, error) {
	sel := domain.Selection{
		EmailAccounts: req.EmailAccounts,
		ProductCount:  req.ProductCount,
		SelectedPages: req.SelectedPages,
		CustomPages:   req.CustomPages,
	}
	if req.EmailAccounts < 0 {
		return domain.Selection{}, errors.New("emailAccounts must not be negative")
	}
	if req.ProductCount < 0 {
		return domain.Selection{}, errors.New("productCount must not be negative")
	}

	if raw := strings.TrimSpace(req.Package); raw != "" {
		tier, err := domain.ParsePackageTier(raw)
		if err != nil {
			return domain.Selection{}, fmt.Errorf("package: %w", err)
		}
		sel.Package = tier
	} else {
		sel.Package = domain.PackageStatic
	}

	sel.HostingDuration = domain.DurationMonthly
	if raw := strings.TrimSpace(req.HostingDuration); raw != "" {
		duration, err := domain.ParseDuration(raw)
		if err != nil {
			return domain.Selection{}, fmt.Errorf("hostingDuration: %w", err)
		}
		sel.HostingDuration = duration
	}

	sel.EmailDuration = domain.DurationMonthly
	if raw := strings.TrimSpace(req.EmailDuration); raw != "" {
		duration, err := domain.ParseDuration(raw)
		if err != nil {
			return domain.Selection{}, fmt.Errorf("emailDuration: %w", err)
		}
		sel.EmailDuration = duration
	}

	if len(req.Addons) > 0 {
		sel.Addons = make([]domain.AddonKey, 0, len(req.Addons))
		for _, raw := range req.Addons {
			key, err := domain.ParseAddonKey(raw)
			if err != nil {
				return domain.Selection{}, fmt.Errorf("addons: %w", err)
			}
			sel.Addons = append(sel.Addons, key)
		}
	}
	return sel, nil
}

func selectionPayloadFrom(sel domain.Selection) selectionRequest {
	addons := make([]string, 0, len(sel.Addons))
	for _, key := range sel.Addons {
		addons = append(addons, string(key))
	}
	return selectionRequest{
		Package:         string(sel.Package),
		HostingDuration: string(sel.HostingDuration),
		EmailDuration:   string(sel.EmailDuration),
		EmailAccounts:   sel.EmailAccounts,
		ProductCount:    sel.ProductCount,
		SelectedPages:   sel.SelectedPages,
		CustomPages:     sel.CustomPages,
		Addons:          addons,
	}
}

type quoteLinePayload struct {
	Label           string  `json:"label"`
	Amount          float64 `json:"amount"`
	Recurring       bool    `json:"recurring"`
	BilledAsOneTime bool    `json:"billedAsOneTime,omitempty"`
}

type quotePayload struct {
	Currency        string             `json:"currency"`
	SetupFee        float64            `json:"setupFee"`
	MonthlyFee      float64            `json:"monthlyFee"`
	HostingTotal    float64            `json:"hostingTotal"`
	HostingDiscount float64            `json:"hostingDiscountPercent"`
	EmailDiscount   float64            `json:"emailDiscountPercent"`
	Breakdown       []quoteLinePayload `json:"breakdown"`
}

func quotePayloadFrom(quote domain.Quote) quotePayload {
	lines := make([]quoteLinePayload, 0, len(quote.Breakdown))
	for _, line := range quote.Breakdown {
		lines = append(lines, quoteLinePayload{
			Label:           line.Label,
			Amount:          line.Amount,
			Recurring:       line.Recurring,
			BilledAsOneTime: line.BilledAsOneTime,
		})
	}
	return quotePayload{
		Currency:        quote.Currency,
		SetupFee:        quote.SetupFee,
		MonthlyFee:      quote.MonthlyFee,
		HostingTotal:    quote.HostingTotal,
		HostingDiscount: quote.HostingDiscount,
		EmailDiscount:   quote.EmailDiscount,
		Breakdown:       lines,
	}
}
