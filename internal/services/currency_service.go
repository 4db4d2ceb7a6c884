package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lumenweb/api/internal/platform/money"
)

// GeoIPResolver looks up the country for a client IP address.
type GeoIPResolver interface {
	CountryCode(ctx context.Context, ip string) (string, error)
}

// CurrencyServiceDeps bundles constructor inputs for the currency service.
type CurrencyServiceDeps struct {
	// GeoIP is optional; without it resolution skips straight to the default.
	GeoIP GeoIPResolver
	// DefaultCurrency is used when no other signal applies. Empty means USD.
	DefaultCurrency string
	// LookupTimeout bounds the GeoIP call. Zero means one second.
	LookupTimeout time.Duration
	Logger        func(context.Context, string, map[string]any)
}

type currencyService struct {
	geoip      GeoIPResolver
	fallback   string
	lookupWait time.Duration
	logger     func(context.Context, string, map[string]any)
}

// NewCurrencyService constructs a CurrencyService. Resolution order is
// explicit override, then GeoIP country, then the configured default.
func NewCurrencyService(deps CurrencyServiceDeps) (CurrencyService, error) {
	fallback := strings.ToUpper(strings.TrimSpace(deps.DefaultCurrency))
	if fallback == "" {
		fallback = "USD"
	}
	if !money.IsValidCode(fallback) {
		return nil, errors.New("currency service: default currency is not a valid ISO 4217 code")
	}
	wait := deps.LookupTimeout
	if wait <= 0 {
		wait = time.Second
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &currencyService{
		geoip:      deps.GeoIP,
		fallback:   fallback,
		lookupWait: wait,
		logger:     logger,
	}, nil
}

func (s *currencyService) Resolve(ctx context.Context, req CurrencyRequest) string {
	if override, err := money.NormalizeCode(req.Override); err == nil && override != "" {
		return override
	} else if strings.TrimSpace(req.Override) != "" {
		s.logger(ctx, "currency_override_invalid", map[string]any{"override": req.Override})
	}

	if s.geoip != nil && strings.TrimSpace(req.ClientIP) != "" {
		lookupCtx, cancel := context.WithTimeout(ctx, s.lookupWait)
		country, err := s.geoip.CountryCode(lookupCtx, req.ClientIP)
		cancel()
		if err == nil {
			if code, ok := countryCurrencies[country]; ok {
				return code
			}
		} else {
			s.logger(ctx, "currency_geoip_failed", map[string]any{"error": err.Error()})
		}
	}

	return s.fallback
}

// countryCurrencies maps ISO 3166-1 alpha-2 country codes to the currency the
// studio bills in for that market. Unlisted countries use the default.
var countryCurrencies = map[string]string{
	"US": "USD",
	"CA": "CAD",
	"GB": "GBP",
	"AU": "AUD",
	"NZ": "NZD",
	"JP": "JPY",
	"CH": "CHF",
	"SE": "SEK",
	"NO": "NOK",
	"DK": "DKK",
	"IN": "INR",
	"SG": "SGD",
	"HK": "HKD",
	"AE": "AED",
	"ZA": "ZAR",
	"BR": "BRL",
	"MX": "MXN",
	// Eurozone members.
	"DE": "EUR", "FR": "EUR", "ES": "EUR", "IT": "EUR", "NL": "EUR",
	"BE": "EUR", "AT": "EUR", "IE": "EUR", "PT": "EUR", "FI": "EUR",
	"GR": "EUR", "LU": "EUR", "SK": "EUR", "SI": "EUR", "EE": "EUR",
	"LV": "EUR", "LT": "EUR", "CY": "EUR", "MT": "EUR", "HR": "EUR",
}
