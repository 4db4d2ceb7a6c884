package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domain "github.com/lumenweb/api/internal/domain"
	"github.com/lumenweb/api/internal/platform/money"
	"github.com/lumenweb/api/internal/repositories"
)

const defaultCatalogTTL = 24 * time.Hour

// ErrInvalidCurrency is returned when a currency code fails ISO 4217 validation.
var ErrInvalidCurrency = errors.New("catalog: invalid currency code")

// ErrInvalidCatalog is returned when an upserted catalog carries negative prices.
var ErrInvalidCatalog = errors.New("catalog: invalid catalog")

// CatalogServiceDeps bundles constructor inputs for the catalog service.
type CatalogServiceDeps struct {
	Catalogs repositories.CatalogRepository
	// CacheTTL bounds how long a fetched catalog is served from memory. Zero
	// means the default of 24 hours.
	CacheTTL time.Duration
	Clock    func() time.Time
	Logger   func(context.Context, string, map[string]any)
}

type catalogCacheEntry struct {
	catalog   domain.PriceCatalog
	fetchedAt time.Time
}

type catalogService struct {
	catalogs repositories.CatalogRepository
	ttl      time.Duration
	now      func() time.Time
	logger   func(context.Context, string, map[string]any)

	mu       sync.Mutex
	cache    map[string]catalogCacheEntry
	inflight map[string]chan struct{}
}

// NewCatalogService constructs a CatalogService with memoisation and
// per-currency fetch deduplication.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Catalogs == nil {
		return nil, errors.New("catalog service requires catalog repository")
	}
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = defaultCatalogTTL
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &catalogService{
		catalogs: deps.Catalogs,
		ttl:      ttl,
		now:      func() time.Time { return now().UTC() },
		logger:   logger,
		cache:    make(map[string]catalogCacheEntry),
		inflight: make(map[string]chan struct{}),
	}, nil
}

// Catalog returns the price catalog for the currency. Missing or unreachable
// catalogs degrade to the built-in rate card so quoting never fails. Concurrent
// callers for the same currency share a single fetch.
func (s *catalogService) Catalog(ctx context.Context, currency string) (PriceCatalog, error) {
	code, err := money.NormalizeCode(currency)
	if err != nil {
		return PriceCatalog{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}

	for {
		s.mu.Lock()
		if entry, ok := s.cache[code]; ok && s.now().Sub(entry.fetchedAt) < s.ttl {
			s.mu.Unlock()
			return entry.catalog, nil
		}
		if wait, ok := s.inflight[code]; ok {
			s.mu.Unlock()
			select {
			case <-wait:
				continue
			case <-ctx.Done():
				return PriceCatalog{}, ctx.Err()
			}
		}
		done := make(chan struct{})
		s.inflight[code] = done
		s.mu.Unlock()

		catalog := s.fetch(ctx, code)

		s.mu.Lock()
		s.cache[code] = catalogCacheEntry{catalog: catalog, fetchedAt: s.now()}
		delete(s.inflight, code)
		close(done)
		s.mu.Unlock()
		return catalog, nil
	}
}

func (s *catalogService) fetch(ctx context.Context, code string) domain.PriceCatalog {
	stored, err := s.catalogs.FindByCurrency(ctx, code)
	if err != nil {
		fields := map[string]any{"currency": code, "error": err.Error()}
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsNotFound() {
			s.logger(ctx, "catalog_default_fallback", fields)
		} else {
			s.logger(ctx, "catalog_fetch_failed", fields)
		}
		return DefaultCatalog(code)
	}
	return mergeCatalogDefaults(stored, code)
}

// UpsertCatalog validates and stores an edited catalog, then drops the cached copy.
func (s *catalogService) UpsertCatalog(ctx context.Context, catalog PriceCatalog) (PriceCatalog, error) {
	code, err := money.NormalizeCode(catalog.Currency)
	if err != nil {
		return PriceCatalog{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, catalog.Currency)
	}
	catalog.Currency = code

	for tier, price := range catalog.Packages {
		if price.Setup < 0 || price.Monthly < 0 {
			return PriceCatalog{}, fmt.Errorf("%w: negative price for package %s", ErrInvalidCatalog, tier)
		}
	}
	for key, price := range catalog.Addons {
		if price < 0 {
			return PriceCatalog{}, fmt.Errorf("%w: negative price for add-on %s", ErrInvalidCatalog, key)
		}
	}
	for key, pct := range catalog.Discounts {
		if pct < 0 || pct > 100 {
			return PriceCatalog{}, fmt.Errorf("%w: discount for %s outside [0,100]", ErrInvalidCatalog, key)
		}
	}

	saved, err := s.catalogs.Save(ctx, catalog)
	if err != nil {
		return PriceCatalog{}, fmt.Errorf("catalog: save %s: %w", code, err)
	}

	s.mu.Lock()
	delete(s.cache, code)
	s.mu.Unlock()

	return mergeCatalogDefaults(saved, code), nil
}

// Currencies lists currency codes with a stored catalog.
func (s *catalogService) Currencies(ctx context.Context) ([]string, error) {
	codes, err := s.catalogs.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list currencies: %w", err)
	}
	return codes, nil
}

// mergeCatalogDefaults fills gaps in a stored catalog from the built-in rate
// card so downstream consumers always see a fully populated table.
func mergeCatalogDefaults(catalog domain.PriceCatalog, code string) domain.PriceCatalog {
	merged := DefaultCatalog(code)
	merged.UpdatedAt = catalog.UpdatedAt
	for tier, price := range catalog.Packages {
		if price.Setup >= 0 && price.Monthly >= 0 {
			merged.Packages[tier] = price
		}
	}
	for key, price := range catalog.Addons {
		if price >= 0 {
			merged.Addons[key] = price
		}
	}
	for key, pct := range catalog.Discounts {
		if pct >= 0 && pct <= 100 {
			merged.Discounts[key] = pct
		}
	}
	return merged
}
