package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/lumenweb/api/internal/domain"
	pfirestore "github.com/lumenweb/api/internal/platform/firestore"
)

const catalogCollection = "priceCatalogs"

type packagePriceDocument struct {
	Setup   float64 `firestore:"setup"`
	Monthly float64 `firestore:"monthly"`
}

type catalogDocument struct {
	Currency  string                          `firestore:"currency"`
	Packages  map[string]packagePriceDocument `firestore:"packages"`
	Addons    map[string]float64              `firestore:"addons"`
	Discounts map[string]float64              `firestore:"discounts"`
	UpdatedAt time.Time                       `firestore:"updatedAt"`
}

// CatalogRepository persists per-currency price catalogs. Documents are keyed
// by upper-cased currency code.
type CatalogRepository struct {
	base *pfirestore.BaseRepository[catalogDocument]
}

// NewCatalogRepository constructs a Firestore-backed catalog repository.
func NewCatalogRepository(provider *pfirestore.Provider) (*CatalogRepository, error) {
	if provider == nil {
		return nil, errors.New("catalog repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[catalogDocument](provider, catalogCollection)
	return &CatalogRepository{base: base}, nil
}

// FindByCurrency loads the catalog for the given currency code.
func (r *CatalogRepository) FindByCurrency(ctx context.Context, currency string) (domain.PriceCatalog, error) {
	if r == nil || r.base == nil {
		return domain.PriceCatalog{}, errors.New("catalog repository not initialised")
	}
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		return domain.PriceCatalog{}, errors.New("currency code is required")
	}

	doc, err := r.base.Get(ctx, code)
	if err != nil {
		return domain.PriceCatalog{}, err
	}
	catalog := toDomainCatalog(doc.Data)
	catalog.Currency = code
	if catalog.UpdatedAt.IsZero() {
		catalog.UpdatedAt = doc.UpdateTime
	}
	return catalog, nil
}

// Save upserts the catalog under its currency code.
func (r *CatalogRepository) Save(ctx context.Context, catalog domain.PriceCatalog) (domain.PriceCatalog, error) {
	if r == nil || r.base == nil {
		return domain.PriceCatalog{}, errors.New("catalog repository not initialised")
	}
	code := strings.ToUpper(strings.TrimSpace(catalog.Currency))
	if code == "" {
		return domain.PriceCatalog{}, errors.New("currency code is required")
	}

	now := time.Now().UTC()
	doc := fromDomainCatalog(catalog, now)
	doc.Currency = code

	if err := r.base.Set(ctx, code, doc); err != nil {
		return domain.PriceCatalog{}, err
	}
	saved := toDomainCatalog(doc)
	saved.Currency = code
	return saved, nil
}

// ListCurrencies returns the currency codes with a stored catalog.
func (r *CatalogRepository) ListCurrencies(ctx context.Context) ([]string, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("catalog repository not initialised")
	}
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy(firestore.DocumentID, firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(docs))
	for _, doc := range docs {
		codes = append(codes, doc.ID)
	}
	return codes, nil
}

func toDomainCatalog(doc catalogDocument) domain.PriceCatalog {
	catalog := domain.PriceCatalog{
		Currency:  strings.ToUpper(strings.TrimSpace(doc.Currency)),
		UpdatedAt: doc.UpdatedAt,
	}
	if len(doc.Packages) > 0 {
		catalog.Packages = make(map[domain.PackageTier]domain.PackagePrice, len(doc.Packages))
		for tier, price := range doc.Packages {
			parsed, err := domain.ParsePackageTier(tier)
			if err != nil {
				continue
			}
			catalog.Packages[parsed] = domain.PackagePrice{Setup: price.Setup, Monthly: price.Monthly}
		}
	}
	if len(doc.Addons) > 0 {
		catalog.Addons = make(map[domain.AddonKey]float64, len(doc.Addons))
		for key, price := range doc.Addons {
			parsed, err := domain.ParseAddonKey(key)
			if err != nil {
				continue
			}
			catalog.Addons[parsed] = price
		}
	}
	if len(doc.Discounts) > 0 {
		catalog.Discounts = make(map[domain.DurationKey]float64, len(doc.Discounts))
		for key, pct := range doc.Discounts {
			parsed, err := domain.ParseDuration(key)
			if err != nil {
				continue
			}
			catalog.Discounts[parsed] = pct
		}
	}
	return catalog
}

func fromDomainCatalog(catalog domain.PriceCatalog, now time.Time) catalogDocument {
	doc := catalogDocument{
		Currency:  strings.ToUpper(strings.TrimSpace(catalog.Currency)),
		UpdatedAt: now,
	}
	if len(catalog.Packages) > 0 {
		doc.Packages = make(map[string]packagePriceDocument, len(catalog.Packages))
		for tier, price := range catalog.Packages {
			doc.Packages[string(tier)] = packagePriceDocument{Setup: price.Setup, Monthly: price.Monthly}
		}
	}
	if len(catalog.Addons) > 0 {
		doc.Addons = make(map[string]float64, len(catalog.Addons))
		for key, price := range catalog.Addons {
			doc.Addons[string(key)] = price
		}
	}
	if len(catalog.Discounts) > 0 {
		doc.Discounts = make(map[string]float64, len(catalog.Discounts))
		for key, pct := range catalog.Discounts {
			doc.Discounts[string(key)] = pct
		}
	}
	return doc
}
