package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domain "github.com/lumenweb/api/internal/domain"
)

func TestCatalogFallsBackToDefaults(t *testing.T) {
	repo := newFakeCatalogRepo()
	var notes []string
	svc, err := NewCatalogService(CatalogServiceDeps{
		Catalogs: repo,
		Logger: func(_ context.Context, msg string, _ map[string]any) {
			notes = append(notes, msg)
		},
	})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}

	catalog, err := svc.Catalog(context.Background(), "usd")
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if catalog.Currency != "USD" {
		t.Fatalf("expected normalised currency USD, got %s", catalog.Currency)
	}
	if catalog.Packages[domain.PackageStatic].Setup != 59 {
		t.Fatalf("expected default static setup 59, got %v", catalog.Packages[domain.PackageStatic].Setup)
	}
	found := false
	for _, note := range notes {
		if note == "catalog_default_fallback" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected fallback log note, got %v", notes)
	}
}

func TestCatalogRejectsInvalidCurrency(t *testing.T) {
	svc, err := NewCatalogService(CatalogServiceDeps{Catalogs: newFakeCatalogRepo()})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}
	if _, err := svc.Catalog(context.Background(), "dollars"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
}

func TestCatalogMergesStoredOverDefaults(t *testing.T) {
	repo := newFakeCatalogRepo()
	repo.catalogs["EUR"] = domain.PriceCatalog{
		Currency: "EUR",
		Packages: map[domain.PackageTier]domain.PackagePrice{
			domain.PackageStatic: {Setup: 49, Monthly: 4},
		},
		Addons: map[domain.AddonKey]float64{
			domain.AddonLogoDesign: 25,
		},
	}
	svc, err := NewCatalogService(CatalogServiceDeps{Catalogs: repo})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}

	catalog, err := svc.Catalog(context.Background(), "EUR")
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if got := catalog.Packages[domain.PackageStatic]; got.Setup != 49 || got.Monthly != 4 {
		t.Fatalf("stored static price should win, got %+v", got)
	}
	if catalog.Packages[domain.PackageDynamic].Setup == 0 {
		t.Fatal("missing dynamic tier should be filled from defaults")
	}
	if catalog.Addons[domain.AddonLogoDesign] != 25 {
		t.Fatalf("stored add-on price should win, got %v", catalog.Addons[domain.AddonLogoDesign])
	}
	if catalog.Addons[domain.AddonLiveChat] != 5 {
		t.Fatalf("missing add-on should use default, got %v", catalog.Addons[domain.AddonLiveChat])
	}
	if catalog.Discounts[domain.DurationYearly] != 10 {
		t.Fatalf("missing discount should use default, got %v", catalog.Discounts[domain.DurationYearly])
	}
}

func TestCatalogCachesWithinTTL(t *testing.T) {
	repo := newFakeCatalogRepo()
	repo.catalogs["USD"] = domain.PriceCatalog{Currency: "USD"}

	current := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}
	svc, err := NewCatalogService(CatalogServiceDeps{
		Catalogs: repo,
		CacheTTL: time.Hour,
		Clock:    clock,
	})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Catalog(context.Background(), "USD"); err != nil {
			t.Fatalf("Catalog: %v", err)
		}
	}
	if repo.finds != 1 {
		t.Fatalf("expected single fetch within TTL, got %d", repo.finds)
	}

	mu.Lock()
	current = current.Add(2 * time.Hour)
	mu.Unlock()
	if _, err := svc.Catalog(context.Background(), "USD"); err != nil {
		t.Fatalf("Catalog after expiry: %v", err)
	}
	if repo.finds != 2 {
		t.Fatalf("expected refetch after TTL, got %d", repo.finds)
	}
}

func TestCatalogConcurrentCallersShareFetch(t *testing.T) {
	repo := newFakeCatalogRepo()
	repo.catalogs["USD"] = domain.PriceCatalog{Currency: "USD"}
	svc, err := NewCatalogService(CatalogServiceDeps{Catalogs: repo})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Catalog(context.Background(), "USD"); err != nil {
				t.Errorf("Catalog: %v", err)
			}
		}()
	}
	wg.Wait()

	if repo.finds > 2 {
		t.Fatalf("expected deduplicated fetches, got %d", repo.finds)
	}
}

func TestUpsertCatalogValidation(t *testing.T) {
	svc, err := NewCatalogService(CatalogServiceDeps{Catalogs: newFakeCatalogRepo()})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}

	_, err = svc.UpsertCatalog(context.Background(), domain.PriceCatalog{
		Currency: "USD",
		Addons:   map[domain.AddonKey]float64{domain.AddonLiveChat: -1},
	})
	if !errors.Is(err, ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog for negative add-on, got %v", err)
	}

	_, err = svc.UpsertCatalog(context.Background(), domain.PriceCatalog{
		Currency:  "USD",
		Discounts: map[domain.DurationKey]float64{domain.DurationYearly: 150},
	})
	if !errors.Is(err, ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog for out-of-range discount, got %v", err)
	}
}

func TestUpsertCatalogInvalidatesCache(t *testing.T) {
	repo := newFakeCatalogRepo()
	repo.catalogs["USD"] = domain.PriceCatalog{
		Currency: "USD",
		Packages: map[domain.PackageTier]domain.PackagePrice{
			domain.PackageStatic: {Setup: 59, Monthly: 5},
		},
	}
	svc, err := NewCatalogService(CatalogServiceDeps{Catalogs: repo})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}

	if _, err := svc.Catalog(context.Background(), "USD"); err != nil {
		t.Fatalf("Catalog: %v", err)
	}

	if _, err := svc.UpsertCatalog(context.Background(), domain.PriceCatalog{
		Currency: "USD",
		Packages: map[domain.PackageTier]domain.PackagePrice{
			domain.PackageStatic: {Setup: 79, Monthly: 6},
		},
	}); err != nil {
		t.Fatalf("UpsertCatalog: %v", err)
	}

	catalog, err := svc.Catalog(context.Background(), "USD")
	if err != nil {
		t.Fatalf("Catalog after upsert: %v", err)
	}
	if catalog.Packages[domain.PackageStatic].Setup != 79 {
		t.Fatalf("expected updated price after cache invalidation, got %v", catalog.Packages[domain.PackageStatic].Setup)
	}
}
