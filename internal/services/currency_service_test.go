package services

import (
	"context"
	"testing"
)

func TestResolveExplicitOverrideWins(t *testing.T) {
	svc, err := NewCurrencyService(CurrencyServiceDeps{
		GeoIP:           &fakeGeoIP{country: "DE"},
		DefaultCurrency: "USD",
	})
	if err != nil {
		t.Fatalf("NewCurrencyService: %v", err)
	}

	got := svc.Resolve(context.Background(), CurrencyRequest{Override: "gbp", ClientIP: "93.184.216.34"})
	if got != "GBP" {
		t.Fatalf("expected GBP, got %s", got)
	}
}

func TestResolveInvalidOverrideFallsThrough(t *testing.T) {
	svc, err := NewCurrencyService(CurrencyServiceDeps{
		GeoIP:           &fakeGeoIP{country: "DE"},
		DefaultCurrency: "USD",
	})
	if err != nil {
		t.Fatalf("NewCurrencyService: %v", err)
	}

	got := svc.Resolve(context.Background(), CurrencyRequest{Override: "doubloons", ClientIP: "93.184.216.34"})
	if got != "EUR" {
		t.Fatalf("expected EUR from GeoIP, got %s", got)
	}
}

func TestResolveGeoIPCountryMapping(t *testing.T) {
	cases := map[string]string{
		"US": "USD",
		"GB": "GBP",
		"FR": "EUR",
		"JP": "JPY",
	}
	for country, want := range cases {
		svc, err := NewCurrencyService(CurrencyServiceDeps{
			GeoIP:           &fakeGeoIP{country: country},
			DefaultCurrency: "USD",
		})
		if err != nil {
			t.Fatalf("NewCurrencyService: %v", err)
		}
		if got := svc.Resolve(context.Background(), CurrencyRequest{ClientIP: "93.184.216.34"}); got != want {
			t.Fatalf("country %s: expected %s, got %s", country, want, got)
		}
	}
}

func TestResolveUnmappedCountryUsesDefault(t *testing.T) {
	svc, err := NewCurrencyService(CurrencyServiceDeps{
		GeoIP:           &fakeGeoIP{country: "AQ"},
		DefaultCurrency: "USD",
	})
	if err != nil {
		t.Fatalf("NewCurrencyService: %v", err)
	}
	if got := svc.Resolve(context.Background(), CurrencyRequest{ClientIP: "93.184.216.34"}); got != "USD" {
		t.Fatalf("expected default USD, got %s", got)
	}
}

func TestResolveGeoIPFailureUsesDefault(t *testing.T) {
	svc, err := NewCurrencyService(CurrencyServiceDeps{
		GeoIP:           &fakeGeoIP{err: errBoom},
		DefaultCurrency: "EUR",
	})
	if err != nil {
		t.Fatalf("NewCurrencyService: %v", err)
	}
	if got := svc.Resolve(context.Background(), CurrencyRequest{ClientIP: "93.184.216.34"}); got != "EUR" {
		t.Fatalf("expected default EUR, got %s", got)
	}
}

func TestResolveWithoutSignals(t *testing.T) {
	svc, err := NewCurrencyService(CurrencyServiceDeps{})
	if err != nil {
		t.Fatalf("NewCurrencyService: %v", err)
	}
	if got := svc.Resolve(context.Background(), CurrencyRequest{}); got != "USD" {
		t.Fatalf("expected built-in USD default, got %s", got)
	}
}

func TestNewCurrencyServiceRejectsBadDefault(t *testing.T) {
	if _, err := NewCurrencyService(CurrencyServiceDeps{DefaultCurrency: "coins"}); err == nil {
		t.Fatal("expected error for invalid default currency")
	}
}
