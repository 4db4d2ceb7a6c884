package geoip

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestCountryCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("ip") != "93.184.216.34" {
			t.Errorf("unexpected ip query %q", r.URL.Query().Get("ip"))
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("unexpected key query %q", r.URL.Query().Get("key"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"country_code":"de"}`))
	}))
	defer server.Close()

	client, err := NewClient(Deps{Endpoint: server.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	code, err := client.CountryCode(context.Background(), "93.184.216.34")
	if err != nil {
		t.Fatalf("CountryCode: %v", err)
	}
	if code != "DE" {
		t.Fatalf("expected DE, got %q", code)
	}
}

func TestCountryCodeRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"country_code":"GB"}`))
	}))
	defer server.Close()

	client, err := NewClient(Deps{Endpoint: server.URL, MaxAttempts: 3})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	code, err := client.CountryCode(context.Background(), "93.184.216.34")
	if err != nil {
		t.Fatalf("CountryCode: %v", err)
	}
	if code != "GB" {
		t.Fatalf("expected GB, got %q", code)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestCountryCodeGivesUpAfterMaxAttempts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(Deps{Endpoint: server.URL, MaxAttempts: 2})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.CountryCode(context.Background(), "93.184.216.34")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestCountryCodeDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client, err := NewClient(Deps{Endpoint: server.URL, MaxAttempts: 3})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := client.CountryCode(context.Background(), "93.184.216.34"); err == nil {
		t.Fatal("expected error for 403 response")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected single attempt, got %d", calls.Load())
	}
}

func TestCountryCodeRejectsNonPublicAddresses(t *testing.T) {
	client, err := NewClient(Deps{Endpoint: "http://geoip.invalid"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	cases := []string{"127.0.0.1", "10.1.2.3", "192.168.0.5", "0.0.0.0", "::1"}
	for _, addr := range cases {
		if _, err := client.CountryCode(context.Background(), addr); !errors.Is(err, ErrPrivateAddress) {
			t.Fatalf("expected ErrPrivateAddress for %s, got %v", addr, err)
		}
	}

	if _, err := client.CountryCode(context.Background(), "not-an-ip"); err == nil {
		t.Fatal("expected error for invalid address")
	}
}
