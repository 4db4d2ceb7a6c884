package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	domain "github.com/lumenweb/api/internal/domain"
)

func newMeRouter(h *MeHandlers) chi.Router {
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func TestGetProfileProvisionsFromIdentity(t *testing.T) {
	users := &stubUserService{profile: domain.UserProfile{
		UID: "uid-1", Email: "uid-1@example.com", DisplayName: "Sam",
	}}
	h := NewMeHandlers(nil, users)

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), "uid-1")
	rr := httptest.NewRecorder()
	newMeRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if users.gotProvision.UID != "uid-1" || users.gotProvision.Email != "uid-1@example.com" {
		t.Fatalf("identity not forwarded: %+v", users.gotProvision)
	}

	var body profilePayload
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.DisplayName != "Sam" {
		t.Fatalf("unexpected payload: %+v", body)
	}
}

func TestUpdateProfileEndpoint(t *testing.T) {
	users := &stubUserService{profile: domain.UserProfile{UID: "uid-1", Company: "New Co"}}
	h := NewMeHandlers(nil, users)

	req := withIdentity(jsonRequest(http.MethodPatch, "/", `{"company":"New Co","preferredCurrency":"EUR"}`), "uid-1")
	rr := httptest.NewRecorder()
	newMeRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if users.gotUpdate.Company == nil || *users.gotUpdate.Company != "New Co" {
		t.Fatalf("company not forwarded: %+v", users.gotUpdate)
	}
	if users.gotUpdate.PreferredCurrency == nil || *users.gotUpdate.PreferredCurrency != "EUR" {
		t.Fatalf("currency not forwarded: %+v", users.gotUpdate)
	}
	if users.gotUpdate.DisplayName != nil {
		t.Fatal("untouched fields must stay nil")
	}
}

func TestUpdateProfileRejectsUnknownField(t *testing.T) {
	h := NewMeHandlers(nil, &stubUserService{})

	req := withIdentity(jsonRequest(http.MethodPatch, "/", `{"email":"new@example.com"}`), "uid-1")
	rr := httptest.NewRecorder()
	newMeRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("email must not be editable, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestUpdateProfileRejectsEmptyBody(t *testing.T) {
	h := NewMeHandlers(nil, &stubUserService{})

	req := withIdentity(jsonRequest(http.MethodPatch, "/", `{}`), "uid-1")
	rr := httptest.NewRecorder()
	newMeRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestMeRequiresIdentity(t *testing.T) {
	h := NewMeHandlers(nil, &stubUserService{})

	rr := httptest.NewRecorder()
	newMeRouter(h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}
