package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	domain "github.com/lumenweb/api/internal/domain"
	"github.com/lumenweb/api/internal/services"
)

func newProjectRouter(h *ProjectHandlers) chi.Router {
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func TestCreateProject(t *testing.T) {
	projects := &stubProjectService{project: domain.Project{
		ID: "p1", UserID: "uid-1", Name: "Bakery site",
		Status: domain.ProjectStatusPending, Currency: "USD",
		SetupFee: 62, MonthlyFee: 5, InvoiceID: "inv-1",
	}}
	h := NewProjectHandlers(nil, projects)

	payload := `{"name":"Bakery site","currency":"USD","selection":{"package":"static","hostingDuration":"yearly","addons":["logoDesign"]}}`
	req := withIdentity(jsonRequest(http.MethodPost, "/", payload), "uid-1")
	rr := httptest.NewRecorder()
	newProjectRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var body projectPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.ID != "p1" || body.InvoiceID != "inv-1" {
		t.Fatalf("unexpected payload: %+v", body)
	}
	if projects.gotCreate.UserID != "uid-1" {
		t.Fatalf("command should carry the authenticated uid, got %q", projects.gotCreate.UserID)
	}
	if projects.gotCreate.Selection.HostingDuration != domain.DurationYearly {
		t.Fatalf("selection not parsed, got %q", projects.gotCreate.Selection.HostingDuration)
	}
}

func TestCreateProjectRequiresIdentity(t *testing.T) {
	h := NewProjectHandlers(nil, &stubProjectService{})

	rr := httptest.NewRecorder()
	newProjectRouter(h).ServeHTTP(rr, jsonRequest(http.MethodPost, "/", `{"name":"x"}`))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestCreateProjectRejectsBadSelection(t *testing.T) {
	h := NewProjectHandlers(nil, &stubProjectService{})

	payload := `{"name":"x","selection":{"package":"static","addons":["notAThing"]}}`
	req := withIdentity(jsonRequest(http.MethodPost, "/", payload), "uid-1")
	rr := httptest.NewRecorder()
	newProjectRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestGetProjectNotFound(t *testing.T) {
	h := NewProjectHandlers(nil, &stubProjectService{err: services.ErrProjectNotFound})

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/p1", nil), "uid-1")
	rr := httptest.NewRecorder()
	newProjectRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestUpdateProjectRequiresEditableField(t *testing.T) {
	h := NewProjectHandlers(nil, &stubProjectService{})

	req := withIdentity(jsonRequest(http.MethodPatch, "/p1", `{"unknown":1}`), "uid-1")
	rr := httptest.NewRecorder()
	newProjectRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestUpdateProjectPassesStatus(t *testing.T) {
	projects := &stubProjectService{project: domain.Project{ID: "p1", Status: domain.ProjectStatusActive}}
	h := NewProjectHandlers(nil, projects)

	req := withIdentity(jsonRequest(http.MethodPatch, "/p1", `{"status":"active"}`), "uid-1")
	rr := httptest.NewRecorder()
	newProjectRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if projects.gotUpdate.Status == nil || *projects.gotUpdate.Status != domain.ProjectStatusActive {
		t.Fatalf("status not forwarded: %+v", projects.gotUpdate)
	}
}

func TestCancelProjectConflict(t *testing.T) {
	h := NewProjectHandlers(nil, &stubProjectService{err: services.ErrProjectImmutable})

	req := withIdentity(jsonRequest(http.MethodPost, "/p1/cancel", ""), "uid-1")
	rr := httptest.NewRecorder()
	newProjectRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rr.Code)
	}
}
