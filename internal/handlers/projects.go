package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/lumenweb/api/internal/domain"
	"github.com/lumenweb/api/internal/platform/auth"
	"github.com/lumenweb/api/internal/platform/httpx"
	"github.com/lumenweb/api/internal/services"
)

// ProjectHandlers exposes authenticated project endpoints for the client portal.
type ProjectHandlers struct {
	authn    *auth.Authenticator
	projects services.ProjectService
}

// NewProjectHandlers constructs handlers for the /projects route group.
func NewProjectHandlers(authn *auth.Authenticator, projects services.ProjectService) *ProjectHandlers {
	return &ProjectHandlers{authn: authn, projects: projects}
}

// Routes wires the project endpoints onto the provided router.
func (h *ProjectHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Post("/", h.createProject)
	r.Get("/", h.listProjects)
	r.Get("/{projectId}", h.getProject)
	r.Patch("/{projectId}", h.updateProject)
	r.Post("/{projectId}/cancel", h.cancelProject)
}

type createProjectRequest struct {
	Name      string           `json:"name"`
	Currency  string           `json:"currency"`
	Selection selectionRequest `json:"selection"`
	Notes     string           `json:"notes"`
}

func (h *ProjectHandlers) createProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w, h.projects != nil, "project")
	if !ok {
		return
	}

	var req createProjectRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	sel, err := parseSelection(req.Selection)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_selection", err.Error(), http.StatusBadRequest))
		return
	}

	project, err := h.projects.CreateProject(ctx, services.CreateProjectCommand{
		UserID:    identity.UID,
		Name:      req.Name,
		Currency:  req.Currency,
		Selection: sel,
		Notes:     req.Notes,
	})
	if err != nil {
		writeProjectError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, projectPayloadFrom(project))
}

func (h *ProjectHandlers) listProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w, h.projects != nil, "project")
	if !ok {
		return
	}

	query := services.ProjectListQuery{Pager: paginationFromQuery(r)}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		query.Status = domain.ProjectStatus(raw)
	}

	page, err := h.projects.ListProjects(ctx, identity.UID, query)
	if err != nil {
		writeProjectError(ctx, w, err)
		return
	}

	items := make([]projectPayload, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, projectPayloadFrom(item))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"projects":        items,
		"next_page_token": page.NextPageToken,
	})
}

func (h *ProjectHandlers) getProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w, h.projects != nil, "project")
	if !ok {
		return
	}

	project, err := h.projects.GetProject(ctx, identity.UID, chi.URLParam(r, "projectId"))
	if err != nil {
		writeProjectError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, projectPayloadFrom(project))
}

type updateProjectRequest struct {
	Name   *string `json:"name"`
	Notes  *string `json:"notes"`
	Status *string `json:"status"`
}

func (h *ProjectHandlers) updateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w, h.projects != nil, "project")
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}
	if req.Name == nil && req.Notes == nil && req.Status == nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", errNoEditableFields.Error(), http.StatusBadRequest))
		return
	}

	cmd := services.UpdateProjectCommand{
		UserID:    identity.UID,
		ProjectID: chi.URLParam(r, "projectId"),
		Name:      req.Name,
		Notes:     req.Notes,
	}
	if req.Status != nil {
		status := domain.ProjectStatus(strings.TrimSpace(*req.Status))
		cmd.Status = &status
	}

	project, err := h.projects.UpdateProject(ctx, cmd)
	if err != nil {
		writeProjectError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, projectPayloadFrom(project))
}

func (h *ProjectHandlers) cancelProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w, h.projects != nil, "project")
	if !ok {
		return
	}

	project, err := h.projects.CancelProject(ctx, identity.UID, chi.URLParam(r, "projectId"))
	if err != nil {
		writeProjectError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, projectPayloadFrom(project))
}

type projectPayload struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Status     string           `json:"status"`
	Currency   string           `json:"currency"`
	Selection  selectionRequest `json:"selection"`
	SetupFee   float64          `json:"setupFee"`
	MonthlyFee float64          `json:"monthlyFee"`
	InvoiceID  string           `json:"invoiceId,omitempty"`
	Notes      string           `json:"notes,omitempty"`
	CreatedAt  string           `json:"createdAt,omitempty"`
	UpdatedAt  string           `json:"updatedAt,omitempty"`
}

func projectPayloadFrom(project domain.Project) projectPayload {
	return projectPayload{
		ID:         project.ID,
		Name:       project.Name,
		Status:     string(project.Status),
		Currency:   project.Currency,
		Selection:  selectionPayloadFrom(project.Selection),
		SetupFee:   project.SetupFee,
		MonthlyFee: project.MonthlyFee,
		InvoiceID:  project.InvoiceID,
		Notes:      project.Notes,
		CreatedAt:  formatTime(project.CreatedAt),
		UpdatedAt:  formatTime(project.UpdatedAt),
	}
}

func writeProjectError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("project_not_found", "project not found", http.StatusNotFound))
	case errors.Is(err, services.ErrProjectInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_project_field", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrProjectImmutable):
		httpx.WriteError(ctx, w, httpx.NewError("project_immutable", err.Error(), http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("project_error", "project operation failed", http.StatusInternalServerError))
	}
}
