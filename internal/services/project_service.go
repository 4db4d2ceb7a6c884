package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/lumenweb/api/internal/domain"
	"github.com/lumenweb/api/internal/repositories"
)

const (
	invoiceDueDays     = 7
	invoiceNumberWidth = 6
)

var (
	// ErrProjectNotFound is returned when the project does not exist or belongs to another user.
	ErrProjectNotFound = errors.New("project: not found")
	// ErrProjectInvalidInput is returned when a command carries invalid fields.
	ErrProjectInvalidInput = errors.New("project: invalid input")
	// ErrProjectImmutable is returned when mutating a completed or cancelled project.
	ErrProjectImmutable = errors.New("project: already finalised")
)

// ProjectServiceDeps bundles constructor inputs for the project service.
type ProjectServiceDeps struct {
	Projects repositories.ProjectRepository
	Invoices repositories.InvoiceRepository
	Counters repositories.CounterRepository
	Catalogs CatalogService
	Engine   *QuoteEngine
	// Publisher is optional; without it events are dropped with a log note.
	Publisher NotificationPublisher
	Clock     func() time.Time
	NewID     func() string
	Logger    func(context.Context, string, map[string]any)
}

type projectService struct {
	projects  repositories.ProjectRepository
	invoices  repositories.InvoiceRepository
	counters  repositories.CounterRepository
	catalogs  CatalogService
	engine    *QuoteEngine
	publisher NotificationPublisher
	now       func() time.Time
	newID     func() string
	logger    func(context.Context, string, map[string]any)
}

// NewProjectService constructs a ProjectService.
func NewProjectService(deps ProjectServiceDeps) (ProjectService, error) {
	if deps.Projects == nil {
		return nil, errors.New("project service requires project repository")
	}
	if deps.Invoices == nil {
		return nil, errors.New("project service requires invoice repository")
	}
	if deps.Counters == nil {
		return nil, errors.New("project service requires counter repository")
	}
	if deps.Catalogs == nil {
		return nil, errors.New("project service requires catalog service")
	}
	if deps.Engine == nil {
		return nil, errors.New("project service requires quote engine")
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	newID := deps.NewID
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &projectService{
		projects:  deps.Projects,
		invoices:  deps.Invoices,
		counters:  deps.Counters,
		catalogs:  deps.Catalogs,
		engine:    deps.Engine,
		publisher: deps.Publisher,
		now:       func() time.Time { return now().UTC() },
		newID:     newID,
		logger:    logger,
	}, nil
}

// CreateProject prices the selection server-side, persists the project, and
// generates its invoice. Client-provided totals are never trusted.
func (s *projectService) CreateProject(ctx context.Context, cmd CreateProjectCommand) (Project, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return Project{}, fmt.Errorf("%w: user id is required", ErrProjectInvalidInput)
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return Project{}, fmt.Errorf("%w: project name is required", ErrProjectInvalidInput)
	}

	catalog, err := s.catalogs.Catalog(ctx, cmd.Currency)
	if err != nil {
		return Project{}, err
	}
	quote := s.engine.ComputeQuote(ctx, catalog, cmd.Selection)

	now := s.now()
	project := domain.Project{
		ID:         s.newID(),
		UserID:     userID,
		Name:       name,
		Status:     domain.ProjectStatusPending,
		Currency:   catalog.Currency,
		Selection:  cmd.Selection,
		SetupFee:   quote.SetupFee,
		MonthlyFee: quote.MonthlyFee,
		Notes:      strings.TrimSpace(cmd.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	invoice, err := s.buildInvoice(ctx, project, quote, now)
	if err != nil {
		return Project{}, err
	}
	project.InvoiceID = invoice.ID

	if err := s.projects.Insert(ctx, project); err != nil {
		return Project{}, fmt.Errorf("project: insert: %w", err)
	}
	if err := s.invoices.Insert(ctx, invoice); err != nil {
		return Project{}, fmt.Errorf("project: insert invoice: %w", err)
	}

	s.publish(ctx, NotificationMessage{
		Event:      "project.created",
		UserID:     userID,
		ResourceID: project.ID,
		OccurredAt: now,
		Payload: map[string]any{
			"invoiceId":     invoice.ID,
			"invoiceNumber": invoice.Number,
			"currency":      project.Currency,
			"setupFee":      project.SetupFee,
			"monthlyFee":    project.MonthlyFee,
		},
	})

	return project, nil
}

func (s *projectService) buildInvoice(ctx context.Context, project domain.Project, quote domain.Quote, now time.Time) (domain.Invoice, error) {
	counterID := fmt.Sprintf("invoices-%s", now.Format("200601"))
	seq, err := s.counters.Next(ctx, counterID)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("project: invoice number: %w", err)
	}

	lines := make([]domain.InvoiceLineItem, 0, len(quote.Breakdown))
	for _, line := range quote.Breakdown {
		lines = append(lines, domain.InvoiceLineItem{
			Label:           line.Label,
			Amount:          line.Amount,
			Recurring:       line.Recurring,
			BilledAsOneTime: line.BilledAsOneTime,
		})
	}

	return domain.Invoice{
		ID:         s.newID(),
		Number:     fmt.Sprintf("INV-%s-%0*d", now.Format("200601"), invoiceNumberWidth, seq),
		UserID:     project.UserID,
		ProjectID:  project.ID,
		Currency:   project.Currency,
		SetupFee:   quote.SetupFee,
		MonthlyFee: quote.MonthlyFee,
		Lines:      lines,
		Status:     domain.InvoiceStatusPending,
		DueDate:    now.AddDate(0, 0, invoiceDueDays),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// GetProject loads a project scoped to the requesting user. Projects owned by
// other users behave as missing.
func (s *projectService) GetProject(ctx context.Context, userID, projectID string) (Project, error) {
	project, err := s.findOwned(ctx, userID, projectID)
	if err != nil {
		return Project{}, err
	}
	return project, nil
}

// ListProjects returns a page of the user's projects.
func (s *projectService) ListProjects(ctx context.Context, userID string, query ProjectListQuery) (domain.CursorPage[Project], error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return domain.CursorPage[Project]{}, fmt.Errorf("%w: user id is required", ErrProjectInvalidInput)
	}
	page, err := s.projects.ListByUser(ctx, uid, repositories.ProjectListFilter{
		Status: query.Status,
		Pager:  query.Pager,
	})
	if err != nil {
		return domain.CursorPage[Project]{}, fmt.Errorf("project: list: %w", err)
	}
	return page, nil
}

// UpdateProject mutates the project name, notes, or status.
func (s *projectService) UpdateProject(ctx context.Context, cmd UpdateProjectCommand) (Project, error) {
	project, err := s.findOwned(ctx, cmd.UserID, cmd.ProjectID)
	if err != nil {
		return Project{}, err
	}
	if project.Status == domain.ProjectStatusCompleted || project.Status == domain.ProjectStatusCancelled {
		return Project{}, ErrProjectImmutable
	}

	if cmd.Name != nil {
		name := strings.TrimSpace(*cmd.Name)
		if name == "" {
			return Project{}, fmt.Errorf("%w: project name cannot be empty", ErrProjectInvalidInput)
		}
		project.Name = name
	}
	if cmd.Notes != nil {
		project.Notes = strings.TrimSpace(*cmd.Notes)
	}
	if cmd.Status != nil {
		next := *cmd.Status
		if !validProjectTransition(project.Status, next) {
			return Project{}, fmt.Errorf("%w: cannot move project from %s to %s", ErrProjectInvalidInput, project.Status, next)
		}
		project.Status = next
	}

	project.UpdatedAt = s.now()
	if err := s.projects.Update(ctx, project); err != nil {
		return Project{}, fmt.Errorf("project: update: %w", err)
	}
	return project, nil
}

// CancelProject cancels a pending or active project and voids its open invoice.
func (s *projectService) CancelProject(ctx context.Context, userID, projectID string) (Project, error) {
	project, err := s.findOwned(ctx, userID, projectID)
	if err != nil {
		return Project{}, err
	}
	if project.Status == domain.ProjectStatusCompleted || project.Status == domain.ProjectStatusCancelled {
		return Project{}, ErrProjectImmutable
	}

	now := s.now()
	project.Status = domain.ProjectStatusCancelled
	project.UpdatedAt = now
	if err := s.projects.Update(ctx, project); err != nil {
		return Project{}, fmt.Errorf("project: cancel: %w", err)
	}

	if project.InvoiceID != "" {
		invoice, err := s.invoices.FindByID(ctx, project.InvoiceID)
		if err == nil && invoice.Status == domain.InvoiceStatusPending {
			invoice.ID = project.InvoiceID
			invoice.Status = domain.InvoiceStatusCancelled
			invoice.UpdatedAt = now
			if err := s.invoices.Update(ctx, invoice); err != nil {
				s.logger(ctx, "project_cancel_invoice_failed", map[string]any{
					"projectId": project.ID,
					"invoiceId": project.InvoiceID,
					"error":     err.Error(),
				})
			}
		}
	}

	s.publish(ctx, NotificationMessage{
		Event:      "project.cancelled",
		UserID:     project.UserID,
		ResourceID: project.ID,
		OccurredAt: now,
	})
	return project, nil
}

func (s *projectService) findOwned(ctx context.Context, userID, projectID string) (domain.Project, error) {
	uid := strings.TrimSpace(userID)
	id := strings.TrimSpace(projectID)
	if uid == "" || id == "" {
		return domain.Project{}, fmt.Errorf("%w: user id and project id are required", ErrProjectInvalidInput)
	}

	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsNotFound() {
			return domain.Project{}, ErrProjectNotFound
		}
		return domain.Project{}, fmt.Errorf("project: find %s: %w", id, err)
	}
	if project.UserID != uid {
		return domain.Project{}, ErrProjectNotFound
	}
	return project, nil
}

func (s *projectService) publish(ctx context.Context, message NotificationMessage) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.PublishNotification(ctx, message); err != nil {
		s.logger(ctx, "notification_publish_failed", map[string]any{
			"event": message.Event,
			"error": err.Error(),
		})
	}
}

func validProjectTransition(from, to domain.ProjectStatus) bool {
	switch from {
	case domain.ProjectStatusPending:
		return to == domain.ProjectStatusActive || to == domain.ProjectStatusCancelled
	case domain.ProjectStatusActive:
		return to == domain.ProjectStatusCompleted || to == domain.ProjectStatusCancelled
	default:
		return false
	}
}
