package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/lumenweb/api/internal/domain"
	pfirestore "github.com/lumenweb/api/internal/platform/firestore"
	"github.com/lumenweb/api/internal/repositories"
)

const projectCollection = "projects"

type selectionDocument struct {
	Package         string   `firestore:"package"`
	HostingDuration string   `firestore:"hostingDuration"`
	EmailDuration   string   `firestore:"emailDuration"`
	EmailAccounts   int      `firestore:"emailAccounts"`
	ProductCount    int      `firestore:"productCount"`
	SelectedPages   []string `firestore:"selectedPages"`
	CustomPages     []string `firestore:"customPages"`
	Addons          []string `firestore:"addons"`
}

type projectDocument struct {
	UserID     string            `firestore:"userId"`
	Name       string            `firestore:"name"`
	Status     string            `firestore:"status"`
	Currency   string            `firestore:"currency"`
	Selection  selectionDocument `firestore:"selection"`
	SetupFee   float64           `firestore:"setupFee"`
	MonthlyFee float64           `firestore:"monthlyFee"`
	InvoiceID  string            `firestore:"invoiceId,omitempty"`
	Notes      string            `firestore:"notes,omitempty"`
	CreatedAt  time.Time         `firestore:"createdAt"`
	UpdatedAt  time.Time         `firestore:"updatedAt"`
}

// ProjectRepository persists client website projects in Firestore.
type ProjectRepository struct {
	base *pfirestore.BaseRepository[projectDocument]
}

// NewProjectRepository constructs a Firestore-backed project repository.
func NewProjectRepository(provider *pfirestore.Provider) (*ProjectRepository, error) {
	if provider == nil {
		return nil, errors.New("project repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[projectDocument](provider, projectCollection)
	return &ProjectRepository{base: base}, nil
}

// Insert stores a new project document.
func (r *ProjectRepository) Insert(ctx context.Context, project domain.Project) error {
	if r == nil || r.base == nil {
		return errors.New("project repository not initialised")
	}
	if strings.TrimSpace(project.ID) == "" {
		return errors.New("project id is required")
	}
	err := r.base.Set(ctx, project.ID, fromDomainProject(project))
	return err
}

// Update overwrites the stored project document.
func (r *ProjectRepository) Update(ctx context.Context, project domain.Project) error {
	if r == nil || r.base == nil {
		return errors.New("project repository not initialised")
	}
	if strings.TrimSpace(project.ID) == "" {
		return errors.New("project id is required")
	}
	doc := fromDomainProject(project)
	doc.UpdatedAt = time.Now().UTC()
	err := r.base.Set(ctx, project.ID, doc)
	return err
}

// FindByID loads a project by its identifier.
func (r *ProjectRepository) FindByID(ctx context.Context, projectID string) (domain.Project, error) {
	if r == nil || r.base == nil {
		return domain.Project{}, errors.New("project repository not initialised")
	}
	if strings.TrimSpace(projectID) == "" {
		return domain.Project{}, errors.New("project id is required")
	}
	doc, err := r.base.Get(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	project := toDomainProject(doc.Data)
	project.ID = doc.ID
	return project, nil
}

// ListByUser returns the user's projects ordered newest first.
func (r *ProjectRepository) ListByUser(ctx context.Context, userID string, filter repositories.ProjectListFilter) (domain.CursorPage[domain.Project], error) {
	if r == nil || r.base == nil {
		return domain.CursorPage[domain.Project]{}, errors.New("project repository not initialised")
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return domain.CursorPage[domain.Project]{}, errors.New("user id is required")
	}

	limit := clampPageSize(filter.Pager.PageSize)
	after, err := decodePageToken(filter.Pager.PageToken)
	if err != nil {
		return domain.CursorPage[domain.Project]{}, err
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		q = q.Where("userId", "==", uid)
		if filter.Status != "" {
			q = q.Where("status", "==", string(filter.Status))
		}
		q = q.OrderBy("createdAt", firestore.Desc)
		if !after.IsZero() {
			q = q.StartAfter(after)
		}
		return q.Limit(limit + 1)
	})
	if err != nil {
		return domain.CursorPage[domain.Project]{}, err
	}

	projects := make([]domain.Project, 0, len(docs))
	for _, doc := range docs {
		project := toDomainProject(doc.Data)
		project.ID = doc.ID
		projects = append(projects, project)
	}
	return pageOf(projects, limit, func(p domain.Project) time.Time { return p.CreatedAt }), nil
}

func fromDomainProject(project domain.Project) projectDocument {
	return projectDocument{
		UserID:     strings.TrimSpace(project.UserID),
		Name:       strings.TrimSpace(project.Name),
		Status:     string(project.Status),
		Currency:   strings.ToUpper(strings.TrimSpace(project.Currency)),
		Selection:  fromDomainSelection(project.Selection),
		SetupFee:   project.SetupFee,
		MonthlyFee: project.MonthlyFee,
		InvoiceID:  strings.TrimSpace(project.InvoiceID),
		Notes:      project.Notes,
		CreatedAt:  project.CreatedAt,
		UpdatedAt:  project.UpdatedAt,
	}
}

func toDomainProject(doc projectDocument) domain.Project {
	return domain.Project{
		UserID:     doc.UserID,
		Name:       doc.Name,
		Status:     domain.ProjectStatus(doc.Status),
		Currency:   doc.Currency,
		Selection:  toDomainSelection(doc.Selection),
		SetupFee:   doc.SetupFee,
		MonthlyFee: doc.MonthlyFee,
		InvoiceID:  doc.InvoiceID,
		Notes:      doc.Notes,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
}

func fromDomainSelection(sel domain.Selection) selectionDocument {
	addons := make([]string, 0, len(sel.Addons))
	for _, addon := range sel.Addons {
		addons = append(addons, string(addon))
	}
	return selectionDocument{
		Package:         string(sel.Package),
		HostingDuration: string(sel.HostingDuration),
		EmailDuration:   string(sel.EmailDuration),
		EmailAccounts:   sel.EmailAccounts,
		ProductCount:    sel.ProductCount,
		SelectedPages:   append([]string(nil), sel.SelectedPages...),
		CustomPages:     append([]string(nil), sel.CustomPages...),
		Addons:          addons,
	}
}

func toDomainSelection(doc selectionDocument) domain.Selection {
	addons := make([]domain.AddonKey, 0, len(doc.Addons))
	for _, addon := range doc.Addons {
		addons = append(addons, domain.AddonKey(addon))
	}
	return domain.Selection{
		Package:         domain.PackageTier(doc.Package),
		HostingDuration: domain.DurationKey(doc.HostingDuration),
		EmailDuration:   domain.DurationKey(doc.EmailDuration),
		EmailAccounts:   doc.EmailAccounts,
		ProductCount:    doc.ProductCount,
		SelectedPages:   append([]string(nil), doc.SelectedPages...),
		CustomPages:     append([]string(nil), doc.CustomPages...),
		Addons:          addons,
	}
}
