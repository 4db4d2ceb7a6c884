package firestore

import (
	"context"
	"errors"

	pfirestore "github.com/lumenweb/api/internal/platform/firestore"
	"github.com/lumenweb/api/internal/repositories"
)

// Registry bundles all Firestore-backed repositories behind the
// repositories.Registry interface.
type Registry struct {
	provider *pfirestore.Provider

	catalogs *CatalogRepository
	projects *ProjectRepository
	invoices *InvoiceRepository
	tickets  *TicketRepository
	users    *UserRepository
	content  *ContentRepository
	counters *CounterRepository
	health   repositories.HealthRepository
}

var _ repositories.Registry = (*Registry)(nil)

// NewRegistry constructs all repositories over a shared Firestore provider.
// Extra dependency checks (Pub/Sub, GeoIP) are folded into the health repository.
func NewRegistry(provider *pfirestore.Provider, extraChecks ...repositories.DependencyCheck) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("registry requires firestore provider")
	}

	catalogs, err := NewCatalogRepository(provider)
	if err != nil {
		return nil, err
	}
	projects, err := NewProjectRepository(provider)
	if err != nil {
		return nil, err
	}
	invoices, err := NewInvoiceRepository(provider)
	if err != nil {
		return nil, err
	}
	tickets, err := NewTicketRepository(provider)
	if err != nil {
		return nil, err
	}
	users, err := NewUserRepository(provider)
	if err != nil {
		return nil, err
	}
	content, err := NewContentRepository(provider)
	if err != nil {
		return nil, err
	}
	counters, err := NewCounterRepository(provider)
	if err != nil {
		return nil, err
	}

	checks := append([]repositories.DependencyCheck{
		{
			Name: "firestore",
			Check: func(ctx context.Context) error {
				_, err := provider.Client(ctx)
				return err
			},
		},
	}, extraChecks...)

	health, err := repositories.NewDependencyHealthRepository(checks)
	if err != nil {
		return nil, err
	}

	return &Registry{
		provider: provider,
		catalogs: catalogs,
		projects: projects,
		invoices: invoices,
		tickets:  tickets,
		users:    users,
		content:  content,
		counters: counters,
		health:   health,
	}, nil
}

// Close releases the underlying Firestore client.
func (r *Registry) Close(ctx context.Context) error {
	if r == nil || r.provider == nil {
		return nil
	}
	return r.provider.Close(ctx)
}

func (r *Registry) Catalogs() repositories.CatalogRepository { return r.catalogs }
func (r *Registry) Projects() repositories.ProjectRepository { return r.projects }
func (r *Registry) Invoices() repositories.InvoiceRepository { return r.invoices }
func (r *Registry) Tickets() repositories.TicketRepository   { return r.tickets }
func (r *Registry) Users() repositories.UserRepository       { return r.users }
func (r *Registry) Content() repositories.ContentRepository  { return r.content }
func (r *Registry) Counters() repositories.CounterRepository { return r.counters }
func (r *Registry) Health() repositories.HealthRepository    { return r.health }
