package repositories

import (
	"context"

	domain "github.com/lumenweb/api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Catalogs() CatalogRepository
	Projects() ProjectRepository
	Invoices() InvoiceRepository
	Tickets() TicketRepository
	Users() UserRepository
	Content() ContentRepository
	Counters() CounterRepository
	Health() HealthRepository
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// CatalogRepository persists per-currency price catalogs.
type CatalogRepository interface {
	FindByCurrency(ctx context.Context, currency string) (domain.PriceCatalog, error)
	Save(ctx context.Context, catalog domain.PriceCatalog) (domain.PriceCatalog, error)
	ListCurrencies(ctx context.Context) ([]string, error)
}

// ProjectListFilter narrows project listings.
type ProjectListFilter struct {
	Status domain.ProjectStatus
	Pager  domain.Pagination
}

// ProjectRepository persists client website projects.
type ProjectRepository interface {
	Insert(ctx context.Context, project domain.Project) error
	Update(ctx context.Context, project domain.Project) error
	FindByID(ctx context.Context, projectID string) (domain.Project, error)
	ListByUser(ctx context.Context, userID string, filter ProjectListFilter) (domain.CursorPage[domain.Project], error)
}

// InvoiceListFilter narrows invoice listings.
type InvoiceListFilter struct {
	Status domain.InvoiceStatus
	Pager  domain.Pagination
}

// InvoiceRepository persists invoices generated for projects.
type InvoiceRepository interface {
	Insert(ctx context.Context, invoice domain.Invoice) error
	Update(ctx context.Context, invoice domain.Invoice) error
	FindByID(ctx context.Context, invoiceID string) (domain.Invoice, error)
	ListByUser(ctx context.Context, userID string, filter InvoiceListFilter) (domain.CursorPage[domain.Invoice], error)
}

// TicketListFilter narrows support ticket listings.
type TicketListFilter struct {
	Status domain.TicketStatus
	Pager  domain.Pagination
}

// TicketRepository persists support tickets with their message threads.
type TicketRepository interface {
	Insert(ctx context.Context, ticket domain.SupportTicket) error
	Update(ctx context.Context, ticket domain.SupportTicket) error
	AppendMessage(ctx context.Context, ticketID string, message domain.TicketMessage) (domain.SupportTicket, error)
	FindByID(ctx context.Context, ticketID string) (domain.SupportTicket, error)
	ListByUser(ctx context.Context, userID string, filter TicketListFilter) (domain.CursorPage[domain.SupportTicket], error)
}

// UserRepository persists portal account profiles keyed by the Firebase UID.
type UserRepository interface {
	FindByUID(ctx context.Context, uid string) (domain.UserProfile, error)
	Upsert(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error)
}

// ContentRepository serves published marketing pages.
type ContentRepository interface {
	FindBySlug(ctx context.Context, slug string) (domain.ContentPage, error)
	ListPublished(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.ContentPage], error)
}

// CounterRepository provides monotonic sequence numbers, used for invoice numbering.
// Counter IDs are scoped per billing month so sequences reset naturally.
type CounterRepository interface {
	Next(ctx context.Context, counterID string) (int64, error)
}

// HealthRepository aggregates dependency probes for readiness checks.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}
