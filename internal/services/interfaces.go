package services

import (
	"context"
	"time"

	domain "github.com/lumenweb/api/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Pagination         = domain.Pagination
	PackageTier        = domain.PackageTier
	DurationKey        = domain.DurationKey
	AddonKey           = domain.AddonKey
	PackagePrice       = domain.PackagePrice
	PriceCatalog       = domain.PriceCatalog
	Selection          = domain.Selection
	Quote              = domain.Quote
	QuoteLineItem      = domain.QuoteLineItem
	Project            = domain.Project
	ProjectStatus      = domain.ProjectStatus
	Invoice            = domain.Invoice
	InvoiceStatus      = domain.InvoiceStatus
	InvoiceLineItem    = domain.InvoiceLineItem
	SupportTicket      = domain.SupportTicket
	TicketMessage      = domain.TicketMessage
	TicketStatus       = domain.TicketStatus
	UserProfile        = domain.UserProfile
	ContentPage        = domain.ContentPage
	SystemHealthReport = domain.SystemHealthReport
)

// CatalogService serves per-currency price catalogs with caching and defaulting.
type CatalogService interface {
	Catalog(ctx context.Context, currency string) (PriceCatalog, error)
	UpsertCatalog(ctx context.Context, catalog PriceCatalog) (PriceCatalog, error)
	Currencies(ctx context.Context) ([]string, error)
}

// QuoteService derives deterministic quotes for configurator selections.
type QuoteService interface {
	Quote(ctx context.Context, currency string, sel Selection) (Quote, error)
}

// CurrencyService resolves the display currency for a request.
type CurrencyService interface {
	Resolve(ctx context.Context, req CurrencyRequest) string
}

// CurrencyRequest carries the signals used to pick a currency.
type CurrencyRequest struct {
	// Override is an explicit user preference, checked first.
	Override string
	// ClientIP feeds the GeoIP lookup when no override is present.
	ClientIP string
}

// CreateProjectCommand carries the inputs for submitting a new project.
type CreateProjectCommand struct {
	UserID    string
	Name      string
	Currency  string
	Selection Selection
	Notes     string
}

// UpdateProjectCommand mutates mutable project fields.
type UpdateProjectCommand struct {
	UserID    string
	ProjectID string
	Name      *string
	Notes     *string
	Status    *ProjectStatus
}

// ProjectListQuery narrows project listings for a user.
type ProjectListQuery struct {
	Status ProjectStatus
	Pager  Pagination
}

// ProjectService orchestrates project submission, server-side pricing, and
// invoice generation.
type ProjectService interface {
	CreateProject(ctx context.Context, cmd CreateProjectCommand) (Project, error)
	GetProject(ctx context.Context, userID, projectID string) (Project, error)
	ListProjects(ctx context.Context, userID string, query ProjectListQuery) (domain.CursorPage[Project], error)
	UpdateProject(ctx context.Context, cmd UpdateProjectCommand) (Project, error)
	CancelProject(ctx context.Context, userID, projectID string) (Project, error)
}

// InvoiceListQuery narrows invoice listings for a user.
type InvoiceListQuery struct {
	Status InvoiceStatus
	Pager  Pagination
}

// InvoiceService exposes read access to generated invoices and payment recording.
type InvoiceService interface {
	GetInvoice(ctx context.Context, userID, invoiceID string) (Invoice, error)
	ListInvoices(ctx context.Context, userID string, query InvoiceListQuery) (domain.CursorPage[Invoice], error)
	MarkPaid(ctx context.Context, invoiceID string, paidAt time.Time) (Invoice, error)
}

// CreateTicketCommand opens a support ticket with an initial message.
type CreateTicketCommand struct {
	UserID    string
	ProjectID string
	Subject   string
	Body      string
}

// AppendTicketMessageCommand adds a message to an existing thread.
type AppendTicketMessageCommand struct {
	UserID    string
	TicketID  string
	Body      string
	FromStaff bool
}

// TicketListQuery narrows ticket listings for a user.
type TicketListQuery struct {
	Status TicketStatus
	Pager  Pagination
}

// TicketService manages support tickets and their message threads.
type TicketService interface {
	CreateTicket(ctx context.Context, cmd CreateTicketCommand) (SupportTicket, error)
	GetTicket(ctx context.Context, userID, ticketID string) (SupportTicket, error)
	ListTickets(ctx context.Context, userID string, query TicketListQuery) (domain.CursorPage[SupportTicket], error)
	AppendMessage(ctx context.Context, cmd AppendTicketMessageCommand) (SupportTicket, error)
	CloseTicket(ctx context.Context, userID, ticketID string) (SupportTicket, error)
}

// ProvisionProfileCommand carries identity details used when the profile does not exist yet.
type ProvisionProfileCommand struct {
	UID         string
	Email       string
	DisplayName string
}

// UpdateProfileCommand mutates profile preferences.
type UpdateProfileCommand struct {
	UID               string
	DisplayName       *string
	Company           *string
	Phone             *string
	PreferredCurrency *string
}

// UserService provisions and maintains portal account profiles.
type UserService interface {
	GetOrProvision(ctx context.Context, cmd ProvisionProfileCommand) (UserProfile, error)
	UpdateProfile(ctx context.Context, cmd UpdateProfileCommand) (UserProfile, error)
}

// ContentService serves published marketing pages.
type ContentService interface {
	PageBySlug(ctx context.Context, slug string) (ContentPage, error)
	ListPages(ctx context.Context, pager Pagination) (domain.CursorPage[ContentPage], error)
}

// SystemService aggregates dependency health for readiness endpoints.
type SystemService interface {
	Health(ctx context.Context) (SystemHealthReport, error)
}

// NotificationMessage is the payload published for out-of-band workers.
type NotificationMessage struct {
	Event      string         `json:"event"`
	UserID     string         `json:"userId"`
	ResourceID string         `json:"resourceId"`
	OccurredAt time.Time      `json:"occurredAt"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// NotificationPublisher fans portal events out to the async pipeline.
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, message NotificationMessage) (string, error)
}
