package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	domain "github.com/lumenweb/api/internal/domain"
	"github.com/lumenweb/api/internal/platform/auth"
	"github.com/lumenweb/api/internal/services"
)

// withIdentity stamps an authenticated principal onto the request, standing in
// for the verification middleware.
func withIdentity(r *http.Request, uid string, roles ...string) *http.Request {
	identity := &auth.Identity{UID: uid, Email: uid + "@example.com", Roles: roles}
	return r.WithContext(auth.WithIdentity(r.Context(), identity))
}

func jsonRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

type stubCatalogService struct {
	catalog    domain.PriceCatalog
	saved      *domain.PriceCatalog
	currencies []string
	err        error
}

func (s *stubCatalogService) Catalog(_ context.Context, currency string) (domain.PriceCatalog, error) {
	if s.err != nil {
		return domain.PriceCatalog{}, s.err
	}
	catalog := s.catalog
	if catalog.Currency == "" {
		catalog.Currency = currency
	}
	return catalog, nil
}

func (s *stubCatalogService) UpsertCatalog(_ context.Context, catalog domain.PriceCatalog) (domain.PriceCatalog, error) {
	if s.err != nil {
		return domain.PriceCatalog{}, s.err
	}
	s.saved = &catalog
	return catalog, nil
}

func (s *stubCatalogService) Currencies(context.Context) ([]string, error) {
	return s.currencies, s.err
}

type stubQuoteService struct {
	quote domain.Quote
	err   error

	gotCurrency  string
	gotSelection domain.Selection
}

func (s *stubQuoteService) Quote(_ context.Context, currency string, sel domain.Selection) (domain.Quote, error) {
	s.gotCurrency = currency
	s.gotSelection = sel
	return s.quote, s.err
}

type stubCurrencyService struct {
	currency string
}

func (s *stubCurrencyService) Resolve(context.Context, services.CurrencyRequest) string {
	return s.currency
}

type stubContentService struct {
	page  domain.ContentPage
	pages []domain.ContentPage
	err   error
}

func (s *stubContentService) PageBySlug(context.Context, string) (domain.ContentPage, error) {
	return s.page, s.err
}

func (s *stubContentService) ListPages(context.Context, domain.Pagination) (domain.CursorPage[domain.ContentPage], error) {
	if s.err != nil {
		return domain.CursorPage[domain.ContentPage]{}, s.err
	}
	return domain.CursorPage[domain.ContentPage]{Items: s.pages}, nil
}

type stubProjectService struct {
	project domain.Project
	err     error

	gotCreate services.CreateProjectCommand
	gotUpdate services.UpdateProjectCommand
}

func (s *stubProjectService) CreateProject(_ context.Context, cmd services.CreateProjectCommand) (domain.Project, error) {
	s.gotCreate = cmd
	return s.project, s.err
}

func (s *stubProjectService) GetProject(context.Context, string, string) (domain.Project, error) {
	return s.project, s.err
}

func (s *stubProjectService) ListProjects(context.Context, string, services.ProjectListQuery) (domain.CursorPage[domain.Project], error) {
	if s.err != nil {
		return domain.CursorPage[domain.Project]{}, s.err
	}
	return domain.CursorPage[domain.Project]{Items: []domain.Project{s.project}}, nil
}

func (s *stubProjectService) UpdateProject(_ context.Context, cmd services.UpdateProjectCommand) (domain.Project, error) {
	s.gotUpdate = cmd
	return s.project, s.err
}

func (s *stubProjectService) CancelProject(context.Context, string, string) (domain.Project, error) {
	return s.project, s.err
}

type stubInvoiceService struct {
	invoice domain.Invoice
	err     error

	gotPaidAt time.Time
}

func (s *stubInvoiceService) GetInvoice(context.Context, string, string) (domain.Invoice, error) {
	return s.invoice, s.err
}

func (s *stubInvoiceService) ListInvoices(context.Context, string, services.InvoiceListQuery) (domain.CursorPage[domain.Invoice], error) {
	if s.err != nil {
		return domain.CursorPage[domain.Invoice]{}, s.err
	}
	return domain.CursorPage[domain.Invoice]{Items: []domain.Invoice{s.invoice}}, nil
}

func (s *stubInvoiceService) MarkPaid(_ context.Context, _ string, paidAt time.Time) (domain.Invoice, error) {
	s.gotPaidAt = paidAt
	return s.invoice, s.err
}

type stubTicketService struct {
	ticket domain.SupportTicket
	err    error

	gotAppend services.AppendTicketMessageCommand
}

func (s *stubTicketService) CreateTicket(context.Context, services.CreateTicketCommand) (domain.SupportTicket, error) {
	return s.ticket, s.err
}

func (s *stubTicketService) GetTicket(context.Context, string, string) (domain.SupportTicket, error) {
	return s.ticket, s.err
}

func (s *stubTicketService) ListTickets(context.Context, string, services.TicketListQuery) (domain.CursorPage[domain.SupportTicket], error) {
	if s.err != nil {
		return domain.CursorPage[domain.SupportTicket]{}, s.err
	}
	return domain.CursorPage[domain.SupportTicket]{Items: []domain.SupportTicket{s.ticket}}, nil
}

func (s *stubTicketService) AppendMessage(_ context.Context, cmd services.AppendTicketMessageCommand) (domain.SupportTicket, error) {
	s.gotAppend = cmd
	return s.ticket, s.err
}

func (s *stubTicketService) CloseTicket(context.Context, string, string) (domain.SupportTicket, error) {
	return s.ticket, s.err
}

type stubUserService struct {
	profile domain.UserProfile
	err     error

	gotProvision services.ProvisionProfileCommand
	gotUpdate    services.UpdateProfileCommand
}

func (s *stubUserService) GetOrProvision(_ context.Context, cmd services.ProvisionProfileCommand) (domain.UserProfile, error) {
	s.gotProvision = cmd
	return s.profile, s.err
}

func (s *stubUserService) UpdateProfile(_ context.Context, cmd services.UpdateProfileCommand) (domain.UserProfile, error) {
	s.gotUpdate = cmd
	return s.profile, s.err
}

type stubSystemService struct {
	report domain.SystemHealthReport
	err    error
}

func (s *stubSystemService) Health(context.Context) (domain.SystemHealthReport, error) {
	return s.report, s.err
}

var (
	_ services.CatalogService  = (*stubCatalogService)(nil)
	_ services.QuoteService    = (*stubQuoteService)(nil)
	_ services.CurrencyService = (*stubCurrencyService)(nil)
	_ services.ContentService  = (*stubContentService)(nil)
	_ services.ProjectService  = (*stubProjectService)(nil)
	_ services.InvoiceService  = (*stubInvoiceService)(nil)
	_ services.TicketService   = (*stubTicketService)(nil)
	_ services.UserService     = (*stubUserService)(nil)
	_ services.SystemService   = (*stubSystemService)(nil)
)
