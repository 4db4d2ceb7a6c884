package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domain "github.com/lumenweb/api/internal/domain"
	"github.com/lumenweb/api/internal/repositories"
)

// notFoundErr satisfies repositories.RepositoryError for missing documents.
type notFoundErr struct{ msg string }

func (e *notFoundErr) Error() string       { return e.msg }
func (e *notFoundErr) IsNotFound() bool    { return true }
func (e *notFoundErr) IsConflict() bool    { return false }
func (e *notFoundErr) IsUnavailable() bool { return false }

var _ repositories.RepositoryError = (*notFoundErr)(nil)

type fakeCatalogRepo struct {
	mu       sync.Mutex
	catalogs map[string]domain.PriceCatalog
	findErr  error
	saveErr  error
	finds    int
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{catalogs: make(map[string]domain.PriceCatalog)}
}

func (f *fakeCatalogRepo) FindByCurrency(_ context.Context, currency string) (domain.PriceCatalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds++
	if f.findErr != nil {
		return domain.PriceCatalog{}, f.findErr
	}
	catalog, ok := f.catalogs[currency]
	if !ok {
		return domain.PriceCatalog{}, &notFoundErr{msg: "catalog " + currency + " not found"}
	}
	return catalog, nil
}

func (f *fakeCatalogRepo) Save(_ context.Context, catalog domain.PriceCatalog) (domain.PriceCatalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return domain.PriceCatalog{}, f.saveErr
	}
	f.catalogs[catalog.Currency] = catalog
	return catalog, nil
}

func (f *fakeCatalogRepo) ListCurrencies(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	codes := make([]string, 0, len(f.catalogs))
	for code := range f.catalogs {
		codes = append(codes, code)
	}
	return codes, nil
}

type fakeProjectRepo struct {
	mu       sync.Mutex
	projects map[string]domain.Project
	insErr   error
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[string]domain.Project)}
}

func (f *fakeProjectRepo) Insert(_ context.Context, project domain.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insErr != nil {
		return f.insErr
	}
	f.projects[project.ID] = project
	return nil
}

func (f *fakeProjectRepo) Update(_ context.Context, project domain.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[project.ID]; !ok {
		return &notFoundErr{msg: "project not found"}
	}
	f.projects[project.ID] = project
	return nil
}

func (f *fakeProjectRepo) FindByID(_ context.Context, id string) (domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	project, ok := f.projects[id]
	if !ok {
		return domain.Project{}, &notFoundErr{msg: "project not found"}
	}
	return project, nil
}

func (f *fakeProjectRepo) ListByUser(_ context.Context, userID string, filter repositories.ProjectListFilter) (domain.CursorPage[domain.Project], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []domain.Project
	for _, project := range f.projects {
		if project.UserID != userID {
			continue
		}
		if filter.Status != "" && project.Status != filter.Status {
			continue
		}
		items = append(items, project)
	}
	return domain.CursorPage[domain.Project]{Items: items}, nil
}

type fakeInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[string]domain.Invoice
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[string]domain.Invoice)}
}

func (f *fakeInvoiceRepo) Insert(_ context.Context, invoice domain.Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invoices[invoice.ID] = invoice
	return nil
}

func (f *fakeInvoiceRepo) Update(_ context.Context, invoice domain.Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.invoices[invoice.ID]; !ok {
		return &notFoundErr{msg: "invoice not found"}
	}
	f.invoices[invoice.ID] = invoice
	return nil
}

func (f *fakeInvoiceRepo) FindByID(_ context.Context, id string) (domain.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	invoice, ok := f.invoices[id]
	if !ok {
		return domain.Invoice{}, &notFoundErr{msg: "invoice not found"}
	}
	return invoice, nil
}

func (f *fakeInvoiceRepo) ListByUser(_ context.Context, userID string, filter repositories.InvoiceListFilter) (domain.CursorPage[domain.Invoice], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []domain.Invoice
	for _, invoice := range f.invoices {
		if invoice.UserID != userID {
			continue
		}
		if filter.Status != "" && invoice.Status != filter.Status {
			continue
		}
		items = append(items, invoice)
	}
	return domain.CursorPage[domain.Invoice]{Items: items}, nil
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]domain.SupportTicket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]domain.SupportTicket)}
}

func (f *fakeTicketRepo) Insert(_ context.Context, ticket domain.SupportTicket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickets[ticket.ID] = ticket
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket domain.SupportTicket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[ticket.ID]; !ok {
		return &notFoundErr{msg: "ticket not found"}
	}
	f.tickets[ticket.ID] = ticket
	return nil
}

func (f *fakeTicketRepo) AppendMessage(_ context.Context, ticketID string, message domain.TicketMessage) (domain.SupportTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[ticketID]
	if !ok {
		return domain.SupportTicket{}, &notFoundErr{msg: "ticket not found"}
	}
	ticket.Messages = append(ticket.Messages, message)
	if !message.FromStaff && ticket.Status == domain.TicketStatusResolved {
		ticket.Status = domain.TicketStatusOpen
	}
	ticket.UpdatedAt = message.CreatedAt
	f.tickets[ticketID] = ticket
	return ticket, nil
}

func (f *fakeTicketRepo) FindByID(_ context.Context, id string) (domain.SupportTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return domain.SupportTicket{}, &notFoundErr{msg: "ticket not found"}
	}
	return ticket, nil
}

func (f *fakeTicketRepo) ListByUser(_ context.Context, userID string, filter repositories.TicketListFilter) (domain.CursorPage[domain.SupportTicket], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []domain.SupportTicket
	for _, ticket := range f.tickets {
		if ticket.UserID != userID {
			continue
		}
		if filter.Status != "" && ticket.Status != filter.Status {
			continue
		}
		items = append(items, ticket)
	}
	return domain.CursorPage[domain.SupportTicket]{Items: items}, nil
}

type fakeUserRepo struct {
	mu       sync.Mutex
	profiles map[string]domain.UserProfile
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{profiles: make(map[string]domain.UserProfile)}
}

func (f *fakeUserRepo) FindByUID(_ context.Context, uid string) (domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[uid]
	if !ok {
		return domain.UserProfile{}, &notFoundErr{msg: "profile not found"}
	}
	return profile, nil
}

func (f *fakeUserRepo) Upsert(_ context.Context, profile domain.UserProfile) (domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[profile.UID] = profile
	return profile, nil
}

type fakeCounterRepo struct {
	mu     sync.Mutex
	values map[string]int64
	err    error
}

func newFakeCounterRepo() *fakeCounterRepo {
	return &fakeCounterRepo{values: make(map[string]int64)}
}

func (f *fakeCounterRepo) Next(_ context.Context, counterID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.values[counterID]++
	return f.values[counterID], nil
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []NotificationMessage
	err      error
}

func (f *fakePublisher) PublishNotification(_ context.Context, message NotificationMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.messages = append(f.messages, message)
	return fmt.Sprintf("msg-%d", len(f.messages)), nil
}

func (f *fakePublisher) events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.messages))
	for _, msg := range f.messages {
		names = append(names, msg.Event)
	}
	return names
}

type fakeGeoIP struct {
	country string
	err     error
}

func (f *fakeGeoIP) CountryCode(context.Context, string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.country, nil
}

// sequentialIDs returns a deterministic ID generator for tests.
func sequentialIDs(prefix string) func() string {
	var n int
	var mu sync.Mutex
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var errBoom = errors.New("boom")
