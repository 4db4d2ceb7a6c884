package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/lumenweb/api/internal/domain"
	"github.com/lumenweb/api/internal/repositories"
)

var (
	// ErrInvoiceNotFound is returned when the invoice does not exist or belongs to another user.
	ErrInvoiceNotFound = errors.New("invoice: not found")
	// ErrInvoiceInvalidInput is returned when a command carries invalid fields.
	ErrInvoiceInvalidInput = errors.New("invoice: invalid input")
	// ErrInvoiceAlreadySettled is returned when marking a non-pending invoice paid.
	ErrInvoiceAlreadySettled = errors.New("invoice: already settled")
)

// InvoiceServiceDeps bundles constructor inputs for the invoice service.
type InvoiceServiceDeps struct {
	Invoices  repositories.InvoiceRepository
	Publisher NotificationPublisher
	Clock     func() time.Time
	Logger    func(context.Context, string, map[string]any)
}

type invoiceService struct {
	invoices  repositories.InvoiceRepository
	publisher NotificationPublisher
	now       func() time.Time
	logger    func(context.Context, string, map[string]any)
}

// NewInvoiceService constructs an InvoiceService.
func NewInvoiceService(deps InvoiceServiceDeps) (InvoiceService, error) {
	if deps.Invoices == nil {
		return nil, errors.New("invoice service requires invoice repository")
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &invoiceService{
		invoices:  deps.Invoices,
		publisher: deps.Publisher,
		now:       func() time.Time { return now().UTC() },
		logger:    logger,
	}, nil
}

// GetInvoice loads an invoice scoped to the requesting user.
func (s *invoiceService) GetInvoice(ctx context.Context, userID, invoiceID string) (Invoice, error) {
	uid := strings.TrimSpace(userID)
	id := strings.TrimSpace(invoiceID)
	if uid == "" || id == "" {
		return Invoice{}, fmt.Errorf("%w: user id and invoice id are required", ErrInvoiceInvalidInput)
	}

	invoice, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsNotFound() {
			return Invoice{}, ErrInvoiceNotFound
		}
		return Invoice{}, fmt.Errorf("invoice: find %s: %w", id, err)
	}
	if invoice.UserID != uid {
		return Invoice{}, ErrInvoiceNotFound
	}
	return invoice, nil
}

// ListInvoices returns a page of the user's invoices.
func (s *invoiceService) ListInvoices(ctx context.Context, userID string, query InvoiceListQuery) (domain.CursorPage[Invoice], error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return domain.CursorPage[Invoice]{}, fmt.Errorf("%w: user id is required", ErrInvoiceInvalidInput)
	}
	page, err := s.invoices.ListByUser(ctx, uid, repositories.InvoiceListFilter{
		Status: query.Status,
		Pager:  query.Pager,
	})
	if err != nil {
		return domain.CursorPage[Invoice]{}, fmt.Errorf("invoice: list: %w", err)
	}
	return page, nil
}

// MarkPaid records an out-of-band payment against a pending invoice. This is a
// staff operation; ownership is not checked.
func (s *invoiceService) MarkPaid(ctx context.Context, invoiceID string, paidAt time.Time) (Invoice, error) {
	id := strings.TrimSpace(invoiceID)
	if id == "" {
		return Invoice{}, fmt.Errorf("%w: invoice id is required", ErrInvoiceInvalidInput)
	}

	invoice, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsNotFound() {
			return Invoice{}, ErrInvoiceNotFound
		}
		return Invoice{}, fmt.Errorf("invoice: find %s: %w", id, err)
	}
	if invoice.Status != domain.InvoiceStatusPending {
		return Invoice{}, ErrInvoiceAlreadySettled
	}

	now := s.now()
	when := paidAt.UTC()
	if when.IsZero() {
		when = now
	}
	invoice.ID = id
	invoice.Status = domain.InvoiceStatusPaid
	invoice.PaidAt = &when
	invoice.UpdatedAt = now

	if err := s.invoices.Update(ctx, invoice); err != nil {
		return Invoice{}, fmt.Errorf("invoice: mark paid %s: %w", id, err)
	}

	if s.publisher != nil {
		if _, err := s.publisher.PublishNotification(ctx, NotificationMessage{
			Event:      "invoice.paid",
			UserID:     invoice.UserID,
			ResourceID: id,
			OccurredAt: now,
			Payload:    map[string]any{"number": invoice.Number},
		}); err != nil {
			s.logger(ctx, "notification_publish_failed", map[string]any{
				"event": "invoice.paid",
				"error": err.Error(),
			})
		}
	}
	return invoice, nil
}

// Overdue reports whether a pending invoice has passed its due date.
func Overdue(invoice Invoice, now time.Time) bool {
	return invoice.Status == domain.InvoiceStatusPending &&
		!invoice.DueDate.IsZero() &&
		now.After(invoice.DueDate)
}
