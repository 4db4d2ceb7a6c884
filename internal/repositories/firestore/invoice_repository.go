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

const invoiceCollection = "invoices"

type invoiceLineDocument struct {
	Label           string  `firestore:"label"`
	Amount          float64 `firestore:"amount"`
	Recurring       bool    `firestore:"recurring"`
	BilledAsOneTime bool    `firestore:"billedAsOneTime"`
}

type invoiceDocument struct {
	Number     string                `firestore:"number"`
	UserID     string                `firestore:"userId"`
	ProjectID  string                `firestore:"projectId"`
	Currency   string                `firestore:"currency"`
	SetupFee   float64               `firestore:"setupFee"`
	MonthlyFee float64               `firestore:"monthlyFee"`
	Lines      []invoiceLineDocument `firestore:"lines"`
	Status     string                `firestore:"status"`
	DueDate    time.Time             `firestore:"dueDate"`
	PaidAt     *time.Time            `firestore:"paidAt,omitempty"`
	CreatedAt  time.Time             `firestore:"createdAt"`
	UpdatedAt  time.Time             `firestore:"updatedAt"`
}

// InvoiceRepository persists invoices in Firestore.
type InvoiceRepository struct {
	base *pfirestore.BaseRepository[invoiceDocument]
}

// NewInvoiceRepository constructs a Firestore-backed invoice repository.
func NewInvoiceRepository(provider *pfirestore.Provider) (*InvoiceRepository, error) {
	if provider == nil {
		return nil, errors.New("invoice repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[invoiceDocument](provider, invoiceCollection)
	return &InvoiceRepository{base: base}, nil
}

// Insert stores a new invoice document.
func (r *InvoiceRepository) Insert(ctx context.Context, invoice domain.Invoice) error {
	if r == nil || r.base == nil {
		return errors.New("invoice repository not initialised")
	}
	if strings.TrimSpace(invoice.ID) == "" {
		return errors.New("invoice id is required")
	}
	err := r.base.Set(ctx, invoice.ID, fromDomainInvoice(invoice))
	return err
}

// Update overwrites the stored invoice document.
func (r *InvoiceRepository) Update(ctx context.Context, invoice domain.Invoice) error {
	if r == nil || r.base == nil {
		return errors.New("invoice repository not initialised")
	}
	if strings.TrimSpace(invoice.ID) == "" {
		return errors.New("invoice id is required")
	}
	doc := fromDomainInvoice(invoice)
	doc.UpdatedAt = time.Now().UTC()
	err := r.base.Set(ctx, invoice.ID, doc)
	return err
}

// FindByID loads an invoice by its identifier.
func (r *InvoiceRepository) FindByID(ctx context.Context, invoiceID string) (domain.Invoice, error) {
	if r == nil || r.base == nil {
		return domain.Invoice{}, errors.New("invoice repository not initialised")
	}
	if strings.TrimSpace(invoiceID) == "" {
		return domain.Invoice{}, errors.New("invoice id is required")
	}
	doc, err := r.base.Get(ctx, invoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	invoice := toDomainInvoice(doc.Data)
	invoice.ID = doc.ID
	return invoice, nil
}

// ListByUser returns the user's invoices ordered newest first.
func (r *InvoiceRepository) ListByUser(ctx context.Context, userID string, filter repositories.InvoiceListFilter) (domain.CursorPage[domain.Invoice], error) {
	if r == nil || r.base == nil {
		return domain.CursorPage[domain.Invoice]{}, errors.New("invoice repository not initialised")
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return domain.CursorPage[domain.Invoice]{}, errors.New("user id is required")
	}

	limit := clampPageSize(filter.Pager.PageSize)
	after, err := decodePageToken(filter.Pager.PageToken)
	if err != nil {
		return domain.CursorPage[domain.Invoice]{}, err
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
		return domain.CursorPage[domain.Invoice]{}, err
	}

	invoices := make([]domain.Invoice, 0, len(docs))
	for _, doc := range docs {
		invoice := toDomainInvoice(doc.Data)
		invoice.ID = doc.ID
		invoices = append(invoices, invoice)
	}
	return pageOf(invoices, limit, func(inv domain.Invoice) time.Time { return inv.CreatedAt }), nil
}

func fromDomainInvoice(invoice domain.Invoice) invoiceDocument {
	lines := make([]invoiceLineDocument, 0, len(invoice.Lines))
	for _, line := range invoice.Lines {
		lines = append(lines, invoiceLineDocument{
			Label:           line.Label,
			Amount:          line.Amount,
			Recurring:       line.Recurring,
			BilledAsOneTime: line.BilledAsOneTime,
		})
	}
	return invoiceDocument{
		Number:     strings.TrimSpace(invoice.Number),
		UserID:     strings.TrimSpace(invoice.UserID),
		ProjectID:  strings.TrimSpace(invoice.ProjectID),
		Currency:   strings.ToUpper(strings.TrimSpace(invoice.Currency)),
		SetupFee:   invoice.SetupFee,
		MonthlyFee: invoice.MonthlyFee,
		Lines:      lines,
		Status:     string(invoice.Status),
		DueDate:    invoice.DueDate,
		PaidAt:     invoice.PaidAt,
		CreatedAt:  invoice.CreatedAt,
		UpdatedAt:  invoice.UpdatedAt,
	}
}

func toDomainInvoice(doc invoiceDocument) domain.Invoice {
	lines := make([]domain.InvoiceLineItem, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		lines = append(lines, domain.InvoiceLineItem{
			Label:           line.Label,
			Amount:          line.Amount,
			Recurring:       line.Recurring,
			BilledAsOneTime: line.BilledAsOneTime,
		})
	}
	return domain.Invoice{
		Number:     doc.Number,
		UserID:     doc.UserID,
		ProjectID:  doc.ProjectID,
		Currency:   doc.Currency,
		SetupFee:   doc.SetupFee,
		MonthlyFee: doc.MonthlyFee,
		Lines:      lines,
		Status:     domain.InvoiceStatus(doc.Status),
		DueDate:    doc.DueDate,
		PaidAt:     doc.PaidAt,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
}
