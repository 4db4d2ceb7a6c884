package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/lumenweb/api/internal/domain"
	pfirestore "github.com/lumenweb/api/internal/platform/firestore"
	"github.com/lumenweb/api/internal/repositories"
)

const ticketCollection = "supportTickets"

type ticketMessageDocument struct {
	ID        string    `firestore:"id"`
	AuthorID  string    `firestore:"authorId"`
	FromStaff bool      `firestore:"fromStaff"`
	Body      string    `firestore:"body"`
	CreatedAt time.Time `firestore:"createdAt"`
}

type ticketDocument struct {
	UserID    string                  `firestore:"userId"`
	ProjectID string                  `firestore:"projectId,omitempty"`
	Subject   string                  `firestore:"subject"`
	Status    string                  `firestore:"status"`
	Messages  []ticketMessageDocument `firestore:"messages"`
	CreatedAt time.Time               `firestore:"createdAt"`
	UpdatedAt time.Time               `firestore:"updatedAt"`
}

// TicketRepository persists support tickets with embedded message threads.
type TicketRepository struct {
	base     *pfirestore.BaseRepository[ticketDocument]
	provider *pfirestore.Provider
}

// NewTicketRepository constructs a Firestore-backed ticket repository.
func NewTicketRepository(provider *pfirestore.Provider) (*TicketRepository, error) {
	if provider == nil {
		return nil, errors.New("ticket repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[ticketDocument](provider, ticketCollection)
	return &TicketRepository{base: base, provider: provider}, nil
}

// Insert stores a new ticket document.
func (r *TicketRepository) Insert(ctx context.Context, ticket domain.SupportTicket) error {
	if r == nil || r.base == nil {
		return errors.New("ticket repository not initialised")
	}
	if strings.TrimSpace(ticket.ID) == "" {
		return errors.New("ticket id is required")
	}
	err := r.base.Set(ctx, ticket.ID, fromDomainTicket(ticket))
	return err
}

// Update overwrites the stored ticket document.
func (r *TicketRepository) Update(ctx context.Context, ticket domain.SupportTicket) error {
	if r == nil || r.base == nil {
		return errors.New("ticket repository not initialised")
	}
	if strings.TrimSpace(ticket.ID) == "" {
		return errors.New("ticket id is required")
	}
	doc := fromDomainTicket(ticket)
	doc.UpdatedAt = time.Now().UTC()
	err := r.base.Set(ctx, ticket.ID, doc)
	return err
}

// AppendMessage atomically appends a message to the ticket thread and reopens
// resolved tickets when the client replies.
func (r *TicketRepository) AppendMessage(ctx context.Context, ticketID string, message domain.TicketMessage) (domain.SupportTicket, error) {
	if r == nil || r.provider == nil {
		return domain.SupportTicket{}, errors.New("ticket repository not initialised")
	}
	id := strings.TrimSpace(ticketID)
	if id == "" {
		return domain.SupportTicket{}, errors.New("ticket id is required")
	}
	if strings.TrimSpace(message.Body) == "" {
		return domain.SupportTicket{}, errors.New("message body is required")
	}

	var updated ticketDocument
	err := r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref, err := r.base.DocumentRef(ctx, id)
		if err != nil {
			return err
		}
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var doc ticketDocument
		if err := snap.DataTo(&doc); err != nil {
			return fmt.Errorf("firestore tickets decode %s: %w", id, err)
		}

		now := time.Now().UTC()
		doc.Messages = append(doc.Messages, ticketMessageDocument{
			ID:        message.ID,
			AuthorID:  message.AuthorID,
			FromStaff: message.FromStaff,
			Body:      message.Body,
			CreatedAt: message.CreatedAt,
		})
		if !message.FromStaff && domain.TicketStatus(doc.Status) == domain.TicketStatusResolved {
			doc.Status = string(domain.TicketStatusOpen)
		}
		doc.UpdatedAt = now
		updated = doc
		return tx.Set(ref, doc)
	})
	if err != nil {
		return domain.SupportTicket{}, pfirestore.WrapError("supportTickets.appendMessage", err)
	}

	ticket := toDomainTicket(updated)
	ticket.ID = id
	return ticket, nil
}

// FindByID loads a ticket by its identifier.
func (r *TicketRepository) FindByID(ctx context.Context, ticketID string) (domain.SupportTicket, error) {
	if r == nil || r.base == nil {
		return domain.SupportTicket{}, errors.New("ticket repository not initialised")
	}
	if strings.TrimSpace(ticketID) == "" {
		return domain.SupportTicket{}, errors.New("ticket id is required")
	}
	doc, err := r.base.Get(ctx, ticketID)
	if err != nil {
		return domain.SupportTicket{}, err
	}
	ticket := toDomainTicket(doc.Data)
	ticket.ID = doc.ID
	return ticket, nil
}

// ListByUser returns the user's tickets ordered newest first.
func (r *TicketRepository) ListByUser(ctx context.Context, userID string, filter repositories.TicketListFilter) (domain.CursorPage[domain.SupportTicket], error) {
	if r == nil || r.base == nil {
		return domain.CursorPage[domain.SupportTicket]{}, errors.New("ticket repository not initialised")
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return domain.CursorPage[domain.SupportTicket]{}, errors.New("user id is required")
	}

	limit := clampPageSize(filter.Pager.PageSize)
	after, err := decodePageToken(filter.Pager.PageToken)
	if err != nil {
		return domain.CursorPage[domain.SupportTicket]{}, err
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
		return domain.CursorPage[domain.SupportTicket]{}, err
	}

	tickets := make([]domain.SupportTicket, 0, len(docs))
	for _, doc := range docs {
		ticket := toDomainTicket(doc.Data)
		ticket.ID = doc.ID
		tickets = append(tickets, ticket)
	}
	return pageOf(tickets, limit, func(t domain.SupportTicket) time.Time { return t.CreatedAt }), nil
}

func fromDomainTicket(ticket domain.SupportTicket) ticketDocument {
	messages := make([]ticketMessageDocument, 0, len(ticket.Messages))
	for _, msg := range ticket.Messages {
		messages = append(messages, ticketMessageDocument{
			ID:        msg.ID,
			AuthorID:  msg.AuthorID,
			FromStaff: msg.FromStaff,
			Body:      msg.Body,
			CreatedAt: msg.CreatedAt,
		})
	}
	return ticketDocument{
		UserID:    strings.TrimSpace(ticket.UserID),
		ProjectID: strings.TrimSpace(ticket.ProjectID),
		Subject:   strings.TrimSpace(ticket.Subject),
		Status:    string(ticket.Status),
		Messages:  messages,
		CreatedAt: ticket.CreatedAt,
		UpdatedAt: ticket.UpdatedAt,
	}
}

func toDomainTicket(doc ticketDocument) domain.SupportTicket {
	messages := make([]domain.TicketMessage, 0, len(doc.Messages))
	for _, msg := range doc.Messages {
		messages = append(messages, domain.TicketMessage{
			ID:        msg.ID,
			AuthorID:  msg.AuthorID,
			FromStaff: msg.FromStaff,
			Body:      msg.Body,
			CreatedAt: msg.CreatedAt,
		})
	}
	return domain.SupportTicket{
		UserID:    doc.UserID,
		ProjectID: doc.ProjectID,
		Subject:   doc.Subject,
		Status:    domain.TicketStatus(doc.Status),
		Messages:  messages,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
