package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	domain "github.com/lumenweb/api/internal/domain"
	"github.com/lumenweb/api/internal/repositories"
)

const (
	maxTicketSubjectLength = 200
	maxTicketBodyLength    = 10_000
)

var (
	// ErrTicketNotFound is returned when the ticket does not exist or belongs to another user.
	ErrTicketNotFound = errors.New("ticket: not found")
	// ErrTicketInvalidInput is returned when a command carries invalid fields.
	ErrTicketInvalidInput = errors.New("ticket: invalid input")
	// ErrTicketClosed is returned when appending to a closed ticket.
	ErrTicketClosed = errors.New("ticket: closed")
)

// TicketServiceDeps bundles constructor inputs for the ticket service.
type TicketServiceDeps struct {
	Tickets   repositories.TicketRepository
	Publisher NotificationPublisher
	Clock     func() time.Time
	NewID     func() string
	Logger    func(context.Context, string, map[string]any)
}

type ticketService struct {
	tickets   repositories.TicketRepository
	publisher NotificationPublisher
	sanitize  *bluemonday.Policy
	now       func() time.Time
	newID     func() string
	logger    func(context.Context, string, map[string]any)
}

// NewTicketService constructs a TicketService. Subjects and message bodies are
// stripped of all markup before persistence.
func NewTicketService(deps TicketServiceDeps) (TicketService, error) {
	if deps.Tickets == nil {
		return nil, errors.New("ticket service requires ticket repository")
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
	return &ticketService{
		tickets:   deps.Tickets,
		publisher: deps.Publisher,
		sanitize:  bluemonday.StrictPolicy(),
		now:       func() time.Time { return now().UTC() },
		newID:     newID,
		logger:    logger,
	}, nil
}

// CreateTicket opens a ticket with its initial client message.
func (s *ticketService) CreateTicket(ctx context.Context, cmd CreateTicketCommand) (SupportTicket, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return SupportTicket{}, fmt.Errorf("%w: user id is required", ErrTicketInvalidInput)
	}
	subject := s.cleanText(cmd.Subject, maxTicketSubjectLength)
	if subject == "" {
		return SupportTicket{}, fmt.Errorf("%w: subject is required", ErrTicketInvalidInput)
	}
	body := s.cleanText(cmd.Body, maxTicketBodyLength)
	if body == "" {
		return SupportTicket{}, fmt.Errorf("%w: message body is required", ErrTicketInvalidInput)
	}

	now := s.now()
	ticket := domain.SupportTicket{
		ID:        s.newID(),
		UserID:    userID,
		ProjectID: strings.TrimSpace(cmd.ProjectID),
		Subject:   subject,
		Status:    domain.TicketStatusOpen,
		Messages: []domain.TicketMessage{{
			ID:        s.newID(),
			AuthorID:  userID,
			FromStaff: false,
			Body:      body,
			CreatedAt: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.tickets.Insert(ctx, ticket); err != nil {
		return SupportTicket{}, fmt.Errorf("ticket: insert: %w", err)
	}

	s.publish(ctx, NotificationMessage{
		Event:      "ticket.created",
		UserID:     userID,
		ResourceID: ticket.ID,
		OccurredAt: now,
		Payload:    map[string]any{"subject": subject},
	})
	return ticket, nil
}

// GetTicket loads a ticket scoped to the requesting user.
func (s *ticketService) GetTicket(ctx context.Context, userID, ticketID string) (SupportTicket, error) {
	return s.findOwned(ctx, userID, ticketID)
}

// ListTickets returns a page of the user's tickets.
func (s *ticketService) ListTickets(ctx context.Context, userID string, query TicketListQuery) (domain.CursorPage[SupportTicket], error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return domain.CursorPage[SupportTicket]{}, fmt.Errorf("%w: user id is required", ErrTicketInvalidInput)
	}
	page, err := s.tickets.ListByUser(ctx, uid, repositories.TicketListFilter{
		Status: query.Status,
		Pager:  query.Pager,
	})
	if err != nil {
		return domain.CursorPage[SupportTicket]{}, fmt.Errorf("ticket: list: %w", err)
	}
	return page, nil
}

// AppendMessage adds a message to the thread. Client replies reopen resolved
// tickets; closed tickets reject further messages.
func (s *ticketService) AppendMessage(ctx context.Context, cmd AppendTicketMessageCommand) (SupportTicket, error) {
	body := s.cleanText(cmd.Body, maxTicketBodyLength)
	if body == "" {
		return SupportTicket{}, fmt.Errorf("%w: message body is required", ErrTicketInvalidInput)
	}

	ticket, err := s.findOwned(ctx, cmd.UserID, cmd.TicketID)
	if err != nil {
		return SupportTicket{}, err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return SupportTicket{}, ErrTicketClosed
	}

	now := s.now()
	updated, err := s.tickets.AppendMessage(ctx, ticket.ID, domain.TicketMessage{
		ID:        s.newID(),
		AuthorID:  strings.TrimSpace(cmd.UserID),
		FromStaff: cmd.FromStaff,
		Body:      body,
		CreatedAt: now,
	})
	if err != nil {
		return SupportTicket{}, fmt.Errorf("ticket: append message: %w", err)
	}

	s.publish(ctx, NotificationMessage{
		Event:      "ticket.message_added",
		UserID:     updated.UserID,
		ResourceID: updated.ID,
		OccurredAt: now,
		Payload:    map[string]any{"fromStaff": cmd.FromStaff},
	})
	return updated, nil
}

// CloseTicket closes a ticket at the owner's request.
func (s *ticketService) CloseTicket(ctx context.Context, userID, ticketID string) (SupportTicket, error) {
	ticket, err := s.findOwned(ctx, userID, ticketID)
	if err != nil {
		return SupportTicket{}, err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return ticket, nil
	}

	ticket.Status = domain.TicketStatusClosed
	ticket.UpdatedAt = s.now()
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return SupportTicket{}, fmt.Errorf("ticket: close: %w", err)
	}
	return ticket, nil
}

func (s *ticketService) findOwned(ctx context.Context, userID, ticketID string) (domain.SupportTicket, error) {
	uid := strings.TrimSpace(userID)
	id := strings.TrimSpace(ticketID)
	if uid == "" || id == "" {
		return domain.SupportTicket{}, fmt.Errorf("%w: user id and ticket id are required", ErrTicketInvalidInput)
	}

	ticket, err := s.tickets.FindByID(ctx, id)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsNotFound() {
			return domain.SupportTicket{}, ErrTicketNotFound
		}
		return domain.SupportTicket{}, fmt.Errorf("ticket: find %s: %w", id, err)
	}
	if ticket.UserID != uid {
		return domain.SupportTicket{}, ErrTicketNotFound
	}
	return ticket, nil
}

func (s *ticketService) cleanText(raw string, limit int) string {
	cleaned := strings.TrimSpace(s.sanitize.Sanitize(raw))
	if len(cleaned) > limit {
		cleaned = cleaned[:limit]
	}
	return cleaned
}

func (s *ticketService) publish(ctx context.Context, message NotificationMessage) {
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
