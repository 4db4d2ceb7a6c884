package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/lumenweb/api/internal/domain"
	"github.com/lumenweb/api/internal/platform/auth"
	"github.com/lumenweb/api/internal/platform/httpx"
	"github.com/lumenweb/api/internal/services"
)

// TicketHandlers exposes authenticated support ticket endpoints.
type TicketHandlers struct {
	authn   *auth.Authenticator
	tickets services.TicketService
}

// NewTicketHandlers constructs handlers for the /tickets route group.
func NewTicketHandlers(authn *auth.Authenticator, tickets services.TicketService) *TicketHandlers {
	return &TicketHandlers{authn: authn, tickets: tickets}
}

// Routes wires the ticket endpoints onto the provided router.
func (h *TicketHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Post("/", h.createTicket)
	r.Get("/", h.listTickets)
	r.Get("/{ticketId}", h.getTicket)
	r.Post("/{ticketId}/messages", h.appendMessage)
	r.Post("/{ticketId}/close", h.closeTicket)
}

type createTicketRequest struct {
	ProjectID string `json:"projectId"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

func (h *TicketHandlers) createTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w, h.tickets != nil, "ticket")
	if !ok {
		return
	}

	var req createTicketRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	ticket, err := h.tickets.CreateTicket(ctx, services.CreateTicketCommand{
		UserID:    identity.UID,
		ProjectID: req.ProjectID,
		Subject:   req.Subject,
		Body:      req.Body,
	})
	if err != nil {
		writeTicketError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, ticketPayloadFrom(ticket))
}

func (h *TicketHandlers) listTickets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w, h.tickets != nil, "ticket")
	if !ok {
		return
	}

	query := services.TicketListQuery{Pager: paginationFromQuery(r)}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		query.Status = domain.TicketStatus(raw)
	}

	page, err := h.tickets.ListTickets(ctx, identity.UID, query)
	if err != nil {
		writeTicketError(ctx, w, err)
		return
	}

	items := make([]ticketPayload, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, ticketPayloadFrom(item))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"tickets":         items,
		"next_page_token": page.NextPageToken,
	})
}

func (h *TicketHandlers) getTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w, h.tickets != nil, "ticket")
	if !ok {
		return
	}

	ticket, err := h.tickets.GetTicket(ctx, identity.UID, chi.URLParam(r, "ticketId"))
	if err != nil {
		writeTicketError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, ticketPayloadFrom(ticket))
}

type appendMessageRequest struct {
	Body string `json:"body"`
}

func (h *TicketHandlers) appendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w, h.tickets != nil, "ticket")
	if !ok {
		return
	}

	var req appendMessageRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	ticket, err := h.tickets.AppendMessage(ctx, services.AppendTicketMessageCommand{
		UserID:    identity.UID,
		TicketID:  chi.URLParam(r, "ticketId"),
		Body:      req.Body,
		FromStaff: identity.HasRole(auth.RoleStaff) || identity.HasRole(auth.RoleAdmin),
	})
	if err != nil {
		writeTicketError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, ticketPayloadFrom(ticket))
}

func (h *TicketHandlers) closeTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w, h.tickets != nil, "ticket")
	if !ok {
		return
	}

	ticket, err := h.tickets.CloseTicket(ctx, identity.UID, chi.URLParam(r, "ticketId"))
	if err != nil {
		writeTicketError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, ticketPayloadFrom(ticket))
}

type ticketMessagePayload struct {
	ID        string `json:"id"`
	AuthorID  string `json:"authorId"`
	FromStaff bool   `json:"fromStaff"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type ticketPayload struct {
	ID        string                 `json:"id"`
	ProjectID string                 `json:"projectId,omitempty"`
	Subject   string                 `json:"subject"`
	Status    string                 `json:"status"`
	Messages  []ticketMessagePayload `json:"messages"`
	CreatedAt string                 `json:"createdAt,omitempty"`
	UpdatedAt string                 `json:"updatedAt,omitempty"`
}

func ticketPayloadFrom(ticket domain.SupportTicket) ticketPayload {
	messages := make([]ticketMessagePayload, 0, len(ticket.Messages))
	for _, message := range ticket.Messages {
		messages = append(messages, ticketMessagePayload{
			ID:        message.ID,
			AuthorID:  message.AuthorID,
			FromStaff: message.FromStaff,
			Body:      message.Body,
			CreatedAt: formatTime(message.CreatedAt),
		})
	}
	return ticketPayload{
		ID:        ticket.ID,
		ProjectID: ticket.ProjectID,
		Subject:   ticket.Subject,
		Status:    string(ticket.Status),
		Messages:  messages,
		CreatedAt: formatTime(ticket.CreatedAt),
		UpdatedAt: formatTime(ticket.UpdatedAt),
	}
}

func writeTicketError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrTicketNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("ticket_not_found", "ticket not found", http.StatusNotFound))
	case errors.Is(err, services.ErrTicketInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_ticket_field", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrTicketClosed):
		httpx.WriteError(ctx, w, httpx.NewError("ticket_closed", "ticket is closed", http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("ticket_error", "ticket operation failed", http.StatusInternalServerError))
	}
}
