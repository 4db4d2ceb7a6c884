package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	domain "github.com/lumenweb/api/internal/domain"
)

func newTicketServiceForTest(t *testing.T, tickets *fakeTicketRepo, publisher *fakePublisher, now time.Time) TicketService {
	t.Helper()
	svc, err := NewTicketService(TicketServiceDeps{
		Tickets:   tickets,
		Publisher: publisher,
		Clock:     fixedClock(now),
		NewID:     sequentialIDs("t"),
	})
	if err != nil {
		t.Fatalf("NewTicketService: %v", err)
	}
	return svc
}

func TestCreateTicket(t *testing.T) {
	tickets := newFakeTicketRepo()
	publisher := &fakePublisher{}
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	svc := newTicketServiceForTest(t, tickets, publisher, now)

	ticket, err := svc.CreateTicket(context.Background(), CreateTicketCommand{
		UserID:  "user-1",
		Subject: "Site is slow",
		Body:    "Pages take ages to load since yesterday.",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("expected open ticket, got %s", ticket.Status)
	}
	if len(ticket.Messages) != 1 {
		t.Fatalf("expected initial message, got %d", len(ticket.Messages))
	}
	if ticket.Messages[0].FromStaff {
		t.Fatal("initial message should come from the client")
	}

	events := publisher.events()
	if len(events) != 1 || events[0] != "ticket.created" {
		t.Fatalf("expected ticket.created event, got %v", events)
	}
}

func TestCreateTicketSanitisesMarkup(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := newTicketServiceForTest(t, tickets, &fakePublisher{}, time.Now())

	ticket, err := svc.CreateTicket(context.Background(), CreateTicketCommand{
		UserID:  "user-1",
		Subject: `Broken <script>alert("x")</script> form`,
		Body:    `Please <b>fix</b> the <img src=x onerror=alert(1)> contact form.`,
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if strings.Contains(ticket.Subject, "<") {
		t.Fatalf("subject should be stripped of markup: %q", ticket.Subject)
	}
	if strings.Contains(ticket.Messages[0].Body, "<") {
		t.Fatalf("body should be stripped of markup: %q", ticket.Messages[0].Body)
	}
	if !strings.Contains(ticket.Messages[0].Body, "fix") {
		t.Fatalf("text content should survive sanitisation: %q", ticket.Messages[0].Body)
	}
}

func TestCreateTicketRejectsMarkupOnlyBody(t *testing.T) {
	svc := newTicketServiceForTest(t, newFakeTicketRepo(), &fakePublisher{}, time.Now())

	_, err := svc.CreateTicket(context.Background(), CreateTicketCommand{
		UserID:  "user-1",
		Subject: "Help",
		Body:    `<script>alert("x")</script>`,
	})
	if !errors.Is(err, ErrTicketInvalidInput) {
		t.Fatalf("expected invalid input for empty sanitised body, got %v", err)
	}
}

func TestAppendMessageReopensResolvedTicket(t *testing.T) {
	tickets := newFakeTicketRepo()
	now := time.Now().UTC()
	tickets.tickets["t1"] = domain.SupportTicket{
		ID: "t1", UserID: "owner", Status: domain.TicketStatusResolved, CreatedAt: now,
	}
	publisher := &fakePublisher{}
	svc := newTicketServiceForTest(t, tickets, publisher, now)

	updated, err := svc.AppendMessage(context.Background(), AppendTicketMessageCommand{
		UserID:   "owner",
		TicketID: "t1",
		Body:     "Still broken after the fix.",
	})
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if updated.Status != domain.TicketStatusOpen {
		t.Fatalf("client reply should reopen resolved ticket, got %s", updated.Status)
	}
	events := publisher.events()
	if len(events) != 1 || events[0] != "ticket.message_added" {
		t.Fatalf("expected ticket.message_added event, got %v", events)
	}
}

func TestAppendMessageClosedTicketRejected(t *testing.T) {
	tickets := newFakeTicketRepo()
	tickets.tickets["t1"] = domain.SupportTicket{ID: "t1", UserID: "owner", Status: domain.TicketStatusClosed}
	svc := newTicketServiceForTest(t, tickets, &fakePublisher{}, time.Now())

	_, err := svc.AppendMessage(context.Background(), AppendTicketMessageCommand{
		UserID: "owner", TicketID: "t1", Body: "hello",
	})
	if !errors.Is(err, ErrTicketClosed) {
		t.Fatalf("expected ErrTicketClosed, got %v", err)
	}
}

func TestTicketScopedToOwner(t *testing.T) {
	tickets := newFakeTicketRepo()
	tickets.tickets["t1"] = domain.SupportTicket{ID: "t1", UserID: "owner", Status: domain.TicketStatusOpen}
	svc := newTicketServiceForTest(t, tickets, &fakePublisher{}, time.Now())

	if _, err := svc.GetTicket(context.Background(), "intruder", "t1"); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("cross-user access should look missing, got %v", err)
	}
}

func TestCloseTicketIdempotent(t *testing.T) {
	tickets := newFakeTicketRepo()
	tickets.tickets["t1"] = domain.SupportTicket{ID: "t1", UserID: "owner", Status: domain.TicketStatusOpen}
	svc := newTicketServiceForTest(t, tickets, &fakePublisher{}, time.Now())

	closed, err := svc.CloseTicket(context.Background(), "owner", "t1")
	if err != nil {
		t.Fatalf("CloseTicket: %v", err)
	}
	if closed.Status != domain.TicketStatusClosed {
		t.Fatalf("expected closed, got %s", closed.Status)
	}

	again, err := svc.CloseTicket(context.Background(), "owner", "t1")
	if err != nil {
		t.Fatalf("second CloseTicket: %v", err)
	}
	if again.Status != domain.TicketStatusClosed {
		t.Fatalf("close should be idempotent, got %s", again.Status)
	}
}
