package events

import (
	"time"

	"github.com/spec-kit/support-intel/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketAppended EventType = "ticket_appended"
	EventTicketReopened EventType = "ticket_reopened"
	EventTicketUpdated  EventType = "ticket_updated"
	EventTicketDeleted  EventType = "ticket_deleted"
	EventMessageDeleted EventType = "message_deleted"
)

// Event represents a domain event emitted by the ticket service.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	TicketID    string      `json:"ticket_id"`
	CustomerKey string      `json:"customer_key"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Channel          domain.Channel      `json:"channel"`
	Severity         domain.Severity     `json:"severity"`
	Status           domain.TicketStatus `json:"status"`
	RootCausePrimary string              `json:"root_cause_primary"`
}

// TicketAppendedPayload payload.
type TicketAppendedPayload struct {
	MessageID    string          `json:"message_id"`
	Channel      domain.Channel  `json:"channel"`
	Severity     domain.Severity `json:"severity"`
	MessageCount int             `json:"message_count"`
	Reopened     bool            `json:"reopened"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// MessageDeletedPayload payload.
type MessageDeletedPayload struct {
	MessageID     string `json:"message_id"`
	TicketRemoved bool   `json:"ticket_removed"`
}
