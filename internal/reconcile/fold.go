package reconcile

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-intel/internal/domain"
)

// AppendWindow is the recency threshold for folding a message into an
// existing ticket. A fold at exactly lastActivityAt+AppendWindow still
// appends; one millisecond later starts a new ticket.
const AppendWindow = 7 * 24 * time.Hour

// Fold merges one normalized message input into the ticket set and returns
// the updated set. It either appends to the customer's most recent eligible
// ticket or creates a new one; exactly one ticket is created or modified per
// call and every other ticket passes through untouched. The input set is
// treated as an immutable snapshot.
func Fold(tickets []domain.SupportTicket, input domain.TicketMessageInput, now time.Time) []domain.SupportTicket {
	next, _ := FoldAffected(tickets, input, now)
	return next
}

// FoldAffected folds like Fold and also reports the id of the ticket that
// was created or appended to.
func FoldAffected(tickets []domain.SupportTicket, input domain.TicketMessageInput, now time.Time) ([]domain.SupportTicket, string) {
	emailNorm := NormalizeEmail(input.CustomerEmail)
	customerKey := ResolveCustomerKey(input.CustomerEmail, input.CustomerFallbackID)

	latest := latestForCustomer(tickets, customerKey)

	canAppend := latest != nil &&
		now.Sub(latest.LastActivityAt) <= AppendWindow &&
		latest.Status != domain.TicketStatusClosed

	msg := newTicketMessage(customerKey, input, now)

	if canAppend {
		next := make([]domain.SupportTicket, len(tickets))
		for i := range tickets {
			if tickets[i].ID != latest.ID {
				next[i] = tickets[i]
				continue
			}
			next[i] = appendMessage(tickets[i], msg, input, emailNorm, now)
		}
		return next, latest.ID
	}

	created := newTicket(customerKey, msg, input, emailNorm, now)
	next := make([]domain.SupportTicket, 0, len(tickets)+1)
	next = append(next, created)
	next = append(next, tickets...)
	return next, created.ID
}

// DeleteMessage removes one message from the identified ticket. A ticket
// whose last message is removed is removed from the set entirely.
func DeleteMessage(tickets []domain.SupportTicket, ticketID, messageID string) []domain.SupportTicket {
	next := make([]domain.SupportTicket, 0, len(tickets))
	for _, t := range tickets {
		if t.ID != ticketID {
			next = append(next, t)
			continue
		}
		msgs := make([]domain.TicketMessage, 0, len(t.Messages))
		for _, m := range t.Messages {
			if m.ID != messageID {
				msgs = append(msgs, m)
			}
		}
		if len(msgs) == 0 {
			continue
		}
		t.Messages = msgs
		next = append(next, t)
	}
	return next
}

// DeleteTicket removes the identified ticket from the set.
func DeleteTicket(tickets []domain.SupportTicket, ticketID string) []domain.SupportTicket {
	next := make([]domain.SupportTicket, 0, len(tickets))
	for _, t := range tickets {
		if t.ID != ticketID {
			next = append(next, t)
		}
	}
	return next
}

func latestForCustomer(tickets []domain.SupportTicket, customerKey string) *domain.SupportTicket {
	var latest *domain.SupportTicket
	for i := range tickets {
		if tickets[i].CustomerKey != customerKey {
			continue
		}
		if latest == nil || tickets[i].LastActivityAt.After(latest.LastActivityAt) {
			latest = &tickets[i]
		}
	}
	return latest
}

func newTicketMessage(customerKey string, input domain.TicketMessageInput, now time.Time) domain.TicketMessage {
	external := input.External
	if external == nil {
		external = map[string]any{}
	}
	return domain.TicketMessage{
		ID:               uuid.NewString(),
		CustomerKey:      customerKey,
		Channel:          input.Channel,
		CustomerText:     input.CustomerText,
		AgentReplyText:   input.AgentReplyText,
		OrderID:          input.OrderID,
		ProductID:        input.ProductID,
		ProductName:      input.ProductName,
		ProductAmazonID:  input.ProductAmazonID,
		CreatedAt:        now,
		CustomerAnalysis: input.CustomerAnalysis,
		AgentAnalysis:    input.AgentAnalysis,
		External:         external,
	}
}

func newTicket(customerKey string, msg domain.TicketMessage, input domain.TicketMessageInput, emailNorm string, now time.Time) domain.SupportTicket {
	analysis := input.CustomerAnalysis
	status := analysis.SuggestedStatus
	if status == "" {
		status = domain.TicketStatusOpen
	}
	severity := analysis.Severity
	if severity == "" {
		severity = domain.SeverityNormal
	}
	rootPrimary := analysis.RootCausePrimary
	if rootPrimary == "" {
		rootPrimary = domain.RootCauseUncategorized
	}
	return domain.SupportTicket{
		ID:                     uuid.NewString(),
		CustomerKey:            customerKey,
		CustomerName:           input.CustomerName,
		CustomerEmail:          emailNorm,
		CreatedAt:              now,
		LastActivityAt:         now,
		Status:                 status,
		Severity:               severity,
		RootCausePrimary:       rootPrimary,
		RootCauseSecondary:     analysis.RootCauseSecondary,
		ReplacementRequested:   analysis.ReplacementRequested,
		TroubleshootingApplied: analysis.TroubleshootingApplied,
		Messages:               []domain.TicketMessage{msg},
	}
}
