package reconcile

import (
	"time"

	"github.com/spec-kit/support-intel/internal/domain"
)

// rollupRule merges one rollup field of an existing ticket with the incoming
// input. Rules are applied in table order on every append.
type rollupRule struct {
	field string
	apply func(t *domain.SupportTicket, input domain.TicketMessageInput, emailNorm string)
}

// rollupRules is the merge-policy table for ticket-level fields on append:
// contact fields overwrite when the input supplies a value, root causes keep
// the existing value once meaningfully set, the boolean flags accumulate via
// OR, severity takes the max by rank, and status reopens terminal tickets.
var rollupRules = []rollupRule{
	{"customerName", func(t *domain.SupportTicket, input domain.TicketMessageInput, _ string) {
		if input.CustomerName != "" {
			t.CustomerName = input.CustomerName
		}
	}},
	{"customerEmail", func(t *domain.SupportTicket, _ domain.TicketMessageInput, emailNorm string) {
		if emailNorm != "" {
			t.CustomerEmail = emailNorm
		}
	}},
	{"status", func(t *domain.SupportTicket, _ domain.TicketMessageInput, _ string) {
		if t.Status == domain.TicketStatusResolved || t.Status == domain.TicketStatusClosed {
			t.Status = domain.TicketStatusReopened
		}
	}},
	{"rootCausePrimary", func(t *domain.SupportTicket, input domain.TicketMessageInput, _ string) {
		if t.RootCausePrimary == "" || t.RootCausePrimary == domain.RootCauseUncategorized {
			t.RootCausePrimary = input.CustomerAnalysis.RootCausePrimary
		}
	}},
	{"rootCauseSecondary", func(t *domain.SupportTicket, input domain.TicketMessageInput, _ string) {
		if t.RootCauseSecondary == "" {
			t.RootCauseSecondary = input.CustomerAnalysis.RootCauseSecondary
		}
	}},
	{"replacementRequested", func(t *domain.SupportTicket, input domain.TicketMessageInput, _ string) {
		t.ReplacementRequested = t.ReplacementRequested || input.CustomerAnalysis.ReplacementRequested
	}},
	{"troubleshootingApplied", func(t *domain.SupportTicket, input domain.TicketMessageInput, _ string) {
		t.TroubleshootingApplied = t.TroubleshootingApplied || input.CustomerAnalysis.TroubleshootingApplied
	}},
	{"severity", func(t *domain.SupportTicket, input domain.TicketMessageInput, _ string) {
		t.Severity = domain.MaxSeverity(t.Severity, input.CustomerAnalysis.Severity)
	}},
}

// appendMessage returns a copy of the ticket with the message prepended and
// every rollup field merged per the policy table. The reopen rule runs
// before any caller-visible status read, so a Resolved or Closed ticket that
// receives a fold always comes back Reopened.
func appendMessage(t domain.SupportTicket, msg domain.TicketMessage, input domain.TicketMessageInput, emailNorm string, now time.Time) domain.SupportTicket {
	for _, rule := range rollupRules {
		rule.apply(&t, input, emailNorm)
	}
	t.LastActivityAt = now

	msgs := make([]domain.TicketMessage, 0, len(t.Messages)+1)
	msgs = append(msgs, msg)
	msgs = append(msgs, t.Messages...)
	t.Messages = msgs
	return t
}
