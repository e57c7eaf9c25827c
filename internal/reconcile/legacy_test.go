package reconcile_test

import (
	"testing"
	"time"

	"github.com/spec-kit/support-intel/internal/domain"
	"github.com/spec-kit/support-intel/internal/reconcile"
)

func TestMigrateLegacyIssues_GroupsByEmail(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	legacy := []reconcile.LegacyIssue{
		{CustomerName: "Dana", CustomerEmail: "A@X.com", CreatedAt: base, Status: "Open", ProblemText: "first complaint"},
		{CustomerName: "Dana", CustomerEmail: "a@x.com ", CreatedAt: base.Add(48 * time.Hour), Status: "Solved", ProblemText: "follow up"},
		{CustomerName: "Lee", CustomerEmail: "b@y.com", CreatedAt: base.Add(time.Hour), Status: "Open", ProblemText: "other customer"},
	}

	tickets := reconcile.MigrateLegacyIssues(legacy)
	if len(tickets) != 2 {
		t.Fatalf("ticket count = %d, want 2", len(tickets))
	}

	var dana *domain.SupportTicket
	for i := range tickets {
		if tickets[i].CustomerKey == "email:a@x.com" {
			dana = &tickets[i]
		}
	}
	if dana == nil {
		t.Fatalf("no ticket grouped under email:a@x.com")
	}
	if len(dana.Messages) != 2 {
		t.Fatalf("grouped message count = %d, want 2", len(dana.Messages))
	}
	// Newest record establishes the ticket-level fields: "Solved" -> Resolved.
	if dana.Status != domain.TicketStatusResolved {
		t.Errorf("status = %q, want Resolved", dana.Status)
	}
	if dana.Severity != domain.SeverityNormal {
		t.Errorf("severity = %q, want Normal", dana.Severity)
	}
	if dana.RootCausePrimary != domain.RootCauseUncategorized {
		t.Errorf("rootCausePrimary = %q, want sentinel", dana.RootCausePrimary)
	}
	if !dana.Messages[0].CreatedAt.After(dana.Messages[1].CreatedAt) {
		t.Errorf("messages not newest first")
	}
}

func TestMigrateLegacyIssues_StatusMapping(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	tickets := reconcile.MigrateLegacyIssues([]reconcile.LegacyIssue{
		{CustomerEmail: "a@x.com", CreatedAt: base, Status: "Pending", ProblemText: "x"},
	})
	if len(tickets) != 1 || tickets[0].Status != domain.TicketStatusOpen {
		t.Fatalf("non-Solved legacy status must map to Open, got %+v", tickets)
	}
}

func TestMigrateLegacyIssues_NoEmailNeverGroups(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	tickets := reconcile.MigrateLegacyIssues([]reconcile.LegacyIssue{
		{CustomerName: "Anon", CreatedAt: base, ProblemText: "one"},
		{CustomerName: "Anon", CreatedAt: base.Add(time.Hour), ProblemText: "two"},
	})
	if len(tickets) != 2 {
		t.Fatalf("ticket count = %d, want 2 separate anonymous tickets", len(tickets))
	}
	if tickets[0].CustomerKey == tickets[1].CustomerKey {
		t.Fatalf("anonymous legacy tickets share key %q", tickets[0].CustomerKey)
	}
}

func TestMigrateLegacyIssues_Empty(t *testing.T) {
	if got := reconcile.MigrateLegacyIssues(nil); len(got) != 0 {
		t.Fatalf("migrating nothing produced %d tickets", len(got))
	}
}
