package reconcile_test

import (
	"testing"
	"time"

	"github.com/spec-kit/support-intel/internal/domain"
	"github.com/spec-kit/support-intel/internal/reconcile"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func makeInput(email string, severity domain.Severity, rootCause string) domain.TicketMessageInput {
	return domain.TicketMessageInput{
		CustomerName:  "Dana",
		CustomerEmail: email,
		Channel:       domain.ChannelManual,
		CustomerText:  "my pad deflates overnight",
		CustomerAnalysis: domain.AIAnalysis{
			Text:             "my pad deflates overnight",
			RootCausePrimary: rootCause,
			Sentiment:        domain.SentimentNegative,
			Severity:         severity,
			SuggestedStatus:  domain.TicketStatusOpen,
			Summary:          "deflation complaint",
		},
	}
}

func TestFold_CreatesTicketOnEmptySet(t *testing.T) {
	input := makeInput("a@x.com", domain.SeverityUrgent, "Valve Leak")

	tickets := reconcile.Fold(nil, input, t0)
	if len(tickets) != 1 {
		t.Fatalf("ticket count = %d, want 1", len(tickets))
	}

	got := tickets[0]
	if got.CustomerKey != "email:a@x.com" {
		t.Errorf("customerKey = %q", got.CustomerKey)
	}
	if got.Status != domain.TicketStatusOpen {
		t.Errorf("status = %q, want Open", got.Status)
	}
	if got.Severity != domain.SeverityUrgent {
		t.Errorf("severity = %q, want Urgent", got.Severity)
	}
	if got.RootCausePrimary != "Valve Leak" {
		t.Errorf("rootCausePrimary = %q", got.RootCausePrimary)
	}
	if len(got.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(got.Messages))
	}
	if !got.CreatedAt.Equal(t0) || !got.LastActivityAt.Equal(t0) {
		t.Errorf("timestamps = %v / %v, want %v", got.CreatedAt, got.LastActivityAt, t0)
	}
}

func TestFold_AppendsWithinWindow(t *testing.T) {
	tickets := reconcile.Fold(nil, makeInput("a@x.com", domain.SeverityUrgent, "Valve Leak"), t0)

	day1 := t0.Add(24 * time.Hour)
	tickets = reconcile.Fold(tickets, makeInput("a@x.com", domain.SeverityCritical, "Noise"), day1)

	if len(tickets) != 1 {
		t.Fatalf("ticket count = %d, want 1", len(tickets))
	}
	got := tickets[0]
	if got.Severity != domain.SeverityCritical {
		t.Errorf("severity = %q, want Critical", got.Severity)
	}
	if got.RootCausePrimary != "Valve Leak" {
		t.Errorf("rootCausePrimary = %q, want sticky Valve Leak", got.RootCausePrimary)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(got.Messages))
	}
	if !got.LastActivityAt.Equal(day1) {
		t.Errorf("lastActivityAt = %v, want %v", got.LastActivityAt, day1)
	}
	if !got.Messages[0].CreatedAt.After(got.Messages[1].CreatedAt) {
		t.Errorf("messages not newest first: %v then %v", got.Messages[0].CreatedAt, got.Messages[1].CreatedAt)
	}
}

func TestFold_WindowBoundary(t *testing.T) {
	base := reconcile.Fold(nil, makeInput("a@x.com", domain.SeverityNormal, "Noise"), t0)

	atBoundary := reconcile.Fold(base, makeInput("a@x.com", domain.SeverityNormal, "Noise"), t0.Add(reconcile.AppendWindow))
	if len(atBoundary) != 1 {
		t.Fatalf("fold at exactly 7 days created a ticket; count = %d", len(atBoundary))
	}
	if len(atBoundary[0].Messages) != 2 {
		t.Fatalf("messages at boundary = %d, want 2", len(atBoundary[0].Messages))
	}

	pastBoundary := reconcile.Fold(base, makeInput("a@x.com", domain.SeverityNormal, "Noise"), t0.Add(reconcile.AppendWindow+time.Millisecond))
	if len(pastBoundary) != 2 {
		t.Fatalf("fold past 7 days appended; count = %d, want 2", len(pastBoundary))
	}
	for _, tk := range pastBoundary {
		if tk.CustomerKey != "email:a@x.com" {
			t.Errorf("unexpected customerKey %q", tk.CustomerKey)
		}
	}
}

func TestFold_ClosedNeverReceivesAppends(t *testing.T) {
	tickets := reconcile.Fold(nil, makeInput("a@x.com", domain.SeverityNormal, "Noise"), t0)
	tickets[0].Status = domain.TicketStatusClosed

	next := reconcile.Fold(tickets, makeInput("a@x.com", domain.SeverityNormal, "Noise"), t0.Add(time.Hour))
	if len(next) != 2 {
		t.Fatalf("fold on closed ticket appended; count = %d, want 2", len(next))
	}
	for _, tk := range next {
		if tk.ID == tickets[0].ID && len(tk.Messages) != 1 {
			t.Errorf("closed ticket gained a message")
		}
	}
}

func TestFold_ResolvedReopensOnAppend(t *testing.T) {
	tickets := reconcile.Fold(nil, makeInput("a@x.com", domain.SeverityNormal, "Noise"), t0)
	tickets[0].Status = domain.TicketStatusResolved

	next := reconcile.Fold(tickets, makeInput("a@x.com", domain.SeverityNormal, "Noise"), t0.Add(time.Hour))
	if len(next) != 1 {
		t.Fatalf("resolved ticket not appended to; count = %d", len(next))
	}
	if next[0].Status != domain.TicketStatusReopened {
		t.Fatalf("status = %q, want Reopened", next[0].Status)
	}
}

func TestFold_SeverityMonotone(t *testing.T) {
	sequence := []domain.Severity{
		domain.SeverityUrgent,
		domain.SeverityNormal,
		domain.SeverityCritical,
		domain.SeverityNormal,
	}
	var tickets []domain.SupportTicket
	highest := domain.SeverityNormal
	for i, sev := range sequence {
		now := t0.Add(time.Duration(i) * time.Hour)
		tickets = reconcile.Fold(tickets, makeInput("a@x.com", sev, "Noise"), now)
		highest = domain.MaxSeverity(highest, sev)
		if tickets[0].Severity.Rank() < highest.Rank() {
			t.Fatalf("after fold %d severity = %q, below observed max %q", i, tickets[0].Severity, highest)
		}
	}
	if tickets[0].Severity != domain.SeverityCritical {
		t.Fatalf("final severity = %q, want Critical", tickets[0].Severity)
	}
}

func TestFold_RootCauseSticky(t *testing.T) {
	tickets := reconcile.Fold(nil, makeInput("a@x.com", domain.SeverityNormal, domain.RootCauseUncategorized), t0)
	if tickets[0].RootCausePrimary != domain.RootCauseUncategorized {
		t.Fatalf("initial rootCausePrimary = %q", tickets[0].RootCausePrimary)
	}

	// The sentinel is not sticky; the first real classification lands.
	tickets = reconcile.Fold(tickets, makeInput("a@x.com", domain.SeverityNormal, "Valve Leak"), t0.Add(time.Hour))
	if tickets[0].RootCausePrimary != "Valve Leak" {
		t.Fatalf("rootCausePrimary = %q, want Valve Leak", tickets[0].RootCausePrimary)
	}

	// A later, different classification does not overwrite it.
	tickets = reconcile.Fold(tickets, makeInput("a@x.com", domain.SeverityNormal, "Comfort"), t0.Add(2*time.Hour))
	if tickets[0].RootCausePrimary != "Valve Leak" {
		t.Fatalf("rootCausePrimary = %q after conflicting fold, want Valve Leak", tickets[0].RootCausePrimary)
	}
}

func TestFold_SecondaryRootCauseKeepExisting(t *testing.T) {
	input := makeInput("a@x.com", domain.SeverityNormal, "Valve Leak")
	input.CustomerAnalysis.RootCauseSecondary = "Noise"
	tickets := reconcile.Fold(nil, input, t0)

	later := makeInput("a@x.com", domain.SeverityNormal, "Valve Leak")
	later.CustomerAnalysis.RootCauseSecondary = "Comfort"
	tickets = reconcile.Fold(tickets, later, t0.Add(time.Hour))
	if tickets[0].RootCauseSecondary != "Noise" {
		t.Fatalf("rootCauseSecondary = %q, want Noise", tickets[0].RootCauseSecondary)
	}
}

func TestFold_StickyFlags(t *testing.T) {
	first := makeInput("a@x.com", domain.SeverityNormal, "Valve Leak")
	first.CustomerAnalysis.ReplacementRequested = true
	tickets := reconcile.Fold(nil, first, t0)

	second := makeInput("a@x.com", domain.SeverityNormal, "Valve Leak")
	second.CustomerAnalysis.TroubleshootingApplied = true
	tickets = reconcile.Fold(tickets, second, t0.Add(time.Hour))

	third := makeInput("a@x.com", domain.SeverityNormal, "Valve Leak")
	tickets = reconcile.Fold(tickets, third, t0.Add(2*time.Hour))

	if !tickets[0].ReplacementRequested {
		t.Errorf("replacementRequested dropped to false")
	}
	if !tickets[0].TroubleshootingApplied {
		t.Errorf("troubleshootingApplied dropped to false")
	}
}

func TestFold_MessageCountAfterSequentialFolds(t *testing.T) {
	const n = 6
	var tickets []domain.SupportTicket
	for i := 0; i < n; i++ {
		tickets = reconcile.Fold(tickets, makeInput("a@x.com", domain.SeverityNormal, "Noise"), t0.Add(time.Duration(i)*time.Hour))
	}
	if len(tickets) != 1 {
		t.Fatalf("ticket count = %d, want 1", len(tickets))
	}
	msgs := tickets[0].Messages
	if len(msgs) != n {
		t.Fatalf("message count = %d, want %d", len(msgs), n)
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].CreatedAt.After(msgs[i-1].CreatedAt) {
			t.Fatalf("messages out of newest-first order at index %d", i)
		}
	}
}

func TestFold_ContactFieldsRetainedWhenInputEmpty(t *testing.T) {
	tickets := reconcile.Fold(nil, makeInput("a@x.com", domain.SeverityNormal, "Noise"), t0)

	followUp := makeInput("a@x.com", domain.SeverityNormal, "Noise")
	followUp.CustomerName = ""
	tickets = reconcile.Fold(tickets, followUp, t0.Add(time.Hour))

	if tickets[0].CustomerName != "Dana" {
		t.Fatalf("customerName = %q, want retained Dana", tickets[0].CustomerName)
	}
	if tickets[0].CustomerEmail != "a@x.com" {
		t.Fatalf("customerEmail = %q", tickets[0].CustomerEmail)
	}
}

func TestFold_AnonymousInputsNeverMerge(t *testing.T) {
	anon := makeInput("", domain.SeverityNormal, "Noise")
	tickets := reconcile.Fold(nil, anon, t0)
	tickets = reconcile.Fold(tickets, anon, t0.Add(time.Minute))

	if len(tickets) != 2 {
		t.Fatalf("ticket count = %d, want 2 distinct anonymous tickets", len(tickets))
	}
	if tickets[0].CustomerKey == tickets[1].CustomerKey {
		t.Fatalf("anonymous tickets share key %q", tickets[0].CustomerKey)
	}
}

func TestFold_OtherTicketsPassThroughUnchanged(t *testing.T) {
	tickets := reconcile.Fold(nil, makeInput("a@x.com", domain.SeverityNormal, "Noise"), t0)
	tickets = reconcile.Fold(tickets, makeInput("b@y.com", domain.SeverityUrgent, "Comfort"), t0.Add(time.Minute))

	before := findByKey(t, tickets, "email:a@x.com")
	next := reconcile.Fold(tickets, makeInput("b@y.com", domain.SeverityCritical, "Comfort"), t0.Add(2*time.Minute))
	after := findByKey(t, next, "email:a@x.com")

	if before.ID != after.ID || len(before.Messages) != len(after.Messages) || before.Severity != after.Severity {
		t.Fatalf("untouched ticket changed: before %+v after %+v", before, after)
	}
}

func TestFold_DefaultsOnMissingAnalysisFields(t *testing.T) {
	input := domain.TicketMessageInput{
		CustomerEmail: "a@x.com",
		Channel:       domain.ChannelManual,
		CustomerText:  "hello",
	}
	tickets := reconcile.Fold(nil, input, t0)
	got := tickets[0]
	if got.Status != domain.TicketStatusOpen {
		t.Errorf("status default = %q, want Open", got.Status)
	}
	if got.Severity != domain.SeverityNormal {
		t.Errorf("severity default = %q, want Normal", got.Severity)
	}
	if got.RootCausePrimary != domain.RootCauseUncategorized {
		t.Errorf("rootCausePrimary default = %q, want Uncategorized", got.RootCausePrimary)
	}
}

func TestFoldAffected_AttributesCorrectTicketOnSharedTimestamp(t *testing.T) {
	// Two customers folded at the same instant, so lastActivityAt alone
	// cannot tell their tickets apart.
	tickets, aliceID := reconcile.FoldAffected(nil, makeInput("alice@x.com", domain.SeverityNormal, "Valve Leak"), t0)
	tickets, bobID := reconcile.FoldAffected(tickets, makeInput("bob@x.com", domain.SeverityNormal, "Fabric Defect"), t0)
	if aliceID == bobID {
		t.Fatalf("distinct customers share a ticket id %q", aliceID)
	}

	next, affected := reconcile.FoldAffected(tickets, makeInput("alice@x.com", domain.SeverityUrgent, ""), t0)
	if affected != aliceID {
		t.Fatalf("affected = %q, want alice's ticket %q", affected, aliceID)
	}
	if len(next) != 2 {
		t.Fatalf("ticket count = %d, want 2", len(next))
	}
	alice := findByKey(t, next, "email:alice@x.com")
	if len(alice.Messages) != 2 {
		t.Errorf("alice messages = %d, want 2", len(alice.Messages))
	}
	bob := findByKey(t, next, "email:bob@x.com")
	if len(bob.Messages) != 1 {
		t.Errorf("bob messages = %d, want 1", len(bob.Messages))
	}

	_, created := reconcile.FoldAffected(next, makeInput("carol@x.com", domain.SeverityNormal, ""), t0)
	if created == aliceID || created == bobID {
		t.Errorf("new customer reused ticket id %q", created)
	}
}

func TestDeleteMessage(t *testing.T) {
	var tickets []domain.SupportTicket
	tickets = reconcile.Fold(tickets, makeInput("a@x.com", domain.SeverityNormal, "Noise"), t0)
	tickets = reconcile.Fold(tickets, makeInput("a@x.com", domain.SeverityNormal, "Noise"), t0.Add(time.Hour))
	ticketID := tickets[0].ID

	next := reconcile.DeleteMessage(tickets, ticketID, tickets[0].Messages[0].ID)
	if len(next) != 1 {
		t.Fatalf("ticket count = %d after deleting one of two messages", len(next))
	}
	if len(next[0].Messages) != 1 {
		t.Fatalf("message count = %d, want 1", len(next[0].Messages))
	}

	final := reconcile.DeleteMessage(next, ticketID, next[0].Messages[0].ID)
	if len(final) != 0 {
		t.Fatalf("ticket survived deletion of its last message; count = %d", len(final))
	}
}

func TestDeleteTicket(t *testing.T) {
	tickets := reconcile.Fold(nil, makeInput("a@x.com", domain.SeverityNormal, "Noise"), t0)
	tickets = reconcile.Fold(tickets, makeInput("b@y.com", domain.SeverityNormal, "Noise"), t0)

	target := findByKey(t, tickets, "email:a@x.com")
	next := reconcile.DeleteTicket(tickets, target.ID)
	if len(next) != 1 {
		t.Fatalf("ticket count = %d, want 1", len(next))
	}
	if next[0].CustomerKey != "email:b@y.com" {
		t.Fatalf("wrong ticket deleted; remaining key %q", next[0].CustomerKey)
	}
}

// Scenario walk-through: new ticket, escalation, manual resolve + reopen,
// out-of-window split.
func TestFold_LifecycleScenario(t *testing.T) {
	input := makeInput("a@x.com", domain.SeverityUrgent, "Valve Leak")
	tickets := reconcile.Fold(nil, input, t0)

	tickets = reconcile.Fold(tickets, makeInput("a@x.com", domain.SeverityCritical, "Noise"), t0.Add(24*time.Hour))
	if tickets[0].Severity != domain.SeverityCritical || tickets[0].RootCausePrimary != "Valve Leak" {
		t.Fatalf("escalation fold wrong: severity %q root %q", tickets[0].Severity, tickets[0].RootCausePrimary)
	}

	tickets[0].Status = domain.TicketStatusResolved
	tickets = reconcile.Fold(tickets, makeInput("a@x.com", domain.SeverityNormal, "Noise"), t0.Add(3*24*time.Hour))
	if tickets[0].Status != domain.TicketStatusReopened || len(tickets[0].Messages) != 3 {
		t.Fatalf("reopen fold wrong: status %q messages %d", tickets[0].Status, len(tickets[0].Messages))
	}

	// Past the window relative to last activity at T0+3d.
	tickets = reconcile.Fold(tickets, makeInput("a@x.com", domain.SeverityNormal, "Noise"), t0.Add(11*24*time.Hour))
	if len(tickets) != 2 {
		t.Fatalf("ticket count = %d, want independent second ticket", len(tickets))
	}
	var counts []int
	for _, tk := range tickets {
		counts = append(counts, len(tk.Messages))
	}
	if !(counts[0] == 1 && counts[1] == 3) && !(counts[0] == 3 && counts[1] == 1) {
		t.Fatalf("message counts = %v, want {3,1}", counts)
	}
}

func findByKey(t *testing.T, tickets []domain.SupportTicket, key string) domain.SupportTicket {
	t.Helper()
	for _, tk := range tickets {
		if tk.CustomerKey == key {
			return tk
		}
	}
	t.Fatalf("no ticket with key %q", key)
	return domain.SupportTicket{}
}
