package reconcile

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-intel/internal/domain"
)

// LegacyIssue is one record of the pre-ticket flat issue format (the v1
// blob). Legacy records predate fallback identifiers and classification.
type LegacyIssue struct {
	CustomerName  string           `json:"customerName"`
	CustomerEmail string           `json:"customerEmail"`
	CreatedAt     time.Time        `json:"createdAt"`
	Status        string           `json:"status"`
	ProblemText   string           `json:"problemText"`
	Sentiment     domain.Sentiment `json:"sentiment"`
	Summary       string           `json:"summary"`
	Positives     []string         `json:"positives"`
}

// MigrateLegacyIssues transforms the flat v1 issue records into tickets.
// Records are grouped strictly by normalized email (records without one get
// an anonymous key each, so they never group), processed newest first. The
// newest record of a group establishes the ticket-level fields; legacy
// "Solved" maps to Resolved and everything else to Open, severity is always
// Normal and root cause always the Uncategorized sentinel. This runs exactly
// once, on first boot with no current-format data.
func MigrateLegacyIssues(legacy []LegacyIssue) []domain.SupportTicket {
	sorted := make([]LegacyIssue, len(legacy))
	copy(sorted, legacy)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	byKey := map[string]*domain.SupportTicket{}
	var order []string

	for _, item := range sorted {
		key := ResolveCustomerKey(item.CustomerEmail, "")

		ticket, ok := byKey[key]
		if !ok {
			ticket = &domain.SupportTicket{
				ID:                 uuid.NewString(),
				CustomerKey:        key,
				CustomerName:       item.CustomerName,
				CustomerEmail:      NormalizeEmail(item.CustomerEmail),
				CreatedAt:          item.CreatedAt,
				LastActivityAt:     item.CreatedAt,
				Status:             legacyStatus(item.Status),
				Severity:           domain.SeverityNormal,
				RootCausePrimary:   domain.RootCauseUncategorized,
				RootCauseSecondary: "",
			}
			byKey[key] = ticket
			order = append(order, key)
		}

		sentiment := item.Sentiment
		if sentiment == "" {
			sentiment = domain.SentimentNeutral
		}

		ticket.Messages = append(ticket.Messages, domain.TicketMessage{
			ID:           uuid.NewString(),
			CustomerKey:  key,
			Channel:      domain.ChannelManual,
			CustomerText: item.ProblemText,
			CreatedAt:    item.CreatedAt,
			CustomerAnalysis: domain.AIAnalysis{
				Text:             item.ProblemText,
				RootCausePrimary: domain.RootCauseUncategorized,
				Sentiment:        sentiment,
				Severity:         domain.SeverityNormal,
				SuggestedStatus:  legacyStatus(item.Status),
				Summary:          item.Summary,
				Positives:        item.Positives,
			},
		})
		ticket.LastActivityAt = item.CreatedAt
	}

	tickets := make([]domain.SupportTicket, 0, len(order))
	for _, key := range order {
		t := byKey[key]
		sort.SliceStable(t.Messages, func(i, j int) bool {
			return t.Messages[i].CreatedAt.After(t.Messages[j].CreatedAt)
		})
		tickets = append(tickets, *t)
	}
	return tickets
}

func legacyStatus(status string) domain.TicketStatus {
	if status == "Solved" {
		return domain.TicketStatusResolved
	}
	return domain.TicketStatusOpen
}
