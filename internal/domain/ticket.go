package domain

import "time"

// TicketStatus enumerates lifecycle states for support tickets. The values
// are display strings because they are stored verbatim in the ticket state
// blob and shown as-is in the dashboard.
type TicketStatus string

const (
	TicketStatusOpen            TicketStatus = "Open"
	TicketStatusTroubleshooting TicketStatus = "Troubleshooting"
	TicketStatusWaitingCustomer TicketStatus = "Waiting Customer"
	TicketStatusResolved        TicketStatus = "Resolved"
	TicketStatusReplacement     TicketStatus = "Replacement in progress"
	TicketStatusClosed          TicketStatus = "Closed"
	TicketStatusReopened        TicketStatus = "Reopened"
)

// TicketStatuses lists every valid status.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusTroubleshooting,
	TicketStatusWaitingCustomer,
	TicketStatusResolved,
	TicketStatusReplacement,
	TicketStatusClosed,
	TicketStatusReopened,
}

// ValidTicketStatus reports whether s is a known status.
func ValidTicketStatus(s TicketStatus) bool {
	for _, candidate := range TicketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Severity enumerates escalation levels, totally ordered Normal < Urgent < Critical.
type Severity string

const (
	SeverityNormal   Severity = "Normal"
	SeverityUrgent   Severity = "Urgent"
	SeverityCritical Severity = "Critical"
)

// Severities lists every valid severity.
var Severities = []Severity{SeverityNormal, SeverityUrgent, SeverityCritical}

// ValidSeverity reports whether s is a known severity.
func ValidSeverity(s Severity) bool {
	return s == SeverityNormal || s == SeverityUrgent || s == SeverityCritical
}

// Rank returns the position of the severity in the escalation order.
// Unknown values rank lowest.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityUrgent:
		return 2
	default:
		return 1
	}
}

// MaxSeverity returns the higher-ranked of a and b, keeping a on ties.
func MaxSeverity(a, b Severity) Severity {
	if a.Rank() >= b.Rank() {
		return a
	}
	return b
}

// SupportTicket is the aggregate unit of support history for one customer.
// Messages are ordered newest first and the list is never empty while the
// ticket exists.
type SupportTicket struct {
	ID                     string          `json:"id"`
	CustomerKey            string          `json:"customerKey"`
	CustomerName           string          `json:"customerName"`
	CustomerEmail          string          `json:"customerEmail"`
	CreatedAt              time.Time       `json:"createdAt"`
	LastActivityAt         time.Time       `json:"lastActivityAt"`
	Status                 TicketStatus    `json:"status"`
	Severity               Severity        `json:"severity"`
	RootCausePrimary       string          `json:"rootCausePrimary"`
	RootCauseSecondary     string          `json:"rootCauseSecondary"`
	ReplacementRequested   bool            `json:"replacementRequested"`
	TroubleshootingApplied bool            `json:"troubleshootingApplied"`
	Messages               []TicketMessage `json:"messages"`
}
