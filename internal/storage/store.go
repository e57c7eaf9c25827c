// Package storage persists the ticket set. The remote store keeps one row
// per customer key in Postgres; the local store mirrors the full set in
// Redis as a safety cache. SmartStore combines the two remote-first.
package storage

import (
	"context"
	"errors"
	"sort"

	"github.com/spec-kit/support-intel/internal/domain"
)

// ErrNotFound is returned by LoadAll when the store holds no ticket data at
// all, as opposed to an empty but initialized set.
var ErrNotFound = errors.New("no ticket data stored")

// TicketStore is the durable key-value set of tickets the reconciliation
// engine's callers persist through. Both operations are best-effort from the
// engine's point of view; a failed save never corrupts the in-memory set.
type TicketStore interface {
	LoadAll(ctx context.Context) ([]domain.SupportTicket, error)
	SaveAll(ctx context.Context, tickets []domain.SupportTicket) error
}

// GroupByCustomer buckets tickets by customer key, preserving the relative
// order of tickets within a key. Tickets without a key group under "unknown".
func GroupByCustomer(tickets []domain.SupportTicket) map[string][]domain.SupportTicket {
	grouped := make(map[string][]domain.SupportTicket)
	for _, t := range tickets {
		key := t.CustomerKey
		if key == "" {
			key = "unknown"
		}
		grouped[key] = append(grouped[key], t)
	}
	return grouped
}

// StaleKeys returns the keys present remotely but absent from the desired
// set. These rows are deleted before upserting during a full sync.
func StaleKeys(existing []string, desired map[string][]domain.SupportTicket) []string {
	var stale []string
	for _, key := range existing {
		if _, ok := desired[key]; !ok {
			stale = append(stale, key)
		}
	}
	return stale
}

// SortByActivity orders tickets most recently active first.
func SortByActivity(tickets []domain.SupportTicket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].LastActivityAt.After(tickets[j].LastActivityAt)
	})
}
