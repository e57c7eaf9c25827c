// Package reconcile implements the message-to-ticket reconciliation engine:
// deriving stable customer keys, folding normalized message inputs into the
// ticket set, and migrating the legacy flat issue format. Everything in this
// package is pure over its inputs; persistence and the analyzer call live in
// the surrounding service layer.
package reconcile

import (
	"strings"

	"github.com/google/uuid"
)

// NormalizeEmail trims and lowercases a raw email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ResolveCustomerKey derives the stable identity key for a customer.
// A non-empty normalized email wins, then a non-empty fallback identifier
// (e.g. a chat session id). With neither, a fresh anonymous key is minted;
// two anonymous keys never collide, so anonymous messages are never merged.
func ResolveCustomerKey(rawEmail, fallbackID string) string {
	if norm := NormalizeEmail(rawEmail); norm != "" {
		return "email:" + norm
	}
	if fallback := strings.TrimSpace(fallbackID); fallback != "" {
		return "fallback:" + fallback
	}
	return "anon:" + uuid.NewString()
}
