package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/support-intel/internal/domain"
	"github.com/spec-kit/support-intel/internal/reconcile"
)

const (
	ticketsKey      = "support_ai_tickets_v2"
	legacyIssuesKey = "support_ai_issues_v1"
)

// RedisStore mirrors the full ticket set as one JSON blob under a fixed key.
// It also holds the legacy v1 issue blob consulted once on first boot.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs the store; a nil client yields a nil store.
func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		return nil
	}
	return &RedisStore{client: client}
}

// LoadAll reads the mirrored ticket set.
func (s *RedisStore) LoadAll(ctx context.Context) ([]domain.SupportTicket, error) {
	raw, err := s.client.Get(ctx, ticketsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load local tickets: %w", err)
	}
	var tickets []domain.SupportTicket
	if err := json.Unmarshal(raw, &tickets); err != nil {
		return nil, fmt.Errorf("decode local tickets: %w", err)
	}
	return tickets, nil
}

// SaveAll overwrites the mirrored ticket set.
func (s *RedisStore) SaveAll(ctx context.Context, tickets []domain.SupportTicket) error {
	data, err := json.Marshal(tickets)
	if err != nil {
		return fmt.Errorf("encode local tickets: %w", err)
	}
	if err := s.client.Set(ctx, ticketsKey, data, 0).Err(); err != nil {
		return fmt.Errorf("save local tickets: %w", err)
	}
	return nil
}

// LoadLegacyIssues reads the pre-ticket v1 issue records, if any. A missing
// blob returns nil records and no error.
func (s *RedisStore) LoadLegacyIssues(ctx context.Context) ([]reconcile.LegacyIssue, error) {
	raw, err := s.client.Get(ctx, legacyIssuesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load legacy issues: %w", err)
	}
	var issues []reconcile.LegacyIssue
	if err := json.Unmarshal(raw, &issues); err != nil {
		return nil, fmt.Errorf("decode legacy issues: %w", err)
	}
	return issues, nil
}
