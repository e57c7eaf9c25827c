package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-intel/internal/domain"
)

// PostgresStore persists the ticket set row-per-customer in the
// ticket_state table. Every save is a full sync: rows whose customer key no
// longer appears in the set are deleted first, then each remaining customer
// row is upserted.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs the store. A nil pool yields a nil store,
// which callers treat as "remote storage disabled".
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		return nil
	}
	return &PostgresStore{pool: pool}
}

// LoadAll reads every customer row and flattens it into one ticket list
// sorted by last activity. ErrNotFound signals a completely empty table.
func (s *PostgresStore) LoadAll(ctx context.Context) ([]domain.SupportTicket, error) {
	rows, err := s.pool.Query(ctx, `SELECT customer_key, data FROM ticket_state`)
	if err != nil {
		return nil, fmt.Errorf("load ticket_state: %w", err)
	}
	defer rows.Close()

	var all []domain.SupportTicket
	var rowCount int
	for rows.Next() {
		var key string
		var data []byte
		if err := rows.Scan(&key, &data); err != nil {
			return nil, fmt.Errorf("scan ticket_state row: %w", err)
		}
		rowCount++
		var tickets []domain.SupportTicket
		if err := json.Unmarshal(data, &tickets); err != nil {
			return nil, fmt.Errorf("decode tickets for %s: %w", key, err)
		}
		all = append(all, tickets...)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if rowCount == 0 {
		return nil, ErrNotFound
	}

	SortByActivity(all)
	return all, nil
}

// SaveAll full-syncs the set: delete stale customer rows, then upsert the rest.
func (s *PostgresStore) SaveAll(ctx context.Context, tickets []domain.SupportTicket) error {
	grouped := GroupByCustomer(tickets)

	existing, err := s.fetchKeys(ctx)
	if err != nil {
		return err
	}

	for _, key := range StaleKeys(existing, grouped) {
		if _, err := s.pool.Exec(ctx, `DELETE FROM ticket_state WHERE customer_key=$1`, key); err != nil {
			return fmt.Errorf("delete stale row %s: %w", key, err)
		}
	}

	for key, group := range grouped {
		data, err := json.Marshal(group)
		if err != nil {
			return fmt.Errorf("encode tickets for %s: %w", key, err)
		}
		const query = `
            INSERT INTO ticket_state (customer_key, data, updated_at)
            VALUES ($1, $2, NOW())
            ON CONFLICT (customer_key) DO UPDATE SET data=EXCLUDED.data, updated_at=NOW()`
		if _, err := s.pool.Exec(ctx, query, key, data); err != nil {
			return fmt.Errorf("upsert row %s: %w", key, err)
		}
	}
	return nil
}

func (s *PostgresStore) fetchKeys(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT customer_key FROM ticket_state`)
	if err != nil {
		return nil, fmt.Errorf("fetch ticket_state keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
