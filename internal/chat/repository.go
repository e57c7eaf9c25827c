package chat

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/spec-kit/support-intel/pkg/util"
)

// SessionStatus is the lifecycle state of a chat widget session.
type SessionStatus string

const (
	SessionActive   SessionStatus = "active"
	SessionClosed   SessionStatus = "closed"
	SessionArchived SessionStatus = "archived"
)

// Session is one chat widget visitor session.
type Session struct {
	SessionID     string        `json:"sessionId"`
	CustomerName  string        `json:"customerName"`
	CustomerEmail string        `json:"customerEmail"`
	OrderNumber   string        `json:"orderNumber"`
	IsLoggedIn    bool          `json:"isLoggedIn"`
	Status        SessionStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	LastMessageAt *time.Time    `json:"lastMessageAt"`
}

// Message is one chat line within a session.
type Message struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"sessionId"`
	Text           string    `json:"text"`
	IsFromCustomer bool      `json:"isFromCustomer"`
	AgentName      string    `json:"agentName"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Repository persists chat sessions and their messages.
type Repository interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	ListSessions(ctx context.Context, limit int) ([]Session, error)
	SaveMessage(ctx context.Context, msg *Message) error
	Messages(ctx context.Context, sessionID string) ([]Message, error)
	MarkRead(ctx context.Context, sessionID string) error
	UpdateStatus(ctx context.Context, sessionID string, status SessionStatus) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository instantiates repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) CreateSession(ctx context.Context, session *Session) error {
	const query = `
        INSERT INTO chat_sessions (session_id, customer_name, customer_email, order_number, is_logged_in, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		session.SessionID,
		session.CustomerName,
		session.CustomerEmail,
		session.OrderNumber,
		session.IsLoggedIn,
		session.Status,
	).Scan(&session.CreatedAt)
}

func (r *repository) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	const query = `
        SELECT session_id, customer_name, customer_email, order_number, is_logged_in, status, created_at, last_message_at
        FROM chat_sessions
        WHERE session_id = $1`
	var s Session
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&s.SessionID,
		&s.CustomerName,
		&s.CustomerEmail,
		&s.OrderNumber,
		&s.IsLoggedIn,
		&s.Status,
		&s.CreatedAt,
		&s.LastMessageAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("chat session", map[string]any{"session_id": sessionID})
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) ListSessions(ctx context.Context, limit int) ([]Session, error) {
	const query = `
        SELECT session_id, customer_name, customer_email, order_number, is_logged_in, status, created_at, last_message_at
        FROM chat_sessions
        ORDER BY last_message_at DESC NULLS LAST, created_at DESC
        LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(
			&s.SessionID,
			&s.CustomerName,
			&s.CustomerEmail,
			&s.OrderNumber,
			&s.IsLoggedIn,
			&s.Status,
			&s.CreatedAt,
			&s.LastMessageAt,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) SaveMessage(ctx context.Context, msg *Message) error {
	const insertMsg = `
        INSERT INTO chat_messages (session_id, message_text, is_from_customer, agent_name, is_read)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, insertMsg,
		msg.SessionID,
		msg.Text,
		msg.IsFromCustomer,
		msg.AgentName,
		msg.IsRead,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`UPDATE chat_sessions SET last_message_at = $1 WHERE session_id = $2`,
		msg.CreatedAt, msg.SessionID)
	return err
}

func (r *repository) Messages(ctx context.Context, sessionID string) ([]Message, error) {
	const query = `
        SELECT id, session_id, message_text, is_from_customer, agent_name, is_read, created_at
        FROM chat_messages
        WHERE session_id = $1
        ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(
			&m.ID,
			&m.SessionID,
			&m.Text,
			&m.IsFromCustomer,
			&m.AgentName,
			&m.IsRead,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repository) MarkRead(ctx context.Context, sessionID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE chat_messages SET is_read = TRUE WHERE session_id = $1 AND is_from_customer = TRUE`,
		sessionID)
	return err
}

func (r *repository) UpdateStatus(ctx context.Context, sessionID string, status SessionStatus) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE chat_sessions SET status = $1 WHERE session_id = $2`,
		status, sessionID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NewNotFound("chat session", map[string]any{"session_id": sessionID})
	}
	return nil
}
