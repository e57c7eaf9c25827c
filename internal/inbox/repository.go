package inbox

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists raw mailbox messages and attachment metadata. The
// table is append-mostly: polled messages are upserted by message id so
// re-fetching a thread never duplicates rows.
type Repository interface {
	SaveMessage(ctx context.Context, msg Message) error
	SaveAttachment(ctx context.Context, messageID string, att AttachmentMeta) error
	ListRecent(ctx context.Context, limit int) ([]Message, error)
	ThreadMessages(ctx context.Context, threadID string) ([]Message, error)
	DeleteThread(ctx context.Context, threadID string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository instantiates repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) SaveMessage(ctx context.Context, msg Message) error {
	const query = `
        INSERT INTO inbox_messages (message_id, thread_id, date_ms, subject, from_raw, from_name, from_email, to_raw, cc_raw, is_from_me, body_text, has_attachments)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        ON CONFLICT (message_id) DO UPDATE SET
            body_text = EXCLUDED.body_text,
            has_attachments = EXCLUDED.has_attachments`
	_, err := r.pool.Exec(ctx, query,
		msg.MessageID,
		msg.ThreadID,
		msg.DateMs,
		msg.Subject,
		msg.FromRaw,
		msg.FromName,
		msg.FromEmail,
		msg.ToRaw,
		msg.CcRaw,
		msg.IsFromMe,
		msg.BodyText,
		msg.HasAttachments,
	)
	return err
}

func (r *repository) SaveAttachment(ctx context.Context, messageID string, att AttachmentMeta) error {
	const query = `
        INSERT INTO inbox_attachments (message_id, attachment_index, file_name, content_type, is_image)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (message_id, attachment_index) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, messageID, att.Index, att.Name, att.ContentType, att.IsImage)
	return err
}

func (r *repository) ListRecent(ctx context.Context, limit int) ([]Message, error) {
	const query = `
        SELECT message_id, thread_id, date_ms, subject, from_raw, from_name, from_email, to_raw, cc_raw, is_from_me, body_text, has_attachments
        FROM inbox_messages
        ORDER BY date_ms DESC
        LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (r *repository) ThreadMessages(ctx context.Context, threadID string) ([]Message, error) {
	const query = `
        SELECT message_id, thread_id, date_ms, subject, from_raw, from_name, from_email, to_raw, cc_raw, is_from_me, body_text, has_attachments
        FROM inbox_messages
        WHERE thread_id = $1
        ORDER BY date_ms ASC`
	rows, err := r.pool.Query(ctx, query, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (r *repository) DeleteThread(ctx context.Context, threadID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM inbox_messages WHERE thread_id = $1`, threadID)
	return err
}

func scanMessages(rows pgx.Rows) ([]Message, error) {
	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(
			&m.MessageID,
			&m.ThreadID,
			&m.DateMs,
			&m.Subject,
			&m.FromRaw,
			&m.FromName,
			&m.FromEmail,
			&m.ToRaw,
			&m.CcRaw,
			&m.IsFromMe,
			&m.BodyText,
			&m.HasAttachments,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
