package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/agripredict/service-api/internal/contact/entity"
)

// MessageRepo provides data access for the contact_messages table.
type MessageRepo struct {
	db *sqlx.DB
}

func NewMessageRepo(db *sqlx.DB) *MessageRepo { return &MessageRepo{db: db} }

// EnsureTable creates the contact_messages table if not exists (idempotent).
func (r *MessageRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS contact_messages (
  id varchar(32) PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  subject TEXT NOT NULL DEFAULT '',
  body TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_contact_messages_created_at ON contact_messages (created_at);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *MessageRepo) Create(ctx context.Context, m *entity.Message) error {
	const q = `INSERT INTO contact_messages (id, name, email, subject, body, created_at)
		VALUES (:id, :name, :email, :subject, :body, NOW())`
	_, err := r.db.NamedExecContext(ctx, q, m)
	return err
}

// List returns one page of messages, newest first.
func (r *MessageRepo) List(ctx context.Context, limit, offset int) ([]*entity.Message, error) {
	var rows []*entity.Message
	const q = `SELECT id, name, email, subject, body, created_at FROM contact_messages
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, q, limit, offset); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *MessageRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM contact_messages`); err != nil {
		return 0, err
	}
	return n, nil
}

// Delete removes a message. Returns false when the row was absent.
func (r *MessageRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contact_messages WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
