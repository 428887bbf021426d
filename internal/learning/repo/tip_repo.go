package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/agripredict/service-api/internal/learning/entity"
)

// TipRepo provides data access for the learning_tips table.
type TipRepo struct {
	db *sqlx.DB
}

func NewTipRepo(db *sqlx.DB) *TipRepo { return &TipRepo{db: db} }

// EnsureTable creates the learning_tips table if not exists (idempotent).
func (r *TipRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS learning_tips (
  id varchar(32) PRIMARY KEY,
  title TEXT NOT NULL,
  content TEXT NOT NULL DEFAULT '',
  image TEXT NOT NULL DEFAULT '',
  video_url TEXT NOT NULL DEFAULT '',
  pdf TEXT NOT NULL DEFAULT '',
  audio TEXT NOT NULL DEFAULT '',
  reference_link TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_learning_tips_category ON learning_tips (category);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const tipColumns = `id, title, content, image, video_url, pdf, audio, reference_link, category, created_at, updated_at`

func (r *TipRepo) Create(ctx context.Context, t *entity.Tip) error {
	const q = `INSERT INTO learning_tips (id, title, content, image, video_url, pdf, audio, reference_link, category, created_at, updated_at)
		VALUES (:id, :title, :content, :image, :video_url, :pdf, :audio, :reference_link, :category, NOW(), NOW())`
	_, err := r.db.NamedExecContext(ctx, q, t)
	return err
}

func (r *TipRepo) GetByID(ctx context.Context, id string) (*entity.Tip, error) {
	var row entity.Tip
	if err := r.db.GetContext(ctx, &row, `SELECT `+tipColumns+` FROM learning_tips WHERE id=$1`, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns all tips, newest first.
func (r *TipRepo) List(ctx context.Context) ([]*entity.Tip, error) {
	var rows []*entity.Tip
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+tipColumns+` FROM learning_tips ORDER BY created_at DESC`); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *TipRepo) ListByCategory(ctx context.Context, category string) ([]*entity.Tip, error) {
	var rows []*entity.Tip
	const q = `SELECT ` + tipColumns + ` FROM learning_tips WHERE category=$1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &rows, q, category); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *TipRepo) Update(ctx context.Context, t *entity.Tip) error {
	const q = `UPDATE learning_tips SET title=:title, content=:content, image=:image,
		video_url=:video_url, pdf=:pdf, audio=:audio, reference_link=:reference_link,
		category=:category, updated_at=NOW() WHERE id=:id`
	_, err := r.db.NamedExecContext(ctx, q, t)
	return err
}

// Delete removes a tip. Returns false when the row was absent.
func (r *TipRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM learning_tips WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
