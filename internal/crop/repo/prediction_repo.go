package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/agripredict/service-api/internal/crop/entity"
)

// PredictionRepo provides data access for the crop_predictions table.
type PredictionRepo struct {
	db *sqlx.DB
}

func NewPredictionRepo(db *sqlx.DB) *PredictionRepo { return &PredictionRepo{db: db} }

// EnsureTable creates the crop_predictions table if not exists (idempotent).
func (r *PredictionRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS crop_predictions (
  id BIGINT PRIMARY KEY,
  account_id BIGINT,
  nitrogen DOUBLE PRECISION NOT NULL,
  phosphorus DOUBLE PRECISION NOT NULL,
  potassium DOUBLE PRECISION NOT NULL,
  temperature DOUBLE PRECISION NOT NULL,
  humidity DOUBLE PRECISION NOT NULL,
  ph DOUBLE PRECISION NOT NULL,
  rainfall DOUBLE PRECISION NOT NULL,
  crop TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_crop_predictions_account_id ON crop_predictions (account_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *PredictionRepo) Create(ctx context.Context, p *entity.Prediction) error {
	const q = `INSERT INTO crop_predictions
		(id, account_id, nitrogen, phosphorus, potassium, temperature, humidity, ph, rainfall, crop, created_at)
		VALUES (:id, :account_id, :nitrogen, :phosphorus, :potassium, :temperature, :humidity, :ph, :rainfall, :crop, NOW())`
	_, err := r.db.NamedExecContext(ctx, q, p)
	return err
}

// ListByAccount returns the most recent predictions for one account.
func (r *PredictionRepo) ListByAccount(ctx context.Context, accountID int64, limit int) ([]*entity.Prediction, error) {
	var rows []*entity.Prediction
	const q = `SELECT id, account_id, nitrogen, phosphorus, potassium, temperature, humidity, ph, rainfall, crop, created_at
		FROM crop_predictions WHERE account_id=$1 ORDER BY created_at DESC LIMIT $2`
	if err := r.db.SelectContext(ctx, &rows, q, accountID, limit); err != nil {
		return nil, err
	}
	return rows, nil
}
