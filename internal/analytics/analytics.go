package analytics

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Bucket is one aggregation row. The field names mirror the dashboard's
// expected shape: _id is the group key (position name or month number).
type Bucket struct {
	Key   any `db:"-" json:"_id"`
	Count int `db:"count" json:"count"`
}

// Service answers the usage-analytics aggregations over the accounts table.
type Service struct {
	db *sqlx.DB
}

func NewService(db *sqlx.DB) *Service { return &Service{db: db} }

// RoleStats groups accounts by position.
func (s *Service) RoleStats(ctx context.Context) ([]Bucket, error) {
	var rows []struct {
		Position string `db:"position"`
		Count    int    `db:"count"`
	}
	const q = `SELECT position, COUNT(*) AS count FROM accounts GROUP BY position ORDER BY count DESC`
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	out := make([]Bucket, 0, len(rows))
	for _, r := range rows {
		out = append(out, Bucket{Key: r.Position, Count: r.Count})
	}
	return out, nil
}

// MonthlySignups groups registrations by calendar month (1-12), ascending.
func (s *Service) MonthlySignups(ctx context.Context) ([]Bucket, error) {
	var rows []struct {
		Month int `db:"month"`
		Count int `db:"count"`
	}
	const q = `SELECT EXTRACT(MONTH FROM created_at)::int AS month, COUNT(*) AS count
		FROM accounts GROUP BY month ORDER BY month`
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	out := make([]Bucket, 0, len(rows))
	for _, r := range rows {
		out = append(out, Bucket{Key: r.Month, Count: r.Count})
	}
	return out, nil
}
