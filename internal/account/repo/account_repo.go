package repo

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/agripredict/service-api/internal/account/entity"
)

// AccountRepo provides data access for the accounts table using sqlx.
type AccountRepo struct {
	db *sqlx.DB
}

func NewAccountRepo(db *sqlx.DB) *AccountRepo { return &AccountRepo{db: db} }

// EnsureTable creates the accounts table if not exists (idempotent).
// This is a convenience for early development; prefer migrations in production.
func (r *AccountRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE EXTENSION IF NOT EXISTS citext;
CREATE TABLE IF NOT EXISTS accounts (
  id BIGINT PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  email CITEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  organization TEXT NOT NULL DEFAULT '',
  position TEXT NOT NULL DEFAULT 'other',
  is_admin BOOLEAN NOT NULL DEFAULT false,
  approval_status TEXT NOT NULL DEFAULT 'pending',
  rejection_reason TEXT,
  last_login_at TIMESTAMPTZ,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_accounts_email ON accounts(email);
CREATE INDEX IF NOT EXISTS idx_accounts_approval_status ON accounts(approval_status);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (the email index is the only unique constraint on accounts).
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// Create inserts a new account row. The ID is assigned by the caller.
func (r *AccountRepo) Create(ctx context.Context, a *entity.Account) error {
	const q = `INSERT INTO accounts
		(id, first_name, last_name, email, password_hash, organization, position, is_admin, approval_status, created_at, updated_at)
		VALUES (:id, :first_name, :last_name, :email, :password_hash, :organization, :position, :is_admin, :approval_status, NOW(), NOW())`
	_, err := r.db.NamedExecContext(ctx, q, a)
	return err
}

const accountColumns = `id, first_name, last_name, email, password_hash, organization, position,
	is_admin, approval_status, rejection_reason, last_login_at, created_at, updated_at`

// GetByEmail returns the account matched by email (case-insensitive via
// citext) or sql.ErrNoRows.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	var row entity.Account
	if err := r.db.GetContext(ctx, &row, `SELECT `+accountColumns+` FROM accounts WHERE email=$1`, email); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByID fetches a full account row or sql.ErrNoRows.
func (r *AccountRepo) GetByID(ctx context.Context, id int64) (*entity.Account, error) {
	var row entity.Account
	if err := r.db.GetContext(ctx, &row, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns all accounts, newest first.
func (r *AccountRepo) List(ctx context.Context) ([]*entity.Account, error) {
	var rows []*entity.Account
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at DESC`); err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of account rows.
func (r *AccountRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM accounts`); err != nil {
		return 0, err
	}
	return n, nil
}

// Update writes the mutable fields of an account and refreshes updated_at.
func (r *AccountRepo) Update(ctx context.Context, a *entity.Account) error {
	const q = `UPDATE accounts SET
		first_name=:first_name, last_name=:last_name, email=:email,
		password_hash=:password_hash, organization=:organization,
		position=:position, is_admin=:is_admin, updated_at=NOW()
		WHERE id=:id`
	_, err := r.db.NamedExecContext(ctx, q, a)
	return err
}

// SetLastLogin stamps last_login_at on successful authentication.
func (r *AccountRepo) SetLastLogin(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE accounts SET last_login_at=NOW() WHERE id=$1`, id)
	return err
}

// SetApproval moves an account from `from` to `status`. Returns false when no
// row transitioned, either because the account is missing or because it is
// not in the expected state.
func (r *AccountRepo) SetApproval(ctx context.Context, id int64, status string, reason *string, from string) (bool, error) {
	const q = `UPDATE accounts SET approval_status=$2, rejection_reason=$3, updated_at=NOW()
		WHERE id=$1 AND approval_status=$4`
	res, err := r.db.ExecContext(ctx, q, id, status, reason, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes an account permanently. Returns false when the row was absent.
func (r *AccountRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
