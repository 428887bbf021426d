package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/agripredict/service-api/internal/account/entity"
	accountrepo "github.com/agripredict/service-api/internal/account/repo"
	"github.com/agripredict/service-api/pkg/utilities"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrBadCredentials = errors.New("invalid credentials")
	ErrNotFound       = errors.New("account not found")
	ErrNotPending     = errors.New("account is not pending approval")
	ErrPendingLogin   = errors.New("account pending approval")
)

// RejectedLoginError blocks login of a rejected account and carries the
// reason recorded by the admin who rejected it.
type RejectedLoginError struct {
	Reason string
}

func (e *RejectedLoginError) Error() string { return "account rejected" }

// ValidationError reports field-level input problems.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, f+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var emailShape = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Service orchestrates registration, authentication and account lifecycle.
type Service struct {
	repo   *accountrepo.AccountRepo
	hasher PasswordHasher
	// BootstrapAdmin approves the first account created in an empty store.
	BootstrapAdmin bool
}

func NewService(db *sqlx.DB, r *accountrepo.AccountRepo, hasher PasswordHasher) *Service {
	if r == nil {
		r = accountrepo.NewAccountRepo(db)
	}
	if hasher == nil {
		hasher = BcryptHasher{Cost: 10}
	}
	return &Service{repo: r, hasher: hasher}
}

// RegisterInput is the payload for account creation.
type RegisterInput struct {
	FirstName    string
	LastName     string
	Email        string
	Password     string
	Organization string
	Position     string
}

func (in *RegisterInput) validate() *ValidationError {
	fields := map[string]string{}
	if strings.TrimSpace(in.FirstName) == "" {
		fields["firstName"] = "First name is required"
	}
	if strings.TrimSpace(in.LastName) == "" {
		fields["lastName"] = "Last name is required"
	}
	if !emailShape.MatchString(strings.TrimSpace(in.Email)) {
		fields["email"] = "Please enter a valid email"
	}
	if len(in.Password) < 6 {
		fields["password"] = "Password must be at least 6 characters"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Register creates a new account with a hashed password. The account starts
// in the pending approval state; when BootstrapAdmin is set and the store is
// empty, the first account is approved immediately.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.Account, error) {
	if verr := in.validate(); verr != nil {
		return nil, verr
	}

	position := strings.TrimSpace(in.Position)
	if !entity.ValidPosition(position) {
		// unrecognized value at registration falls back to the schema default
		position = entity.PositionOther
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	status := entity.ApprovalPending
	if s.BootstrapAdmin {
		if n, err := s.repo.Count(ctx); err == nil && n == 0 {
			status = entity.ApprovalApproved
		}
	}

	a := &entity.Account{
		ID:             utilities.NewSnowflakeID(),
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash:   hash,
		Organization:   strings.TrimSpace(in.Organization),
		Position:       position,
		IsAdmin:        false,
		ApprovalStatus: status,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		if accountrepo.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

// Authenticate verifies an email/password pair. Unknown email and wrong
// password fail with the same sentinel so callers cannot enumerate accounts.
// A correct pair against an unapproved account fails with a lifecycle error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entity.Account, error) {
	a, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if !s.hasher.Verify(a.PasswordHash, password) {
		return nil, ErrBadCredentials
	}

	switch a.ApprovalStatus {
	case entity.ApprovalPending:
		return nil, ErrPendingLogin
	case entity.ApprovalRejected:
		reason := ""
		if a.RejectionReason != nil {
			reason = *a.RejectionReason
		}
		return nil, &RejectedLoginError{Reason: reason}
	}

	if err := s.repo.SetLastLogin(ctx, a.ID); err != nil {
		return nil, fmt.Errorf("stamp last login: %w", err)
	}
	return a, nil
}

// GetByID returns the API projection of an account.
func (s *Service) GetByID(ctx context.Context, id int64) (*entity.View, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a.View(), nil
}

// List returns all accounts, hash-free, newest first.
func (s *Service) List(ctx context.Context) ([]*entity.View, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]*entity.View, 0, len(rows))
	for _, a := range rows {
		views = append(views, a.View())
	}
	return views, nil
}

// UpdateInput is a partial update; nil fields are left unchanged. AllowAdmin
// gates the is_admin flag: the self-service profile path never sets it.
type UpdateInput struct {
	FirstName    *string
	LastName     *string
	Email        *string
	Password     *string
	Organization *string
	Position     *string
	IsAdmin      *bool
}

// Update applies a partial update to an account. allowAdmin must only be true
// on the admin-gated path.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput, allowAdmin bool) (*entity.View, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if in.FirstName != nil && strings.TrimSpace(*in.FirstName) != "" {
		a.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil && strings.TrimSpace(*in.LastName) != "" {
		a.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil && *in.Email != "" {
		e := strings.ToLower(strings.TrimSpace(*in.Email))
		if !emailShape.MatchString(e) {
			return nil, &ValidationError{Fields: map[string]string{"email": "Please enter a valid email"}}
		}
		a.Email = e
	}
	if in.Organization != nil {
		a.Organization = strings.TrimSpace(*in.Organization)
	}
	if in.Position != nil && *in.Position != "" {
		// an explicit bad value on update is an error, not a coercion
		if !entity.ValidPosition(*in.Position) {
			return nil, &ValidationError{Fields: map[string]string{"position": "Unknown position"}}
		}
		a.Position = *in.Position
	}
	if in.Password != nil && *in.Password != "" {
		if len(*in.Password) < 6 {
			return nil, &ValidationError{Fields: map[string]string{"password": "Password must be at least 6 characters"}}
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		a.PasswordHash = hash
	}
	if allowAdmin && in.IsAdmin != nil {
		a.IsAdmin = *in.IsAdmin
	}

	if err := s.repo.Update(ctx, a); err != nil {
		if accountrepo.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return a.View(), nil
}

// Approve moves a pending account into the approved state.
func (s *Service) Approve(ctx context.Context, id int64) (*entity.View, error) {
	ok, err := s.repo.SetApproval(ctx, id, entity.ApprovalApproved, nil, entity.ApprovalPending)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.approvalFailure(ctx, id)
	}
	return s.GetByID(ctx, id)
}

// Reject moves a pending account into the rejected state with an optional
// free-text reason shown to the user at login.
func (s *Service) Reject(ctx context.Context, id int64, reason string) (*entity.View, error) {
	var r *string
	if reason = strings.TrimSpace(reason); reason != "" {
		r = &reason
	}
	ok, err := s.repo.SetApproval(ctx, id, entity.ApprovalRejected, r, entity.ApprovalPending)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.approvalFailure(ctx, id)
	}
	return s.GetByID(ctx, id)
}

// approvalFailure distinguishes a missing account from one that has already
// left the pending state.
func (s *Service) approvalFailure(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return ErrNotPending
}

// Delete removes an account permanently.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
