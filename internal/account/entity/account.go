package entity

import "time"

// Position enumeration for the account profile.
const (
	PositionResearcher = "researcher"
	PositionFarmer     = "farmer"
	PositionStudent    = "student"
	PositionEducator   = "educator"
	PositionOther      = "other"
)

// Approval lifecycle states. Registration lands in pending; an admin moves
// the account to approved or rejected, both terminal.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// ValidPosition reports whether p is one of the fixed position values.
func ValidPosition(p string) bool {
	switch p {
	case PositionResearcher, PositionFarmer, PositionStudent, PositionEducator, PositionOther:
		return true
	}
	return false
}

// Account represents a row in the `accounts` table. PasswordHash stays
// inside the account service; API responses use View.
type Account struct {
	ID              int64      `db:"id"`
	FirstName       string     `db:"first_name"`
	LastName        string     `db:"last_name"`
	Email           string     `db:"email"`
	PasswordHash    string     `db:"password_hash"`
	Organization    string     `db:"organization"`
	Position        string     `db:"position"`
	IsAdmin         bool       `db:"is_admin"`
	ApprovalStatus  string     `db:"approval_status"`
	RejectionReason *string    `db:"rejection_reason"`
	LastLoginAt     *time.Time `db:"last_login_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

// View is the API-visible projection of an account. It deliberately has no
// password field, so serializing one can never leak the hash. The ID is
// serialized as a string: snowflake IDs overflow the JS safe-integer range.
type View struct {
	ID              int64      `json:"id,string"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Email           string     `json:"email"`
	Organization    string     `json:"organization,omitempty"`
	Position        string     `json:"position"`
	IsAdmin         bool       `json:"isAdmin"`
	ApprovalStatus  string     `json:"approvalStatus"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
	LastLoginAt     *time.Time `json:"lastLogin,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// View builds the API projection of the account.
func (a *Account) View() *View {
	return &View{
		ID:              a.ID,
		FirstName:       a.FirstName,
		LastName:        a.LastName,
		Email:           a.Email,
		Organization:    a.Organization,
		Position:        a.Position,
		IsAdmin:         a.IsAdmin,
		ApprovalStatus:  a.ApprovalStatus,
		RejectionReason: a.RejectionReason,
		LastLoginAt:     a.LastLoginAt,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}
