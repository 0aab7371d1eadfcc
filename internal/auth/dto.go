package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/hmendoza/prepflow-backend/pkg/enums"
)

// LoginInput carries the credentials posted to the login endpoint. A branch
// is part of the credential set: the same user may hold profiles at several
// branches and authenticates into exactly one of them.
type LoginInput struct {
	Email    string    `json:"email"`
	Password string    `json:"password"`
	BranchID uuid.UUID `json:"branch_id"`
}

// BranchSummary is the branch slice embedded in auth responses.
type BranchSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// AuthenticatedUser is the user payload returned by login.
type AuthenticatedUser struct {
	ID           uuid.UUID     `json:"id"`
	Username     string        `json:"username"`
	Email        string        `json:"email"`
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	IsSupervisor bool          `json:"is_supervisor"`
	EmployeeID   string        `json:"employee_id"`
	Branch       BranchSummary `json:"branch"`
}

// LoginResult bundles the token pair with the authenticated identity.
type LoginResult struct {
	Token   string            `json:"token"`
	Refresh string            `json:"refresh"`
	User    AuthenticatedUser `json:"user"`
}

// TokenPair is the rotated credential set returned by refresh.
type TokenPair struct {
	Token   string `json:"token"`
	Refresh string `json:"refresh"`
}

// ProfileInfo is the profile slice of the identity endpoint.
type ProfileInfo struct {
	ID           uuid.UUID     `json:"id"`
	EmployeeID   string        `json:"employee_id"`
	IsSupervisor bool          `json:"is_supervisor"`
	Branch       BranchSummary `json:"branch"`
}

// Identity is the full caller description returned by the identity endpoint.
type Identity struct {
	ID          uuid.UUID         `json:"id"`
	Username    string            `json:"username"`
	Email       string            `json:"email"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	IsActive    bool              `json:"is_active"`
	SystemRole  *enums.SystemRole `json:"system_role,omitempty"`
	LastLoginAt *time.Time        `json:"last_login_at,omitempty"`
	Profile     ProfileInfo       `json:"profile"`
}
