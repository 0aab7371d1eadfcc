package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hmendoza/prepflow-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID       uuid.UUID
	ProfileID    *uuid.UUID
	BranchID     *uuid.UUID
	IsSupervisor bool
	SystemRole   *enums.SystemRole
	JTI          string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID       uuid.UUID         `json:"user_id"`
	ProfileID    *uuid.UUID        `json:"profile_id,omitempty"`
	BranchID     *uuid.UUID        `json:"branch_id,omitempty"`
	IsSupervisor bool              `json:"is_supervisor"`
	SystemRole   *enums.SystemRole `json:"system_role,omitempty"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the claims carry the admin system role.
func (c *AccessTokenClaims) IsAdmin() bool {
	return c.SystemRole != nil && *c.SystemRole == enums.SystemRoleAdmin
}
