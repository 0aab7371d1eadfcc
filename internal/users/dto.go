package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/hmendoza/prepflow-backend/pkg/db/models"
	"github.com/hmendoza/prepflow-backend/pkg/enums"
)

// UserDTO exposes safe identity data in API responses.
type UserDTO struct {
	ID          uuid.UUID         `json:"id"`
	Username    string            `json:"username"`
	Email       string            `json:"email"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	IsActive    bool              `json:"is_active"`
	SystemRole  *enums.SystemRole `json:"system_role,omitempty"`
	LastLoginAt *time.Time        `json:"last_login_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// CreateUserDTO holds creation-time data for a new user.
type CreateUserDTO struct {
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	SystemRole   *enums.SystemRole
}

// UpdateUserInput captures the mutable user fields.
type UpdateUserInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	IsActive  *bool
}

// FromModel maps the persisted user into a DTO.
func FromModel(m *models.User) *UserDTO {
	if m == nil {
		return nil
	}
	return &UserDTO{
		ID:          m.ID,
		Username:    m.Username,
		Email:       m.Email,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		IsActive:    m.IsActive,
		SystemRole:  m.SystemRole,
		LastLoginAt: m.LastLoginAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromModels maps a slice of users.
func FromModels(ms []models.User) []UserDTO {
	dtos := make([]UserDTO, 0, len(ms))
	for i := range ms {
		dtos = append(dtos, *FromModel(&ms[i]))
	}
	return dtos
}

// ToModel prepares the GORM model from the creation DTO.
func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Username:     c.Username,
		Email:        c.Email,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		PasswordHash: c.PasswordHash,
		IsActive:     true,
		SystemRole:   c.SystemRole,
	}
}
