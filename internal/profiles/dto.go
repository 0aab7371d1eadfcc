package profiles

import (
	"time"

	"github.com/google/uuid"

	"github.com/hmendoza/prepflow-backend/pkg/db/models"
)

// ProfileDTO exposes staff profile data in API responses.
type ProfileDTO struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	BranchID     uuid.UUID `json:"branch_id"`
	EmployeeID   string    `json:"employee_id"`
	IsSupervisor bool      `json:"is_supervisor"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateProfileDTO holds creation-time data for a new profile.
type CreateProfileDTO struct {
	UserID       uuid.UUID
	BranchID     uuid.UUID
	EmployeeID   string
	IsSupervisor bool
}

// UpdateProfileInput captures the mutable profile fields.
type UpdateProfileInput struct {
	BranchID     *uuid.UUID
	EmployeeID   *string
	IsSupervisor *bool
}

// ListFilter narrows profile queries. IsPreparer selects non-supervisors.
type ListFilter struct {
	IsPreparer *bool
}

// FromModel maps the persisted profile into a DTO.
func FromModel(m *models.UserProfile) *ProfileDTO {
	if m == nil {
		return nil
	}
	return &ProfileDTO{
		ID:           m.ID,
		UserID:       m.UserID,
		BranchID:     m.BranchID,
		EmployeeID:   m.EmployeeID,
		IsSupervisor: m.IsSupervisor,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromModels maps a slice of profiles.
func FromModels(ms []models.UserProfile) []ProfileDTO {
	dtos := make([]ProfileDTO, 0, len(ms))
	for i := range ms {
		dtos = append(dtos, *FromModel(&ms[i]))
	}
	return dtos
}

// ToModel prepares the GORM model from the creation DTO.
func (c CreateProfileDTO) ToModel() *models.UserProfile {
	return &models.UserProfile{
		UserID:       c.UserID,
		BranchID:     c.BranchID,
		EmployeeID:   c.EmployeeID,
		IsSupervisor: c.IsSupervisor,
	}
}
