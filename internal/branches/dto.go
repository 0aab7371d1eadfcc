package branches

import (
	"time"

	"github.com/google/uuid"

	"github.com/hmendoza/prepflow-backend/pkg/db/models"
)

// BranchDTO exposes branch data in API responses.
type BranchDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateBranchDTO holds creation-time data for a new branch.
type CreateBranchDTO struct {
	Name  string
	TaxID string
}

// UpdateBranchInput captures the mutable branch fields.
type UpdateBranchInput struct {
	Name  *string
	TaxID *string
}

// FromModel maps the persisted branch into a DTO.
func FromModel(m *models.Branch) *BranchDTO {
	if m == nil {
		return nil
	}
	return &BranchDTO{
		ID:        m.ID,
		Name:      m.Name,
		TaxID:     m.TaxID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromModels maps a slice of branches.
func FromModels(ms []models.Branch) []BranchDTO {
	dtos := make([]BranchDTO, 0, len(ms))
	for i := range ms {
		dtos = append(dtos, *FromModel(&ms[i]))
	}
	return dtos
}

// ToModel prepares the GORM model from the creation DTO.
func (c CreateBranchDTO) ToModel() *models.Branch {
	return &models.Branch{
		Name:  c.Name,
		TaxID: c.TaxID,
	}
}
