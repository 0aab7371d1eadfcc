package vehicles

import (
	"time"

	"github.com/google/uuid"

	"github.com/hmendoza/prepflow-backend/pkg/db/models"
)

// VehicleDTO exposes vehicle data in API responses.
type VehicleDTO struct {
	ID        uuid.UUID `json:"id"`
	Model     string    `json:"model"`
	Color     string    `json:"color"`
	Chassis   string    `json:"chassis"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateVehicleDTO holds creation-time data for a new vehicle.
type CreateVehicleDTO struct {
	Model   string
	Color   string
	Chassis string
}

// UpdateVehicleInput captures the mutable vehicle fields.
type UpdateVehicleInput struct {
	Model   *string
	Color   *string
	Chassis *string
}

// FromModel maps the persisted vehicle into a DTO.
func FromModel(m *models.Vehicle) *VehicleDTO {
	if m == nil {
		return nil
	}
	return &VehicleDTO{
		ID:        m.ID,
		Model:     m.Model,
		Color:     m.Color,
		Chassis:   m.Chassis,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromModels maps a slice of vehicles.
func FromModels(ms []models.Vehicle) []VehicleDTO {
	dtos := make([]VehicleDTO, 0, len(ms))
	for i := range ms {
		dtos = append(dtos, *FromModel(&ms[i]))
	}
	return dtos
}

// ToModel prepares the GORM model from the creation DTO.
func (c CreateVehicleDTO) ToModel() *models.Vehicle {
	return &models.Vehicle{
		Model:   c.Model,
		Color:   c.Color,
		Chassis: c.Chassis,
	}
}
