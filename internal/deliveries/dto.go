package deliveries

import (
	"time"

	"github.com/google/uuid"

	"github.com/hmendoza/prepflow-backend/pkg/db/models"
	"github.com/hmendoza/prepflow-backend/pkg/enums"
)

// DeliveryDTO exposes handover data in API responses.
type DeliveryDTO struct {
	ID            uuid.UUID            `json:"id"`
	AppointmentID uuid.UUID            `json:"appointment_id"`
	Status        enums.DeliveryStatus `json:"status"`
	DeliveryDate  *time.Time           `json:"delivery_date"`
	Notes         string               `json:"notes"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// DeliveryInput carries caller-supplied delivery fields. Nil pointers mark
// fields the caller did not send.
type DeliveryInput struct {
	AppointmentID *uuid.UUID
	Status        *enums.DeliveryStatus
	DeliveryDate  *time.Time
	Notes         *string
}

// FromModel maps the persisted delivery into a DTO.
func FromModel(m *models.Delivery) *DeliveryDTO {
	if m == nil {
		return nil
	}
	return &DeliveryDTO{
		ID:            m.ID,
		AppointmentID: m.AppointmentID,
		Status:        m.Status,
		DeliveryDate:  m.DeliveryDate,
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromModels maps a slice of deliveries.
func FromModels(ms []models.Delivery) []DeliveryDTO {
	dtos := make([]DeliveryDTO, 0, len(ms))
	for i := range ms {
		dtos = append(dtos, *FromModel(&ms[i]))
	}
	return dtos
}
