package appointments

import (
	"time"

	"github.com/google/uuid"

	"github.com/hmendoza/prepflow-backend/pkg/db/models"
	"github.com/hmendoza/prepflow-backend/pkg/enums"
	"github.com/hmendoza/prepflow-backend/pkg/types"
)

// AppointmentDTO exposes appointment data in API responses.
type AppointmentDTO struct {
	ID                uuid.UUID                 `json:"id"`
	AppointmentDate   types.Date                `json:"appointment_date"`
	ScheduledAt       time.Time                 `json:"scheduled_at"`
	DeliveryDate      types.Date                `json:"delivery_date"`
	Time              types.TimeOfDay           `json:"time"`
	Seller            string                    `json:"seller"`
	Client            string                    `json:"client"`
	ClientPhone       string                    `json:"client_phone"`
	ClientEmail       string                    `json:"client_email"`
	VehicleID         uuid.UUID                 `json:"vehicle_id"`
	BranchID          uuid.UUID                 `json:"branch_id"`
	PreparerID        *uuid.UUID                `json:"preparer_id,omitempty"`
	Status            enums.AppointmentStatus   `json:"status"`
	Priority          enums.AppointmentPriority `json:"priority"`
	EstimatedDuration types.Duration            `json:"estimated_duration"`
	ActualDuration    *types.Duration           `json:"actual_duration,omitempty"`
	Notes             string                    `json:"notes"`
	CreatedByID       uuid.UUID                 `json:"created_by_id"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
}

// AppointmentInput carries caller-supplied appointment fields. Nil pointers
// mark fields the caller did not send, which partial updates rely on.
type AppointmentInput struct {
	AppointmentDate   *types.Date
	Time              *types.TimeOfDay
	DeliveryDate      *types.Date
	Seller            *string
	Client            *string
	ClientPhone       *string
	ClientEmail       *string
	VehicleID         *uuid.UUID
	BranchID          *uuid.UUID
	PreparerID        *uuid.UUID
	Priority          *enums.AppointmentPriority
	EstimatedDuration *types.Duration
	Notes             *string
}

// ListFilter narrows appointment queries. All filters are conjunctive.
type ListFilter struct {
	StartDate  *types.Date
	EndDate    *types.Date
	Status     *enums.AppointmentStatus
	PreparerID *uuid.UUID
	Priority   *enums.AppointmentPriority
}

// FromModel maps the persisted appointment into a DTO.
func FromModel(m *models.Appointment) *AppointmentDTO {
	if m == nil {
		return nil
	}
	return &AppointmentDTO{
		ID:                m.ID,
		AppointmentDate:   m.AppointmentDate,
		ScheduledAt:       m.ScheduledAt,
		DeliveryDate:      m.DeliveryDate,
		Time:              m.Time,
		Seller:            m.Seller,
		Client:            m.Client,
		ClientPhone:       m.ClientPhone,
		ClientEmail:       m.ClientEmail,
		VehicleID:         m.VehicleID,
		BranchID:          m.BranchID,
		PreparerID:        m.PreparerID,
		Status:            m.Status,
		Priority:          m.Priority,
		EstimatedDuration: m.EstimatedDuration,
		ActualDuration:    m.ActualDuration,
		Notes:             m.Notes,
		CreatedByID:       m.CreatedByID,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// FromModels maps a slice of appointments.
func FromModels(ms []models.Appointment) []AppointmentDTO {
	dtos := make([]AppointmentDTO, 0, len(ms))
	for i := range ms {
		dtos = append(dtos, *FromModel(&ms[i]))
	}
	return dtos
}
