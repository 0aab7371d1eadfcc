package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hmendoza/prepflow-backend/pkg/enums"
	"github.com/hmendoza/prepflow-backend/pkg/types"
)

// Appointment schedules the preparation of a vehicle at a branch.
// scheduled_at is stamped once at creation and never rewritten.
type Appointment struct {
	ID                uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AppointmentDate   types.Date                 `gorm:"column:appointment_date;type:date;not null;index:idx_appointments_date_time,priority:1"`
	ScheduledAt       time.Time                  `gorm:"column:scheduled_at;not null"`
	DeliveryDate      types.Date                 `gorm:"column:delivery_date;type:date;not null"`
	Time              types.TimeOfDay            `gorm:"column:time;type:text;not null;index:idx_appointments_date_time,priority:2"`
	Seller            string                     `gorm:"column:seller;not null"`
	Client            string                     `gorm:"column:client;not null"`
	ClientPhone       string                     `gorm:"column:client_phone;not null;default:''"`
	ClientEmail       string                     `gorm:"column:client_email;not null;default:''"`
	VehicleID         uuid.UUID                  `gorm:"column:vehicle_id;type:uuid;not null;index"`
	BranchID          uuid.UUID                  `gorm:"column:branch_id;type:uuid;not null;index"`
	PreparerID        *uuid.UUID                 `gorm:"column:preparer_id;type:uuid;index"`
	Status            enums.AppointmentStatus    `gorm:"column:status;not null;default:'scheduled'"`
	Priority          enums.AppointmentPriority  `gorm:"column:priority;not null;default:'medium'"`
	EstimatedDuration types.Duration             `gorm:"column:estimated_duration;type:bigint;not null"`
	ActualDuration    *types.Duration            `gorm:"column:actual_duration;type:bigint"`
	Notes             string                     `gorm:"column:notes;not null;default:''"`
	CreatedByID       uuid.UUID                  `gorm:"column:created_by_id;type:uuid;not null;index"`
	CreatedAt         time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                  `gorm:"column:updated_at;autoUpdateTime"`

	Vehicle   *Vehicle     `gorm:"foreignKey:VehicleID"`
	Branch    *Branch      `gorm:"foreignKey:BranchID"`
	Preparer  *UserProfile `gorm:"foreignKey:PreparerID"`
	CreatedBy *UserProfile `gorm:"foreignKey:CreatedByID"`
}

func (a *Appointment) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
