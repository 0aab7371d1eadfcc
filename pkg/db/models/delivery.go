package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hmendoza/prepflow-backend/pkg/enums"
)

// Delivery is the one-to-one handover record derived from an appointment.
type Delivery struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AppointmentID uuid.UUID            `gorm:"column:appointment_id;type:uuid;not null;uniqueIndex"`
	Status        enums.DeliveryStatus `gorm:"column:status;not null;default:'pending'"`
	DeliveryDate  *time.Time           `gorm:"column:delivery_date"`
	Notes         string               `gorm:"column:notes;not null;default:''"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`

	Appointment *Appointment `gorm:"foreignKey:AppointmentID"`
}

func (d *Delivery) BeforeCreate(_ *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
