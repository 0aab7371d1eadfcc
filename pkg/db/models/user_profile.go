package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserProfile ties a user to the branch they work at. One profile per user.
type UserProfile struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	BranchID     uuid.UUID `gorm:"column:branch_id;type:uuid;not null;index"`
	EmployeeID   string    `gorm:"column:employee_id;not null"`
	IsSupervisor bool      `gorm:"column:is_supervisor;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`

	User   *User   `gorm:"foreignKey:UserID"`
	Branch *Branch `gorm:"foreignKey:BranchID"`
}

func (p *UserProfile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
