package appointments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hmendoza/prepflow-backend/internal/scope"
	"github.com/hmendoza/prepflow-backend/pkg/db/models"
	"github.com/hmendoza/prepflow-backend/pkg/pagination"
)

// Repository exposes appointment persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an appointments repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new appointment and returns the persisted model.
func (r *Repository) Create(ctx context.Context, appt *models.Appointment) (*models.Appointment, error) {
	if err := r.db.WithContext(ctx).Create(appt).Error; err != nil {
		return nil, err
	}
	return appt, nil
}

// FindByID loads an appointment visible to the caller.
func (r *Repository) FindByID(ctx context.Context, access scope.Access, id uuid.UUID) (*models.Appointment, error) {
	q, err := access.BranchColumn(r.db.WithContext(ctx), "branch_id")
	if err != nil {
		return nil, err
	}
	var appt models.Appointment
	if err := q.First(&appt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &appt, nil
}

// List returns the appointments visible to the caller in the default
// (appointment_date, time) ascending order, with the optional filters
// applied conjunctively.
func (r *Repository) List(ctx context.Context, access scope.Access, filter ListFilter, page pagination.Params) ([]models.Appointment, error) {
	q, err := access.BranchColumn(r.db.WithContext(ctx).Model(&models.Appointment{}), "branch_id")
	if err != nil {
		return nil, err
	}

	if filter.StartDate != nil {
		q = q.Where("appointment_date >= ?", filter.StartDate.Time())
	}
	if filter.EndDate != nil {
		q = q.Where("appointment_date <= ?", filter.EndDate.Time())
	}
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}
	if filter.PreparerID != nil {
		q = q.Where("preparer_id = ?", *filter.PreparerID)
	}
	if filter.Priority != nil {
		q = q.Where("priority = ?", string(*filter.Priority))
	}
	page = page.Normalize()

	var appts []models.Appointment
	if err := q.Order("appointment_date asc, time asc").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&appts).Error; err != nil {
		return nil, err
	}
	return appts, nil
}

// Update persists the provided appointment.
func (r *Repository) Update(ctx context.Context, appt *models.Appointment) error {
	return r.db.WithContext(ctx).Save(appt).Error
}

// Delete removes the appointment together with its delivery.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM deliveries WHERE appointment_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Appointment{}, "id = ?", id).Error
	})
}
