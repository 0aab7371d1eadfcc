package deliveries

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hmendoza/prepflow-backend/internal/scope"
	"github.com/hmendoza/prepflow-backend/pkg/db/models"
	"github.com/hmendoza/prepflow-backend/pkg/pagination"
)

// Deliveries carry no branch column of their own; visibility follows the
// owning appointment's branch.
const appointmentJoin = "JOIN appointments ON appointments.id = deliveries.appointment_id"

// Repository exposes delivery persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a deliveries repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new delivery and returns the persisted model.
func (r *Repository) Create(ctx context.Context, delivery *models.Delivery) (*models.Delivery, error) {
	if err := r.db.WithContext(ctx).Create(delivery).Error; err != nil {
		return nil, err
	}
	return delivery, nil
}

// FindByID loads a delivery visible to the caller.
func (r *Repository) FindByID(ctx context.Context, access scope.Access, id uuid.UUID) (*models.Delivery, error) {
	q, err := access.BranchJoin(r.db.WithContext(ctx).Model(&models.Delivery{}), appointmentJoin, "appointments.branch_id")
	if err != nil {
		return nil, err
	}
	var delivery models.Delivery
	if err := q.First(&delivery, "deliveries.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &delivery, nil
}

// List returns the deliveries visible to the caller in creation order.
func (r *Repository) List(ctx context.Context, access scope.Access, page pagination.Params) ([]models.Delivery, error) {
	q, err := access.BranchJoin(r.db.WithContext(ctx).Model(&models.Delivery{}), appointmentJoin, "appointments.branch_id")
	if err != nil {
		return nil, err
	}
	page = page.Normalize()

	var deliveries []models.Delivery
	if err := q.Order("deliveries.created_at asc").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&deliveries).Error; err != nil {
		return nil, err
	}
	return deliveries, nil
}

// Update persists the provided delivery.
func (r *Repository) Update(ctx context.Context, delivery *models.Delivery) error {
	return r.db.WithContext(ctx).Save(delivery).Error
}

// Delete removes the delivery. Nothing depends on it.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Delivery{}, "id = ?", id).Error
}
