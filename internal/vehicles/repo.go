package vehicles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hmendoza/prepflow-backend/pkg/db/models"
	"github.com/hmendoza/prepflow-backend/pkg/pagination"
)

// Repository exposes vehicle persistence operations. Vehicles are shared
// across branches, so nothing here is branch scoped.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a vehicles repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new vehicle and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateVehicleDTO) (*models.Vehicle, error) {
	vehicle := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

// FindByID loads a vehicle by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// List returns vehicles ordered by model.
func (r *Repository) List(ctx context.Context, page pagination.Params) ([]models.Vehicle, error) {
	page = page.Normalize()

	var vehicles []models.Vehicle
	if err := r.db.WithContext(ctx).
		Order("model asc").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

// Update persists the provided vehicle.
func (r *Repository) Update(ctx context.Context, vehicle *models.Vehicle) error {
	return r.db.WithContext(ctx).Save(vehicle).Error
}

// Delete removes the vehicle with its dependent appointments and their
// deliveries in a single transaction.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM deliveries WHERE appointment_id IN (SELECT id FROM appointments WHERE vehicle_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM appointments WHERE vehicle_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Vehicle{}, "id = ?", id).Error
	})
}
