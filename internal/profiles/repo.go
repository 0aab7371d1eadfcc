package profiles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hmendoza/prepflow-backend/internal/scope"
	"github.com/hmendoza/prepflow-backend/pkg/db/models"
	"github.com/hmendoza/prepflow-backend/pkg/pagination"
)

// Repository exposes profile persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a profiles repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new profile and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateProfileDTO) (*models.UserProfile, error) {
	profile := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// FindByID loads a profile visible to the caller.
func (r *Repository) FindByID(ctx context.Context, access scope.Access, id uuid.UUID) (*models.UserProfile, error) {
	q, err := access.BranchColumn(r.db.WithContext(ctx), "branch_id")
	if err != nil {
		return nil, err
	}
	var profile models.UserProfile
	if err := q.First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByUserAndBranch loads the profile tying a user to a branch, unscoped.
// Auth is the only caller.
func (r *Repository) FindByUserAndBranch(ctx context.Context, userID, branchID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND branch_id = ?", userID, branchID).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByUser loads a user's profile, unscoped.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// List returns the profiles visible to the caller ordered by employee id.
func (r *Repository) List(ctx context.Context, access scope.Access, filter ListFilter, page pagination.Params) ([]models.UserProfile, error) {
	q, err := access.BranchColumn(r.db.WithContext(ctx).Model(&models.UserProfile{}), "branch_id")
	if err != nil {
		return nil, err
	}
	if filter.IsPreparer != nil {
		q = q.Where("is_supervisor = ?", !*filter.IsPreparer)
	}
	page = page.Normalize()

	var profiles []models.UserProfile
	if err := q.Order("employee_id asc").Limit(page.Limit).Offset(page.Offset).Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// Update persists the provided profile.
func (r *Repository) Update(ctx context.Context, profile *models.UserProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// Delete removes the profile. Appointments naming it as preparer keep the row
// with a nulled reference; appointments it created go away with their
// deliveries.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("UPDATE appointments SET preparer_id = NULL WHERE preparer_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM deliveries WHERE appointment_id IN (SELECT id FROM appointments WHERE created_by_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM appointments WHERE created_by_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.UserProfile{}, "id = ?", id).Error
	})
}
