package branches

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hmendoza/prepflow-backend/internal/scope"
	"github.com/hmendoza/prepflow-backend/pkg/db/models"
	"github.com/hmendoza/prepflow-backend/pkg/pagination"
)

// Repository exposes branch persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a branches repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new branch and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateBranchDTO) (*models.Branch, error) {
	branch := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(branch).Error; err != nil {
		return nil, err
	}
	return branch, nil
}

// FindByID loads a branch visible to the caller.
func (r *Repository) FindByID(ctx context.Context, access scope.Access, id uuid.UUID) (*models.Branch, error) {
	q, err := access.BranchColumn(r.db.WithContext(ctx), "id")
	if err != nil {
		return nil, err
	}
	var branch models.Branch
	if err := q.First(&branch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

// Exists reports whether the branch id references a row, unscoped.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Branch{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns the branches visible to the caller ordered by name.
func (r *Repository) List(ctx context.Context, access scope.Access, page pagination.Params) ([]models.Branch, error) {
	q, err := access.BranchColumn(r.db.WithContext(ctx), "id")
	if err != nil {
		return nil, err
	}
	page = page.Normalize()

	var branches []models.Branch
	if err := q.Order("name asc").Limit(page.Limit).Offset(page.Offset).Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

// Update persists the provided branch.
func (r *Repository) Update(ctx context.Context, branch *models.Branch) error {
	return r.db.WithContext(ctx).Save(branch).Error
}

// Delete removes the branch with its appointments, their deliveries, and its
// profiles in a single transaction.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM deliveries WHERE appointment_id IN (SELECT id FROM appointments WHERE branch_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM appointments WHERE branch_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM user_profiles WHERE branch_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Branch{}, "id = ?", id).Error
	})
}
