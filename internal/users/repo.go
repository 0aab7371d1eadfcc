package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hmendoza/prepflow-backend/internal/scope"
	"github.com/hmendoza/prepflow-backend/pkg/db/models"
	"github.com/hmendoza/prepflow-backend/pkg/pagination"
)

const profileJoin = "JOIN user_profiles ON user_profiles.user_id = users.id"

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email, unscoped. Auth
// is the only caller.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user visible to the caller. Non-admin callers only see
// users with a profile at their own branch.
func (r *Repository) FindByID(ctx context.Context, access scope.Access, id uuid.UUID) (*models.User, error) {
	q, err := access.BranchJoin(r.db.WithContext(ctx).Model(&models.User{}), profileJoin, "user_profiles.branch_id")
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := q.First(&user, "users.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns the users visible to the caller ordered by username.
func (r *Repository) List(ctx context.Context, access scope.Access, page pagination.Params) ([]models.User, error) {
	q, err := access.BranchJoin(r.db.WithContext(ctx).Model(&models.User{}), profileJoin, "user_profiles.branch_id")
	if err != nil {
		return nil, err
	}
	page = page.Normalize()

	var users []models.User
	if err := q.Order("users.username asc").Limit(page.Limit).Offset(page.Offset).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update persists the provided user.
func (r *Repository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// Delete removes the user and its profile. Appointments naming the profile as
// preparer keep the row with a nulled reference; appointments the profile
// created go away with their deliveries.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"UPDATE appointments SET preparer_id = NULL WHERE preparer_id IN (SELECT id FROM user_profiles WHERE user_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM deliveries WHERE appointment_id IN (SELECT id FROM appointments WHERE created_by_id IN (SELECT id FROM user_profiles WHERE user_id = ?))", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM appointments WHERE created_by_id IN (SELECT id FROM user_profiles WHERE user_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM user_profiles WHERE user_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", id).Error
	})
}
