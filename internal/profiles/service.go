package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hmendoza/prepflow-backend/internal/scope"
	"github.com/hmendoza/prepflow-backend/pkg/db"
	"github.com/hmendoza/prepflow-backend/pkg/db/models"
	pkgerrors "github.com/hmendoza/prepflow-backend/pkg/errors"
	"github.com/hmendoza/prepflow-backend/pkg/pagination"
)

type profileRepository interface {
	Create(ctx context.Context, dto CreateProfileDTO) (*models.UserProfile, error)
	FindByID(ctx context.Context, access scope.Access, id uuid.UUID) (*models.UserProfile, error)
	List(ctx context.Context, access scope.Access, filter ListFilter, page pagination.Params) ([]models.UserProfile, error)
	Update(ctx context.Context, profile *models.UserProfile) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type branchChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service exposes staff profile operations.
type Service interface {
	Create(ctx context.Context, input CreateProfileDTO) (*ProfileDTO, error)
	GetByID(ctx context.Context, access scope.Access, id uuid.UUID) (*ProfileDTO, error)
	List(ctx context.Context, access scope.Access, filter ListFilter, page pagination.Params) ([]ProfileDTO, error)
	Update(ctx context.Context, access scope.Access, id uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error)
	Delete(ctx context.Context, access scope.Access, id uuid.UUID) error
}

type service struct {
	repo     profileRepository
	branches branchChecker
}

// NewService builds a profile service with the provided repositories.
func NewService(repo profileRepository, branches branchChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profile repository required")
	}
	if branches == nil {
		return nil, fmt.Errorf("branch checker required")
	}
	return &service{repo: repo, branches: branches}, nil
}

func (s *service) Create(ctx context.Context, input CreateProfileDTO) (*ProfileDTO, error) {
	fields := pkgerrors.FieldErrors{}
	if input.UserID == uuid.Nil {
		fields.Add("user_id", "this field is required")
	}
	if input.BranchID == uuid.Nil {
		fields.Add("branch_id", "this field is required")
	} else if err := s.checkBranch(ctx, input.BranchID, fields); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.EmployeeID) == "" {
		fields.Add("employee_id", "this field may not be blank")
	}
	if !fields.Empty() {
		return nil, pkgerrors.Validation(fields)
	}

	input.EmployeeID = strings.TrimSpace(input.EmployeeID)

	profile, err := s.repo.Create(ctx, input)
	if err != nil {
		if db.IsUniqueViolation(err, "user_id") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already has a profile")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create profile")
	}
	return FromModel(profile), nil
}

func (s *service) GetByID(ctx context.Context, access scope.Access, id uuid.UUID) (*ProfileDTO, error) {
	profile, err := s.loadScoped(ctx, access, id)
	if err != nil {
		return nil, err
	}
	return FromModel(profile), nil
}

func (s *service) List(ctx context.Context, access scope.Access, filter ListFilter, page pagination.Params) ([]ProfileDTO, error) {
	profiles, err := s.repo.List(ctx, access, filter, page)
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list profiles")
	}
	return FromModels(profiles), nil
}

func (s *service) Update(ctx context.Context, access scope.Access, id uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error) {
	fields := pkgerrors.FieldErrors{}
	if input.EmployeeID != nil && strings.TrimSpace(*input.EmployeeID) == "" {
		fields.Add("employee_id", "this field may not be blank")
	}
	if input.BranchID != nil {
		if *input.BranchID == uuid.Nil {
			fields.Add("branch_id", "this field is required")
		} else if err := s.checkBranch(ctx, *input.BranchID, fields); err != nil {
			return nil, err
		}
	}
	if !fields.Empty() {
		return nil, pkgerrors.Validation(fields)
	}

	profile, err := s.loadScoped(ctx, access, id)
	if err != nil {
		return nil, err
	}

	if input.BranchID != nil {
		profile.BranchID = *input.BranchID
	}
	if input.EmployeeID != nil {
		profile.EmployeeID = strings.TrimSpace(*input.EmployeeID)
	}
	if input.IsSupervisor != nil {
		profile.IsSupervisor = *input.IsSupervisor
	}

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return FromModel(profile), nil
}

func (s *service) Delete(ctx context.Context, access scope.Access, id uuid.UUID) error {
	if _, err := s.loadScoped(ctx, access, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete profile")
	}
	return nil
}

func (s *service) checkBranch(ctx context.Context, id uuid.UUID, fields pkgerrors.FieldErrors) error {
	exists, err := s.branches.Exists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check branch")
	}
	if !exists {
		fields.Add("branch_id", "branch does not exist")
	}
	return nil
}

func (s *service) loadScoped(ctx context.Context, access scope.Access, id uuid.UUID) (*models.UserProfile, error) {
	profile, err := s.repo.FindByID(ctx, access, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return profile, nil
}
