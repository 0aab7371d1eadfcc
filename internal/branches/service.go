package branches

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

const taxIDLength = 14

type branchRepository interface {
	Create(ctx context.Context, dto CreateBranchDTO) (*models.Branch, error)
	FindByID(ctx context.Context, access scope.Access, id uuid.UUID) (*models.Branch, error)
	List(ctx context.Context, access scope.Access, page pagination.Params) ([]models.Branch, error)
	Update(ctx context.Context, branch *models.Branch) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service exposes branch operations.
type Service interface {
	Create(ctx context.Context, input CreateBranchDTO) (*BranchDTO, error)
	GetByID(ctx context.Context, access scope.Access, id uuid.UUID) (*BranchDTO, error)
	List(ctx context.Context, access scope.Access, page pagination.Params) ([]BranchDTO, error)
	Update(ctx context.Context, access scope.Access, id uuid.UUID, input UpdateBranchInput) (*BranchDTO, error)
	Delete(ctx context.Context, access scope.Access, id uuid.UUID) error
}

type service struct {
	repo branchRepository
}

// NewService builds a branch service with the provided repository.
func NewService(repo branchRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("branch repository required")
	}
	return &service{repo: repo}, nil
}

func validateBranchFields(name, taxID *string, fields pkgerrors.FieldErrors) {
	if name != nil && strings.TrimSpace(*name) == "" {
		fields.Add("name", "this field may not be blank")
	}
	if taxID != nil {
		trimmed := strings.TrimSpace(*taxID)
		if trimmed == "" {
			fields.Add("tax_id", "this field may not be blank")
		} else if len(trimmed) != taxIDLength {
			fields.Add("tax_id", fmt.Sprintf("tax id must be exactly %d characters", taxIDLength))
		}
	}
}

func (s *service) Create(ctx context.Context, input CreateBranchDTO) (*BranchDTO, error) {
	fields := pkgerrors.FieldErrors{}
	validateBranchFields(&input.Name, &input.TaxID, fields)
	if !fields.Empty() {
		return nil, pkgerrors.Validation(fields)
	}

	input.Name = strings.TrimSpace(input.Name)
	input.TaxID = strings.TrimSpace(input.TaxID)

	branch, err := s.repo.Create(ctx, input)
	if err != nil {
		if db.IsUniqueViolation(err, "tax_id") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "branch with this tax id already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create branch")
	}
	return FromModel(branch), nil
}

func (s *service) GetByID(ctx context.Context, access scope.Access, id uuid.UUID) (*BranchDTO, error) {
	branch, err := s.loadScoped(ctx, access, id)
	if err != nil {
		return nil, err
	}
	return FromModel(branch), nil
}

func (s *service) List(ctx context.Context, access scope.Access, page pagination.Params) ([]BranchDTO, error) {
	branches, err := s.repo.List(ctx, access, page)
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list branches")
	}
	return FromModels(branches), nil
}

func (s *service) Update(ctx context.Context, access scope.Access, id uuid.UUID, input UpdateBranchInput) (*BranchDTO, error) {
	fields := pkgerrors.FieldErrors{}
	validateBranchFields(input.Name, input.TaxID, fields)
	if !fields.Empty() {
		return nil, pkgerrors.Validation(fields)
	}

	branch, err := s.loadScoped(ctx, access, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		branch.Name = strings.TrimSpace(*input.Name)
	}
	if input.TaxID != nil {
		branch.TaxID = strings.TrimSpace(*input.TaxID)
	}

	if err := s.repo.Update(ctx, branch); err != nil {
		if db.IsUniqueViolation(err, "tax_id") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "branch with this tax id already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update branch")
	}
	return FromModel(branch), nil
}

func (s *service) Delete(ctx context.Context, access scope.Access, id uuid.UUID) error {
	if _, err := s.loadScoped(ctx, access, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete branch")
	}
	return nil
}

func (s *service) loadScoped(ctx context.Context, access scope.Access, id uuid.UUID) (*models.Branch, error) {
	branch, err := s.repo.FindByID(ctx, access, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
	}
	return branch, nil
}
