package profiles

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/hmendoza/prepflow-backend/internal/scope"
	"github.com/hmendoza/prepflow-backend/pkg/db/models"
	pkgerrors "github.com/hmendoza/prepflow-backend/pkg/errors"
	"github.com/hmendoza/prepflow-backend/pkg/pagination"
)

type stubProfileRepo struct {
	createFn func(ctx context.Context, dto CreateProfileDTO) (*models.UserProfile, error)
	findFn   func(ctx context.Context, access scope.Access, id uuid.UUID) (*models.UserProfile, error)
	listFn   func(ctx context.Context, access scope.Access, filter ListFilter, page pagination.Params) ([]models.UserProfile, error)
	updateFn func(ctx context.Context, profile *models.UserProfile) error
	deleteFn func(ctx context.Context, id uuid.UUID) error
}

func (s *stubProfileRepo) Create(ctx context.Context, dto CreateProfileDTO) (*models.UserProfile, error) {
	return s.createFn(ctx, dto)
}

func (s *stubProfileRepo) FindByID(ctx context.Context, access scope.Access, id uuid.UUID) (*models.UserProfile, error) {
	return s.findFn(ctx, access, id)
}

func (s *stubProfileRepo) List(ctx context.Context, access scope.Access, filter ListFilter, page pagination.Params) ([]models.UserProfile, error) {
	return s.listFn(ctx, access, filter, page)
}

func (s *stubProfileRepo) Update(ctx context.Context, profile *models.UserProfile) error {
	return s.updateFn(ctx, profile)
}

func (s *stubProfileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

type stubBranchChecker struct {
	exists map[uuid.UUID]bool
}

func (s *stubBranchChecker) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.exists[id], nil
}

func TestServiceCreateUnknownBranch(t *testing.T) {
	svc, err := NewService(&stubProfileRepo{}, &stubBranchChecker{exists: map[uuid.UUID]bool{}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Create(context.Background(), CreateProfileDTO{
		UserID:     uuid.New(),
		BranchID:   uuid.New(),
		EmployeeID: "E-1",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := appErr.Details().(pkgerrors.FieldErrors)
	if fields["branch_id"] != "branch does not exist" {
		t.Fatalf("expected branch existence violation, got %v", fields)
	}
}

func TestServiceCreateDuplicateProfile(t *testing.T) {
	branchID := uuid.New()
	repo := &stubProfileRepo{
		createFn: func(ctx context.Context, dto CreateProfileDTO) (*models.UserProfile, error) {
			return nil, &uniqueErr{}
		},
	}
	svc, _ := NewService(repo, &stubBranchChecker{exists: map[uuid.UUID]bool{branchID: true}})

	_, err := svc.Create(context.Background(), CreateProfileDTO{
		UserID:     uuid.New(),
		BranchID:   branchID,
		EmployeeID: "E-2",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

type uniqueErr struct{}

func (e *uniqueErr) Error() string {
	return "UNIQUE constraint failed: user_profiles.user_id"
}

func TestServiceUpdateMovesBranch(t *testing.T) {
	oldBranch := uuid.New()
	newBranch := uuid.New()
	existing := &models.UserProfile{ID: uuid.New(), UserID: uuid.New(), BranchID: oldBranch, EmployeeID: "E-3"}

	var saved *models.UserProfile
	repo := &stubProfileRepo{
		findFn: func(ctx context.Context, access scope.Access, id uuid.UUID) (*models.UserProfile, error) {
			return existing, nil
		},
		updateFn: func(ctx context.Context, profile *models.UserProfile) error {
			saved = profile
			return nil
		},
	}
	svc, _ := NewService(repo, &stubBranchChecker{exists: map[uuid.UUID]bool{newBranch: true}})

	dto, err := svc.Update(context.Background(), scope.Access{IsAdmin: true}, existing.ID, UpdateProfileInput{BranchID: &newBranch})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if saved == nil || saved.BranchID != newBranch {
		t.Fatalf("expected branch move persisted, got %+v", saved)
	}
	if dto.BranchID != newBranch {
		t.Fatalf("expected branch move in dto, got %s", dto.BranchID)
	}
}
