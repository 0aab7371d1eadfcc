package vehicles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hmendoza/prepflow-backend/pkg/db/models"
	pkgerrors "github.com/hmendoza/prepflow-backend/pkg/errors"
	"github.com/hmendoza/prepflow-backend/pkg/pagination"
)

const (
	colorMaxLength   = 7
	chassisMaxLength = 7
)

type vehicleRepository interface {
	Create(ctx context.Context, dto CreateVehicleDTO) (*models.Vehicle, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	List(ctx context.Context, page pagination.Params) ([]models.Vehicle, error)
	Update(ctx context.Context, vehicle *models.Vehicle) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service exposes vehicle operations.
type Service interface {
	Create(ctx context.Context, input CreateVehicleDTO) (*VehicleDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*VehicleDTO, error)
	List(ctx context.Context, page pagination.Params) ([]VehicleDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateVehicleInput) (*VehicleDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo vehicleRepository
}

// NewService builds a vehicle service with the provided repository.
func NewService(repo vehicleRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vehicle repository required")
	}
	return &service{repo: repo}, nil
}

func validateVehicleFields(model, color, chassis *string, fields pkgerrors.FieldErrors) {
	if model != nil && strings.TrimSpace(*model) == "" {
		fields.Add("model", "this field may not be blank")
	}
	if color != nil {
		trimmed := strings.TrimSpace(*color)
		if trimmed == "" {
			fields.Add("color", "this field may not be blank")
		} else if len(trimmed) > colorMaxLength {
			fields.Add("color", fmt.Sprintf("ensure this field has no more than %d characters", colorMaxLength))
		}
	}
	if chassis != nil {
		trimmed := strings.TrimSpace(*chassis)
		if trimmed == "" {
			fields.Add("chassis", "this field may not be blank")
		} else if len(trimmed) > chassisMaxLength {
			fields.Add("chassis", fmt.Sprintf("ensure this field has no more than %d characters", chassisMaxLength))
		}
	}
}

func (s *service) Create(ctx context.Context, input CreateVehicleDTO) (*VehicleDTO, error) {
	fields := pkgerrors.FieldErrors{}
	validateVehicleFields(&input.Model, &input.Color, &input.Chassis, fields)
	if !fields.Empty() {
		return nil, pkgerrors.Validation(fields)
	}

	input.Model = strings.TrimSpace(input.Model)
	input.Color = strings.TrimSpace(input.Color)
	input.Chassis = strings.TrimSpace(input.Chassis)

	vehicle, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vehicle")
	}
	return FromModel(vehicle), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*VehicleDTO, error) {
	vehicle, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(vehicle), nil
}

func (s *service) List(ctx context.Context, page pagination.Params) ([]VehicleDTO, error) {
	vehicles, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}
	return FromModels(vehicles), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateVehicleInput) (*VehicleDTO, error) {
	fields := pkgerrors.FieldErrors{}
	validateVehicleFields(input.Model, input.Color, input.Chassis, fields)
	if !fields.Empty() {
		return nil, pkgerrors.Validation(fields)
	}

	vehicle, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Model != nil {
		vehicle.Model = strings.TrimSpace(*input.Model)
	}
	if input.Color != nil {
		vehicle.Color = strings.TrimSpace(*input.Color)
	}
	if input.Chassis != nil {
		vehicle.Chassis = strings.TrimSpace(*input.Chassis)
	}

	if err := s.repo.Update(ctx, vehicle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vehicle")
	}
	return FromModel(vehicle), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete vehicle")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return vehicle, nil
}
