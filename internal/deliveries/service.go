package deliveries

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
	"github.com/hmendoza/prepflow-backend/pkg/enums"
	pkgerrors "github.com/hmendoza/prepflow-backend/pkg/errors"
	"github.com/hmendoza/prepflow-backend/pkg/pagination"
)

type deliveryRepository interface {
	Create(ctx context.Context, delivery *models.Delivery) (*models.Delivery, error)
	FindByID(ctx context.Context, access scope.Access, id uuid.UUID) (*models.Delivery, error)
	List(ctx context.Context, access scope.Access, page pagination.Params) ([]models.Delivery, error)
	Update(ctx context.Context, delivery *models.Delivery) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type appointmentFinder interface {
	FindByID(ctx context.Context, access scope.Access, id uuid.UUID) (*models.Appointment, error)
}

// Service exposes delivery operations.
type Service interface {
	Create(ctx context.Context, access scope.Access, input DeliveryInput) (*DeliveryDTO, error)
	GetByID(ctx context.Context, access scope.Access, id uuid.UUID) (*DeliveryDTO, error)
	List(ctx context.Context, access scope.Access, page pagination.Params) ([]DeliveryDTO, error)
	Update(ctx context.Context, access scope.Access, id uuid.UUID, input DeliveryInput) (*DeliveryDTO, error)
	Delete(ctx context.Context, access scope.Access, id uuid.UUID) error
}

type service struct {
	repo         deliveryRepository
	appointments appointmentFinder
}

// NewService builds a delivery service with the provided collaborators.
func NewService(repo deliveryRepository, appointments appointmentFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	if appointments == nil {
		return nil, fmt.Errorf("appointment finder required")
	}
	return &service{repo: repo, appointments: appointments}, nil
}

func (s *service) Create(ctx context.Context, access scope.Access, input DeliveryInput) (*DeliveryDTO, error) {
	fields := pkgerrors.FieldErrors{}
	if input.AppointmentID == nil || *input.AppointmentID == uuid.Nil {
		fields.Add("appointment_id", "this field is required")
	} else if err := s.checkAppointment(ctx, access, *input.AppointmentID, fields); err != nil {
		return nil, err
	}
	if input.Status != nil && !input.Status.IsValid() {
		fields.Add("status", fmt.Sprintf("%q is not a valid status", string(*input.Status)))
	}
	if !fields.Empty() {
		return nil, pkgerrors.Validation(fields)
	}

	delivery := &models.Delivery{
		AppointmentID: *input.AppointmentID,
		Status:        enums.DeliveryStatusPending,
		DeliveryDate:  input.DeliveryDate,
	}
	if input.Status != nil {
		delivery.Status = *input.Status
	}
	if input.Notes != nil {
		delivery.Notes = strings.TrimSpace(*input.Notes)
	}

	created, err := s.repo.Create(ctx, delivery)
	if err != nil {
		if db.IsUniqueViolation(err, "appointment_id") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "appointment already has a delivery")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery")
	}
	return FromModel(created), nil
}

func (s *service) GetByID(ctx context.Context, access scope.Access, id uuid.UUID) (*DeliveryDTO, error) {
	delivery, err := s.loadScoped(ctx, access, id)
	if err != nil {
		return nil, err
	}
	return FromModel(delivery), nil
}

func (s *service) List(ctx context.Context, access scope.Access, page pagination.Params) ([]DeliveryDTO, error) {
	deliveries, err := s.repo.List(ctx, access, page)
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list deliveries")
	}
	return FromModels(deliveries), nil
}

func (s *service) Update(ctx context.Context, access scope.Access, id uuid.UUID, input DeliveryInput) (*DeliveryDTO, error) {
	fields := pkgerrors.FieldErrors{}
	if input.AppointmentID != nil {
		if *input.AppointmentID == uuid.Nil {
			fields.Add("appointment_id", "this field is required")
		} else if err := s.checkAppointment(ctx, access, *input.AppointmentID, fields); err != nil {
			return nil, err
		}
	}
	if input.Status != nil && !input.Status.IsValid() {
		fields.Add("status", fmt.Sprintf("%q is not a valid status", string(*input.Status)))
	}
	if !fields.Empty() {
		return nil, pkgerrors.Validation(fields)
	}

	delivery, err := s.loadScoped(ctx, access, id)
	if err != nil {
		return nil, err
	}

	if input.AppointmentID != nil {
		delivery.AppointmentID = *input.AppointmentID
	}
	if input.Status != nil {
		delivery.Status = *input.Status
	}
	if input.DeliveryDate != nil {
		delivery.DeliveryDate = input.DeliveryDate
	}
	if input.Notes != nil {
		delivery.Notes = strings.TrimSpace(*input.Notes)
	}

	if err := s.repo.Update(ctx, delivery); err != nil {
		if db.IsUniqueViolation(err, "appointment_id") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "appointment already has a delivery")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery")
	}
	return FromModel(delivery), nil
}

func (s *service) Delete(ctx context.Context, access scope.Access, id uuid.UUID) error {
	if _, err := s.loadScoped(ctx, access, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete delivery")
	}
	return nil
}

// checkAppointment verifies the appointment exists and is visible to the
// caller. Rows outside the caller's branch read as nonexistent.
func (s *service) checkAppointment(ctx context.Context, access scope.Access, id uuid.UUID, fields pkgerrors.FieldErrors) error {
	_, err := s.appointments.FindByID(ctx, access, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fields.Add("appointment_id", "appointment does not exist")
			return nil
		}
		if appErr := pkgerrors.As(err); appErr != nil {
			return appErr
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check appointment")
	}
	return nil
}

func (s *service) loadScoped(ctx context.Context, access scope.Access, id uuid.UUID) (*models.Delivery, error) {
	delivery, err := s.repo.FindByID(ctx, access, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
		}
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
	}
	return delivery, nil
}
