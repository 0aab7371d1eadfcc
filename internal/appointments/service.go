package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hmendoza/prepflow-backend/internal/scope"
	"github.com/hmendoza/prepflow-backend/pkg/db/models"
	"github.com/hmendoza/prepflow-backend/pkg/enums"
	pkgerrors "github.com/hmendoza/prepflow-backend/pkg/errors"
	"github.com/hmendoza/prepflow-backend/pkg/pagination"
	"github.com/hmendoza/prepflow-backend/pkg/types"
)

const (
	defaultEstimatedDuration = types.Duration(time.Hour)
	deliveryDateOffsetDays   = 3
)

type appointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) (*models.Appointment, error)
	FindByID(ctx context.Context, access scope.Access, id uuid.UUID) (*models.Appointment, error)
	List(ctx context.Context, access scope.Access, filter ListFilter, page pagination.Params) ([]models.Appointment, error)
	Update(ctx context.Context, appt *models.Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service exposes the appointment lifecycle.
type Service interface {
	Create(ctx context.Context, access scope.Access, input AppointmentInput) (*AppointmentDTO, error)
	GetByID(ctx context.Context, access scope.Access, id uuid.UUID) (*AppointmentDTO, error)
	List(ctx context.Context, access scope.Access, filter ListFilter, page pagination.Params) ([]AppointmentDTO, error)
	Update(ctx context.Context, access scope.Access, id uuid.UUID, input AppointmentInput) (*AppointmentDTO, error)
	UpdateStatus(ctx context.Context, access scope.Access, id uuid.UUID, status string) (*AppointmentDTO, error)
	UpdateDuration(ctx context.Context, access scope.Access, id uuid.UUID, actual *types.Duration) (*AppointmentDTO, error)
	Delete(ctx context.Context, access scope.Access, id uuid.UUID) error
}

type service struct {
	repo      appointmentRepository
	validator *Validator
	now       func() time.Time
}

// NewService builds an appointment service with the provided collaborators.
func NewService(repo appointmentRepository, validator *Validator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("appointment repository required")
	}
	if validator == nil {
		return nil, fmt.Errorf("appointment validator required")
	}
	return &service{repo: repo, validator: validator, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, access scope.Access, input AppointmentInput) (*AppointmentDTO, error) {
	// created_by is stamped server-side, so even admin callers need a
	// profile to create appointments.
	creatorID, err := access.RequireProfile()
	if err != nil {
		return nil, err
	}

	now := s.now()
	fields, err := s.validator.Validate(ctx, input, now, false)
	if err != nil {
		return nil, err
	}
	if !fields.Empty() {
		return nil, pkgerrors.Validation(fields)
	}

	appt := &models.Appointment{
		AppointmentDate:   *input.AppointmentDate,
		ScheduledAt:       now.UTC(),
		Time:              *input.Time,
		Seller:            strings.TrimSpace(*input.Seller),
		Client:            strings.TrimSpace(*input.Client),
		VehicleID:         *input.VehicleID,
		BranchID:          *input.BranchID,
		Status:            enums.AppointmentStatusScheduled,
		Priority:          enums.AppointmentPriorityMedium,
		EstimatedDuration: defaultEstimatedDuration,
		CreatedByID:       creatorID,
	}

	if input.ClientPhone != nil {
		appt.ClientPhone = strings.TrimSpace(*input.ClientPhone)
	}
	if input.ClientEmail != nil {
		appt.ClientEmail = strings.TrimSpace(*input.ClientEmail)
	}
	if input.PreparerID != nil && *input.PreparerID != uuid.Nil {
		appt.PreparerID = input.PreparerID
	}
	if input.Priority != nil {
		appt.Priority = *input.Priority
	}
	if input.EstimatedDuration != nil {
		appt.EstimatedDuration = *input.EstimatedDuration
	}
	if input.Notes != nil {
		appt.Notes = strings.TrimSpace(*input.Notes)
	}

	// The default is computed at persistence time so it always reflects the
	// final appointment date.
	if input.DeliveryDate != nil {
		appt.DeliveryDate = *input.DeliveryDate
	} else {
		appt.DeliveryDate = appt.AppointmentDate.AddDays(deliveryDateOffsetDays)
	}

	created, err := s.repo.Create(ctx, appt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create appointment")
	}
	return FromModel(created), nil
}

func (s *service) GetByID(ctx context.Context, access scope.Access, id uuid.UUID) (*AppointmentDTO, error) {
	appt, err := s.loadScoped(ctx, access, id)
	if err != nil {
		return nil, err
	}
	return FromModel(appt), nil
}

func (s *service) List(ctx context.Context, access scope.Access, filter ListFilter, page pagination.Params) ([]AppointmentDTO, error) {
	appts, err := s.repo.List(ctx, access, filter, page)
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list appointments")
	}
	return FromModels(appts), nil
}

func (s *service) Update(ctx context.Context, access scope.Access, id uuid.UUID, input AppointmentInput) (*AppointmentDTO, error) {
	fields, err := s.validator.Validate(ctx, input, s.now(), true)
	if err != nil {
		return nil, err
	}
	if !fields.Empty() {
		return nil, pkgerrors.Validation(fields)
	}

	appt, err := s.loadScoped(ctx, access, id)
	if err != nil {
		return nil, err
	}

	if input.AppointmentDate != nil {
		appt.AppointmentDate = *input.AppointmentDate
	}
	if input.Time != nil {
		appt.Time = *input.Time
	}
	if input.DeliveryDate != nil {
		appt.DeliveryDate = *input.DeliveryDate
	}
	if input.Seller != nil {
		appt.Seller = strings.TrimSpace(*input.Seller)
	}
	if input.Client != nil {
		appt.Client = strings.TrimSpace(*input.Client)
	}
	if input.ClientPhone != nil {
		appt.ClientPhone = strings.TrimSpace(*input.ClientPhone)
	}
	if input.ClientEmail != nil {
		appt.ClientEmail = strings.TrimSpace(*input.ClientEmail)
	}
	if input.VehicleID != nil {
		appt.VehicleID = *input.VehicleID
	}
	if input.BranchID != nil {
		appt.BranchID = *input.BranchID
	}
	if input.PreparerID != nil {
		if *input.PreparerID == uuid.Nil {
			appt.PreparerID = nil
		} else {
			appt.PreparerID = input.PreparerID
		}
	}
	if input.Priority != nil {
		appt.Priority = *input.Priority
	}
	if input.EstimatedDuration != nil {
		appt.EstimatedDuration = *input.EstimatedDuration
	}
	if input.Notes != nil {
		appt.Notes = strings.TrimSpace(*input.Notes)
	}

	// The merged record must still satisfy the date ordering invariant even
	// when only one of the two dates was sent.
	if appt.DeliveryDate.Before(appt.AppointmentDate) {
		merged := pkgerrors.FieldErrors{}
		merged.Add("delivery_date", "delivery date cannot be before the appointment date")
		return nil, pkgerrors.Validation(merged)
	}

	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update appointment")
	}
	return FromModel(appt), nil
}

func (s *service) UpdateStatus(ctx context.Context, access scope.Access, id uuid.UUID, status string) (*AppointmentDTO, error) {
	parsed, parseErr := enums.ParseAppointmentStatus(status)
	if parseErr != nil {
		fields := pkgerrors.FieldErrors{}
		if strings.TrimSpace(status) == "" {
			fields.Add("status", "this field is required")
		} else {
			fields.Add("status", fmt.Sprintf("%q is not a valid status", status))
		}
		return nil, pkgerrors.Validation(fields)
	}

	appt, err := s.loadScoped(ctx, access, id)
	if err != nil {
		return nil, err
	}

	// Any current-to-next combination inside the enum set is allowed; there
	// are no terminal states.
	appt.Status = parsed
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update appointment status")
	}
	return FromModel(appt), nil
}

func (s *service) UpdateDuration(ctx context.Context, access scope.Access, id uuid.UUID, actual *types.Duration) (*AppointmentDTO, error) {
	if actual == nil {
		fields := pkgerrors.FieldErrors{}
		fields.Add("actual_duration", "this field is required")
		return nil, pkgerrors.Validation(fields)
	}

	appt, err := s.loadScoped(ctx, access, id)
	if err != nil {
		return nil, err
	}

	appt.ActualDuration = actual
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update appointment duration")
	}
	return FromModel(appt), nil
}

func (s *service) Delete(ctx context.Context, access scope.Access, id uuid.UUID) error {
	if _, err := s.loadScoped(ctx, access, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete appointment")
	}
	return nil
}

func (s *service) loadScoped(ctx context.Context, access scope.Access, id uuid.UUID) (*models.Appointment, error) {
	appt, err := s.repo.FindByID(ctx, access, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
		}
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load appointment")
	}
	return appt, nil
}
