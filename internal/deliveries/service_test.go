package deliveries

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hmendoza/prepflow-backend/internal/scope"
	"github.com/hmendoza/prepflow-backend/pkg/db/models"
	"github.com/hmendoza/prepflow-backend/pkg/enums"
	pkgerrors "github.com/hmendoza/prepflow-backend/pkg/errors"
	"github.com/hmendoza/prepflow-backend/pkg/pagination"
)

type stubDeliveryRepo struct {
	createFn func(ctx context.Context, delivery *models.Delivery) (*models.Delivery, error)
	findFn   func(ctx context.Context, access scope.Access, id uuid.UUID) (*models.Delivery, error)
	listFn   func(ctx context.Context, access scope.Access, page pagination.Params) ([]models.Delivery, error)
	updateFn func(ctx context.Context, delivery *models.Delivery) error
	deleteFn func(ctx context.Context, id uuid.UUID) error
}

func (s *stubDeliveryRepo) Create(ctx context.Context, delivery *models.Delivery) (*models.Delivery, error) {
	return s.createFn(ctx, delivery)
}

func (s *stubDeliveryRepo) FindByID(ctx context.Context, access scope.Access, id uuid.UUID) (*models.Delivery, error) {
	return s.findFn(ctx, access, id)
}

func (s *stubDeliveryRepo) List(ctx context.Context, access scope.Access, page pagination.Params) ([]models.Delivery, error) {
	return s.listFn(ctx, access, page)
}

func (s *stubDeliveryRepo) Update(ctx context.Context, delivery *models.Delivery) error {
	return s.updateFn(ctx, delivery)
}

func (s *stubDeliveryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

type stubAppointmentFinder struct {
	known map[uuid.UUID]*models.Appointment
	err   error
}

func (s *stubAppointmentFinder) FindByID(ctx context.Context, access scope.Access, id uuid.UUID) (*models.Appointment, error) {
	if s.err != nil {
		return nil, s.err
	}
	if appt, ok := s.known[id]; ok {
		return appt, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func knownAppointment() (*stubAppointmentFinder, uuid.UUID) {
	id := uuid.New()
	return &stubAppointmentFinder{known: map[uuid.UUID]*models.Appointment{
		id: {ID: id, BranchID: uuid.New()},
	}}, id
}

func TestServiceCreateDefaultsToPending(t *testing.T) {
	finder, apptID := knownAppointment()
	var created *models.Delivery
	repo := &stubDeliveryRepo{
		createFn: func(ctx context.Context, delivery *models.Delivery) (*models.Delivery, error) {
			created = delivery
			return delivery, nil
		},
	}
	svc, err := NewService(repo, finder)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.Create(context.Background(), branchAccess(uuid.New()), DeliveryInput{AppointmentID: &apptID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != enums.DeliveryStatusPending {
		t.Fatalf("expected pending status, got %q", created.Status)
	}
	if dto.AppointmentID != apptID {
		t.Fatal("expected appointment link persisted")
	}
}

func TestServiceCreateRequiresAppointment(t *testing.T) {
	svc, _ := NewService(&stubDeliveryRepo{}, &stubAppointmentFinder{})

	_, err := svc.Create(context.Background(), branchAccess(uuid.New()), DeliveryInput{})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields, ok := appErr.Details().(pkgerrors.FieldErrors)
	if !ok {
		t.Fatalf("expected field errors, got %T", appErr.Details())
	}
	if _, present := fields["appointment_id"]; !present {
		t.Fatal("expected appointment_id violation")
	}
}

func TestServiceCreateUnknownAppointment(t *testing.T) {
	svc, _ := NewService(&stubDeliveryRepo{}, &stubAppointmentFinder{})

	apptID := uuid.New()
	_, err := svc.Create(context.Background(), branchAccess(uuid.New()), DeliveryInput{AppointmentID: &apptID})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceCreateConflictOnSecondDelivery(t *testing.T) {
	finder, apptID := knownAppointment()
	repo := &stubDeliveryRepo{
		createFn: func(ctx context.Context, delivery *models.Delivery) (*models.Delivery, error) {
			return nil, errors.New(`UNIQUE constraint failed: deliveries.appointment_id`)
		},
	}
	svc, _ := NewService(repo, finder)

	_, err := svc.Create(context.Background(), branchAccess(uuid.New()), DeliveryInput{AppointmentID: &apptID})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestServiceCreateRejectsUnknownStatus(t *testing.T) {
	finder, apptID := knownAppointment()
	svc, _ := NewService(&stubDeliveryRepo{}, finder)

	bogus := enums.DeliveryStatus("lost")
	_, err := svc.Create(context.Background(), branchAccess(uuid.New()), DeliveryInput{AppointmentID: &apptID, Status: &bogus})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceUpdateMergesPresentFields(t *testing.T) {
	existing := &models.Delivery{ID: uuid.New(), AppointmentID: uuid.New(), Status: enums.DeliveryStatusPending, Notes: "keep"}
	var saved *models.Delivery
	repo := &stubDeliveryRepo{
		findFn: func(ctx context.Context, access scope.Access, id uuid.UUID) (*models.Delivery, error) {
			return existing, nil
		},
		updateFn: func(ctx context.Context, delivery *models.Delivery) error {
			saved = delivery
			return nil
		},
	}
	svc, _ := NewService(repo, &stubAppointmentFinder{})

	delivered := enums.DeliveryStatusDelivered
	dto, err := svc.Update(context.Background(), branchAccess(uuid.New()), existing.ID, DeliveryInput{Status: &delivered})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if saved.Status != enums.DeliveryStatusDelivered {
		t.Fatalf("expected delivered status, got %q", saved.Status)
	}
	if saved.Notes != "keep" {
		t.Fatal("absent fields must not change")
	}
	if dto.Status != enums.DeliveryStatusDelivered {
		t.Fatalf("expected delivered dto status, got %q", dto.Status)
	}
}

func TestServiceGetByIDNotFound(t *testing.T) {
	repo := &stubDeliveryRepo{
		findFn: func(ctx context.Context, access scope.Access, id uuid.UUID) (*models.Delivery, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, _ := NewService(repo, &stubAppointmentFinder{})

	_, err := svc.GetByID(context.Background(), branchAccess(uuid.New()), uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestServiceDeleteScopedLookupFirst(t *testing.T) {
	deleted := false
	repo := &stubDeliveryRepo{
		findFn: func(ctx context.Context, access scope.Access, id uuid.UUID) (*models.Delivery, error) {
			return nil, gorm.ErrRecordNotFound
		},
		deleteFn: func(ctx context.Context, id uuid.UUID) error {
			deleted = true
			return nil
		},
	}
	svc, _ := NewService(repo, &stubAppointmentFinder{})

	err := svc.Delete(context.Background(), branchAccess(uuid.New()), uuid.New())
	if pkgerrors.As(err) == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if deleted {
		t.Fatal("delete must not run when the scoped lookup fails")
	}
}
