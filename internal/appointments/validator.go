package appointments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/hmendoza/prepflow-backend/pkg/errors"
)

type branchChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Validator gates appointment writes. It collects every violation into a
// field map instead of failing on the first one.
type Validator struct {
	branches branchChecker
}

// NewValidator builds an appointment validator.
func NewValidator(branches branchChecker) (*Validator, error) {
	if branches == nil {
		return nil, fmt.Errorf("branch checker required")
	}
	return &Validator{branches: branches}, nil
}

// Validate checks the input against the scheduling rules. On create every
// rule applies; on partial update only the fields the caller sent are
// checked. The returned error is reserved for dependency failures.
func (v *Validator) Validate(ctx context.Context, input AppointmentInput, now time.Time, isUpdate bool) (pkgerrors.FieldErrors, error) {
	fields := pkgerrors.FieldErrors{}
	today := truncateToDate(now)

	if input.AppointmentDate == nil {
		if !isUpdate {
			fields.Add("appointment_date", "this field is required")
		}
	} else if input.AppointmentDate.Time().Before(today) {
		fields.Add("appointment_date", "appointment date cannot be in the past")
	}

	if input.Time == nil {
		if !isUpdate {
			fields.Add("time", "this field is required")
		}
	}

	// Same-day appointments whose time already passed are rejected.
	if input.AppointmentDate != nil && input.Time != nil {
		if _, bad := fields["appointment_date"]; !bad {
			at := input.AppointmentDate.At(*input.Time, now.Location())
			if at.Before(now) {
				fields.Add("time", "appointment time has already passed")
			}
		}
	}

	if input.DeliveryDate != nil && input.AppointmentDate != nil {
		if input.DeliveryDate.Before(*input.AppointmentDate) {
			fields.Add("delivery_date", "delivery date cannot be before the appointment date")
		}
	}

	requireNonBlank(fields, "seller", input.Seller, isUpdate)
	requireNonBlank(fields, "client", input.Client, isUpdate)

	if input.VehicleID == nil || *input.VehicleID == uuid.Nil {
		if !isUpdate || input.VehicleID != nil {
			fields.Add("vehicle_id", "this field is required")
		}
	}

	if input.BranchID == nil || *input.BranchID == uuid.Nil {
		if !isUpdate || input.BranchID != nil {
			fields.Add("branch_id", "this field is required")
		}
	} else {
		exists, err := v.branches.Exists(ctx, *input.BranchID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check branch")
		}
		if !exists {
			fields.Add("branch_id", "branch does not exist")
		}
	}

	if input.EstimatedDuration != nil && *input.EstimatedDuration < 0 {
		fields.Add("estimated_duration", "duration cannot be negative")
	}

	if input.Priority != nil && !input.Priority.IsValid() {
		fields.Add("priority", fmt.Sprintf("%q is not a valid priority", string(*input.Priority)))
	}

	return fields, nil
}

func requireNonBlank(fields pkgerrors.FieldErrors, name string, value *string, isUpdate bool) {
	if value == nil {
		if !isUpdate {
			fields.Add(name, "this field is required")
		}
		return
	}
	if strings.TrimSpace(*value) == "" {
		fields.Add(name, "this field may not be blank")
	}
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
