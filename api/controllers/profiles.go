package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hmendoza/prepflow-backend/api/middleware"
	"github.com/hmendoza/prepflow-backend/api/responses"
	"github.com/hmendoza/prepflow-backend/api/validators"
	"github.com/hmendoza/prepflow-backend/internal/profiles"
	pkgerrors "github.com/hmendoza/prepflow-backend/pkg/errors"
	"github.com/hmendoza/prepflow-backend/pkg/logger"
	"github.com/hmendoza/prepflow-backend/pkg/pagination"
)

type profileCreateRequest struct {
	UserID       string `json:"user_id" validate:"required"`
	BranchID     string `json:"branch_id" validate:"required"`
	EmployeeID   string `json:"employee_id" validate:"required"`
	IsSupervisor bool   `json:"is_supervisor"`
}

func (req profileCreateRequest) toInput() (profiles.CreateProfileDTO, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return profiles.CreateProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return profiles.CreateProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid branch id")
	}
	return profiles.CreateProfileDTO{
		UserID:       userID,
		BranchID:     branchID,
		EmployeeID:   req.EmployeeID,
		IsSupervisor: req.IsSupervisor,
	}, nil
}

type profileUpdateRequest struct {
	BranchID     *uuid.UUID `json:"branch_id,omitempty"`
	EmployeeID   *string    `json:"employee_id,omitempty"`
	IsSupervisor *bool      `json:"is_supervisor,omitempty"`
}

// ProfileCreate attaches a staff profile to a user at a branch.
func ProfileCreate(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		var body profileCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, profile)
	}
}

// ProfileList returns the staff profiles visible to the caller. The
// is_preparer query parameter narrows the roster to non-supervisors.
func ProfileList(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		access, ok := middleware.AccessFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		isPreparer, err := validators.ParseQueryBool(r, "is_preparer")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), access, profiles.ListFilter{IsPreparer: isPreparer}, pagination.FromQuery(r.URL.Query()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// ProfileDetail returns a single staff profile by id.
func ProfileDetail(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		access, ok := middleware.AccessFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		id, err := validators.PathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.GetByID(r.Context(), access, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

// ProfileUpdate adjusts the mutable profile fields.
func ProfileUpdate(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		access, ok := middleware.AccessFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		id, err := validators.PathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body profileUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Update(r.Context(), access, id, profiles.UpdateProfileInput{
			BranchID:     body.BranchID,
			EmployeeID:   body.EmployeeID,
			IsSupervisor: body.IsSupervisor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

// ProfileDelete removes a staff profile.
func ProfileDelete(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		access, ok := middleware.AccessFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		id, err := validators.PathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), access, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}
