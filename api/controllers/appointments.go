package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hmendoza/prepflow-backend/api/middleware"
	"github.com/hmendoza/prepflow-backend/api/responses"
	"github.com/hmendoza/prepflow-backend/api/validators"
	"github.com/hmendoza/prepflow-backend/internal/appointments"
	"github.com/hmendoza/prepflow-backend/pkg/enums"
	pkgerrors "github.com/hmendoza/prepflow-backend/pkg/errors"
	"github.com/hmendoza/prepflow-backend/pkg/logger"
	"github.com/hmendoza/prepflow-backend/pkg/pagination"
	"github.com/hmendoza/prepflow-backend/pkg/types"
)

type appointmentRequest struct {
	AppointmentDate   *types.Date                `json:"appointment_date,omitempty"`
	Time              *types.TimeOfDay           `json:"time,omitempty"`
	DeliveryDate      *types.Date                `json:"delivery_date,omitempty"`
	Seller            *string                    `json:"seller,omitempty"`
	Client            *string                    `json:"client,omitempty"`
	ClientPhone       *string                    `json:"client_phone,omitempty"`
	ClientEmail       *string                    `json:"client_email,omitempty"`
	VehicleID         *uuid.UUID                 `json:"vehicle_id,omitempty"`
	BranchID          *uuid.UUID                 `json:"branch_id,omitempty"`
	PreparerID        *uuid.UUID                 `json:"preparer_id,omitempty"`
	Priority          *enums.AppointmentPriority `json:"priority,omitempty"`
	EstimatedDuration *types.Duration            `json:"estimated_duration,omitempty"`
	Notes             *string                    `json:"notes,omitempty"`
}

func (req appointmentRequest) toInput() appointments.AppointmentInput {
	return appointments.AppointmentInput{
		AppointmentDate:   req.AppointmentDate,
		Time:              req.Time,
		DeliveryDate:      req.DeliveryDate,
		Seller:            req.Seller,
		Client:            req.Client,
		ClientPhone:       req.ClientPhone,
		ClientEmail:       req.ClientEmail,
		VehicleID:         req.VehicleID,
		BranchID:          req.BranchID,
		PreparerID:        req.PreparerID,
		Priority:          req.Priority,
		EstimatedDuration: req.EstimatedDuration,
		Notes:             req.Notes,
	}
}

// AppointmentCreate schedules a preparation appointment for the caller's branch.
func AppointmentCreate(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "appointment service unavailable"))
			return
		}

		access, ok := middleware.AccessFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var body appointmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appt, err := svc.Create(r.Context(), access, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, appt)
	}
}

func appointmentFilter(r *http.Request) (appointments.ListFilter, error) {
	filter := appointments.ListFilter{}

	start, err := validators.ParseQueryDate(r, "start_date")
	if err != nil {
		return filter, err
	}
	filter.StartDate = start

	end, err := validators.ParseQueryDate(r, "end_date")
	if err != nil {
		return filter, err
	}
	filter.EndDate = end

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseAppointmentStatus(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "unknown status value").WithDetails(map[string]any{"field": "status"})
		}
		filter.Status = &status
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("priority")); raw != "" {
		priority, err := enums.ParseAppointmentPriority(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "unknown priority value").WithDetails(map[string]any{"field": "priority"})
		}
		filter.Priority = &priority
	}

	preparerID, err := validators.ParseQueryUUID(r, "preparer")
	if err != nil {
		return filter, err
	}
	filter.PreparerID = preparerID

	return filter, nil
}

// AppointmentList returns the caller's branch schedule. All query filters
// apply together.
func AppointmentList(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "appointment service unavailable"))
			return
		}

		access, ok := middleware.AccessFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		filter, err := appointmentFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), access, filter, pagination.FromQuery(r.URL.Query()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// AppointmentDetail returns a single appointment by id.
func AppointmentDetail(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "appointment service unavailable"))
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

		appt, err := svc.GetByID(r.Context(), access, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, appt)
	}
}

// AppointmentUpdate adjusts appointment fields. Status and actual duration
// only move through their dedicated endpoints.
func AppointmentUpdate(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "appointment service unavailable"))
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

		var body appointmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appt, err := svc.Update(r.Context(), access, id, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, appt)
	}
}

type appointmentStatusRequest struct {
	Status string `json:"status"`
}

// AppointmentUpdateStatus moves an appointment through its lifecycle.
func AppointmentUpdateStatus(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "appointment service unavailable"))
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

		var body appointmentStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appt, err := svc.UpdateStatus(r.Context(), access, id, body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, appt)
	}
}

type appointmentDurationRequest struct {
	ActualDuration *types.Duration `json:"actual_duration"`
}

// AppointmentUpdateDuration records the time the preparation actually took.
func AppointmentUpdateDuration(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "appointment service unavailable"))
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

		var body appointmentDurationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appt, err := svc.UpdateDuration(r.Context(), access, id, body.ActualDuration)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, appt)
	}
}

// AppointmentDelete removes an appointment and its attached delivery.
func AppointmentDelete(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "appointment service unavailable"))
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
