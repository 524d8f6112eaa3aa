package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/evolvespaces/evolve-backend/api/middleware"
	"github.com/evolvespaces/evolve-backend/api/responses"
	"github.com/evolvespaces/evolve-backend/api/validators"
	"github.com/evolvespaces/evolve-backend/internal/grievances"
	"github.com/evolvespaces/evolve-backend/pkg/enums"
	pkgerrors "github.com/evolvespaces/evolve-backend/pkg/errors"
	"github.com/evolvespaces/evolve-backend/pkg/logger"
)

type grievanceCreateRequest struct {
	MemberID    uuid.UUID  `json:"member_id" validate:"required"`
	LocationID  *uuid.UUID `json:"location_id"`
	Subject     string     `json:"subject" validate:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
}

type grievanceStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func GrievanceCreate(svc grievances.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "grievances service unavailable"))
			return
		}

		var body grievanceCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if body.LocationID != nil && !middleware.CanAccessLocation(r.Context(), *body.LocationID) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "location out of scope"))
			return
		}

		params := grievances.CreateParams{
			MemberID:    body.MemberID,
			LocationID:  body.LocationID,
			Subject:     body.Subject,
			Description: body.Description,
		}
		if body.Priority != "" {
			priority, err := enums.ParseGrievancePriority(body.Priority)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priority"))
				return
			}
			params.Priority = priority
		}

		grievance, err := svc.Create(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, grievance)
	}
}

func GrievanceGet(svc grievances.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "grievances service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		grievance, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, grievance)
	}
}

func GrievanceList(svc grievances.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "grievances service unavailable"))
			return
		}

		memberID, err := validators.ParseQueryUUID(r, "member_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *enums.GrievanceStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			parsed, parseErr := enums.ParseGrievanceStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status"))
				return
			}
			status = &parsed
		}

		page, err := paginationFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), grievances.ListQuery{
			MemberID:   memberID,
			Status:     status,
			Pagination: page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// GrievanceUpdateStatus moves a grievance along its lifecycle.
func GrievanceUpdateStatus(svc grievances.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "grievances service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body grievanceStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		next, err := enums.ParseGrievanceStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		grievance, err := svc.UpdateStatus(r.Context(), id, next)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, grievance)
	}
}
