package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/evolvespaces/evolve-backend/api/middleware"
	"github.com/evolvespaces/evolve-backend/api/responses"
	"github.com/evolvespaces/evolve-backend/api/validators"
	"github.com/evolvespaces/evolve-backend/internal/expenses"
	pkgerrors "github.com/evolvespaces/evolve-backend/pkg/errors"
	"github.com/evolvespaces/evolve-backend/pkg/logger"
)

const monthLayout = "2006-01"

type expenseCreateRequest struct {
	LocationID  uuid.UUID       `json:"location_id" validate:"required"`
	Category    string          `json:"category" validate:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	IncurredOn  time.Time       `json:"incurred_on"`
}

func ExpenseCreate(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "expenses service unavailable"))
			return
		}

		var body expenseCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !middleware.CanAccessLocation(r.Context(), body.LocationID) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "location out of scope"))
			return
		}

		incurred := body.IncurredOn
		if incurred.IsZero() {
			incurred = time.Now().UTC()
		}

		var createdBy uuid.UUID
		if actor := actorIDFromContext(r); actor != nil {
			createdBy = *actor
		}

		expense, err := svc.Create(r.Context(), expenses.CreateParams{
			LocationID:  body.LocationID,
			Category:    body.Category,
			Description: body.Description,
			Amount:      body.Amount,
			IncurredOn:  incurred,
			CreatedBy:   createdBy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, expense)
	}
}

func ExpenseList(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "expenses service unavailable"))
			return
		}

		locationID, err := validators.ParseQueryUUID(r, "location_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var from, to *time.Time
		if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
			parsed, parseErr := time.Parse(time.RFC3339, raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "from must be RFC3339"))
				return
			}
			from = &parsed
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
			parsed, parseErr := time.Parse(time.RFC3339, raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "to must be RFC3339"))
				return
			}
			to = &parsed
		}

		page, err := paginationFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), expenses.ListQuery{
			LocationID: locationID,
			From:       from,
			To:         to,
			Pagination: page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ExpenseMonthlyTotal sums one location's spend for a calendar month.
func ExpenseMonthlyTotal(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "expenses service unavailable"))
			return
		}

		locationID, err := validators.ParseQueryUUID(r, "location_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if locationID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "location_id required"))
			return
		}

		raw := strings.TrimSpace(r.URL.Query().Get("month"))
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "month required, format YYYY-MM"))
			return
		}
		month, err := time.Parse(monthLayout, raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "month must be YYYY-MM"))
			return
		}

		total, err := svc.MonthlyTotal(r.Context(), *locationID, month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"location_id": locationID,
			"month":       raw,
			"total":       total,
		})
	}
}

func ExpenseDelete(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "expenses service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
