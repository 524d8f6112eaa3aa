package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/evolvespaces/evolve-backend/api/middleware"
	"github.com/evolvespaces/evolve-backend/api/responses"
	"github.com/evolvespaces/evolve-backend/api/validators"
	"github.com/evolvespaces/evolve-backend/internal/subscriptions"
	"github.com/evolvespaces/evolve-backend/pkg/enums"
	pkgerrors "github.com/evolvespaces/evolve-backend/pkg/errors"
	"github.com/evolvespaces/evolve-backend/pkg/logger"
)

type subscriptionAssignRequest struct {
	MemberID      uuid.UUID       `json:"member_id" validate:"required"`
	LocationID    uuid.UUID       `json:"location_id" validate:"required"`
	SeatNumber    int             `json:"seat_number" validate:"required,gt=0"`
	StartDate     time.Time       `json:"start_date" validate:"required"`
	Duration      string          `json:"duration" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	PaymentMethod string          `json:"payment_method" validate:"required"`
	UPICode       *string         `json:"upi_code"`
	PaidAt        time.Time       `json:"paid_at"`
}

// SubscriptionAssign claims a seat for a member. When the seat is occupied
// the member is queued instead and the caller gets a 200 with the waiting
// list message rather than a 201.
func SubscriptionAssign(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscriptions service unavailable"))
			return
		}

		var body subscriptionAssignRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(body.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		if !middleware.CanAccessLocation(r.Context(), body.LocationID) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "location out of scope"))
			return
		}

		paidAt := body.PaidAt
		if paidAt.IsZero() {
			paidAt = time.Now().UTC()
		}

		result, err := svc.Assign(r.Context(), subscriptions.AssignParams{
			MemberID:      body.MemberID,
			LocationID:    body.LocationID,
			SeatNumber:    body.SeatNumber,
			StartDate:     body.StartDate,
			Duration:      body.Duration,
			Amount:        body.Amount,
			PaymentMethod: method,
			UPICode:       body.UPICode,
			PaidAt:        paidAt,
			ActorID:       actorIDFromContext(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if result.Queued {
			responses.WriteSuccess(w, map[string]any{
				"message":       result.Message,
				"waiting_entry": result.WaitingEntry,
			})
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result.Subscription)
	}
}

// SubscriptionList sweeps expiries before reading, so callers always see
// current statuses.
func SubscriptionList(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscriptions service unavailable"))
			return
		}

		locationID, err := validators.ParseQueryUUID(r, "location_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *enums.SubscriptionStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			parsed, parseErr := enums.ParseSubscriptionStatus(raw)
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

		rows, err := svc.List(r.Context(), subscriptions.ListQuery{
			LocationID: locationID,
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

func SubscriptionGet(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscriptions service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}
