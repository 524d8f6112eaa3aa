package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/evolvespaces/evolve-backend/api/middleware"
	"github.com/evolvespaces/evolve-backend/api/responses"
	"github.com/evolvespaces/evolve-backend/api/validators"
	"github.com/evolvespaces/evolve-backend/internal/notifications"
	"github.com/evolvespaces/evolve-backend/pkg/enums"
	pkgerrors "github.com/evolvespaces/evolve-backend/pkg/errors"
	"github.com/evolvespaces/evolve-backend/pkg/logger"
)

const defaultNotificationPurgeDays = 30

type notificationCreateRequest struct {
	UserID     *uuid.UUID     `json:"user_id"`
	TargetRole *string        `json:"target_role"`
	Type       string         `json:"type" validate:"required"`
	Title      string         `json:"title" validate:"required"`
	Message    string         `json:"message" validate:"required"`
	Data       map[string]any `json:"data"`
	Priority   string         `json:"priority"`
	Category   string         `json:"category"`
}

func callerIDFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing caller identity")
	}
	return id, nil
}

// NotificationList returns the caller's feed, direct rows plus role
// broadcasts for their role.
func NotificationList(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		userID, err := callerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		unreadOnly, err := validators.ParseQueryBool(r, "unread_only", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var category *enums.NotificationCategory
		if raw := r.URL.Query().Get("category"); raw != "" {
			parsed, parseErr := enums.ParseNotificationCategory(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid category"))
				return
			}
			category = &parsed
		}

		page, err := paginationFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), notifications.ListQuery{
			UserID:     userID,
			Role:       enums.UserRole(middleware.RoleFromContext(r.Context())),
			UnreadOnly: unreadOnly,
			Category:   category,
			Pagination: page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func NotificationMarkRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		userID, err := callerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.MarkRead(r.Context(), userID, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "read"})
	}
}

func NotificationMarkAllRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		userID, err := callerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.MarkAllRead(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"updated": updated})
	}
}

// NotificationCreate publishes a staff announcement, either to one user or
// to every holder of a role.
func NotificationCreate(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		var body notificationCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifType, err := enums.ParseNotificationType(body.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type"))
			return
		}

		params := notifications.CreateParams{
			UserID:  body.UserID,
			Type:    notifType,
			Title:   body.Title,
			Message: body.Message,
			Data:    body.Data,
		}
		if body.TargetRole != nil {
			role, parseErr := enums.ParseUserRole(*body.TargetRole)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid target role"))
				return
			}
			params.TargetRole = &role
		}
		if body.Priority != "" {
			priority, parseErr := enums.ParseNotificationPriority(body.Priority)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid priority"))
				return
			}
			params.Priority = priority
		}
		if body.Category != "" {
			category, parseErr := enums.ParseNotificationCategory(body.Category)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid category"))
				return
			}
			params.Category = category
		}

		created, err := svc.Create(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// NotificationGenerate runs the fact scan on demand.
func NotificationGenerate(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		result, err := svc.Generate(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// NotificationPurge deletes rows older than the requested number of days.
func NotificationPurge(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		days, err := validators.ParseQueryInt(r, "older_than_days", defaultNotificationPurgeDays, 1, 3650)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cutoff := time.Now().UTC().AddDate(0, 0, -days)
		deleted, err := svc.DeleteOlderThan(r.Context(), cutoff)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"deleted": deleted})
	}
}
