package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/evolvespaces/evolve-backend/api/responses"
	"github.com/evolvespaces/evolve-backend/pkg/enums"
	pkgerrors "github.com/evolvespaces/evolve-backend/pkg/errors"
	"github.com/evolvespaces/evolve-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// LocationScope rejects managers acting on a location outside their
// assignment. Admins pass untouched. The check reads the named chi URL
// parameter; routes without it are unaffected.
func LocationScope(param string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(chi.URLParam(r, param))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			locationID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid location id"))
				return
			}
			if !CanAccessLocation(r.Context(), locationID) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "location outside assignment"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CanAccessLocation reports whether the caller may operate on the location.
func CanAccessLocation(ctx context.Context, locationID uuid.UUID) bool {
	role := enums.UserRole(RoleFromContext(ctx))
	if role == enums.UserRoleAdmin {
		return true
	}
	if role != enums.UserRoleManager {
		return false
	}
	for _, id := range LocationIDsFromContext(ctx) {
		if id == locationID {
			return true
		}
	}
	return false
}
