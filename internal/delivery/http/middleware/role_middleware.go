package middleware

import (
	"fmt"
	"net/http"
	"slices"

	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/pkg/response"
)

// RequireRole rejects sessions whose role is not listed. Must run after Authenticate.
func RequireRole(allowedRoles ...entity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := GetSessionFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Session not found")
				return
			}

			if !slices.Contains(allowedRoles, session.Role) {
				response.Forbidden(w, fmt.Sprintf("Role %s cannot access this resource", session.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

var (
	RequireAdmin      = RequireRole(entity.RoleAdmin)
	RequireDoctor     = RequireRole(entity.RoleDoctor)
	RequirePatient    = RequireRole(entity.RolePatient)
	RequirePharmacist = RequireRole(entity.RolePharmacist)
)
