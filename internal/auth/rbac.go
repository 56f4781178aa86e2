package auth

import (
	"log/slog"
	"net/http"
)

// RBAC gates routes on the principal's role. Per-record rules (self-approval,
// direct-report scoping) are evaluated in the services, not here.
type RBAC struct {
	logger *slog.Logger
}

func NewRBAC(logger *slog.Logger) *RBAC {
	return &RBAC{logger: logger}
}

func (a *RBAC) require(next http.Handler, roles ...Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok || principal == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		for _, role := range roles {
			if principal.Role == role {
				next.ServeHTTP(w, r)
				return
			}
		}

		a.logger.WarnContext(r.Context(), "access denied: insufficient role",
			"user_id", principal.ID,
			"role", principal.Role,
			"required", roles)
		http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
	})
}

func (a *RBAC) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return a.require(next, RoleAdmin)
	}
}

func (a *RBAC) RequireReviewer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return a.require(next, RoleSupervisor, RoleAdmin)
	}
}
