package middleware

import (
	"fmt"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/talentpay/payroll-backend-go/internal/handler/http/response"
)

// Roles understood by the role middleware. Admin implies every other role.
const (
	RoleAdmin   = "admin"
	RoleHR      = "hr"
	RoleFinance = "finance"
)

// RequireRole allows the request through when the JWT role matches one of
// the given roles. Admin always passes.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Forbidden(w, "Insufficient permissions")
				return
			}

			role, ok := claims["role"].(string)
			if !ok {
				response.Forbidden(w, "Insufficient permissions")
				return
			}

			if role == RoleAdmin {
				next.ServeHTTP(w, r)
				return
			}
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, fmt.Sprintf("Insufficient permissions: role '%s' is not allowed", role))
		})
	}
}

// AdminOnly restricts a route to administrators.
func AdminOnly(next http.Handler) http.Handler {
	return RequireRole()(next)
}
