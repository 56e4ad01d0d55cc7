package middleware

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/jwt"
)

// RequireRole allows the request through only when the token's role is one
// of roles.
func RequireRole(roles ...jwt.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := jwt.RoleFromContext(r.Context())
			if !slices.Contains(roles, role) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: role '%s' is not allowed", role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
