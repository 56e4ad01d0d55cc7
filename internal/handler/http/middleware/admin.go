package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/jwt"
)

// AdminOnly guards every ledger write and the reporting surface.
func AdminOnly(next http.Handler) http.Handler {
	return RequireRole(jwt.RoleAdmin)(next)
}
