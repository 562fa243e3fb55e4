package middleware

import (
	"net/http"

	"github.com/baharkarakas/hbnb-api/internal/api/httpx"
)

// RequireAdmin allows only callers whose token carries is_admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a := ActorFrom(r.Context())
		if !a.Authenticated() {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
			return
		}
		if !a.IsAdmin {
			httpx.WriteError(w, http.StatusForbidden, "forbidden", "admin only", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
