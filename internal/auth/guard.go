package auth

import (
	"encoding/json"
	"net/http"

	"github.com/AdilMir1433/User-Service/internal/model"
)

// RequireAuthenticated rejects requests the gate left anonymous.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromContext(r.Context()) == nil {
			denyRequest(w, http.StatusUnauthorized, "missing_token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole admits authenticated requests whose user holds one of roles.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			if id == nil {
				denyRequest(w, http.StatusUnauthorized, "missing_token")
				return
			}
			if !id.HasRole(roles...) {
				denyRequest(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func denyRequest(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}
