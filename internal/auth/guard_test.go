package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdilMir1433/User-Service/internal/model"
)

func TestGuards(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	adminOnly := RequireRole(model.RoleAdmin)(ok)
	anyUser := RequireAuthenticated(ok)

	as := func(role model.Role) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if role == "" {
			return req
		}
		id := &Identity{User: model.User{Role: role}, Authorities: []string{role.Authority()}}
		return req.WithContext(WithIdentity(req.Context(), id))
	}

	cases := []struct {
		name    string
		handler http.Handler
		role    model.Role
		want    int
	}{
		{"anonymous authenticated route", anyUser, "", http.StatusUnauthorized},
		{"student authenticated route", anyUser, model.RoleStudent, http.StatusNoContent},
		{"anonymous admin route", adminOnly, "", http.StatusUnauthorized},
		{"teacher admin route", adminOnly, model.RoleTeacher, http.StatusForbidden},
		{"admin admin route", adminOnly, model.RoleAdmin, http.StatusNoContent},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		tc.handler.ServeHTTP(rec, as(tc.role))
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, rec.Code)
		}
	}
}
