package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type keyCtx struct{}

func WithKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, keyCtx{}, key)
}

// KeyFromContext returns the session key of the request, or "" outside the
// session middleware.
func KeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(keyCtx{}).(string)
	return key
}

// Middleware scopes every request to a session key carried in an HTTP-only
// cookie, minting a new key when the cookie is missing or not a uuid.
func Middleware(cookieName string, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ""
			if cookie, err := r.Cookie(cookieName); err == nil {
				if _, err := uuid.Parse(cookie.Value); err == nil {
					key = cookie.Value
				}
			}
			if key == "" {
				key = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    key,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(WithKey(r.Context(), key)))
		})
	}
}
