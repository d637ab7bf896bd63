package auth

import (
	"context"

	"github.com/AdilMir1433/User-Service/internal/model"
)

// Identity is the authenticated principal established on a request.
type Identity struct {
	User        model.User
	Token       string
	Authorities []string
}

func (id Identity) HasRole(roles ...model.Role) bool {
	for _, role := range roles {
		if id.User.Role == role {
			return true
		}
	}
	return false
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}
