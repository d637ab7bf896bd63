package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/AdilMir1433/User-Service/internal/model"
	"github.com/AdilMir1433/User-Service/internal/session"
)

const bearerPrefix = "Bearer "

var (
	ErrUnknownUser = errors.New("unknown_user")
	ErrNoToken     = errors.New("no_token")
	ErrTokenDenied = errors.New("token_denied")
)

type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
}

// Gate establishes the request identity from the bearer header or, failing
// that, from the token held in the session slot. It never rejects a request:
// authorization is left to route guards further down the chain.
type Gate struct {
	codec    *Codec
	users    UserLookup
	sessions session.Store
}

func NewGate(codec *Codec, users UserLookup, sessions session.Store) *Gate {
	return &Gate{codec: codec, users: users, sessions: sessions}
}

func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromContext(r.Context()) != nil {
			gateOutcomes.WithLabelValues("already_authenticated").Inc()
			next.ServeHTTP(w, r)
			return
		}

		token, fromHeader := g.candidate(r)
		id, err := g.authenticate(r.Context(), token)
		if err != nil {
			gateOutcomes.WithLabelValues(outcome(err)).Inc()
			logFailure(err, token)
			next.ServeHTTP(w, r)
			return
		}

		gateOutcomes.WithLabelValues("authenticated").Inc()
		r = r.WithContext(WithIdentity(r.Context(), id))
		if !fromHeader {
			r.Header = r.Header.Clone()
			r.Header.Set("Authorization", bearerPrefix+token)
		}
		next.ServeHTTP(w, r)
	})
}

// candidate picks the token to authenticate with. fromHeader is false when
// the token came from the session fallback.
func (g *Gate) candidate(r *http.Request) (token string, fromHeader bool) {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)), true
	}
	key := session.KeyFromContext(r.Context())
	if key == "" {
		return "", false
	}
	user, err := g.sessions.Get(r.Context(), key)
	if err != nil {
		log.Printf("auth gate: session lookup failed: %v", err)
		return "", false
	}
	if user == nil || user.Token == "" {
		return "", false
	}
	return user.Token, false
}

func (g *Gate) authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	subject, err := g.codec.Subject(token)
	if err != nil {
		return nil, err
	}
	user, err := g.users.GetUserByEmail(ctx, subject)
	if err != nil {
		return nil, errors.Join(ErrUnknownUser, err)
	}
	ok, err := g.codec.Validate(token, user)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTokenDenied
	}
	return &Identity{
		User:        user,
		Token:       token,
		Authorities: []string{user.Role.Authority()},
	}, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrNoToken):
		return "anonymous"
	case errors.Is(err, ErrExpiredToken):
		return "expired"
	case errors.Is(err, ErrSignature):
		return "bad_signature"
	case errors.Is(err, ErrMalformedToken):
		return "malformed"
	case errors.Is(err, ErrUnknownUser):
		return "unknown_user"
	default:
		return "denied"
	}
}

func logFailure(err error, token string) {
	switch {
	case errors.Is(err, ErrNoToken):
		log.Printf("auth gate: no bearer token or session token, continuing anonymously")
	case errors.Is(err, ErrExpiredToken):
		log.Printf("auth gate: token %s is expired", MaskToken(token))
	case errors.Is(err, ErrSignature), errors.Is(err, ErrMalformedToken):
		log.Printf("auth gate: token %s rejected: %v", MaskToken(token), err)
	case errors.Is(err, ErrUnknownUser):
		log.Printf("auth gate: token subject has no account: %v", err)
	default:
		log.Printf("auth gate: validation failed for token %s", MaskToken(token))
	}
}
