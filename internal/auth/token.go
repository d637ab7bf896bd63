package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AdilMir1433/User-Service/internal/model"
)

// TokenValidity is the fixed lifetime of an issued token.
const TokenValidity = 24 * time.Hour

var (
	ErrMalformedToken = errors.New("malformed_token")
	ErrSignature      = errors.New("invalid_signature")
	ErrExpiredToken   = errors.New("expired_token")
)

// Codec issues and decodes HS512 tokens whose subject is the user's login key.
// It never consults persisted state: a superseded but unexpired token stays
// valid until it expires.
type Codec struct {
	secret []byte
	now    func() time.Time
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret), now: time.Now}
}

// WithClock returns a copy of c that reads the current time from now.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	return &Codec{secret: c.secret, now: now}
}

func (c *Codec) Issue(user model.User) (string, error) {
	now := c.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   user.LoginKey(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenValidity)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString(c.secret)
}

// Inspect verifies the signature and structure of token and returns its claims
// without judging expiry.
func (c *Codec) Inspect(token string) (*jwt.RegisteredClaims, error) {
	if token == "" {
		return nil, ErrMalformedToken
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrSignature
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, ErrMalformedToken
	}
	return claims, nil
}

func (c *Codec) Subject(token string) (string, error) {
	claims, err := c.Inspect(token)
	if err != nil {
		return "", err
	}
	if c.expired(claims) {
		return "", ErrExpiredToken
	}
	return claims.Subject, nil
}

func (c *Codec) Expiry(token string) (time.Time, error) {
	claims, err := c.Inspect(token)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt.Time, nil
}

func (c *Codec) IsExpired(token string) (bool, error) {
	claims, err := c.Inspect(token)
	if err != nil {
		return false, err
	}
	return c.expired(claims), nil
}

// Validate reports whether token was issued for user and has not expired.
// Decode failures are returned as errors alongside false.
func (c *Codec) Validate(token string, user model.User) (bool, error) {
	subject, err := c.Subject(token)
	if err != nil {
		return false, err
	}
	return subject == user.LoginKey(), nil
}

func (c *Codec) expired(claims *jwt.RegisteredClaims) bool {
	return claims.ExpiresAt.Time.Before(c.now())
}

// MaskToken shortens a token for log lines.
func MaskToken(token string) string {
	if len(token) <= 12 {
		return "***"
	}
	return token[:8] + "..." + token[len(token)-4:]
}
