// Package media stores and retrieves display pictures on a media host.
package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/AdilMir1433/User-Service/internal/config"
)

var ErrNotFound = errors.New("media_not_found")

type Host interface {
	// Upload stores data and returns the public id used to fetch it later.
	Upload(ctx context.Context, data []byte) (string, error)
	Fetch(ctx context.Context, publicID string) ([]byte, error)
}

// New builds the host selected by cfg.Backend. The returned close function
// releases backend connections.
func New(ctx context.Context, cfg config.MediaConfig) (Host, func(context.Context) error, error) {
	noClose := func(context.Context) error { return nil }
	switch cfg.Backend {
	case "", "none":
		return NoopHost{}, noClose, nil
	case "http":
		if cfg.BaseURL == "" {
			return nil, nil, errors.New("media: MEDIA_BASE_URL required for http backend")
		}
		return NewHTTPHost(cfg.BaseURL, cfg.APIKey, cfg.APISecret, cfg.Timeout), noClose, nil
	case "mongo":
		host, err := NewMongoHost(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoCollection)
		if err != nil {
			return nil, nil, err
		}
		return host, host.Close, nil
	default:
		return nil, nil, fmt.Errorf("media: unknown backend %q", cfg.Backend)
	}
}

// NoopHost keeps nothing; uploads yield an empty public id.
type NoopHost struct{}

func (NoopHost) Upload(context.Context, []byte) (string, error) { return "", nil }

func (NoopHost) Fetch(context.Context, string) ([]byte, error) { return nil, ErrNotFound }
