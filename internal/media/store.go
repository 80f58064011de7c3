package media

import (
	"context"
	"io"

	"github.com/exidealers/marketplace/config"
	"github.com/pkg/errors"
)

// Store persists listing images and returns the URL they are served from
type Store interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}

// NewStore builds the backend selected by media.backend
func NewStore(ctx context.Context, cfg *config.AppConfig) (Store, error) {
	switch cfg.Media.Backend {
	case "", "local":
		return NewLocalStore(cfg.GetUploadDir(), cfg.Media.URLPrefix)
	case "s3":
		return NewS3Store(ctx, S3Config{
			Bucket:          cfg.Media.S3Bucket,
			Region:          cfg.Media.S3Region,
			Endpoint:        cfg.Media.S3Endpoint,
			AccessKeyID:     cfg.Media.S3AccessKey,
			SecretAccessKey: cfg.Media.S3SecretKey,
			PublicURL:       cfg.Media.S3PublicURL,
		})
	default:
		return nil, errors.Errorf("unsupported media backend %q", cfg.Media.Backend)
	}
}
