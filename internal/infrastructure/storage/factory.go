package storage

import (
	"context"
	"fmt"

	"github.com/coderr/backend/internal/application/media"
	infraconfig "github.com/coderr/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Driver names accepted in storage.driver
const (
	DriverS3   = "s3"
	DriverStub = "stub"
)

// New builds the configured backend. The S3 bucket is created when missing.
func New(ctx context.Context, cfg infraconfig.StorageConfig, logger *zap.Logger) (media.ObjectStorage, error) {
	switch cfg.Driver {
	case DriverS3:
		s, err := NewS3ObjectStorage(&cfg,
			WithLogger(logger),
			WithPresignExpiration(cfg.PresignExpiration),
		)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("Object storage ready", zap.String("driver", DriverS3), zap.String("bucket", s.Bucket()))
		return s, nil
	case DriverStub, "":
		logger.Info("Object storage ready", zap.String("driver", DriverStub), zap.String("base_url", cfg.PublicBaseURL))
		return NewStubObjectStorage(cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
