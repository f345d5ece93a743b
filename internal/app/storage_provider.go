package app

import (
	"context"
	"fmt"

	"github.com/eaas-dev/eaas-backend/internal/logger"
	"github.com/eaas-dev/eaas-backend/internal/services"
)

type StorageBootstrapErrorCode string

const (
	StorageBootstrapErrorInvalidMode   StorageBootstrapErrorCode = "invalid_mode"
	StorageBootstrapErrorConnectFailed StorageBootstrapErrorCode = "connect_failed"
)

type StorageBootstrapError struct {
	Code  StorageBootstrapErrorCode
	Mode  string
	Cause error
}

func (e *StorageBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf("object storage bootstrap failed (code=%s mode=%q): %v", e.Code, e.Mode, e.Cause)
}

func (e *StorageBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

var newGCSBucketService = services.NewGCSBucketService

// resolveBucket picks the object storage backend from STORAGE_MODE.
func resolveBucket(ctx context.Context, log *logger.Logger, cfg Config) (services.BucketService, error) {
	switch cfg.StorageMode {
	case StorageModeGCS:
		bucket, err := newGCSBucketService(ctx, log)
		if err != nil {
			return nil, &StorageBootstrapError{Code: StorageBootstrapErrorConnectFailed, Mode: string(cfg.StorageMode), Cause: err}
		}
		return bucket, nil

	case StorageModeLocal, "":
		bucket, err := services.NewLocalBucketService(log, cfg.UploadDir, "/uploads")
		if err != nil {
			return nil, &StorageBootstrapError{Code: StorageBootstrapErrorConnectFailed, Mode: string(cfg.StorageMode), Cause: err}
		}
		return bucket, nil

	default:
		return nil, &StorageBootstrapError{
			Code:  StorageBootstrapErrorInvalidMode,
			Mode:  string(cfg.StorageMode),
			Cause: fmt.Errorf("unknown STORAGE_MODE %q", cfg.StorageMode),
		}
	}
}
