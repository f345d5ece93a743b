package app

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/eaas-dev/eaas-backend/internal/logger"
	"github.com/eaas-dev/eaas-backend/internal/services"
)

func TestResolveBucketLocal(t *testing.T) {
	log := testLogger(t)
	cfg := Config{StorageMode: StorageModeLocal, UploadDir: t.TempDir()}

	bucket, err := resolveBucket(context.Background(), log, cfg)
	if err != nil {
		t.Fatalf("resolveBucket(local): %v", err)
	}
	if err := bucket.Upload(context.Background(), "probe/x.csv", bytes.NewReader([]byte("a,b\n"))); err != nil {
		t.Fatalf("Upload on local bucket: %v", err)
	}
}

func TestResolveBucketInvalidMode(t *testing.T) {
	log := testLogger(t)

	_, err := resolveBucket(context.Background(), log, Config{StorageMode: "s3"})
	var boot *StorageBootstrapError
	if !errors.As(err, &boot) {
		t.Fatalf("error type = %T, want *StorageBootstrapError", err)
	}
	if boot.Code != StorageBootstrapErrorInvalidMode {
		t.Fatalf("code = %q, want %q", boot.Code, StorageBootstrapErrorInvalidMode)
	}
	if boot.Mode != "s3" {
		t.Fatalf("mode = %q, want s3", boot.Mode)
	}
}

func TestResolveBucketGCSConnectFailed(t *testing.T) {
	log := testLogger(t)

	orig := newGCSBucketService
	newGCSBucketService = func(context.Context, *logger.Logger) (services.BucketService, error) {
		return nil, errors.New("missing env var GCS_BUCKET_NAME")
	}
	defer func() { newGCSBucketService = orig }()

	_, err := resolveBucket(context.Background(), log, Config{StorageMode: StorageModeGCS})
	var boot *StorageBootstrapError
	if !errors.As(err, &boot) {
		t.Fatalf("error type = %T, want *StorageBootstrapError", err)
	}
	if boot.Code != StorageBootstrapErrorConnectFailed {
		t.Fatalf("code = %q, want %q", boot.Code, StorageBootstrapErrorConnectFailed)
	}
}
