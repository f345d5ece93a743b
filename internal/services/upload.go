package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eaas-dev/eaas-backend/internal/logger"
	"github.com/eaas-dev/eaas-backend/internal/store"
	"github.com/eaas-dev/eaas-backend/internal/types"
)

const (
	uploadsCollection = "eaas_uploads"

	// MaxDatasetSize caps a single dataset upload.
	MaxDatasetSize = 50 << 20
)

var allowedDatasetExtensions = map[string]bool{
	".csv":   true,
	".json":  true,
	".jsonl": true,
}

// UploadService stores dataset files: bytes in the bucket, metadata in the
// per-user uploads collection.
type UploadService interface {
	Store(ctx context.Context, userID, filename string, size int64, r io.Reader) (*types.DatasetFile, error)
	List(ctx context.Context, userID string) []types.DatasetFile
	Delete(ctx context.Context, userID, id string) (bool, error)
}

type uploadService struct {
	kv     store.KV
	log    *logger.Logger
	bucket BucketService
	now    func() time.Time
}

func NewUploadService(kv store.KV, log *logger.Logger, bucket BucketService) UploadService {
	return &uploadService{
		kv:     kv,
		log:    log.With("service", "UploadService"),
		bucket: bucket,
		now:    time.Now,
	}
}

func (us *uploadService) collection(userID string) *store.Collection[types.DatasetFile] {
	return store.NewCollection[types.DatasetFile](us.kv, us.log, store.Key(uploadsCollection, userID), func() []types.DatasetFile {
		return []types.DatasetFile{}
	})
}

// ValidateDatasetFilename checks extension membership; size is checked
// separately so multipart handlers can reject before reading the body.
func ValidateDatasetFilename(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedDatasetExtensions[ext] {
		return fmt.Errorf("unsupported file type %q: use .csv, .json or .jsonl", ext)
	}
	return nil
}

func (us *uploadService) Store(ctx context.Context, userID, filename string, size int64, r io.Reader) (*types.DatasetFile, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, fmt.Errorf("filename required")
	}
	if err := ValidateDatasetFilename(filename); err != nil {
		return nil, err
	}
	if size > MaxDatasetSize {
		return nil, fmt.Errorf("file exceeds the %dMB limit", MaxDatasetSize>>20)
	}

	id := uuid.NewString()
	key := fmt.Sprintf("datasets/%s/%s%s", userID, id, strings.ToLower(filepath.Ext(filename)))

	// Guard against callers that understate size.
	limited := io.LimitReader(r, MaxDatasetSize+1)
	counter := &countingReader{r: limited}
	if err := us.bucket.Upload(ctx, key, counter); err != nil {
		return nil, fmt.Errorf("store dataset: %w", err)
	}
	if counter.n > MaxDatasetSize {
		if delErr := us.bucket.Delete(ctx, key); delErr != nil {
			us.log.Warn("Oversize dataset not removed", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("file exceeds the %dMB limit", MaxDatasetSize>>20)
	}

	file := types.DatasetFile{
		ID:         id,
		Name:       filename,
		Key:        key,
		URL:        us.bucket.PublicURL(key),
		SizeBytes:  counter.n,
		UploadedAt: types.Timestamp(us.now()),
	}

	col := us.collection(userID)
	items := col.Load(ctx)
	items = append(items, file)
	if err := col.Save(ctx, items); err != nil {
		us.log.Warn("Upload metadata not persisted", "upload_id", id, "error", err)
	}
	return &file, nil
}

func (us *uploadService) List(ctx context.Context, userID string) []types.DatasetFile {
	return us.collection(userID).Load(ctx)
}

func (us *uploadService) Delete(ctx context.Context, userID, id string) (bool, error) {
	col := us.collection(userID)
	items := col.Load(ctx)
	kept := items[:0]
	var removed *types.DatasetFile
	for _, f := range items {
		if f.ID == id {
			found := f
			removed = &found
			continue
		}
		kept = append(kept, f)
	}
	if removed == nil {
		return false, nil
	}
	if err := col.Save(ctx, kept); err != nil {
		return false, err
	}
	if err := us.bucket.Delete(ctx, removed.Key); err != nil {
		us.log.Warn("Dataset object not removed", "key", removed.Key, "error", err)
	}
	return true, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
