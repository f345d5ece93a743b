package services

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/eaas-dev/eaas-backend/internal/logger"
)

// localBucketService keeps objects on the local filesystem under a base
// directory and serves them from the /uploads static route.
type localBucketService struct {
	log      *logger.Logger
	baseDir  string
	basePath string
}

func NewLocalBucketService(log *logger.Logger, baseDir, publicPath string) (BucketService, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("base directory required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	if publicPath == "" {
		publicPath = "/uploads"
	}
	serviceLog := log.With("service", "BucketService", "mode", "local")
	serviceLog.Info("Object storage initialized", "dir", baseDir)
	return &localBucketService{
		log:      serviceLog,
		baseDir:  baseDir,
		basePath: strings.TrimRight(publicPath, "/"),
	}, nil
}

// pathFor rejects keys that would escape the base directory.
func (bs *localBucketService) pathFor(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", fmt.Errorf("object key required")
	}
	cleaned := filepath.Clean(key)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(bs.baseDir, cleaned), nil
}

func (bs *localBucketService) Upload(_ context.Context, key string, r io.Reader) error {
	path, err := bs.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp object: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close object: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("finalize object: %w", err)
	}
	return nil
}

func (bs *localBucketService) Download(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := bs.pathFor(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open object %q: %w", key, err)
	}
	return f, nil
}

func (bs *localBucketService) List(_ context.Context, prefix string) ([]BucketEntry, error) {
	out := []BucketEntry{}
	err := filepath.WalkDir(bs.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		rel, relErr := filepath.Rel(bs.baseDir, path)
		if relErr != nil {
			return relErr
		}
		key := filepath.ToSlash(rel)
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}
		out = append(out, BucketEntry{Key: key, Size: info.Size(), Updated: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (bs *localBucketService) Delete(_ context.Context, key string) error {
	path, err := bs.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

func (bs *localBucketService) PublicURL(key string) string {
	return bs.basePath + "/" + strings.TrimLeft(strings.TrimSpace(key), "/")
}
