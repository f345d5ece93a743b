package app

import (
	"fmt"

	"github.com/eaas-dev/eaas-backend/internal/db"
	"github.com/eaas-dev/eaas-backend/internal/logger"
	"github.com/eaas-dev/eaas-backend/internal/store"
)

type StoreBootstrapErrorCode string

const (
	StoreBootstrapErrorInvalidDriver StoreBootstrapErrorCode = "invalid_driver"
	StoreBootstrapErrorConnectFailed StoreBootstrapErrorCode = "connect_failed"
	StoreBootstrapErrorMigrateFailed StoreBootstrapErrorCode = "migrate_failed"
)

type StoreBootstrapError struct {
	Code   StoreBootstrapErrorCode
	Driver string
	Cause  error
}

func (e *StoreBootstrapError) Error() string {
	if e == nil {
		return "store bootstrap failed"
	}
	return fmt.Sprintf("store bootstrap failed (code=%s driver=%q): %v", e.Code, e.Driver, e.Cause)
}

func (e *StoreBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

var newPostgresService = db.NewPostgresService

// resolveStore picks the collection store backend from STORE_DRIVER.
func resolveStore(log *logger.Logger, cfg Config) (store.KV, error) {
	switch cfg.StoreDriver {
	case StoreDriverMemory, "":
		log.Info("Using in-memory collection store")
		return store.NewMemoryKV(), nil

	case StoreDriverFile:
		kv, err := store.NewFileKV(cfg.StoreFilePath)
		if err != nil {
			return nil, &StoreBootstrapError{Code: StoreBootstrapErrorConnectFailed, Driver: string(cfg.StoreDriver), Cause: err}
		}
		log.Info("Using file collection store", "path", cfg.StoreFilePath)
		return kv, nil

	case StoreDriverRedis:
		kv, err := store.NewRedisKV(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, &StoreBootstrapError{Code: StoreBootstrapErrorConnectFailed, Driver: string(cfg.StoreDriver), Cause: err}
		}
		log.Info("Using redis collection store", "addr", cfg.RedisAddr)
		return kv, nil

	case StoreDriverPostgres:
		pg, err := newPostgresService(log)
		if err != nil {
			return nil, &StoreBootstrapError{Code: StoreBootstrapErrorConnectFailed, Driver: string(cfg.StoreDriver), Cause: err}
		}
		if err := pg.AutoMigrateAll(); err != nil {
			return nil, &StoreBootstrapError{Code: StoreBootstrapErrorMigrateFailed, Driver: string(cfg.StoreDriver), Cause: err}
		}
		kv, err := store.NewGormKV(pg.DB())
		if err != nil {
			return nil, &StoreBootstrapError{Code: StoreBootstrapErrorConnectFailed, Driver: string(cfg.StoreDriver), Cause: err}
		}
		log.Info("Using postgres collection store")
		return kv, nil

	default:
		return nil, &StoreBootstrapError{
			Code:   StoreBootstrapErrorInvalidDriver,
			Driver: string(cfg.StoreDriver),
			Cause:  fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver),
		}
	}
}
