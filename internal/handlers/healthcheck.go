package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/eaas-dev/eaas-backend/internal/logger"
	"github.com/eaas-dev/eaas-backend/internal/services"
	"github.com/eaas-dev/eaas-backend/internal/store"
)

type HealthHandler struct {
	log        *logger.Logger
	kv         store.KV
	bucket     services.BucketService
	production bool
}

func NewHealthHandler(log *logger.Logger, kv store.KV, bucket services.BucketService, production bool) *HealthHandler {
	return &HealthHandler{
		log:        log.With("handler", "HealthHandler"),
		kv:         kv,
		bucket:     bucket,
		production: production,
	}
}

// Check probes the components concurrently. Production deployments always
// answer 200 so a flaky dependency does not take the instance out of
// rotation; development answers 503 when the store probe fails.
func (hh *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var mu sync.Mutex
	components := map[string]string{}
	record := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			components[name] = err.Error()
			return
		}
		components[name] = "ok"
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := hh.probeStore(gctx)
		record("store", err)
		return err
	})
	if hh.bucket != nil {
		g.Go(func() error {
			_, err := hh.bucket.List(gctx, "healthcheck/")
			record("bucket", err)
			// Bucket trouble is reported but never fails the check.
			return nil
		})
	}
	err := g.Wait()

	status := http.StatusOK
	healthy := err == nil
	if !healthy {
		hh.log.Warn("Health probe failed", "components", components)
		if !hh.production {
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, gin.H{
		"status":     map[bool]string{true: "ok", false: "degraded"}[healthy],
		"components": components,
		"time":       time.Now().UTC().Format(time.RFC3339),
	})
}

func (hh *HealthHandler) probeStore(ctx context.Context) error {
	const probeKey = "eaas_health:probe"
	if err := hh.kv.Set(ctx, probeKey, "ok"); err != nil {
		return fmt.Errorf("store write: %w", err)
	}
	if _, ok, err := hh.kv.Get(ctx, probeKey); err != nil {
		return fmt.Errorf("store read: %w", err)
	} else if !ok {
		return fmt.Errorf("store read: probe key missing")
	}
	return nil
}
