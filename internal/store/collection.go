package store

import (
	"context"
	"encoding/json"

	"github.com/eaas-dev/eaas-backend/internal/logger"
)

// Collection is a named bucket of JSON-serializable records on top of a KV.
// Reads never fail: a missing key is seeded with the default set and the
// seed is persisted so later loads are stable; unreadable or unparseable
// data degrades to the default set with a logged warning.
type Collection[T any] struct {
	kv       KV
	log      *logger.Logger
	name     string
	defaults func() []T
}

func NewCollection[T any](kv KV, log *logger.Logger, name string, defaults func() []T) *Collection[T] {
	if defaults == nil {
		defaults = func() []T { return []T{} }
	}
	return &Collection[T]{
		kv:       kv,
		log:      log.With("collection", name),
		name:     name,
		defaults: defaults,
	}
}

// Key namespaces a collection per user.
func Key(name, userID string) string {
	if userID == "" {
		return name
	}
	return name + ":" + userID
}

func (c *Collection[T]) Load(ctx context.Context) []T {
	raw, ok, err := c.kv.Get(ctx, c.name)
	if err != nil {
		c.log.Warn("Collection read failed, returning defaults", "error", err)
		return c.defaults()
	}
	if !ok {
		seed := c.defaults()
		if err := c.save(ctx, seed); err != nil {
			c.log.Warn("Collection seed persist failed", "error", err)
		}
		return seed
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		c.log.Warn("Collection payload unparseable, returning defaults", "error", err)
		return c.defaults()
	}
	if items == nil {
		items = []T{}
	}
	return items
}

func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	if err := c.save(ctx, items); err != nil {
		c.log.Warn("Collection save failed", "error", err)
		return err
	}
	return nil
}

func (c *Collection[T]) Clear(ctx context.Context) error {
	if err := c.kv.Remove(ctx, c.name); err != nil {
		c.log.Warn("Collection clear failed", "error", err)
		return err
	}
	return nil
}

func (c *Collection[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, c.name, string(raw))
}
