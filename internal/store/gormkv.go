package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CollectionRecord is the single-table layout behind the database-backed KV:
// one row per collection key, value held as a JSON string. Values are
// encoded on write because Postgres rejects non-JSON input to a jsonb
// column and callers store plain strings (verification emails, health
// probes) as well as JSON payloads.
type CollectionRecord struct {
	Key       string         `gorm:"primaryKey;column:key"`
	Value     datatypes.JSON `gorm:"column:value"`
	UpdatedAt time.Time      `gorm:"not null;column:updated_at"`
}

func (CollectionRecord) TableName() string {
	return "collection_record"
}

type GormKV struct {
	db *gorm.DB
}

func NewGormKV(db *gorm.DB) (*GormKV, error) {
	if err := db.AutoMigrate(&CollectionRecord{}); err != nil {
		return nil, err
	}
	return &GormKV{db: db}, nil
}

func (g *GormKV) Get(ctx context.Context, key string) (string, bool, error) {
	var rec CollectionRecord
	err := g.db.WithContext(ctx).First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	var value string
	if err := json.Unmarshal(rec.Value, &value); err != nil {
		return "", false, fmt.Errorf("decode value for key %q: %w", key, err)
	}
	return value, true, nil
}

func (g *GormKV) Set(ctx context.Context, key, value string) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	rec := CollectionRecord{
		Key:       key,
		Value:     datatypes.JSON(encoded),
		UpdatedAt: time.Now().UTC(),
	}
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
}

func (g *GormKV) Remove(ctx context.Context, key string) error {
	return g.db.WithContext(ctx).Delete(&CollectionRecord{}, "key = ?", key).Error
}
