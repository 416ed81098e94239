// Package repo implements the persistence layer for the durable cache tier.
// This file provides the key/value repository functions used by the SQLite
// cache store.
//
// All functions are context-aware and accept a *gorm.DB handle. They follow
// the "thin repository" approach: no cache semantics, only storage. TTL and
// freshness decisions happen in the service layer, which owns the entry
// encoding.
//
// Error semantics:
//   - When a key is absent, GetValue returns gorm.ErrRecordNotFound
//     (exported here as ErrNotFound for convenience).
//   - On DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gfarooqi/prayersync-sub001/internal/domain"
)

// ErrNotFound is returned when a requested key does not exist. It aliases
// gorm.ErrRecordNotFound for consistency with callers using errors.Is.
var ErrNotFound = gorm.ErrRecordNotFound

// GetValue fetches the raw value stored under key, or ErrNotFound.
func GetValue(ctx context.Context, db *gorm.DB, key string) ([]byte, error) {
	var rec domain.KVRecord
	if err := db.WithContext(ctx).First(&rec, "key = ?", key).Error; err != nil {
		return nil, err
	}
	return rec.Value, nil
}

// PutValue stores value under key, overwriting any previous value.
func PutValue(ctx context.Context, db *gorm.DB, key string, value []byte) error {
	rec := domain.KVRecord{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&rec).Error
}

// DeleteValue removes key if present. Deleting an absent key is not an error.
func DeleteValue(ctx context.Context, db *gorm.DB, key string) error {
	return db.WithContext(ctx).Delete(&domain.KVRecord{}, "key = ?", key).Error
}
