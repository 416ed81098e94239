package cache

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/gfarooqi/prayersync-sub001/internal/repo"
)

// SQLite is the durable cross-session tier backed by the repo key/value
// table. It survives process restarts, which is what makes offline fallback
// possible at all.
type SQLite struct {
	db *gorm.DB
}

// NewSQLite wraps an opened and migrated GORM handle.
func NewSQLite(db *gorm.DB) *SQLite {
	return &SQLite{db: db}
}

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := repo.GetValue(ctx, s.db, key)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Set implements Store.
func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	return repo.PutValue(ctx, s.db, key, value)
}

// Invalidate implements Store.
func (s *SQLite) Invalidate(ctx context.Context, key string) error {
	return repo.DeleteValue(ctx, s.db, key)
}
