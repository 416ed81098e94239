package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gfarooqi/prayersync-sub001/internal/repo"
)

func newSQLiteStore(t *testing.T) *SQLite {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return NewSQLite(db)
}

func TestSQLite_MissThenHit(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("expected clean miss, ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, "k", []byte("payload")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(v) != "payload" {
		t.Fatalf("Get = (%q, %v, %v)", v, ok, err)
	}
}

func TestSQLite_Invalidate(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Invalidate(ctx, "k"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("key survived Invalidate")
	}
}
