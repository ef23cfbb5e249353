package sections

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-sitekit/pkg/testsupport"
)

func setupSectionStorage(t *testing.T, table string) *BunStorage {
	t.Helper()

	sqldb, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	storage := NewBunStorage(db, table, "sections.hero")
	if err := storage.EnsureTable(context.Background()); err != nil {
		t.Fatalf("ensure table: %v", err)
	}
	return storage
}

func TestBunStorageEnsureTableIdempotent(t *testing.T) {
	storage := setupSectionStorage(t, "sections_hero_ensure")
	ctx := context.Background()

	// Re-registering the same type must not fail on the existing table.
	if err := storage.EnsureTable(ctx); err != nil {
		t.Fatalf("ensure table twice: %v", err)
	}

	created, err := storage.Create(ctx, &Instance{
		ID:   uuid.New(),
		Data: map[string]any{"heading": "Welcome"},
	})
	if err != nil {
		t.Fatalf("create after ensure: %v", err)
	}
	if _, err := storage.Get(ctx, created.ID); err != nil {
		t.Fatalf("get after ensure: %v", err)
	}
}

func TestBunStorageRoundTrip(t *testing.T) {
	storage := setupSectionStorage(t, "sections_hero_roundtrip")
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	created, err := storage.Create(ctx, &Instance{
		ID:        uuid.New(),
		Data:      map[string]any{"heading": "Welcome", "cta_url": "/contact"},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Type != "sections.hero" {
		t.Fatalf("storage should stamp the type uid, got %q", created.Type)
	}

	got, err := storage.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Data["heading"] != "Welcome" {
		t.Fatalf("payload lost: %v", got.Data)
	}

	got.Data["heading"] = "Hello"
	got.UpdatedAt = now.Add(time.Hour)
	updated, err := storage.Update(ctx, got)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Data["heading"] != "Hello" {
		t.Fatalf("update lost: %v", updated.Data)
	}

	if err := storage.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := storage.Get(ctx, created.ID); !IsNotFound(err) {
		t.Fatalf("deleted section should be gone, got %v", err)
	}
}

func TestBunStorageMissingRows(t *testing.T) {
	storage := setupSectionStorage(t, "sections_hero_missing")
	ctx := context.Background()
	id := uuid.New()

	if _, err := storage.Get(ctx, id); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := storage.Update(ctx, &Instance{ID: id, Data: map[string]any{}}); !IsNotFound(err) {
		t.Fatalf("expected not found on update, got %v", err)
	}
	if err := storage.Delete(ctx, id); !IsNotFound(err) {
		t.Fatalf("expected not found on delete, got %v", err)
	}
}
