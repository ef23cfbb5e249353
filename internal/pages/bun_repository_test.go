package pages

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-sitekit/internal/database"
	"github.com/goliatone/go-sitekit/internal/sections"
	"github.com/goliatone/go-sitekit/pkg/testsupport"
)

func setupPagesDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	for _, model := range []any{(*Page)(nil), (*PageSectionLink)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("create table for %T: %v", model, err)
		}
	}
	return db
}

func newBunPagesService(t *testing.T, db *bun.DB, table string) (Service, *sections.BunStorage) {
	t.Helper()

	storage := sections.NewBunStorage(db, table, "sections.hero")
	if err := storage.EnsureTable(context.Background()); err != nil {
		t.Fatalf("ensure section table: %v", err)
	}

	registry := sections.NewRegistry()
	if err := registry.Register(sections.Definition{
		UID: "sections.hero", DisplayName: "Hero", Active: true,
	}, storage); err != nil {
		t.Fatalf("register hero: %v", err)
	}

	service := NewService(
		NewBunPageRepository(db),
		NewBunLinkRepository(db),
		registry,
		database.NewBunTxRunner(db),
	)
	return service, storage
}

func TestBunPagesComposition(t *testing.T) {
	db := setupPagesDB(t)
	service, _ := newBunPagesService(t, db, "sections_hero_composition")
	ctx := context.Background()

	page, err := service.CreatePage(ctx, CreatePageRequest{Title: "Bun Composition Home"})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}

	for _, heading := range []string{"Welcome", "Deals"} {
		if _, err := service.AddSection(ctx, page.ID, AddSectionRequest{
			Type: "sections.hero",
			Data: map[string]any{"heading": heading},
		}); err != nil {
			t.Fatalf("add section %s: %v", heading, err)
		}
	}

	view, err := service.FindPage(ctx, page.Slug, FindOptions{Preview: true})
	if err != nil {
		t.Fatalf("find page: %v", err)
	}
	if len(view.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(view.Sections))
	}
	if view.Sections[0].Section.Data["heading"] != "Welcome" {
		t.Fatalf("display order broken: %v", view.Sections[0].Section.Data)
	}

	// Reorder and read back.
	ids := []uuid.UUID{view.Sections[1].LinkID, view.Sections[0].LinkID}
	if err := service.ReorderSections(ctx, page.ID, "", ids); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	view, err = service.FindPage(ctx, page.Slug, FindOptions{Preview: true})
	if err != nil {
		t.Fatalf("find page: %v", err)
	}
	if view.Sections[0].Section.Data["heading"] != "Deals" {
		t.Fatalf("reorder not persisted: %v", view.Sections[0].Section.Data)
	}
}

func TestBunPagesCascadeDelete(t *testing.T) {
	db := setupPagesDB(t)
	service, storage := newBunPagesService(t, db, "sections_hero_cascade")
	ctx := context.Background()

	page, err := service.CreatePage(ctx, CreatePageRequest{Title: "Bun Cascade Home"})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	section, err := service.AddSection(ctx, page.ID, AddSectionRequest{
		Type: "sections.hero",
		Data: map[string]any{"heading": "Goner"},
	})
	if err != nil {
		t.Fatalf("add section: %v", err)
	}

	if err := service.DeletePage(ctx, page.ID); err != nil {
		t.Fatalf("delete page: %v", err)
	}

	if _, err := storage.Get(ctx, section.Section.ID); !sections.IsNotFound(err) {
		t.Fatalf("instance should cascade, got %v", err)
	}
	links, err := NewBunLinkRepository(db).ListByPage(ctx, page.ID)
	if err != nil {
		t.Fatalf("list links: %v", err)
	}
	if len(links) != 0 {
		t.Fatalf("links should cascade, got %d", len(links))
	}
	if _, err := NewBunPageRepository(db).GetByID(ctx, page.ID); !IsNotFound(err) {
		t.Fatalf("page should be gone, got %v", err)
	}
}

func TestBunPagesTransactionalAttach(t *testing.T) {
	db := setupPagesDB(t)
	service, storage := newBunPagesService(t, db, "sections_hero_atomic")
	ctx := context.Background()

	page, err := service.CreatePage(ctx, CreatePageRequest{Title: "Bun Atomic Home"})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	first, err := service.AddSection(ctx, page.ID, AddSectionRequest{
		Type: "sections.hero",
		Data: map[string]any{"heading": "First"},
	})
	if err != nil {
		t.Fatalf("add section: %v", err)
	}

	// Force the link insert to collide so the transaction rolls back.
	fixed := first.LinkID
	failing := NewService(
		NewBunPageRepository(db),
		NewBunLinkRepository(db),
		serviceRegistry(t, storage),
		database.NewBunTxRunner(db),
		WithIDGenerator(func() uuid.UUID { return fixed }),
	)
	if _, err := failing.AddSection(ctx, page.ID, AddSectionRequest{
		Type: "sections.hero",
		Data: map[string]any{"heading": "Doomed"},
	}); err == nil {
		t.Fatal("duplicate link id should fail")
	}

	// The instance created inside the failed transaction must not survive.
	count, err := db.NewSelect().
		Table("sections_hero_atomic").
		Count(ctx)
	if err != nil {
		t.Fatalf("count instances: %v", err)
	}
	if count != 1 {
		t.Fatalf("rolled back instance leaked, got %d rows", count)
	}
}

func serviceRegistry(t *testing.T, storage sections.Storage) *sections.Registry {
	t.Helper()
	registry := sections.NewRegistry()
	if err := registry.Register(sections.Definition{
		UID: "sections.hero", DisplayName: "Hero", Active: true,
	}, storage); err != nil {
		t.Fatalf("register hero: %v", err)
	}
	return registry
}
