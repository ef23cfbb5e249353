package sitekit_test

import (
	"context"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	sitekit "github.com/goliatone/go-sitekit"
	"github.com/goliatone/go-sitekit/pkg/testsupport"
)

func newModule(t *testing.T, withDB bool) *sitekit.Module {
	t.Helper()

	cfg := sitekit.DefaultConfig()
	if withDB {
		sqldb, err := testsupport.NewSQLiteMemoryDB()
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		db := bun.NewDB(sqldb, sqlitedialect.New())
		t.Cleanup(func() { db.Close() })
		cfg.DB = db
	}

	module, err := sitekit.New(cfg)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	if err := module.CreateTables(context.Background()); err != nil {
		t.Fatalf("create tables: %v", err)
	}
	return module
}

func seedModule(t *testing.T, module *sitekit.Module, typeName string) {
	t.Helper()
	ctx := context.Background()

	for _, locale := range []struct {
		code, display string
		isDefault     bool
	}{
		{"en", "English", true},
		{"es", "Spanish", false},
	} {
		if err := module.EnsureLocale(ctx, locale.code, locale.display, locale.isDefault); err != nil {
			t.Fatalf("ensure locale %s: %v", locale.code, err)
		}
	}

	if _, err := module.Types().CreateContentType(ctx, sitekit.CreateContentTypeInput{
		Name: typeName,
		Fields: []sitekit.FieldDefinition{
			{Name: "title", Type: "text", Translatable: true, Required: true},
			{Name: "price", Type: "decimal"},
		},
	}); err != nil {
		t.Fatalf("create content type: %v", err)
	}
}

func TestModuleContentFlow(t *testing.T) {
	module := newModule(t, true)
	seedModule(t, module, "module_flow_product")
	ctx := context.Background()

	record, err := module.Content().Create(ctx, "module_flow_product", sitekit.CreateEntryRequest{
		Data: map[string]any{"price": 9.5},
		Translations: []sitekit.TranslationInput{
			{Locale: "en", Data: map[string]any{"title": "Mug"}},
			{Locale: "es", Data: map[string]any{"title": "Taza"}},
		},
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}

	if _, err := module.Content().SetStatus(ctx, record.ID, "published"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	result, err := module.Content().Find(ctx, "module_flow_product", sitekit.Query{
		Locale:           "es",
		PublicationState: sitekit.PublicationStateLive,
	})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(result.Data) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Data))
	}
	if result.Data[0].Data["title"] != "Taza" {
		t.Fatalf("expected Spanish overlay, got %v", result.Data[0].Data)
	}
}

func TestModulePageFlow(t *testing.T) {
	module := newModule(t, true)
	ctx := context.Background()

	if err := module.RegisterSectionType(ctx, sitekit.SectionDefinition{
		UID:         "sections.hero",
		DisplayName: "Hero",
		Active:      true,
		Schema:      `{"type":"object","required":["heading"]}`,
	}); err != nil {
		t.Fatalf("register section type: %v", err)
	}

	page, err := module.Pages().CreatePage(ctx, sitekit.CreatePageRequest{Title: "Module Flow Home"})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	if _, err := module.Pages().AddSection(ctx, page.ID, sitekit.AddSectionRequest{
		Type: "sections.hero",
		Data: map[string]any{"heading": "Welcome"},
	}); err != nil {
		t.Fatalf("add section: %v", err)
	}
	if _, err := module.Pages().PublishPage(ctx, page.ID); err != nil {
		t.Fatalf("publish page: %v", err)
	}

	view, err := module.Pages().FindPage(ctx, page.Slug, sitekit.FindOptions{})
	if err != nil {
		t.Fatalf("find page: %v", err)
	}
	if len(view.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(view.Sections))
	}
	if view.Sections[0].Section.Data["heading"] != "Welcome" {
		t.Fatalf("payload lost: %v", view.Sections[0].Section.Data)
	}
}

func TestModuleMemoryBackend(t *testing.T) {
	module := newModule(t, false)
	seedModule(t, module, "memory_backend_product")
	ctx := context.Background()

	if err := module.RegisterSectionType(ctx, sitekit.SectionDefinition{
		UID: "sections.quote", DisplayName: "Quote", Active: true,
	}); err != nil {
		t.Fatalf("register section type: %v", err)
	}

	record, err := module.Content().Create(ctx, "memory_backend_product", sitekit.CreateEntryRequest{
		Data: map[string]any{"title": "Sticker", "price": 1.5},
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	got, err := module.Content().FindOne(ctx, "memory_backend_product", record.ID, sitekit.Query{
		Locale:           "en",
		PublicationState: sitekit.PublicationStatePreview,
	})
	if err != nil {
		t.Fatalf("find one: %v", err)
	}
	if got.Data["title"] != "Sticker" {
		t.Fatalf("default locale routing broken: %v", got.Data)
	}

	page, err := module.Pages().CreatePage(ctx, sitekit.CreatePageRequest{Title: "Memory Home"})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	if _, err := module.Pages().AddSection(ctx, page.ID, sitekit.AddSectionRequest{
		Type: "sections.quote",
		Data: map[string]any{"text": "Great!"},
	}); err != nil {
		t.Fatalf("add section: %v", err)
	}
	view, err := module.Pages().FindPage(ctx, page.ID.String(), sitekit.FindOptions{Preview: true})
	if err != nil {
		t.Fatalf("find page: %v", err)
	}
	if len(view.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(view.Sections))
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := sitekit.Config{}
	if _, err := sitekit.New(cfg); err == nil {
		t.Fatal("empty default locale should fail")
	}
}
