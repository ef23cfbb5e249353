package content

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-sitekit/pkg/testsupport"
)

func setupContentDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	models := []any{
		(*Locale)(nil),
		(*ContentType)(nil),
		(*ContentTypeField)(nil),
		(*ContentEntry)(nil),
		(*ContentTranslation)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("create table for %T: %v", model, err)
		}
	}
	if _, err := db.NewCreateIndex().
		Model((*ContentTranslation)(nil)).
		Index("idx_content_entry_translations_locale").
		Unique().
		IfNotExists().
		Column("entry_id", "locale_code").
		Exec(ctx); err != nil {
		t.Fatalf("create translation index: %v", err)
	}
	return db
}

// newBunContentService wires the full content stack over sqlite so the query
// translation runs against real JSON documents.
func newBunContentService(t *testing.T, db *bun.DB) (Service, TypeRegistry) {
	t.Helper()

	locales := NewBunLocaleRepository(db)
	ctx := context.Background()
	for _, code := range []string{"en", "es"} {
		_, err := locales.Create(ctx, &Locale{ID: uuid.New(), Code: code, Display: code, IsActive: true})
		if err != nil {
			t.Fatalf("seed locale %s: %v", code, err)
		}
	}

	// The shared sqlite cache persists across tests, so each test registers
	// a uniquely named type and scopes every read through it.
	registry := NewTypeRegistry(NewBunContentTypeRepository(db))
	service := NewService(NewBunEntryRepository(db), registry, locales)
	return service, registry
}

func defineBunType(t *testing.T, registry TypeRegistry, name string) {
	t.Helper()
	_, err := registry.CreateContentType(context.Background(), CreateContentTypeInput{
		Name: name,
		Fields: []FieldDefinition{
			{Name: "title", Type: "text", Translatable: true, Required: true},
			{Name: "price", Type: "decimal"},
			{Name: "sku", Type: "text"},
		},
	})
	if err != nil {
		t.Fatalf("create content type: %v", err)
	}
}

func TestBunContentRoundTrip(t *testing.T) {
	db := setupContentDB(t)
	service, registry := newBunContentService(t, db)
	defineBunType(t, registry, "bun_roundtrip_item")
	ctx := context.Background()

	record, err := service.Create(ctx, "bun_roundtrip_item", CreateEntryRequest{
		Data: map[string]any{"price": 19.5, "sku": "CH-01"},
		Translations: []TranslationInput{
			{Locale: "en", Data: map[string]any{"title": "Chair"}},
			{Locale: "es", Data: map[string]any{"title": "Silla"}},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := service.FindOne(ctx, "bun_roundtrip_item", record.ID, Query{
		Locale:           "es",
		PublicationState: PublicationStatePreview,
	})
	if err != nil {
		t.Fatalf("find one: %v", err)
	}
	if got.Data["title"] != "Silla" {
		t.Fatalf("expected Spanish overlay, got %v", got.Data)
	}
	if got.Data["sku"] != "CH-01" {
		t.Fatalf("base data lost: %v", got.Data)
	}
}

func TestBunContentJSONFilters(t *testing.T) {
	db := setupContentDB(t)
	service, registry := newBunContentService(t, db)
	defineBunType(t, registry, "bun_filter_item")
	ctx := context.Background()

	prices := map[string]float64{"AA-1": 5, "AA-2": 15, "AA-3": 25, "AA-4": 35}
	for sku, price := range prices {
		_, err := service.Create(ctx, "bun_filter_item", CreateEntryRequest{
			Data: map[string]any{"price": price, "sku": sku},
			Translations: []TranslationInput{
				{Locale: "en", Data: map[string]any{"title": "Widget " + sku}},
			},
		})
		if err != nil {
			t.Fatalf("create %s: %v", sku, err)
		}
	}

	result, err := service.Find(ctx, "bun_filter_item", Query{
		Filters: map[string]any{"price": map[string]any{"$gte": 10.0, "$lte": 30.0}},
		Sort:    []string{"price:desc"},
	})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(result.Data) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(result.Data))
	}
	if result.Data[0].Data["sku"] != "AA-3" {
		t.Fatalf("numeric sort over json broken: %v", result.Data[0].Data)
	}

	inResult, err := service.Find(ctx, "bun_filter_item", Query{
		Filters: map[string]any{"sku": map[string]any{"$in": []any{"AA-1", "AA-4"}}},
	})
	if err != nil {
		t.Fatalf("find $in: %v", err)
	}
	if len(inResult.Data) != 2 {
		t.Fatalf("expected 2 matches for $in, got %d", len(inResult.Data))
	}

	n, err := service.Count(ctx, "bun_filter_item", map[string]any{
		"sku": map[string]any{"$startsWith": "aa-"},
	})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 4 {
		t.Fatalf("case-insensitive $startsWith should match all, got %d", n)
	}
}

func TestBunContentContainsLiteralWildcards(t *testing.T) {
	db := setupContentDB(t)
	service, registry := newBunContentService(t, db)
	defineBunType(t, registry, "bun_wildcard_item")
	ctx := context.Background()

	for sku, title := range map[string]string{"DD-1": "100% cotton", "DD-2": "pure cotton"} {
		_, err := service.Create(ctx, "bun_wildcard_item", CreateEntryRequest{
			Data: map[string]any{"sku": sku},
			Translations: []TranslationInput{
				{Locale: "en", Data: map[string]any{"title": title}},
			},
		})
		if err != nil {
			t.Fatalf("create %s: %v", sku, err)
		}
	}

	// LIKE metacharacters in the needle match literally, as in the
	// memory backend.
	result, err := service.Find(ctx, "bun_wildcard_item", Query{
		Filters: map[string]any{"title": map[string]any{"$contains": "100%"}},
	})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(result.Data) != 1 {
		t.Fatalf("expected one literal match, got %d", len(result.Data))
	}
	if result.Data[0].Data["sku"] != "DD-1" {
		t.Fatalf("wrong row matched: %v", result.Data[0].Data)
	}

	none, err := service.Find(ctx, "bun_wildcard_item", Query{
		Filters: map[string]any{"sku": map[string]any{"$contains": "DD_"}},
	})
	if err != nil {
		t.Fatalf("find underscore: %v", err)
	}
	if len(none.Data) != 0 {
		t.Fatalf("underscore should not act as a wildcard, got %d matches", len(none.Data))
	}
}

func TestBunContentTranslatableFilter(t *testing.T) {
	db := setupContentDB(t)
	service, registry := newBunContentService(t, db)
	defineBunType(t, registry, "bun_translated_item")
	ctx := context.Background()

	titles := map[string]string{"silla de madera": "BB-1", "mesa": "BB-2"}
	for title, sku := range titles {
		_, err := service.Create(ctx, "bun_translated_item", CreateEntryRequest{
			Data: map[string]any{"sku": sku},
			Translations: []TranslationInput{
				{Locale: "es", Data: map[string]any{"title": title}},
				{Locale: "en", Data: map[string]any{"title": "placeholder"}},
			},
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	result, err := service.Find(ctx, "bun_translated_item", Query{
		Filters: map[string]any{"title": map[string]any{"$contains": "SILLA"}},
		Locale:  "es",
	})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(result.Data) != 1 {
		t.Fatalf("expected one match, got %d", len(result.Data))
	}
	if result.Data[0].Data["sku"] != "BB-1" {
		t.Fatalf("wrong row matched: %v", result.Data[0].Data)
	}
}

func TestBunContentUpdateAndDelete(t *testing.T) {
	db := setupContentDB(t)
	service, registry := newBunContentService(t, db)
	defineBunType(t, registry, "bun_mutable_item")
	ctx := context.Background()

	record, err := service.Create(ctx, "bun_mutable_item", CreateEntryRequest{
		Data: map[string]any{"price": 10.0, "sku": "CC-1"},
		Translations: []TranslationInput{
			{Locale: "en", Data: map[string]any{"title": "Lamp"}},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := service.Update(ctx, record.ID, UpdateEntryRequest{
		Data: map[string]any{"price": 12.5},
		Translations: []TranslationInput{
			{Locale: "es", Data: map[string]any{"title": "Lampara"}},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Data["price"] != 12.5 || updated.Data["sku"] != "CC-1" {
		t.Fatalf("partial update broken: %v", updated.Data)
	}

	es, err := service.FindOne(ctx, "bun_mutable_item", record.ID, Query{
		Locale:           "es",
		PublicationState: PublicationStatePreview,
	})
	if err != nil {
		t.Fatalf("find one: %v", err)
	}
	if es.Data["title"] != "Lampara" {
		t.Fatalf("upserted translation missing: %v", es.Data)
	}

	if err := service.Delete(ctx, record.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := service.FindOne(ctx, "bun_mutable_item", record.ID, Query{
		PublicationState: PublicationStatePreview,
	}); !IsNotFound(err) {
		t.Fatalf("deleted entry should be gone, got %v", err)
	}

	count, err := db.NewSelect().
		Model((*ContentTranslation)(nil)).
		Where("entry_id = ?", record.ID).
		Count(ctx)
	if err != nil {
		t.Fatalf("count translations: %v", err)
	}
	if count != 0 {
		t.Fatalf("translations should cascade on delete, got %d rows", count)
	}
}
