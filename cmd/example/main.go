package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/uptrace/bun"

	sitekit "github.com/goliatone/go-sitekit"
	"github.com/goliatone/go-sitekit/internal/database"
	"github.com/goliatone/go-sitekit/internal/logging/gologger"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("example: %v", err)
	}
}

// openDB picks Postgres when SITEKIT_DATABASE_URL is set and otherwise runs
// against an in-memory sqlite database.
func openDB() (*bun.DB, error) {
	if dsn := os.Getenv("SITEKIT_DATABASE_URL"); dsn != "" {
		return database.OpenPostgres(dsn)
	}
	return database.OpenSQLite("file::memory:?cache=shared")
}

func run(ctx context.Context) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := gologger.NewProvider(gologger.Config{Level: "info", Format: "console"})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	cfg := sitekit.DefaultConfig()
	cfg.DB = db
	cfg.Logger = provider
	cfg.Revalidate = func(_ context.Context, tags ...string) {
		fmt.Fprintf(os.Stderr, "revalidate: %v\n", tags)
	}

	module, err := sitekit.New(cfg)
	if err != nil {
		return err
	}
	if err := module.CreateTables(ctx); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	if err := module.EnsureLocale(ctx, "en", "English", true); err != nil {
		return err
	}
	if err := module.EnsureLocale(ctx, "es", "Spanish", false); err != nil {
		return err
	}

	// A schema-driven content type.
	if _, err := module.Types().CreateContentType(ctx, sitekit.CreateContentTypeInput{
		Name:        "treatment",
		DisplayName: "Treatment",
		Fields: []sitekit.FieldDefinition{
			{Name: "title", Type: "text", Translatable: true, Required: true},
			{Name: "description", Type: "textarea", Translatable: true},
			{Name: "price", Type: "decimal"},
			{Name: "duration_minutes", Type: "number"},
		},
	}); err != nil {
		return fmt.Errorf("create content type: %w", err)
	}

	entry, err := module.Content().Create(ctx, "treatment", sitekit.CreateEntryRequest{
		Data: map[string]any{"price": 65.0, "duration_minutes": 45},
		Translations: []sitekit.TranslationInput{
			{Locale: "en", Data: map[string]any{"title": "Deep Tissue Massage"}},
			{Locale: "es", Data: map[string]any{"title": "Masaje de Tejido Profundo"}},
		},
	})
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	if _, err := module.Content().SetStatus(ctx, entry.ID, "published"); err != nil {
		return fmt.Errorf("publish entry: %w", err)
	}

	treatments, err := module.Content().Find(ctx, "treatment", sitekit.Query{
		Filters:          map[string]any{"price": map[string]any{"$lte": 100.0}},
		Sort:             []string{"price:asc"},
		Locale:           "es",
		PublicationState: sitekit.PublicationStateLive,
	})
	if err != nil {
		return fmt.Errorf("find treatments: %w", err)
	}
	printJSON("treatments (es, live)", treatments)

	// A composed page.
	if err := module.RegisterSectionType(ctx, sitekit.SectionDefinition{
		UID:         "sections.hero",
		DisplayName: "Hero",
		Category:    "marketing",
		Active:      true,
		Schema: `{
			"type": "object",
			"required": ["heading"],
			"properties": {
				"heading": {"type": "string"},
				"cta_url": {"type": "string"}
			}
		}`,
	}); err != nil {
		return fmt.Errorf("register section type: %w", err)
	}

	page, err := module.Pages().CreatePage(ctx, sitekit.CreatePageRequest{
		Title: "Home",
		Metadata: map[string]any{
			"seo_description": "Family-run massage studio",
		},
	})
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	if _, err := module.Pages().AddSection(ctx, page.ID, sitekit.AddSectionRequest{
		Type: "sections.hero",
		Data: map[string]any{"heading": "Relax. You earned it.", "cta_url": "/book"},
	}); err != nil {
		return fmt.Errorf("add section: %w", err)
	}
	if _, err := module.Pages().PublishPage(ctx, page.ID); err != nil {
		return fmt.Errorf("publish page: %w", err)
	}

	view, err := module.Pages().FindPage(ctx, "home", sitekit.FindOptions{})
	if err != nil {
		return fmt.Errorf("find page: %w", err)
	}
	printJSON("page view", view)

	return nil
}

func printJSON(label string, value any) {
	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		fmt.Printf("%s: <marshal error: %v>\n", label, err)
		return
	}
	fmt.Printf("== %s ==\n%s\n", label, raw)
}
