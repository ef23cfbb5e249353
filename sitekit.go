package sitekit

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-sitekit/internal/content"
	"github.com/goliatone/go-sitekit/internal/database"
	"github.com/goliatone/go-sitekit/internal/domain"
	"github.com/goliatone/go-sitekit/internal/identity"
	"github.com/goliatone/go-sitekit/internal/logging"
	"github.com/goliatone/go-sitekit/internal/pages"
	"github.com/goliatone/go-sitekit/internal/sections"
)

// ContentService exports the content service contract for consumers of the
// sitekit package.
type ContentService = content.Service

// TypeRegistry exports the content type registry contract.
type TypeRegistry = content.TypeRegistry

// PageService exports the page composition service contract.
type PageService = pages.Service

// SectionRegistry exports the section type registry.
type SectionRegistry = sections.Registry

// Read-surface types re-exported for callers.
type (
	Query            = content.Query
	Pagination       = content.Pagination
	PublicationState = content.PublicationState
	Record           = content.Record
	Result           = content.Result
	Status           = domain.Status

	CreateEntryRequest = content.CreateEntryRequest
	UpdateEntryRequest = content.UpdateEntryRequest
	TranslationInput   = content.TranslationInput

	CreateContentTypeInput = content.CreateContentTypeInput
	FieldDefinition        = content.FieldDefinition

	Page              = pages.Page
	PageQuery         = pages.PageQuery
	PageView          = pages.PageView
	PageSection       = pages.PageSection
	CreatePageRequest = pages.CreatePageRequest
	UpdatePageRequest = pages.UpdatePageRequest
	AddSectionRequest = pages.AddSectionRequest
	FindOptions       = pages.FindOptions

	SectionDefinition = sections.Definition
	SectionStorage    = sections.Storage
	SectionInstance   = sections.Instance
)

const (
	StatusDraft     = domain.StatusDraft
	StatusPublished = domain.StatusPublished
	StatusArchived  = domain.StatusArchived

	PublicationStateLive    = content.PublicationStateLive
	PublicationStatePreview = content.PublicationStatePreview
)

// Module is the top level runtime facade: one wired instance of the content
// store and the page composition service sharing locales, section types, and
// storage.
type Module struct {
	config Config

	contentService  content.Service
	typeRegistry    content.TypeRegistry
	pageService     pages.Service
	sectionRegistry *sections.Registry
	locales         content.LocaleRepository
}

// New constructs a module from the configuration, choosing bun-backed or
// in-memory storage from cfg.DB.
func New(cfg Config) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{
		config:          cfg,
		sectionRegistry: sections.NewRegistry(),
	}

	var (
		typeRepo  content.ContentTypeRepository
		entryRepo content.EntryRepository
		pageRepo  pages.PageRepository
		linkRepo  pages.LinkRepository
		txRunner  database.TxRunner
	)

	if cfg.DB != nil {
		m.locales = content.NewBunLocaleRepositoryWithCache(cfg.DB, cfg.Cache, cfg.CacheKeys)
		typeRepo = content.NewBunContentTypeRepositoryWithCache(cfg.DB, cfg.Cache, cfg.CacheKeys)
		entryRepo = content.NewBunEntryRepository(cfg.DB)
		pageRepo = pages.NewBunPageRepositoryWithCache(cfg.DB, cfg.Cache, cfg.CacheKeys)
		linkRepo = pages.NewBunLinkRepository(cfg.DB)
		txRunner = database.NewBunTxRunner(cfg.DB)
	} else {
		m.locales = content.NewMemoryLocaleRepository()
		typeRepo = content.NewMemoryContentTypeRepository()
		entryRepo = content.NewMemoryEntryRepository()
		pageRepo = pages.NewMemoryPageRepository()
		linkRepo = pages.NewMemoryLinkRepository()
		txRunner = database.PassthroughTxRunner{}
	}

	m.typeRegistry = content.NewTypeRegistry(typeRepo)

	contentOpts := []content.ServiceOption{
		content.WithDefaultLocale(cfg.DefaultLocale),
		content.WithLogger(logging.ContentLogger(cfg.Logger)),
	}
	pageOpts := []pages.ServiceOption{
		pages.WithLogger(logging.PagesLogger(cfg.Logger)),
	}
	if cfg.Authorizer != nil {
		contentOpts = append(contentOpts, content.WithAuthorizer(cfg.Authorizer))
		pageOpts = append(pageOpts, pages.WithAuthorizer(cfg.Authorizer))
	}
	if cfg.Revalidate != nil {
		contentOpts = append(contentOpts, content.WithRevalidateHook(cfg.Revalidate))
		pageOpts = append(pageOpts, pages.WithRevalidateHook(cfg.Revalidate))
	}

	m.contentService = content.NewService(entryRepo, m.typeRegistry, m.locales, contentOpts...)
	m.pageService = pages.NewService(pageRepo, linkRepo, m.sectionRegistry, txRunner, pageOpts...)

	return m, nil
}

// Content returns the configured content service.
func (m *Module) Content() ContentService {
	return m.contentService
}

// Types returns the content type registry.
func (m *Module) Types() TypeRegistry {
	return m.typeRegistry
}

// Pages returns the configured page composition service.
func (m *Module) Pages() PageService {
	return m.pageService
}

// Sections returns the section type registry.
func (m *Module) Sections() *SectionRegistry {
	return m.sectionRegistry
}

// RegisterSectionType registers a section type with storage matching the
// module's backend: a dedicated table derived from the uid on bun, an
// in-memory store otherwise.
func (m *Module) RegisterSectionType(ctx context.Context, def SectionDefinition) error {
	var storage sections.Storage
	if m.config.DB != nil {
		bunStorage := sections.NewBunStorage(m.config.DB, sectionTableName(def.UID), def.UID)
		if err := bunStorage.EnsureTable(ctx); err != nil {
			return err
		}
		storage = bunStorage
	} else {
		storage = sections.NewMemoryStorage(def.UID)
	}
	return m.sectionRegistry.Register(def, storage)
}

// RegisterSectionStorage registers a section type backed by caller-supplied
// storage, for types whose instances live outside the module's tables.
func (m *Module) RegisterSectionStorage(def SectionDefinition, storage SectionStorage) error {
	return m.sectionRegistry.Register(def, storage)
}

// EnsureLocale registers a locale if it is not known yet. The id derives from
// the code so repeated bootstraps converge.
func (m *Module) EnsureLocale(ctx context.Context, code, display string, isDefault bool) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return content.ErrLocaleRequired
	}
	if _, err := m.locales.GetByCode(ctx, code); err == nil {
		return nil
	} else if !content.IsNotFound(err) {
		return err
	}

	_, err := m.locales.Create(ctx, &content.Locale{
		ID:        identity.LocaleUUID(code),
		Code:      code,
		Display:   display,
		IsActive:  true,
		IsDefault: isDefault,
		CreatedAt: time.Now(),
	})
	return err
}

// CreateTables creates the module's tables when they do not exist. Intended
// for tests and embedded setups; production deployments run the SQL
// migrations instead.
func (m *Module) CreateTables(ctx context.Context) error {
	if m.config.DB == nil {
		return nil
	}
	models := []any{
		(*content.Locale)(nil),
		(*content.ContentType)(nil),
		(*content.ContentTypeField)(nil),
		(*content.ContentEntry)(nil),
		(*content.ContentTranslation)(nil),
		(*pages.Page)(nil),
		(*pages.PageSectionLink)(nil),
	}
	for _, model := range models {
		if _, err := m.config.DB.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	_, err := m.config.DB.NewCreateIndex().
		Model((*content.ContentTranslation)(nil)).
		Index("idx_content_entry_translations_locale").
		Unique().
		IfNotExists().
		Column("entry_id", "locale_code").
		Exec(ctx)
	return err
}

func sectionTableName(uid string) string {
	return "sections_" + strings.NewReplacer(".", "_", "-", "_").Replace(uid)
}
