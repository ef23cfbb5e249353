package pages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitekit/internal/database"
)

// PageRepository abstracts page storage.
type PageRepository interface {
	Create(ctx context.Context, page *Page) (*Page, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Page, error)
	GetBySlug(ctx context.Context, slug string) (*Page, error)
	List(ctx context.Context, q PageQuery) ([]*Page, int, error)
	Update(ctx context.Context, page *Page) (*Page, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LinkRepository abstracts the page/section junction rows.
type LinkRepository interface {
	Create(ctx context.Context, link *PageSectionLink) (*PageSectionLink, error)
	Get(ctx context.Context, id uuid.UUID) (*PageSectionLink, error)
	ListByPage(ctx context.Context, pageID uuid.UUID) ([]*PageSectionLink, error)
	MaxOrder(ctx context.Context, pageID uuid.UUID, slot string) (int, error)
	UpdateOrder(ctx context.Context, pageID uuid.UUID, orders map[uuid.UUID]int) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByPage(ctx context.Context, pageID uuid.UUID) error
}

// BunPageRepository stores pages through go-repository-bun.
type BunPageRepository struct {
	db   *bun.DB
	repo repository.Repository[*Page]
}

func NewBunPageRepository(db *bun.DB) *BunPageRepository {
	return NewBunPageRepositoryWithCache(db, nil, nil)
}

// NewBunPageRepositoryWithCache constructs a PageRepository with optional caching.
func NewBunPageRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunPageRepository {
	base := NewPageModelRepository(db)
	if cacheService != nil && keySerializer != nil {
		base = repositorycache.New(base, cacheService, keySerializer)
	}
	return &BunPageRepository{db: db, repo: base}
}

func (r *BunPageRepository) Create(ctx context.Context, page *Page) (*Page, error) {
	if _, err := database.From(ctx, r.db).NewInsert().Model(page).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert page: %w", err)
	}
	return page, nil
}

func (r *BunPageRepository) GetByID(ctx context.Context, id uuid.UUID) (*Page, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "page", id.String())
	}
	return result, nil
}

func (r *BunPageRepository) GetBySlug(ctx context.Context, slug string) (*Page, error) {
	result, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, "page", slug)
	}
	return result, nil
}

// List returns pages newest first plus the total match count.
func (r *BunPageRepository) List(ctx context.Context, q PageQuery) ([]*Page, int, error) {
	page, pageSize := normalizePaging(q)
	records, total, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(sq *bun.SelectQuery) *bun.SelectQuery {
			if q.Status != "" {
				sq = sq.Where("?TableAlias.status = ?", string(q.Status))
			}
			if q.Locale != "" {
				sq = sq.Where("LOWER(?TableAlias.locale_code) = LOWER(?)", q.Locale)
			}
			return sq.OrderExpr("?TableAlias.created_at DESC").
				OrderExpr("?TableAlias.id DESC")
		}),
		repository.SelectPaginate(pageSize, (page-1)*pageSize),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("page repository error: %w", err)
	}
	return records, total, nil
}

func (r *BunPageRepository) Update(ctx context.Context, page *Page) (*Page, error) {
	res, err := database.From(ctx, r.db).NewUpdate().
		Model(page).
		Column("slug", "title", "short_name", "status", "locale_code", "metadata", "published_at", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update page: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, &NotFoundError{Resource: "page", Key: page.ID.String()}
	}
	return page, nil
}

func (r *BunPageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := database.From(ctx, r.db).NewDelete().
		Model((*Page)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return &NotFoundError{Resource: "page", Key: id.String()}
	}
	return nil
}

// BunLinkRepository stores the junction rows.
type BunLinkRepository struct {
	db *bun.DB
}

func NewBunLinkRepository(db *bun.DB) *BunLinkRepository {
	return &BunLinkRepository{db: db}
}

func (r *BunLinkRepository) Create(ctx context.Context, link *PageSectionLink) (*PageSectionLink, error) {
	if link.Slot == "" {
		link.Slot = DefaultSlot
	}
	if _, err := database.From(ctx, r.db).NewInsert().Model(link).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert page section link: %w", err)
	}
	return link, nil
}

func (r *BunLinkRepository) Get(ctx context.Context, id uuid.UUID) (*PageSectionLink, error) {
	link := new(PageSectionLink)
	err := database.From(ctx, r.db).NewSelect().
		Model(link).
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "page section link", Key: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("select page section link: %w", err)
	}
	return link, nil
}

func (r *BunLinkRepository) ListByPage(ctx context.Context, pageID uuid.UUID) ([]*PageSectionLink, error) {
	var links []*PageSectionLink
	err := database.From(ctx, r.db).NewSelect().
		Model(&links).
		Where("?TableAlias.page_id = ?", pageID).
		OrderExpr("?TableAlias.slot ASC").
		OrderExpr("?TableAlias.display_order ASC").
		OrderExpr("?TableAlias.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list page section links: %w", err)
	}
	return links, nil
}

func (r *BunLinkRepository) MaxOrder(ctx context.Context, pageID uuid.UUID, slot string) (int, error) {
	if slot == "" {
		slot = DefaultSlot
	}
	var max *int
	err := database.From(ctx, r.db).NewSelect().
		Model((*PageSectionLink)(nil)).
		ColumnExpr("MAX(?TableAlias.display_order)").
		Where("?TableAlias.page_id = ?", pageID).
		Where("?TableAlias.slot = ?", slot).
		Scan(ctx, &max)
	if err != nil {
		return 0, fmt.Errorf("max display order: %w", err)
	}
	// An empty slot reports 0 so the first append lands at order 1.
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// UpdateOrder applies new display orders, scoped to the page so a stale link
// id can never move another page's rows.
func (r *BunLinkRepository) UpdateOrder(ctx context.Context, pageID uuid.UUID, orders map[uuid.UUID]int) error {
	db := database.From(ctx, r.db)
	for id, order := range orders {
		res, err := db.NewUpdate().
			Model((*PageSectionLink)(nil)).
			Set("display_order = ?", order).
			Where("?TableAlias.id = ?", id).
			Where("?TableAlias.page_id = ?", pageID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update display order: %w", err)
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			return &NotFoundError{Resource: "page section link", Key: id.String()}
		}
	}
	return nil
}

func (r *BunLinkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := database.From(ctx, r.db).NewDelete().
		Model((*PageSectionLink)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete page section link: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return &NotFoundError{Resource: "page section link", Key: id.String()}
	}
	return nil
}

func (r *BunLinkRepository) DeleteByPage(ctx context.Context, pageID uuid.UUID) error {
	_, err := database.From(ctx, r.db).NewDelete().
		Model((*PageSectionLink)(nil)).
		Where("?TableAlias.page_id = ?", pageID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete page section links: %w", err)
	}
	return nil
}

func normalizePaging(q PageQuery) (page, pageSize int) {
	page = q.Page
	pageSize = q.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 25
	}
	return page, pageSize
}

func mapRepositoryError(err error, resource, key string) error {
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
