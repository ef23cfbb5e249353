package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/goliatone/go-sitekit/internal/database"
)

// BunLocaleRepository resolves locales from the shared store.
type BunLocaleRepository struct {
	repo repository.Repository[*Locale]
}

func NewBunLocaleRepository(db *bun.DB) *BunLocaleRepository {
	return NewBunLocaleRepositoryWithCache(db, nil, nil)
}

// NewBunLocaleRepositoryWithCache constructs a LocaleRepository with optional caching.
func NewBunLocaleRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunLocaleRepository {
	base := NewLocaleRepository(db)
	return &BunLocaleRepository{repo: wrapWithCache(base, cacheService, keySerializer)}
}

func (r *BunLocaleRepository) Create(ctx context.Context, record *Locale) (*Locale, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("locale repository error: %w", err)
	}
	return created, nil
}

func (r *BunLocaleRepository) GetByCode(ctx context.Context, code string) (*Locale, error) {
	result, err := r.repo.GetByIdentifier(ctx, code)
	if err != nil {
		return nil, mapRepositoryError(err, "locale", code)
	}
	return result, nil
}

func (r *BunLocaleRepository) List(ctx context.Context) ([]*Locale, error) {
	records, _, err := r.repo.List(ctx)
	return records, err
}

// BunContentTypeRepository stores content type definitions.
type BunContentTypeRepository struct {
	db     *bun.DB
	repo   repository.Repository[*ContentType]
	fields repository.Repository[*ContentTypeField]
}

func NewBunContentTypeRepository(db *bun.DB) *BunContentTypeRepository {
	return NewBunContentTypeRepositoryWithCache(db, nil, nil)
}

func NewBunContentTypeRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunContentTypeRepository {
	return &BunContentTypeRepository{
		db:     db,
		repo:   wrapWithCache(NewContentTypeRepository(db), cacheService, keySerializer),
		fields: wrapWithCache(NewContentTypeFieldRepository(db), cacheService, keySerializer),
	}
}

// Create persists the content type and its field definitions in one
// transaction; a schema is never visible half-written.
func (r *BunContentTypeRepository) Create(ctx context.Context, record *ContentType) (*ContentType, error) {
	if r.db == nil {
		return nil, fmt.Errorf("content type repository: database not configured")
	}
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return fmt.Errorf("insert content type: %w", err)
		}
		if len(record.Fields) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&record.Fields).Exec(ctx); err != nil {
			return fmt.Errorf("insert content type fields: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunContentTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*ContentType, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "content_type", id.String())
	}
	return result, nil
}

func (r *BunContentTypeRepository) GetByName(ctx context.Context, name string) (*ContentType, error) {
	result, err := r.repo.GetByIdentifier(ctx, name)
	if err != nil {
		return nil, mapRepositoryError(err, "content_type", name)
	}
	return result, nil
}

func (r *BunContentTypeRepository) List(ctx context.Context) ([]*ContentType, error) {
	records, _, err := r.repo.List(ctx)
	return records, err
}

func (r *BunContentTypeRepository) ListFields(ctx context.Context, contentTypeID uuid.UUID) ([]*ContentTypeField, error) {
	records, _, err := r.fields.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.content_type_id = ?", contentTypeID).
				OrderExpr("?TableAlias.position ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("content_type_field repository error: %w", err)
	}
	return records, nil
}

// BunEntryRepository persists content entries and their translation rows.
type BunEntryRepository struct {
	db *bun.DB
}

func NewBunEntryRepository(db *bun.DB) *BunEntryRepository {
	return &BunEntryRepository{db: db}
}

// Create writes the base row and every translation row inside a single
// transaction; either all rows land or none do.
func (r *BunEntryRepository) Create(ctx context.Context, record *ContentEntry) (*ContentEntry, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return fmt.Errorf("insert content entry: %w", err)
		}
		if len(record.Translations) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&record.Translations).Exec(ctx); err != nil {
			return fmt.Errorf("insert content translations: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunEntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*ContentEntry, error) {
	record := new(ContentEntry)
	err := database.From(ctx, r.db).NewSelect().
		Model(record).
		Relation("Translations").
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "content_entry", Key: id.String()}
		}
		return nil, fmt.Errorf("content_entry repository error: %w", err)
	}
	return record, nil
}

// Query executes a compiled plan and returns the page of entries plus the
// total match count.
func (r *BunEntryRepository) Query(ctx context.Context, plan QueryPlan) ([]*ContentEntry, int, error) {
	var records []*ContentEntry
	query := r.db.NewSelect().Model(&records)
	if plan.WithTranslations {
		query.Relation("Translations")
	}
	r.applyPlan(query, plan, true)

	total, err := query.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("content_entry repository error: %w", err)
	}
	return records, total, nil
}

// Count returns the number of entries matching the plan's predicates.
func (r *BunEntryRepository) Count(ctx context.Context, plan QueryPlan) (int, error) {
	query := r.db.NewSelect().Model((*ContentEntry)(nil))
	r.applyPlan(query, plan, false)
	total, err := query.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("content_entry repository error: %w", err)
	}
	return total, nil
}

// Update rewrites the entry's mutable columns and upserts the supplied
// translation rows in one transaction.
func (r *BunEntryRepository) Update(ctx context.Context, record *ContentEntry, upserts []*ContentTranslation) (*ContentEntry, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model(record).
			Column("status", "base_data", "published_at", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("update content entry: %w", err)
		}
		for _, tr := range upserts {
			if tr == nil {
				continue
			}
			if _, err := tx.NewInsert().
				Model(tr).
				On("CONFLICT (entry_id, locale_code) DO UPDATE").
				Set("translated_data = EXCLUDED.translated_data").
				Set("updated_at = EXCLUDED.updated_at").
				Exec(ctx); err != nil {
				return fmt.Errorf("upsert content translation %s: %w", tr.LocaleCode, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// Delete removes the entry and all of its translation rows.
func (r *BunEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*ContentTranslation)(nil)).
			Where("?TableAlias.entry_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete content translations: %w", err)
		}
		result, err := tx.NewDelete().
			Model((*ContentEntry)(nil)).
			Where("?TableAlias.id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete content entry: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("content entry delete rows affected: %w", err)
		}
		if affected == 0 {
			return &NotFoundError{Resource: "content_entry", Key: id.String()}
		}
		return nil
	})
}

// applyPlan translates a QueryPlan into predicates, ordering and, when
// paginate is set, the limit/offset window.
func (r *BunEntryRepository) applyPlan(query *bun.SelectQuery, plan QueryPlan, paginate bool) {
	query.Where("ce.content_type_id = ?", plan.ContentTypeID)

	if plan.NeedsTranslationJoin() {
		query.Join("LEFT JOIN content_entry_translations AS tr ON tr.entry_id = ce.id AND LOWER(tr.locale_code) = LOWER(?)", plan.Locale)
	}

	for _, cond := range plan.Conditions {
		r.applyCondition(query, cond)
	}

	if len(plan.Sorts) == 0 {
		query.OrderExpr("ce.created_at ASC").OrderExpr("ce.id ASC")
	}
	for _, term := range plan.Sorts {
		dir := "ASC"
		if term.Desc {
			dir = "DESC"
		}
		query.OrderExpr(r.fieldExpr(term.Ref) + " " + dir)
	}

	if paginate && plan.PageSize > 0 {
		query.Offset((plan.Page - 1) * plan.PageSize).Limit(plan.PageSize)
	}
}

// fieldExpr renders the SQL expression addressing a field reference. Field
// names are identifier-validated at registry creation, so interpolating them
// into a document path is safe.
func (r *BunEntryRepository) fieldExpr(ref FieldRef) string {
	if ref.Column != "" {
		return "ce." + ref.Column
	}

	column := "ce.base_data"
	if ref.Document == DocumentTranslation {
		column = "tr.translated_data"
	}

	if r.db.Dialect().Name() == dialect.PG {
		expr := fmt.Sprintf("%s->>'%s'", column, ref.Name)
		if ref.Numeric {
			return fmt.Sprintf("(%s)::numeric", expr)
		}
		return expr
	}
	return fmt.Sprintf(`json_extract(%s, '$."%s"')`, column, ref.Name)
}

func (r *BunEntryRepository) applyCondition(query *bun.SelectQuery, cond Condition) {
	expr := r.fieldExpr(cond.Ref)

	switch cond.Op {
	case OpEq:
		if cond.Value == nil {
			query.Where(expr + " IS NULL")
			return
		}
		query.Where(expr+" = ?", cond.Value)
	case OpNe:
		if cond.Value == nil {
			query.Where(expr + " IS NOT NULL")
			return
		}
		query.Where("("+expr+" IS NULL OR "+expr+" != ?)", cond.Value)
	case OpIn:
		query.Where(expr+" IN (?)", bun.In(cond.Value))
	case OpNotIn:
		query.Where(expr+" NOT IN (?)", bun.In(cond.Value))
	case OpGt:
		query.Where(expr+" > ?", cond.Value)
	case OpGte:
		query.Where(expr+" >= ?", cond.Value)
	case OpLt:
		query.Where(expr+" < ?", cond.Value)
	case OpLte:
		query.Where(expr+" <= ?", cond.Value)
	case OpContains:
		query.Where("LOWER("+expr+") LIKE ? ESCAPE '\\'", likePattern(cond.Value, true, true))
	case OpNotContains:
		query.Where("("+expr+" IS NULL OR LOWER("+expr+") NOT LIKE ? ESCAPE '\\')", likePattern(cond.Value, true, true))
	case OpStartsWith:
		query.Where("LOWER("+expr+") LIKE ? ESCAPE '\\'", likePattern(cond.Value, false, true))
	case OpEndsWith:
		query.Where("LOWER("+expr+") LIKE ? ESCAPE '\\'", likePattern(cond.Value, true, false))
	case OpNull:
		if flag, _ := cond.Value.(bool); flag {
			query.Where(expr + " IS NULL")
		} else {
			query.Where(expr + " IS NOT NULL")
		}
	}
}

// likeEscaper neutralizes LIKE metacharacters so a $contains needle matches
// literally, the same way the memory backend does.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(value any, prefix, suffix bool) string {
	text, _ := value.(string)
	pattern := likeEscaper.Replace(strings.ToLower(text))
	if prefix {
		pattern = "%" + pattern
	}
	if suffix {
		pattern = pattern + "%"
	}
	return pattern
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
