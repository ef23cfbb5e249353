package content

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-sitekit/internal/domain"
	"github.com/goliatone/go-sitekit/internal/logging"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

// TranslationInput carries per-locale values for a write operation.
type TranslationInput struct {
	Locale string
	Data   map[string]any
}

// CreateEntryRequest captures a new entry. Data holds base and translatable
// values keyed by field name; translatable values land on the default locale.
type CreateEntryRequest struct {
	Data         map[string]any
	Translations []TranslationInput
}

// UpdateEntryRequest is a partial update: only keys present in Data change,
// and only the locales present in Translations are touched.
type UpdateEntryRequest struct {
	Data         map[string]any
	Translations []TranslationInput
}

// EntryRepository abstracts entry storage. Query and Count execute a compiled
// plan; Update upserts the supplied translation rows.
type EntryRepository interface {
	Create(ctx context.Context, entry *ContentEntry) (*ContentEntry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ContentEntry, error)
	Query(ctx context.Context, plan QueryPlan) ([]*ContentEntry, int, error)
	Count(ctx context.Context, plan QueryPlan) (int, error)
	Update(ctx context.Context, entry *ContentEntry, translations []*ContentTranslation) (*ContentEntry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LocaleRepository abstracts locale storage.
type LocaleRepository interface {
	Create(ctx context.Context, locale *Locale) (*Locale, error)
	GetByCode(ctx context.Context, code string) (*Locale, error)
	List(ctx context.Context) ([]*Locale, error)
}

// Service is the generic content store: schema-validated CRUD plus the
// filter/sort/paginate read surface with locale overlay.
type Service interface {
	Find(ctx context.Context, contentType string, q Query) (*Result, error)
	FindOne(ctx context.Context, contentType string, id uuid.UUID, q Query) (*Record, error)
	Count(ctx context.Context, contentType string, filters map[string]any) (int, error)
	Create(ctx context.Context, contentType string, req CreateEntryRequest) (*Record, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateEntryRequest) (*Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) (*Record, error)
}

// ServiceOption configures the content service.
type ServiceOption func(*service)

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithIDGenerator(generator func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithAuthorizer(authorizer interfaces.Authorizer) ServiceOption {
	return func(s *service) {
		if authorizer != nil {
			s.authorizer = authorizer
		}
	}
}

func WithRevalidateHook(hook interfaces.RevalidateHook) ServiceOption {
	return func(s *service) {
		if hook != nil {
			s.revalidate = hook
		}
	}
}

// WithDefaultLocale sets the locale that receives translatable values passed
// through Data instead of Translations.
func WithDefaultLocale(code string) ServiceOption {
	return func(s *service) {
		if code != "" {
			s.defaultLocale = code
		}
	}
}

type service struct {
	entries       EntryRepository
	registry      TypeRegistry
	locales       LocaleRepository
	now           func() time.Time
	id            func() uuid.UUID
	logger        interfaces.Logger
	authorizer    interfaces.Authorizer
	revalidate    interfaces.RevalidateHook
	defaultLocale string
}

// NewService wires the content store over its repositories and registry.
func NewService(entries EntryRepository, registry TypeRegistry, locales LocaleRepository, opts ...ServiceOption) Service {
	s := &service{
		entries:       entries,
		registry:      registry,
		locales:       locales,
		now:           time.Now,
		id:            uuid.New,
		logger:        logging.NoOp(),
		authorizer:    interfaces.AllowAllAuthorizer{},
		revalidate:    interfaces.NoopRevalidate,
		defaultLocale: "en",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Find(ctx context.Context, contentType string, q Query) (*Result, error) {
	ct, fields, err := s.resolveType(ctx, contentType)
	if err != nil {
		return nil, err
	}

	plan, err := BuildPlan(ct, fields, q)
	if err != nil {
		return nil, err
	}

	entries, total, err := s.entries.Query(ctx, plan)
	if err != nil {
		return nil, err
	}

	records := make([]*Record, 0, len(entries))
	for _, entry := range entries {
		records = append(records, s.toRecord(ct, entry, q.Locale))
	}

	pageCount := 0
	if plan.PageSize > 0 {
		pageCount = (total + plan.PageSize - 1) / plan.PageSize
	}

	return &Result{
		Data: records,
		Meta: Meta{Pagination: PageMeta{
			Page:      plan.Page,
			PageSize:  plan.PageSize,
			PageCount: pageCount,
			Total:     total,
		}},
	}, nil
}

func (s *service) FindOne(ctx context.Context, contentType string, id uuid.UUID, q Query) (*Record, error) {
	ct, _, err := s.resolveType(ctx, contentType)
	if err != nil {
		return nil, err
	}

	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.ContentTypeID != ct.ID {
		return nil, &NotFoundError{Resource: "content entry", Key: id.String()}
	}
	if q.PublicationState == PublicationStateLive && entry.Status != domain.StatusPublished {
		return nil, &NotFoundError{Resource: "content entry", Key: id.String()}
	}

	return s.toRecord(ct, entry, q.Locale), nil
}

func (s *service) Count(ctx context.Context, contentType string, filters map[string]any) (int, error) {
	ct, fields, err := s.resolveType(ctx, contentType)
	if err != nil {
		return 0, err
	}

	plan, err := BuildPlan(ct, fields, Query{Filters: filters, PublicationState: PublicationStatePreview})
	if err != nil {
		return 0, err
	}
	return s.entries.Count(ctx, plan)
}

func (s *service) Create(ctx context.Context, contentType string, req CreateEntryRequest) (*Record, error) {
	if err := s.authorizer.RequireWrite(ctx, "content"); err != nil {
		return nil, err
	}

	ct, fields, err := s.resolveType(ctx, contentType)
	if err != nil {
		return nil, err
	}

	translations, err := s.normalizeTranslations(ctx, req.Translations)
	if err != nil {
		return nil, err
	}

	if err := ValidateData(fields, req.Data, translations, true); err != nil {
		return nil, err
	}

	base, translatable := PartitionData(fields, req.Data)
	if len(translatable) > 0 {
		translations = mergeLocaleData(translations, s.defaultLocale, translatable)
		if _, err := s.locales.GetByCode(ctx, s.defaultLocale); err != nil {
			return nil, err
		}
	}

	now := s.now()
	entry := &ContentEntry{
		ID:            s.id(),
		ContentTypeID: ct.ID,
		Status:        domain.StatusDraft,
		BaseData:      base,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, tr := range translations {
		entry.Translations = append(entry.Translations, &ContentTranslation{
			ID:             s.id(),
			EntryID:        entry.ID,
			LocaleCode:     tr.Locale,
			TranslatedData: cloneMap(tr.Data),
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	created, err := s.entries.Create(ctx, entry)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("content entry created", "content_type", ct.Name, "entry_id", created.ID)
	s.revalidate(ctx, "content:"+ct.Name)

	return s.toRecord(ct, created, ""), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateEntryRequest) (*Record, error) {
	if err := s.authorizer.RequireWrite(ctx, "content"); err != nil {
		return nil, err
	}

	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ct, err := s.registry.GetContentTypeByID(ctx, entry.ContentTypeID)
	if err != nil {
		return nil, err
	}
	fields, err := s.registry.GetFields(ctx, ct.ID)
	if err != nil {
		return nil, err
	}

	translations, err := s.normalizeTranslations(ctx, req.Translations)
	if err != nil {
		return nil, err
	}

	if err := ValidateData(fields, req.Data, translations, false); err != nil {
		return nil, err
	}

	base, translatable := PartitionData(fields, req.Data)
	if len(translatable) > 0 {
		translations = mergeLocaleData(translations, s.defaultLocale, translatable)
		if _, err := s.locales.GetByCode(ctx, s.defaultLocale); err != nil {
			return nil, err
		}
	}

	merged := cloneMap(entry.BaseData)
	if merged == nil {
		merged = map[string]any{}
	}
	for name, value := range base {
		merged[name] = value
	}
	entry.BaseData = merged
	entry.UpdatedAt = s.now()

	rows := s.mergeTranslationRows(entry, translations)

	updated, err := s.entries.Update(ctx, entry, rows)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("content entry updated", "content_type", ct.Name, "entry_id", updated.ID)
	s.revalidate(ctx, "content:"+ct.Name)

	return s.toRecord(ct, updated, ""), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.authorizer.RequireWrite(ctx, "content"); err != nil {
		return err
	}

	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.entries.Delete(ctx, id); err != nil {
		return err
	}

	if ct, err := s.registry.GetContentTypeByID(ctx, entry.ContentTypeID); err == nil {
		s.revalidate(ctx, "content:"+ct.Name)
	}
	return nil
}

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status string) (*Record, error) {
	if err := s.authorizer.RequireWrite(ctx, "content"); err != nil {
		return nil, err
	}

	target, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ct, err := s.registry.GetContentTypeByID(ctx, entry.ContentTypeID)
	if err != nil {
		return nil, err
	}

	if entry.Status == target {
		return s.toRecord(ct, entry, ""), nil
	}

	if err := domain.Transition(entry.Status, target); err != nil {
		return nil, err
	}

	now := s.now()
	entry.Status = target
	entry.UpdatedAt = now
	if target == domain.StatusPublished {
		entry.PublishedAt = &now
	}

	updated, err := s.entries.Update(ctx, entry, nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info("content entry status changed", "content_type", ct.Name, "entry_id", id, "status", target)
	s.revalidate(ctx, "content:"+ct.Name)

	return s.toRecord(ct, updated, ""), nil
}

func (s *service) resolveType(ctx context.Context, name string) (*ContentType, []*ContentTypeField, error) {
	ct, err := s.registry.GetContentType(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	fields, err := s.registry.GetFields(ctx, ct.ID)
	if err != nil {
		return nil, nil, err
	}
	return ct, fields, nil
}

// normalizeTranslations trims and verifies locale codes against the locale
// table, rejecting duplicates.
func (s *service) normalizeTranslations(ctx context.Context, inputs []TranslationInput) ([]TranslationInput, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	out := make([]TranslationInput, 0, len(inputs))
	seen := map[string]struct{}{}
	for _, in := range inputs {
		code := strings.TrimSpace(in.Locale)
		if code == "" {
			return nil, ErrLocaleRequired
		}
		key := strings.ToLower(code)
		if _, dup := seen[key]; dup {
			return nil, ErrDuplicateLocale
		}
		seen[key] = struct{}{}

		if _, err := s.locales.GetByCode(ctx, code); err != nil {
			if IsNotFound(err) {
				return nil, ErrUnknownLocale
			}
			return nil, err
		}
		out = append(out, TranslationInput{Locale: code, Data: in.Data})
	}
	return out, nil
}

// mergeTranslationRows folds partial per-locale updates onto the entry's
// existing translation rows, producing full rows for the repository upsert.
func (s *service) mergeTranslationRows(entry *ContentEntry, inputs []TranslationInput) []*ContentTranslation {
	if len(inputs) == 0 {
		return nil
	}

	now := s.now()
	rows := make([]*ContentTranslation, 0, len(inputs))
	for _, in := range inputs {
		var existing *ContentTranslation
		for _, tr := range entry.Translations {
			if strings.EqualFold(tr.LocaleCode, in.Locale) {
				existing = tr
				break
			}
		}

		data := map[string]any{}
		if existing != nil {
			data = cloneMap(existing.TranslatedData)
		}
		for name, value := range in.Data {
			data[name] = value
		}

		row := &ContentTranslation{
			ID:             s.id(),
			EntryID:        entry.ID,
			LocaleCode:     in.Locale,
			TranslatedData: data,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if existing != nil {
			row.ID = existing.ID
			row.LocaleCode = existing.LocaleCode
			row.CreatedAt = existing.CreatedAt
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *service) toRecord(ct *ContentType, entry *ContentEntry, locale string) *Record {
	data := cloneMap(entry.BaseData)
	if data == nil {
		data = map[string]any{}
	}
	if locale != "" {
		data = MergeLocale(entry.BaseData, entry.Translations, locale)
	}

	return &Record{
		ID:          entry.ID,
		ContentType: ct.Name,
		Status:      entry.Status,
		Data:        data,
		PublishedAt: cloneTimePtr(entry.PublishedAt),
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
	}
}

func mergeLocaleData(inputs []TranslationInput, locale string, data map[string]any) []TranslationInput {
	for i, in := range inputs {
		if strings.EqualFold(in.Locale, locale) {
			merged := cloneMap(in.Data)
			if merged == nil {
				merged = map[string]any{}
			}
			for name, value := range data {
				merged[name] = value
			}
			inputs[i].Data = merged
			return inputs
		}
	}
	return append(inputs, TranslationInput{Locale: locale, Data: cloneMap(data)})
}
