package content

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLocaleRepository stores locales in-memory for scaffolding and tests.
type MemoryLocaleRepository struct {
	mu      sync.RWMutex
	locales map[string]*Locale
}

func NewMemoryLocaleRepository() *MemoryLocaleRepository {
	return &MemoryLocaleRepository{locales: make(map[string]*Locale)}
}

// Put inserts or replaces a locale.
func (m *MemoryLocaleRepository) Put(locale *Locale) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *locale
	m.locales[strings.ToLower(locale.Code)] = &copied
}

func (m *MemoryLocaleRepository) Create(_ context.Context, record *Locale) (*Locale, error) {
	m.Put(record)
	return record, nil
}

func (m *MemoryLocaleRepository) GetByCode(_ context.Context, code string) (*Locale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	locale, ok := m.locales[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return nil, &NotFoundError{Resource: "locale", Key: code}
	}
	copied := *locale
	return &copied, nil
}

func (m *MemoryLocaleRepository) List(_ context.Context) ([]*Locale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Locale, 0, len(m.locales))
	for _, locale := range m.locales {
		copied := *locale
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// MemoryContentTypeRepository stores content type definitions in-memory.
type MemoryContentTypeRepository struct {
	mu    sync.RWMutex
	types map[uuid.UUID]*ContentType
	names map[string]uuid.UUID
}

func NewMemoryContentTypeRepository() *MemoryContentTypeRepository {
	return &MemoryContentTypeRepository{
		types: make(map[uuid.UUID]*ContentType),
		names: make(map[string]uuid.UUID),
	}
}

// Put inserts or replaces a content type together with its fields.
func (m *MemoryContentTypeRepository) Put(ct *ContentType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := cloneContentType(ct)
	m.types[ct.ID] = copied
	m.names[strings.ToLower(ct.Name)] = ct.ID
}

func (m *MemoryContentTypeRepository) Create(_ context.Context, record *ContentType) (*ContentType, error) {
	m.Put(record)
	return cloneContentType(record), nil
}

func (m *MemoryContentTypeRepository) GetByID(_ context.Context, id uuid.UUID) (*ContentType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ct, ok := m.types[id]
	if !ok {
		return nil, &NotFoundError{Resource: "content_type", Key: id.String()}
	}
	return cloneContentType(ct), nil
}

func (m *MemoryContentTypeRepository) GetByName(_ context.Context, name string) (*ContentType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.names[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, &NotFoundError{Resource: "content_type", Key: name}
	}
	return cloneContentType(m.types[id]), nil
}

func (m *MemoryContentTypeRepository) List(_ context.Context) ([]*ContentType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*ContentType, 0, len(m.types))
	for _, ct := range m.types {
		out = append(out, cloneContentType(ct))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryContentTypeRepository) ListFields(_ context.Context, contentTypeID uuid.UUID) ([]*ContentTypeField, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ct, ok := m.types[contentTypeID]
	if !ok {
		return nil, &NotFoundError{Resource: "content_type", Key: contentTypeID.String()}
	}
	copied := cloneContentType(ct)
	return copied.Fields, nil
}

func cloneContentType(src *ContentType) *ContentType {
	if src == nil {
		return nil
	}
	copied := *src
	if len(src.Fields) > 0 {
		copied.Fields = make([]*ContentTypeField, len(src.Fields))
		for i, field := range src.Fields {
			if field == nil {
				continue
			}
			local := *field
			copied.Fields[i] = &local
		}
		sort.SliceStable(copied.Fields, func(i, j int) bool {
			return copied.Fields[i].Position < copied.Fields[j].Position
		})
	}
	return &copied
}

// MemoryEntryRepository is an in-memory EntryRepository that evaluates query
// plans directly against the stored records.
type MemoryEntryRepository struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*ContentEntry
	order   []uuid.UUID
}

func NewMemoryEntryRepository() *MemoryEntryRepository {
	return &MemoryEntryRepository{entries: make(map[uuid.UUID]*ContentEntry)}
}

func (m *MemoryEntryRepository) Create(_ context.Context, record *ContentEntry) (*ContentEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := cloneEntry(record)
	m.entries[copied.ID] = copied
	m.order = append(m.order, copied.ID)
	return cloneEntry(copied), nil
}

func (m *MemoryEntryRepository) GetByID(_ context.Context, id uuid.UUID) (*ContentEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[id]
	if !ok {
		return nil, &NotFoundError{Resource: "content_entry", Key: id.String()}
	}
	return cloneEntry(entry), nil
}

func (m *MemoryEntryRepository) Query(_ context.Context, plan QueryPlan) ([]*ContentEntry, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := m.match(plan)
	total := len(matched)
	sortEntries(matched, plan)

	if plan.PageSize > 0 {
		start := (plan.Page - 1) * plan.PageSize
		if start > total {
			start = total
		}
		end := start + plan.PageSize
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}

	out := make([]*ContentEntry, len(matched))
	for i, entry := range matched {
		out[i] = cloneEntry(entry)
	}
	return out, total, nil
}

func (m *MemoryEntryRepository) Count(_ context.Context, plan QueryPlan) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.match(plan)), nil
}

func (m *MemoryEntryRepository) Update(_ context.Context, record *ContentEntry, upserts []*ContentTranslation) (*ContentEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.entries[record.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "content_entry", Key: record.ID.String()}
	}

	existing.Status = record.Status
	existing.BaseData = cloneMap(record.BaseData)
	existing.PublishedAt = cloneTimePtr(record.PublishedAt)
	existing.UpdatedAt = record.UpdatedAt

	for _, upsert := range upserts {
		if upsert == nil {
			continue
		}
		replaced := false
		for _, tr := range existing.Translations {
			if strings.EqualFold(tr.LocaleCode, upsert.LocaleCode) {
				tr.TranslatedData = cloneMap(upsert.TranslatedData)
				tr.UpdatedAt = upsert.UpdatedAt
				replaced = true
				break
			}
		}
		if !replaced {
			local := *upsert
			local.TranslatedData = cloneMap(upsert.TranslatedData)
			existing.Translations = append(existing.Translations, &local)
		}
	}

	return cloneEntry(existing), nil
}

func (m *MemoryEntryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return &NotFoundError{Resource: "content_entry", Key: id.String()}
	}
	delete(m.entries, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryEntryRepository) match(plan QueryPlan) []*ContentEntry {
	matched := make([]*ContentEntry, 0)
	for _, id := range m.order {
		entry := m.entries[id]
		if entry == nil || entry.ContentTypeID != plan.ContentTypeID {
			continue
		}
		ok := true
		for _, cond := range plan.Conditions {
			if !matchCondition(entry, plan.Locale, cond) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, entry)
		}
	}
	return matched
}

func cloneEntry(src *ContentEntry) *ContentEntry {
	if src == nil {
		return nil
	}
	copied := *src
	copied.BaseData = cloneMap(src.BaseData)
	copied.PublishedAt = cloneTimePtr(src.PublishedAt)
	if len(src.Translations) > 0 {
		copied.Translations = make([]*ContentTranslation, len(src.Translations))
		for i, tr := range src.Translations {
			if tr == nil {
				continue
			}
			local := *tr
			local.TranslatedData = cloneMap(tr.TranslatedData)
			copied.Translations[i] = &local
		}
	}
	return &copied
}

// resolveFieldValue reads the value a field reference points at, reporting
// absence distinctly from an explicit null.
func resolveFieldValue(entry *ContentEntry, locale string, ref FieldRef) (any, bool) {
	switch ref.Column {
	case "id":
		return entry.ID.String(), true
	case "status":
		return string(entry.Status), true
	case "created_at":
		return entry.CreatedAt, true
	case "updated_at":
		return entry.UpdatedAt, true
	case "published_at":
		if entry.PublishedAt == nil {
			return nil, false
		}
		return *entry.PublishedAt, true
	}

	var doc map[string]any
	switch ref.Document {
	case DocumentBase:
		doc = entry.BaseData
	case DocumentTranslation:
		for _, tr := range entry.Translations {
			if tr != nil && strings.EqualFold(tr.LocaleCode, locale) {
				doc = tr.TranslatedData
				break
			}
		}
	}
	if doc == nil {
		return nil, false
	}
	value, ok := doc[ref.Name]
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

func matchCondition(entry *ContentEntry, locale string, cond Condition) bool {
	value, present := resolveFieldValue(entry, locale, cond.Ref)

	switch cond.Op {
	case OpNull:
		wantNull, _ := cond.Value.(bool)
		return present != wantNull
	case OpEq:
		if cond.Value == nil {
			return !present
		}
		return present && equalValues(value, cond.Value)
	case OpNe:
		if cond.Value == nil {
			return present
		}
		return !present || !equalValues(value, cond.Value)
	case OpIn:
		if !present {
			return false
		}
		items, _ := cond.Value.([]any)
		for _, item := range items {
			if equalValues(value, item) {
				return true
			}
		}
		return false
	case OpNotIn:
		if !present {
			return true
		}
		items, _ := cond.Value.([]any)
		for _, item := range items {
			if equalValues(value, item) {
				return false
			}
		}
		return true
	case OpGt, OpGte, OpLt, OpLte:
		if !present {
			return false
		}
		rank, ok := compareValues(value, cond.Value)
		if !ok {
			return false
		}
		switch cond.Op {
		case OpGt:
			return rank > 0
		case OpGte:
			return rank >= 0
		case OpLt:
			return rank < 0
		default:
			return rank <= 0
		}
	case OpContains, OpNotContains, OpStartsWith, OpEndsWith:
		text, _ := value.(string)
		needle, _ := cond.Value.(string)
		haystack := strings.ToLower(text)
		needle = strings.ToLower(needle)
		switch cond.Op {
		case OpContains:
			return present && strings.Contains(haystack, needle)
		case OpNotContains:
			return !present || !strings.Contains(haystack, needle)
		case OpStartsWith:
			return present && strings.HasPrefix(haystack, needle)
		default:
			return present && strings.HasSuffix(haystack, needle)
		}
	}
	return false
}

func equalValues(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		return ok && sa == sb
	}
	if ba, ok := a.(bool); ok {
		bb, ok := b.(bool)
		return ok && ba == bb
	}
	if ta, ok := a.(time.Time); ok {
		switch typed := b.(type) {
		case time.Time:
			return ta.Equal(typed)
		case string:
			parsed, err := parseDate(typed)
			return err == nil && ta.Equal(parsed)
		}
		return false
	}
	return a == b
}

// compareValues ranks two values when they share a comparable kind.
func compareValues(a, b any) (int, bool) {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		default:
			return 0, true
		}
	}
	if ta, ok := a.(time.Time); ok {
		var tb time.Time
		switch typed := b.(type) {
		case time.Time:
			tb = typed
		case string:
			parsed, err := parseDate(typed)
			if err != nil {
				return 0, false
			}
			tb = parsed
		default:
			return 0, false
		}
		switch {
		case ta.Before(tb):
			return -1, true
		case ta.After(tb):
			return 1, true
		default:
			return 0, true
		}
	}
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(sa, sb), true
	}
	return 0, false
}

func sortEntries(entries []*ContentEntry, plan QueryPlan) {
	sort.SliceStable(entries, func(i, j int) bool {
		for _, term := range plan.Sorts {
			va, _ := resolveFieldValue(entries[i], plan.Locale, term.Ref)
			vb, _ := resolveFieldValue(entries[j], plan.Locale, term.Ref)
			rank, ok := compareValues(va, vb)
			if !ok || rank == 0 {
				continue
			}
			if term.Desc {
				return rank > 0
			}
			return rank < 0
		}
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].ID.String() < entries[j].ID.String()
	})
}
