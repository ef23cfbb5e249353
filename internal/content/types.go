package content

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitekit/internal/domain"
)

// Locale represents the languages the platform serves.
type Locale struct {
	bun.BaseModel `bun:"table:locales,alias:l"`

	ID        uuid.UUID `bun:",pk,type:uuid"          json:"id"`
	Code      string    `bun:"code,notnull"           json:"code"`
	Display   string    `bun:"display_name,notnull"   json:"display_name"`
	IsActive  bool      `bun:"is_active,notnull,default:true"   json:"is_active"`
	IsDefault bool      `bun:"is_default,notnull,default:false" json:"is_default"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// ContentType defines an operator-authored entity schema.
type ContentType struct {
	bun.BaseModel `bun:"table:content_types,alias:ct"`

	ID           uuid.UUID `bun:",pk,type:uuid"        json:"id"`
	Name         string    `bun:"name,notnull"         json:"name"`
	DisplayName  string    `bun:"display_name,notnull" json:"display_name"`
	SingularName string    `bun:"singular_name"        json:"singular_name,omitempty"`
	PluralName   string    `bun:"plural_name"          json:"plural_name,omitempty"`
	CreatedAt    time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Fields []*ContentTypeField `bun:"rel:has-many,join:id=content_type_id" json:"fields,omitempty"`
}

// ContentTypeField declares one typed attribute of a content type. Field
// names are unique within a type and drive validation and data partitioning.
type ContentTypeField struct {
	bun.BaseModel `bun:"table:content_type_fields,alias:ctf"`

	ID            uuid.UUID `bun:",pk,type:uuid"             json:"id"`
	ContentTypeID uuid.UUID `bun:"content_type_id,notnull,type:uuid" json:"content_type_id"`
	Name          string    `bun:"name,notnull"              json:"name"`
	DisplayName   string    `bun:"display_name"              json:"display_name,omitempty"`
	Type          FieldType `bun:"field_type,notnull"        json:"type"`
	Translatable  bool      `bun:"translatable,notnull,default:false" json:"translatable"`
	Required      bool      `bun:"required,notnull,default:false"     json:"required"`
	MinLength     *int      `bun:"min_length"                json:"min_length,omitempty"`
	MaxLength     *int      `bun:"max_length"                json:"max_length,omitempty"`
	MinValue      *float64  `bun:"min_value"                 json:"min_value,omitempty"`
	MaxValue      *float64  `bun:"max_value"                 json:"max_value,omitempty"`
	Position      int       `bun:"position,notnull,default:0" json:"position"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// ContentEntry is the base record for a schema-driven entity. BaseData holds
// only values for fields where Translatable = false.
type ContentEntry struct {
	bun.BaseModel `bun:"table:content_entries,alias:ce"`

	ID            uuid.UUID      `bun:",pk,type:uuid"       json:"id"`
	ContentTypeID uuid.UUID      `bun:"content_type_id,notnull,type:uuid" json:"content_type_id"`
	Status        domain.Status  `bun:"status,notnull,default:'draft'"    json:"status"`
	BaseData      map[string]any `bun:"base_data,type:jsonb,notnull"      json:"base_data"`
	PublishedAt   *time.Time     `bun:"published_at,nullzero" json:"published_at,omitempty"`
	CreatedAt     time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Type         *ContentType          `bun:"rel:belongs-to,join:content_type_id=id" json:"content_type,omitempty"`
	Translations []*ContentTranslation `bun:"rel:has-many,join:id=entry_id"          json:"translations,omitempty"`
}

// ContentTranslation stores the translatable portion of an entry for one
// locale. At most one row exists per (entry_id, locale_code).
type ContentTranslation struct {
	bun.BaseModel `bun:"table:content_entry_translations,alias:cet"`

	ID             uuid.UUID      `bun:",pk,type:uuid"        json:"id"`
	EntryID        uuid.UUID      `bun:"entry_id,notnull,type:uuid" json:"entry_id"`
	LocaleCode     string         `bun:"locale_code,notnull"  json:"locale_code"`
	TranslatedData map[string]any `bun:"translated_data,type:jsonb,notnull" json:"translated_data"`
	CreatedAt      time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Record is the effective read-side view of an entry: entry-native columns
// plus the (optionally locale-merged) field values.
type Record struct {
	ID          uuid.UUID      `json:"id"`
	ContentType string         `json:"content_type"`
	Status      domain.Status  `json:"status"`
	Data        map[string]any `json:"data"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Result is the find envelope: records plus pagination metadata.
type Result struct {
	Data []*Record `json:"data"`
	Meta Meta      `json:"meta"`
}

// Meta carries result metadata.
type Meta struct {
	Pagination PageMeta `json:"pagination"`
}

// PageMeta describes the window a Result covers.
type PageMeta struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func cloneTimePtr(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	copied := *src
	return &copied
}
