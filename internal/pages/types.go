package pages

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitekit/internal/domain"
	"github.com/goliatone/go-sitekit/internal/sections"
)

// DefaultSlot is the composition slot links land in when none is named.
const DefaultSlot = "content_sections"

// Page is a composed page: identity, lifecycle, and free-form metadata. Its
// body is assembled from section instances through PageSectionLink rows.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:p"`

	ID          uuid.UUID      `bun:",pk,type:uuid"        json:"id"`
	Slug        string         `bun:"slug,notnull,unique"  json:"slug"`
	Title       string         `bun:"title,notnull"        json:"title"`
	ShortName   string         `bun:"short_name"           json:"short_name,omitempty"`
	Status      domain.Status  `bun:"status,notnull,default:'draft'" json:"status"`
	Locale      string         `bun:"locale_code"          json:"locale,omitempty"`
	Metadata    map[string]any `bun:"metadata,type:jsonb"  json:"metadata,omitempty"`
	PublishedAt *time.Time     `bun:"published_at,nullzero" json:"published_at,omitempty"`
	CreatedAt   time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// PageSectionLink is the junction row attaching one section instance to a
// page slot at a position. SectionType records which registry type owns the
// instance so reads know where to fetch it from.
type PageSectionLink struct {
	bun.BaseModel `bun:"table:page_section_links,alias:psl"`

	ID           uuid.UUID `bun:",pk,type:uuid"          json:"id"`
	PageID       uuid.UUID `bun:"page_id,notnull,type:uuid"    json:"page_id"`
	SectionID    uuid.UUID `bun:"section_id,notnull,type:uuid" json:"section_id"`
	SectionType  string    `bun:"section_type,notnull"   json:"section_type"`
	Slot         string    `bun:"slot,notnull,default:'content_sections'" json:"slot"`
	DisplayOrder int       `bun:"display_order,notnull,default:0" json:"display_order"`
	CreatedAt    time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// PageSection is the resolved view of one attached section: link placement
// plus the instance payload fetched from its type's storage.
type PageSection struct {
	LinkID       uuid.UUID          `json:"link_id"`
	Slot         string             `json:"slot"`
	DisplayOrder int                `json:"display_order"`
	Section      *sections.Instance `json:"section"`
}

// PageView is a page with its sections resolved, ready for rendering.
type PageView struct {
	Page     *Page          `json:"page"`
	Sections []*PageSection `json:"sections"`
}

// PageQuery narrows and paginates page listings.
type PageQuery struct {
	Status   domain.Status `json:"status,omitempty"`
	Locale   string        `json:"locale,omitempty"`
	Page     int           `json:"page,omitempty"`
	PageSize int           `json:"pageSize,omitempty"`
}

// PageResult is the listing envelope: pages ordered newest first plus the
// total match count.
type PageResult struct {
	Data  []*Page `json:"data"`
	Total int     `json:"total"`
}

func clonePage(in *Page) *Page {
	if in == nil {
		return nil
	}
	out := *in
	if in.Metadata != nil {
		out.Metadata = make(map[string]any, len(in.Metadata))
		for name, value := range in.Metadata {
			out.Metadata[name] = value
		}
	}
	if in.PublishedAt != nil {
		ts := *in.PublishedAt
		out.PublishedAt = &ts
	}
	return &out
}

func cloneLink(in *PageSectionLink) *PageSectionLink {
	if in == nil {
		return nil
	}
	out := *in
	return &out
}
