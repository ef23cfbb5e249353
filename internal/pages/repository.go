package pages

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func NewPageModelRepository(db *bun.DB) repository.Repository[*Page] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Page]{
		NewRecord: func() *Page { return &Page{} },
		GetID: func(p *Page) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Page, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(p *Page) string {
			return p.Slug
		},
	})
}

func NewLinkModelRepository(db *bun.DB) repository.Repository[*PageSectionLink] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*PageSectionLink]{
		NewRecord: func() *PageSectionLink { return &PageSectionLink{} },
		GetID: func(l *PageSectionLink) uuid.UUID {
			return l.ID
		},
		SetID: func(l *PageSectionLink, id uuid.UUID) {
			l.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(l *PageSectionLink) string {
			if l == nil {
				return ""
			}
			return l.ID.String()
		},
	})
}
