package content

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func NewLocaleRepository(db *bun.DB) repository.Repository[*Locale] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Locale]{
		NewRecord: func() *Locale { return &Locale{} },
		GetID: func(l *Locale) uuid.UUID {
			return l.ID
		},
		SetID: func(l *Locale, id uuid.UUID) {
			l.ID = id
		},
		GetIdentifier: func() string {
			return "code"
		},
		GetIdentifierValue: func(l *Locale) string {
			return l.Code
		},
	})
}

func NewContentTypeRepository(db *bun.DB) repository.Repository[*ContentType] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ContentType]{
		NewRecord: func() *ContentType { return &ContentType{} },
		GetID: func(ct *ContentType) uuid.UUID {
			return ct.ID
		},
		SetID: func(ct *ContentType, id uuid.UUID) {
			ct.ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
		GetIdentifierValue: func(ct *ContentType) string {
			return ct.Name
		},
	})
}

func NewContentTypeFieldRepository(db *bun.DB) repository.Repository[*ContentTypeField] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ContentTypeField]{
		NewRecord: func() *ContentTypeField { return &ContentTypeField{} },
		GetID: func(f *ContentTypeField) uuid.UUID {
			return f.ID
		},
		SetID: func(f *ContentTypeField, id uuid.UUID) {
			f.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(f *ContentTypeField) string {
			if f == nil {
				return ""
			}
			return f.ID.String()
		},
	})
}

func NewContentEntryRepository(db *bun.DB) repository.Repository[*ContentEntry] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ContentEntry]{
		NewRecord: func() *ContentEntry { return &ContentEntry{} },
		GetID: func(e *ContentEntry) uuid.UUID {
			return e.ID
		},
		SetID: func(e *ContentEntry, id uuid.UUID) {
			e.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(e *ContentEntry) string {
			if e == nil {
				return ""
			}
			return e.ID.String()
		},
	})
}

func NewContentTranslationRepository(db *bun.DB) repository.Repository[*ContentTranslation] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ContentTranslation]{
		NewRecord: func() *ContentTranslation { return &ContentTranslation{} },
		GetID: func(tr *ContentTranslation) uuid.UUID {
			return tr.ID
		},
		SetID: func(tr *ContentTranslation, id uuid.UUID) {
			tr.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(tr *ContentTranslation) string {
			if tr == nil {
				return ""
			}
			return tr.ID.String()
		},
	})
}
