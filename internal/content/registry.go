package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-sitekit/internal/identity"
)

// ContentTypeRepository abstracts storage for content type definitions.
type ContentTypeRepository interface {
	Create(ctx context.Context, record *ContentType) (*ContentType, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ContentType, error)
	GetByName(ctx context.Context, name string) (*ContentType, error)
	List(ctx context.Context) ([]*ContentType, error)
	ListFields(ctx context.Context, contentTypeID uuid.UUID) ([]*ContentTypeField, error)
}

// TypeRegistry is the read surface the content store validates against, plus
// the authoring entry point for new schemas. Definitions are immutable once
// entries exist; renaming is out of scope.
type TypeRegistry interface {
	GetContentType(ctx context.Context, name string) (*ContentType, error)
	GetContentTypeByID(ctx context.Context, id uuid.UUID) (*ContentType, error)
	GetFields(ctx context.Context, contentTypeID uuid.UUID) ([]*ContentTypeField, error)
	ListContentTypes(ctx context.Context) ([]*ContentType, error)
	CreateContentType(ctx context.Context, input CreateContentTypeInput) (*ContentType, error)
}

// FieldDefinition describes one field of a new content type.
type FieldDefinition struct {
	Name         string
	DisplayName  string
	Type         string
	Translatable bool
	Required     bool
	MinLength    *int
	MaxLength    *int
	MinValue     *float64
	MaxValue     *float64
}

// CreateContentTypeInput captures a new schema definition.
type CreateContentTypeInput struct {
	Name         string
	DisplayName  string
	SingularName string
	PluralName   string
	Fields       []FieldDefinition
}

// RegistryOption configures the registry at construction time.
type RegistryOption func(*typeRegistry)

func WithRegistryClock(clock func() time.Time) RegistryOption {
	return func(r *typeRegistry) {
		if clock != nil {
			r.now = clock
		}
	}
}

func WithRegistryIDGenerator(generator func() uuid.UUID) RegistryOption {
	return func(r *typeRegistry) {
		if generator != nil {
			r.id = generator
		}
	}
}

type typeRegistry struct {
	repo ContentTypeRepository
	now  func() time.Time
	id   func() uuid.UUID
}

// NewTypeRegistry constructs the field and type registry over the supplied
// repository.
func NewTypeRegistry(repo ContentTypeRepository, opts ...RegistryOption) TypeRegistry {
	r := &typeRegistry{
		repo: repo,
		now:  time.Now,
		id:   uuid.New,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *typeRegistry) GetContentType(ctx context.Context, name string) (*ContentType, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrContentTypeNameRequired
	}
	return r.repo.GetByName(ctx, trimmed)
}

func (r *typeRegistry) GetContentTypeByID(ctx context.Context, id uuid.UUID) (*ContentType, error) {
	return r.repo.GetByID(ctx, id)
}

func (r *typeRegistry) GetFields(ctx context.Context, contentTypeID uuid.UUID) ([]*ContentTypeField, error) {
	return r.repo.ListFields(ctx, contentTypeID)
}

func (r *typeRegistry) ListContentTypes(ctx context.Context) ([]*ContentType, error) {
	return r.repo.List(ctx)
}

// CreateContentType validates and persists a new schema definition together
// with its fields. The content type id derives deterministically from the
// name so repeated bootstraps converge on the same row.
func (r *typeRegistry) CreateContentType(ctx context.Context, input CreateContentTypeInput) (*ContentType, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrContentTypeNameRequired
	}
	if !IsValidFieldName(name) {
		return nil, fieldError("name", "validation_identifier", fmt.Sprintf("%s is not a valid type identifier", name))
	}

	if existing, err := r.repo.GetByName(ctx, name); err == nil && existing != nil {
		return nil, ErrContentTypeExists
	} else if err != nil && !IsNotFound(err) {
		return nil, err
	}

	if err := validateFieldDefinitions(input.Fields); err != nil {
		return nil, err
	}

	now := r.now()
	record := &ContentType{
		ID:           identity.ContentTypeUUID(name),
		Name:         name,
		DisplayName:  fallback(input.DisplayName, name),
		SingularName: input.SingularName,
		PluralName:   input.PluralName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for i, def := range input.Fields {
		fieldType, _ := ParseFieldType(def.Type)
		record.Fields = append(record.Fields, &ContentTypeField{
			ID:            r.id(),
			ContentTypeID: record.ID,
			Name:          strings.TrimSpace(def.Name),
			DisplayName:   fallback(def.DisplayName, def.Name),
			Type:          fieldType,
			Translatable:  def.Translatable,
			Required:      def.Required,
			MinLength:     def.MinLength,
			MaxLength:     def.MaxLength,
			MinValue:      def.MinValue,
			MaxValue:      def.MaxValue,
			Position:      i,
			CreatedAt:     now,
		})
	}

	return r.repo.Create(ctx, record)
}

func validateFieldDefinitions(fields []FieldDefinition) error {
	errs := validation.Errors{}
	seen := map[string]struct{}{}

	for _, def := range fields {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			errs["fields"] = validation.NewError("validation_required", "field name is required")
			continue
		}
		if !IsValidFieldName(name) {
			errs[name] = validation.NewError("validation_identifier", fmt.Sprintf("%s is not a valid field identifier", name))
			continue
		}
		if _, dup := seen[name]; dup {
			errs[name] = validation.NewError("validation_duplicate_field", fmt.Sprintf("%s is declared more than once", name))
			continue
		}
		seen[name] = struct{}{}

		fieldType, err := ParseFieldType(def.Type)
		if err != nil {
			errs[name] = validation.NewError("validation_field_type", err.Error())
			continue
		}
		if (def.MinLength != nil || def.MaxLength != nil) && !fieldType.IsTextual() {
			errs[name] = validation.NewError("validation_bounds", fmt.Sprintf("%s: length bounds only apply to text fields", name))
			continue
		}
		if (def.MinValue != nil || def.MaxValue != nil) && !fieldType.IsNumeric() {
			errs[name] = validation.NewError("validation_bounds", fmt.Sprintf("%s: value bounds only apply to numeric fields", name))
			continue
		}
		if def.MinLength != nil && def.MaxLength != nil && *def.MinLength > *def.MaxLength {
			errs[name] = validation.NewError("validation_bounds", fmt.Sprintf("%s: min_length exceeds max_length", name))
			continue
		}
		if def.MinValue != nil && def.MaxValue != nil && *def.MinValue > *def.MaxValue {
			errs[name] = validation.NewError("validation_bounds", fmt.Sprintf("%s: min_value exceeds max_value", name))
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func fallback(value, alt string) string {
	if strings.TrimSpace(value) == "" {
		return alt
	}
	return value
}
