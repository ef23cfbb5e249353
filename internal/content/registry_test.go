package content

import (
	"context"
	"errors"
	"testing"
)

func newTestRegistry() TypeRegistry {
	return NewTypeRegistry(NewMemoryContentTypeRepository())
}

func TestCreateContentType(t *testing.T) {
	registry := newTestRegistry()
	ctx := context.Background()

	ct, err := registry.CreateContentType(ctx, CreateContentTypeInput{
		Name: "testimonial",
		Fields: []FieldDefinition{
			{Name: "quote", Type: "textarea", Translatable: true, Required: true},
			{Name: "author", Type: "text"},
			{Name: "rating", Type: "number", MinValue: floatPtr(1), MaxValue: floatPtr(5)},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ct.DisplayName != "testimonial" {
		t.Fatalf("display name should default to the type name, got %q", ct.DisplayName)
	}

	fields, err := registry.GetFields(ctx, ct.ID)
	if err != nil {
		t.Fatalf("get fields: %v", err)
	}
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	for i, field := range fields {
		if field.Position != i {
			t.Fatalf("fields should keep declaration order, got %d at %d", field.Position, i)
		}
	}

	// Registration is idempotent on name, not silently replaced.
	_, err = registry.CreateContentType(ctx, CreateContentTypeInput{Name: "testimonial"})
	if !errors.Is(err, ErrContentTypeExists) {
		t.Fatalf("expected ErrContentTypeExists, got %v", err)
	}
}

func TestCreateContentTypeDeterministicID(t *testing.T) {
	ctx := context.Background()

	first, err := newTestRegistry().CreateContentType(ctx, CreateContentTypeInput{Name: "faq"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := newTestRegistry().CreateContentType(ctx, CreateContentTypeInput{Name: "faq"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("type id should derive from the name: %s vs %s", first.ID, second.ID)
	}
}

func TestCreateContentTypeValidation(t *testing.T) {
	registry := newTestRegistry()
	ctx := context.Background()

	if _, err := registry.CreateContentType(ctx, CreateContentTypeInput{Name: "  "}); !errors.Is(err, ErrContentTypeNameRequired) {
		t.Fatalf("expected ErrContentTypeNameRequired, got %v", err)
	}
	if _, err := registry.CreateContentType(ctx, CreateContentTypeInput{Name: "bad-name"}); !IsValidationError(err) {
		t.Fatalf("dashed names should be rejected, got %v", err)
	}

	cases := []struct {
		name   string
		fields []FieldDefinition
	}{
		{"duplicate field", []FieldDefinition{
			{Name: "title", Type: "text"},
			{Name: "title", Type: "textarea"},
		}},
		{"invalid identifier", []FieldDefinition{{Name: "with space", Type: "text"}}},
		{"unknown type", []FieldDefinition{{Name: "title", Type: "richtext"}}},
		{"length bounds on number", []FieldDefinition{{Name: "n", Type: "number", MinLength: intPtr(1)}}},
		{"value bounds on text", []FieldDefinition{{Name: "t", Type: "text", MinValue: floatPtr(1)}}},
		{"inverted length bounds", []FieldDefinition{{Name: "t", Type: "text", MinLength: intPtr(5), MaxLength: intPtr(2)}}},
		{"inverted value bounds", []FieldDefinition{{Name: "n", Type: "number", MinValue: floatPtr(5), MaxValue: floatPtr(2)}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := registry.CreateContentType(ctx, CreateContentTypeInput{
				Name:   "candidate",
				Fields: tc.fields,
			})
			if !IsValidationError(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGetContentTypeRequiresName(t *testing.T) {
	registry := newTestRegistry()
	if _, err := registry.GetContentType(context.Background(), ""); !errors.Is(err, ErrContentTypeNameRequired) {
		t.Fatalf("expected ErrContentTypeNameRequired, got %v", err)
	}
}
