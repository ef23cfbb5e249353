package content

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
)

// FieldType enumerates the value kinds a content type field can declare.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldNumber   FieldType = "number"
	FieldDecimal  FieldType = "decimal"
	FieldBoolean  FieldType = "boolean"
	FieldEmail    FieldType = "email"
	FieldSlug     FieldType = "slug"
	FieldDate     FieldType = "date"
	// FieldMedia stores an opaque URL string; the bytes live elsewhere.
	FieldMedia FieldType = "media"
)

// ParseFieldType validates a field type token.
func ParseFieldType(input string) (FieldType, error) {
	ft := FieldType(strings.ToLower(strings.TrimSpace(input)))
	switch ft {
	case FieldText, FieldTextarea, FieldNumber, FieldDecimal, FieldBoolean, FieldEmail, FieldSlug, FieldDate, FieldMedia:
		return ft, nil
	default:
		return "", fmt.Errorf("content: unknown field type %q", input)
	}
}

// IsTextual reports whether length bounds apply to the field type.
func (t FieldType) IsTextual() bool {
	switch t {
	case FieldText, FieldTextarea, FieldEmail, FieldSlug, FieldMedia:
		return true
	}
	return false
}

// IsNumeric reports whether value bounds apply to the field type.
func (t FieldType) IsNumeric() bool {
	return t == FieldNumber || t == FieldDecimal
}

var (
	fieldNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	emailRe     = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// IsValidFieldName constrains field names to identifier shape. The query
// layer interpolates field names into document-path expressions, so the
// registry must never admit anything else.
func IsValidFieldName(name string) bool {
	return fieldNameRe.MatchString(name)
}

// ValidateData checks a data document against the field definitions.
// Required-ness is only enforced when checkRequired is true (create);
// updates are partial and skip it. A required field is satisfied when the
// value is present either in data or in one of the translation documents.
func ValidateData(fields []*ContentTypeField, data map[string]any, translations []TranslationInput, checkRequired bool) error {
	errs := validation.Errors{}
	byName := make(map[string]*ContentTypeField, len(fields))
	for _, field := range fields {
		byName[field.Name] = field
	}

	for name := range data {
		field, ok := byName[name]
		if !ok {
			errs[name] = validation.NewError("validation_unknown_field", fmt.Sprintf("%s is not a field of this content type", name))
			continue
		}
		if data[name] == nil {
			continue
		}
		if err := validateValue(field, data[name]); err != nil {
			errs[name] = err
		}
	}

	for _, tr := range translations {
		for name, value := range tr.Data {
			field, ok := byName[name]
			if !ok {
				errs[name] = validation.NewError("validation_unknown_field", fmt.Sprintf("%s is not a field of this content type", name))
				continue
			}
			if !field.Translatable {
				errs[name] = validation.NewError("validation_not_translatable", fmt.Sprintf("%s is not translatable", name))
				continue
			}
			if value == nil {
				continue
			}
			if err := validateValue(field, value); err != nil {
				errs[name] = err
			}
		}
	}

	if checkRequired {
		for _, field := range fields {
			if !field.Required {
				continue
			}
			if hasValue(data, field.Name) {
				continue
			}
			satisfied := false
			for _, tr := range translations {
				if field.Translatable && hasValue(tr.Data, field.Name) {
					satisfied = true
					break
				}
			}
			if !satisfied {
				errs[field.Name] = validation.NewError("validation_required", fmt.Sprintf("%s is required", field.Name))
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func hasValue(data map[string]any, name string) bool {
	if data == nil {
		return false
	}
	value, ok := data[name]
	return ok && value != nil
}

// validateValue applies the type-specific rules for one field value.
func validateValue(field *ContentTypeField, value any) error {
	switch field.Type {
	case FieldText, FieldTextarea, FieldMedia:
		text, ok := value.(string)
		if !ok {
			return typeError(field, "a string")
		}
		return validateLength(field, text)
	case FieldEmail:
		text, ok := value.(string)
		if !ok {
			return typeError(field, "a string")
		}
		if !emailRe.MatchString(text) {
			return validation.NewError("validation_email", fmt.Sprintf("%s must be a valid email address", field.Name))
		}
		return validateLength(field, text)
	case FieldSlug:
		text, ok := value.(string)
		if !ok {
			return typeError(field, "a string")
		}
		if !slug.IsValid(text) {
			return validation.NewError("validation_slug", fmt.Sprintf("%s must be a valid slug", field.Name))
		}
		return validateLength(field, text)
	case FieldDate:
		text, ok := value.(string)
		if !ok {
			return typeError(field, "a date string")
		}
		if _, err := parseDate(text); err != nil {
			return validation.NewError("validation_date", fmt.Sprintf("%s must be an ISO date", field.Name))
		}
		return nil
	case FieldBoolean:
		if _, ok := value.(bool); !ok {
			return typeError(field, "a boolean")
		}
		return nil
	case FieldNumber:
		number, ok := toFloat(value)
		if !ok {
			return typeError(field, "a number")
		}
		if number != math.Trunc(number) {
			return validation.NewError("validation_integer", fmt.Sprintf("%s must be a whole number", field.Name))
		}
		return validateBounds(field, number)
	case FieldDecimal:
		number, ok := toFloat(value)
		if !ok {
			return typeError(field, "a number")
		}
		return validateBounds(field, number)
	default:
		return validation.NewError("validation_type", fmt.Sprintf("%s has unsupported type %q", field.Name, field.Type))
	}
}

func typeError(field *ContentTypeField, expected string) error {
	return validation.NewError("validation_type", fmt.Sprintf("%s must be %s", field.Name, expected))
}

// validateLength applies the inclusive min/max length bounds.
func validateLength(field *ContentTypeField, text string) error {
	length := len([]rune(text))
	if field.MinLength != nil && length < *field.MinLength {
		return validation.NewError("validation_min_length", fmt.Sprintf("%s must be at least %d characters", field.Name, *field.MinLength))
	}
	if field.MaxLength != nil && length > *field.MaxLength {
		return validation.NewError("validation_max_length", fmt.Sprintf("%s must be at most %d characters", field.Name, *field.MaxLength))
	}
	return nil
}

// validateBounds applies the inclusive min/max value bounds.
func validateBounds(field *ContentTypeField, number float64) error {
	if field.MinValue != nil && number < *field.MinValue {
		return validation.NewError("validation_min_value", fmt.Sprintf("%s must be at least %v", field.Name, *field.MinValue))
	}
	if field.MaxValue != nil && number > *field.MaxValue {
		return validation.NewError("validation_max_value", fmt.Sprintf("%s must be at most %v", field.Name, *field.MaxValue))
	}
	return nil
}

// PartitionData splits a full data document into base (non-translatable) and
// translatable halves according to the field definitions. Unknown names are
// silently dropped; ValidateData already rejects them upstream.
func PartitionData(fields []*ContentTypeField, data map[string]any) (base map[string]any, translatable map[string]any) {
	base = map[string]any{}
	translatable = map[string]any{}
	if len(data) == 0 {
		return base, translatable
	}
	byName := make(map[string]*ContentTypeField, len(fields))
	for _, field := range fields {
		byName[field.Name] = field
	}
	for name, value := range data {
		field, ok := byName[name]
		if !ok {
			continue
		}
		normalized := normalizeValue(value)
		if field.Translatable {
			translatable[name] = normalized
		} else {
			base[name] = normalized
		}
	}
	return base, translatable
}

// normalizeValue coerces incoming values into the closed storage set:
// string, float64, bool, or nil. Integer-typed Go values arrive from
// callers; JSON decoding already yields float64.
func normalizeValue(value any) any {
	switch typed := value.(type) {
	case nil, string, bool, float64:
		return typed
	case int:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case float32:
		return float64(typed)
	default:
		return value
	}
}

func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	default:
		return 0, false
	}
}

func parseDate(text string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, text); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", text)
}
