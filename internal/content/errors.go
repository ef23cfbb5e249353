package content

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrContentTypeNameRequired = errors.New("content: content type name is required")
	ErrContentTypeExists       = errors.New("content: content type already exists")
	ErrDuplicateFieldName      = errors.New("content: duplicate field name")
	ErrUnknownLocale           = errors.New("content: unknown locale")
	ErrDuplicateLocale         = errors.New("content: duplicate locale provided")
	ErrEntryIDRequired         = errors.New("content: entry id required")
	ErrLocaleRequired          = errors.New("content: locale required to address translatable fields")
)

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err is a NotFoundError from any sitekit package.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// ValidationErrors is the structured validation failure shape: a map keyed by
// the offending field name, as produced by ozzo-validation.
type ValidationErrors = validation.Errors

// IsValidationError reports whether err carries field-level validation failures.
func IsValidationError(err error) bool {
	var verrs validation.Errors
	return errors.As(err, &verrs)
}

// fieldError builds a single-field validation failure.
func fieldError(field, code, message string) validation.Errors {
	return validation.Errors{field: validation.NewError(code, message)}
}
