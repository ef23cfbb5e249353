package pages

import (
	"errors"
	"fmt"
)

var (
	ErrSlugRequired  = errors.New("pages: slug is required")
	ErrTitleRequired = errors.New("pages: title is required")
	ErrSlugTaken     = errors.New("pages: slug already in use")
	ErrInvalidSlug   = errors.New("pages: slug is not url safe")
	ErrOrderMismatch = errors.New("pages: reorder must mention every linked section exactly once")
)

// NotFoundError represents a missing page or section link.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
