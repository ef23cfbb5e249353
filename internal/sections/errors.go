package sections

import (
	"errors"
	"fmt"
)

var (
	ErrTypeUIDRequired = errors.New("sections: section type uid is required")
	ErrTypeExists      = errors.New("sections: section type already registered")
	ErrStorageRequired = errors.New("sections: section type storage is required")
)

// InvalidUIDError reports a section type uid that is not a namespaced
// dot-string such as "sections.hero".
type InvalidUIDError struct {
	UID string
}

func (e *InvalidUIDError) Error() string {
	return fmt.Sprintf("sections: %q is not a valid section type uid", e.UID)
}

// NotFoundError represents a missing section type or instance.
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

// PayloadError wraps a schema validation failure for one section payload.
type PayloadError struct {
	Type string
	Err  error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("sections: invalid payload for %s: %v", e.Type, e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }

func IsPayloadError(err error) bool {
	var payload *PayloadError
	return errors.As(err, &payload)
}
