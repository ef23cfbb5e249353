package sections

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Definition describes one registered section type. UID is the stable
// namespaced identifier ("sections.hero"); Schema optionally carries a JSON
// schema document the payloads must satisfy.
type Definition struct {
	ID          uuid.UUID `json:"id"`
	UID         string    `json:"uid"`
	DisplayName string    `json:"display_name"`
	Category    string    `json:"category,omitempty"`
	Active      bool      `json:"active"`
	Schema      string    `json:"schema,omitempty"`
}

// Instance is one stored section of a given type. Data is the type-specific
// payload; where it lives is the storage implementation's business.
type Instance struct {
	ID        uuid.UUID      `json:"id"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Storage persists instances of one section type. Each registered type binds
// its own implementation, letting every type keep rows in its own table.
type Storage interface {
	Create(ctx context.Context, instance *Instance) (*Instance, error)
	Get(ctx context.Context, id uuid.UUID) (*Instance, error)
	Update(ctx context.Context, instance *Instance) (*Instance, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

func cloneInstance(in *Instance) *Instance {
	if in == nil {
		return nil
	}
	out := *in
	if in.Data != nil {
		out.Data = make(map[string]any, len(in.Data))
		for name, value := range in.Data {
			out.Data[name] = value
		}
	}
	return &out
}
