package sections

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-sitekit/internal/identity"
)

var uidRe = regexp.MustCompile(`^[a-z][a-z0-9_-]*(\.[a-z][a-z0-9_-]*)+$`)

// IsValidUID reports whether uid is a namespaced dot-string.
func IsValidUID(uid string) bool {
	return uidRe.MatchString(uid)
}

type registration struct {
	def      Definition
	storage  Storage
	compiled *jsonschema.Schema
}

// Registry is the section type registry: it owns the known Definitions,
// dispatches payload validation against each type's schema, and resolves the
// storage implementation the type's instances live in.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*registration
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*registration)}
}

// Register binds a section type to its storage. The definition's schema, when
// present, is compiled once here so ValidatePayload stays cheap.
func (r *Registry) Register(def Definition, storage Storage) error {
	uid := strings.TrimSpace(def.UID)
	if uid == "" {
		return ErrTypeUIDRequired
	}
	if !IsValidUID(uid) {
		return &InvalidUIDError{UID: uid}
	}
	if storage == nil {
		return ErrStorageRequired
	}

	reg := &registration{def: def, storage: storage}
	reg.def.UID = uid
	if reg.def.ID == uuid.Nil {
		reg.def.ID = identity.SectionTypeUUID(uid)
	}
	if reg.def.DisplayName == "" {
		reg.def.DisplayName = uid
	}

	if schema := strings.TrimSpace(def.Schema); schema != "" {
		compiled, err := jsonschema.CompileString(uid+".schema.json", schema)
		if err != nil {
			return fmt.Errorf("sections: compile schema for %s: %w", uid, err)
		}
		reg.compiled = compiled
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[uid]; exists {
		return ErrTypeExists
	}
	r.types[uid] = reg
	return nil
}

// List returns the active definitions ordered by category then display name.
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Definition, 0, len(r.types))
	for _, reg := range r.types {
		if !reg.def.Active {
			continue
		}
		out = append(out, reg.def)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].DisplayName < out[j].DisplayName
	})
	return out
}

// Get returns the definition for uid. Inactive types behave as unregistered
// so composition code cannot attach retired sections.
func (r *Registry) Get(uid string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.types[uid]
	if !ok || !reg.def.Active {
		return Definition{}, &NotFoundError{Resource: "section type", Key: uid}
	}
	return reg.def, nil
}

// ResolveStorage returns the storage bound to uid. Unlike Get it also serves
// inactive types: existing instances stay readable after retirement.
func (r *Registry) ResolveStorage(uid string) (Storage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.types[uid]
	if !ok {
		return nil, &NotFoundError{Resource: "section type", Key: uid}
	}
	return reg.storage, nil
}

// ValidatePayload checks data against the type's schema. Types registered
// without a schema accept any document.
func (r *Registry) ValidatePayload(uid string, data map[string]any) error {
	r.mu.RLock()
	reg, ok := r.types[uid]
	r.mu.RUnlock()

	if !ok || !reg.def.Active {
		return &NotFoundError{Resource: "section type", Key: uid}
	}
	if reg.compiled == nil {
		return nil
	}

	// Round-trip through encoding/json so payload values use the generic
	// types the validator expects.
	raw, err := json.Marshal(data)
	if err != nil {
		return &PayloadError{Type: uid, Err: err}
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &PayloadError{Type: uid, Err: err}
	}
	if err := reg.compiled.Validate(doc); err != nil {
		return &PayloadError{Type: uid, Err: err}
	}
	return nil
}

// Deactivate hides a type from Get/List/ValidatePayload while keeping its
// storage resolvable for existing instances.
func (r *Registry) Deactivate(uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.types[uid]
	if !ok {
		return &NotFoundError{Resource: "section type", Key: uid}
	}
	reg.def.Active = false
	return nil
}
