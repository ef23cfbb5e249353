package sections

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStorage is an in-memory Storage for one section type.
type MemoryStorage struct {
	mu        sync.RWMutex
	typeUID   string
	instances map[uuid.UUID]*Instance
}

func NewMemoryStorage(typeUID string) *MemoryStorage {
	return &MemoryStorage{
		typeUID:   typeUID,
		instances: make(map[uuid.UUID]*Instance),
	}
}

func (m *MemoryStorage) Create(_ context.Context, instance *Instance) (*Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneInstance(instance)
	copied.Type = m.typeUID
	m.instances[copied.ID] = copied
	return cloneInstance(copied), nil
}

func (m *MemoryStorage) Get(_ context.Context, id uuid.UUID) (*Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	instance, ok := m.instances[id]
	if !ok {
		return nil, &NotFoundError{Resource: "section", Key: id.String()}
	}
	return cloneInstance(instance), nil
}

func (m *MemoryStorage) Update(_ context.Context, instance *Instance) (*Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.instances[instance.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "section", Key: instance.ID.String()}
	}
	existing.Data = cloneInstance(instance).Data
	existing.UpdatedAt = instance.UpdatedAt
	return cloneInstance(existing), nil
}

func (m *MemoryStorage) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.instances[id]; !ok {
		return &NotFoundError{Resource: "section", Key: id.String()}
	}
	delete(m.instances, id)
	return nil
}

// Len reports how many instances are stored; tests use it to assert cascade
// deletes.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.instances)
}
