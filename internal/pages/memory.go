package pages

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryPageRepository is an in-memory PageRepository for tests and
// lightweight embedding.
type MemoryPageRepository struct {
	mu    sync.RWMutex
	pages map[uuid.UUID]*Page
	order []uuid.UUID
}

func NewMemoryPageRepository() *MemoryPageRepository {
	return &MemoryPageRepository{pages: make(map[uuid.UUID]*Page)}
}

func (m *MemoryPageRepository) Create(_ context.Context, page *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.pages {
		if strings.EqualFold(existing.Slug, page.Slug) {
			return nil, ErrSlugTaken
		}
	}
	copied := clonePage(page)
	m.pages[copied.ID] = copied
	m.order = append(m.order, copied.ID)
	return clonePage(copied), nil
}

func (m *MemoryPageRepository) GetByID(_ context.Context, id uuid.UUID) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	page, ok := m.pages[id]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: id.String()}
	}
	return clonePage(page), nil
}

func (m *MemoryPageRepository) GetBySlug(_ context.Context, slug string) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, page := range m.pages {
		if strings.EqualFold(page.Slug, slug) {
			return clonePage(page), nil
		}
	}
	return nil, &NotFoundError{Resource: "page", Key: slug}
}

func (m *MemoryPageRepository) List(_ context.Context, q PageQuery) ([]*Page, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*Page, 0, len(m.order))
	for _, id := range m.order {
		page := m.pages[id]
		if q.Status != "" && page.Status != q.Status {
			continue
		}
		if q.Locale != "" && !strings.EqualFold(page.Locale, q.Locale) {
			continue
		}
		matched = append(matched, page)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() > matched[j].ID.String()
	})

	total := len(matched)
	page, pageSize := normalizePaging(q)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	matched = matched[start:end]

	out := make([]*Page, len(matched))
	for i, p := range matched {
		out[i] = clonePage(p)
	}
	return out, total, nil
}

func (m *MemoryPageRepository) Update(_ context.Context, page *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.pages[page.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: page.ID.String()}
	}
	for _, other := range m.pages {
		if other.ID != page.ID && strings.EqualFold(other.Slug, page.Slug) {
			return nil, ErrSlugTaken
		}
	}

	copied := clonePage(page)
	copied.CreatedAt = existing.CreatedAt
	m.pages[page.ID] = copied
	return clonePage(copied), nil
}

func (m *MemoryPageRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pages[id]; !ok {
		return &NotFoundError{Resource: "page", Key: id.String()}
	}
	delete(m.pages, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// MemoryLinkRepository is an in-memory LinkRepository.
type MemoryLinkRepository struct {
	mu    sync.RWMutex
	links map[uuid.UUID]*PageSectionLink
	order []uuid.UUID
}

func NewMemoryLinkRepository() *MemoryLinkRepository {
	return &MemoryLinkRepository{links: make(map[uuid.UUID]*PageSectionLink)}
}

func (m *MemoryLinkRepository) Create(_ context.Context, link *PageSectionLink) (*PageSectionLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneLink(link)
	if copied.Slot == "" {
		copied.Slot = DefaultSlot
	}
	m.links[copied.ID] = copied
	m.order = append(m.order, copied.ID)
	return cloneLink(copied), nil
}

func (m *MemoryLinkRepository) Get(_ context.Context, id uuid.UUID) (*PageSectionLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[id]
	if !ok {
		return nil, &NotFoundError{Resource: "page section link", Key: id.String()}
	}
	return cloneLink(link), nil
}

func (m *MemoryLinkRepository) ListByPage(_ context.Context, pageID uuid.UUID) ([]*PageSectionLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*PageSectionLink, 0)
	for _, id := range m.order {
		link := m.links[id]
		if link.PageID == pageID {
			out = append(out, cloneLink(link))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Slot != out[j].Slot {
			return out[i].Slot < out[j].Slot
		}
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryLinkRepository) MaxOrder(_ context.Context, pageID uuid.UUID, slot string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if slot == "" {
		slot = DefaultSlot
	}
	// An empty slot reports 0 so the first append lands at order 1.
	max := 0
	for _, link := range m.links {
		if link.PageID == pageID && link.Slot == slot && link.DisplayOrder > max {
			max = link.DisplayOrder
		}
	}
	return max, nil
}

func (m *MemoryLinkRepository) UpdateOrder(_ context.Context, pageID uuid.UUID, orders map[uuid.UUID]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, order := range orders {
		link, ok := m.links[id]
		if !ok || link.PageID != pageID {
			return &NotFoundError{Resource: "page section link", Key: id.String()}
		}
		link.DisplayOrder = order
	}
	return nil
}

func (m *MemoryLinkRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[id]; !ok {
		return &NotFoundError{Resource: "page section link", Key: id.String()}
	}
	m.remove(id)
	return nil
}

func (m *MemoryLinkRepository) DeleteByPage(_ context.Context, pageID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, link := range m.links {
		if link.PageID == pageID {
			m.remove(id)
		}
	}
	return nil
}

func (m *MemoryLinkRepository) remove(id uuid.UUID) {
	delete(m.links, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}
