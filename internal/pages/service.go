package pages

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/goliatone/go-sitekit/internal/database"
	"github.com/goliatone/go-sitekit/internal/domain"
	"github.com/goliatone/go-sitekit/internal/logging"
	"github.com/goliatone/go-sitekit/internal/sections"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

// CreatePageRequest captures a new page. Slug defaults to a normalized form
// of the title when empty.
type CreatePageRequest struct {
	Slug      string
	Title     string
	ShortName string
	Locale    string
	Metadata  map[string]any
}

// UpdatePageRequest is a partial page update: nil fields stay untouched.
type UpdatePageRequest struct {
	Slug      *string
	Title     *string
	ShortName *string
	Locale    *string
	Metadata  map[string]any
}

// AddSectionRequest attaches a new section instance to a page slot. A nil
// Order appends after the slot's current maximum.
type AddSectionRequest struct {
	Type  string
	Slot  string
	Data  map[string]any
	Order *int
}

// FindOptions tune page reads.
type FindOptions struct {
	// Preview includes non-published pages.
	Preview bool
}

// Service composes pages out of typed section instances.
type Service interface {
	FindPages(ctx context.Context, q PageQuery) (*PageResult, error)
	FindPage(ctx context.Context, idOrSlug string, opts FindOptions) (*PageView, error)
	CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error)
	UpdatePage(ctx context.Context, id uuid.UUID, req UpdatePageRequest) (*Page, error)
	DeletePage(ctx context.Context, id uuid.UUID) error
	PublishPage(ctx context.Context, id uuid.UUID) (*Page, error)
	UnpublishPage(ctx context.Context, id uuid.UUID) (*Page, error)
	ArchivePage(ctx context.Context, id uuid.UUID) (*Page, error)
	AddSection(ctx context.Context, pageID uuid.UUID, req AddSectionRequest) (*PageSection, error)
	UpdateSection(ctx context.Context, linkID uuid.UUID, data map[string]any) (*PageSection, error)
	RemoveSection(ctx context.Context, linkID uuid.UUID) error
	// ReorderSections assigns orders 1..n following the id list, which must
	// cover the slot's links exactly.
	ReorderSections(ctx context.Context, pageID uuid.UUID, slot string, linkIDs []uuid.UUID) error
	ListSectionTypes(ctx context.Context) []sections.Definition
}

// ServiceOption configures the page service.
type ServiceOption func(*service)

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithIDGenerator(generator func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithAuthorizer(authorizer interfaces.Authorizer) ServiceOption {
	return func(s *service) {
		if authorizer != nil {
			s.authorizer = authorizer
		}
	}
}

func WithRevalidateHook(hook interfaces.RevalidateHook) ServiceOption {
	return func(s *service) {
		if hook != nil {
			s.revalidate = hook
		}
	}
}

type service struct {
	pages      PageRepository
	links      LinkRepository
	registry   *sections.Registry
	tx         database.TxRunner
	now        func() time.Time
	id         func() uuid.UUID
	logger     interfaces.Logger
	authorizer interfaces.Authorizer
	revalidate interfaces.RevalidateHook
}

// NewService wires the page composition service. The TxRunner spans the page,
// link, and section stores so attach and cascade operations stay atomic.
func NewService(pages PageRepository, links LinkRepository, registry *sections.Registry, tx database.TxRunner, opts ...ServiceOption) Service {
	s := &service{
		pages:      pages,
		links:      links,
		registry:   registry,
		tx:         tx,
		now:        time.Now,
		id:         uuid.New,
		logger:     logging.NoOp(),
		authorizer: interfaces.AllowAllAuthorizer{},
		revalidate: interfaces.NoopRevalidate,
	}
	if s.tx == nil {
		s.tx = database.PassthroughTxRunner{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) FindPages(ctx context.Context, q PageQuery) (*PageResult, error) {
	records, total, err := s.pages.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &PageResult{Data: records, Total: total}, nil
}

// FindPage resolves a page by id or slug and assembles its sections. A link
// whose instance cannot be fetched is logged and skipped rather than failing
// the whole page.
func (s *service) FindPage(ctx context.Context, idOrSlug string, opts FindOptions) (*PageView, error) {
	page, err := s.lookupPage(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if !opts.Preview && page.Status != domain.StatusPublished {
		return nil, &NotFoundError{Resource: "page", Key: idOrSlug}
	}

	links, err := s.links.ListByPage(ctx, page.ID)
	if err != nil {
		return nil, err
	}

	view := &PageView{Page: page, Sections: make([]*PageSection, 0, len(links))}
	for _, link := range links {
		storage, err := s.registry.ResolveStorage(link.SectionType)
		if err != nil {
			s.logger.Warn("skipping section with unregistered type",
				"page_id", page.ID, "link_id", link.ID, "section_type", link.SectionType)
			continue
		}
		instance, err := storage.Get(ctx, link.SectionID)
		if err != nil {
			s.logger.Warn("skipping unresolvable section",
				"page_id", page.ID, "link_id", link.ID, "section_id", link.SectionID, "error", err)
			continue
		}
		view.Sections = append(view.Sections, &PageSection{
			LinkID:       link.ID,
			Slot:         link.Slot,
			DisplayOrder: link.DisplayOrder,
			Section:      instance,
		})
	}
	return view, nil
}

func (s *service) CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error) {
	if err := s.authorizer.RequireWrite(ctx, "pages"); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	pageSlug, err := s.resolveSlug(req.Slug, title)
	if err != nil {
		return nil, err
	}
	if existing, err := s.pages.GetBySlug(ctx, pageSlug); err == nil && existing != nil {
		return nil, ErrSlugTaken
	} else if err != nil && !IsNotFound(err) {
		return nil, err
	}

	now := s.now()
	page := &Page{
		ID:        s.id(),
		Slug:      pageSlug,
		Title:     title,
		ShortName: strings.TrimSpace(req.ShortName),
		Status:    domain.StatusDraft,
		Locale:    strings.TrimSpace(req.Locale),
		Metadata:  req.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.pages.Create(ctx, page)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("page created", "page_id", created.ID, "slug", created.Slug)
	s.revalidate(ctx, "page:"+created.Slug)
	return created, nil
}

func (s *service) UpdatePage(ctx context.Context, id uuid.UUID, req UpdatePageRequest) (*Page, error) {
	if err := s.authorizer.RequireWrite(ctx, "pages"); err != nil {
		return nil, err
	}

	page, err := s.pages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousSlug := page.Slug

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		page.Title = title
	}
	if req.Slug != nil {
		next, err := s.resolveSlug(*req.Slug, page.Title)
		if err != nil {
			return nil, err
		}
		if !strings.EqualFold(next, page.Slug) {
			if existing, err := s.pages.GetBySlug(ctx, next); err == nil && existing != nil {
				return nil, ErrSlugTaken
			} else if err != nil && !IsNotFound(err) {
				return nil, err
			}
		}
		page.Slug = next
	}
	if req.ShortName != nil {
		page.ShortName = strings.TrimSpace(*req.ShortName)
	}
	if req.Locale != nil {
		page.Locale = strings.TrimSpace(*req.Locale)
	}
	if req.Metadata != nil {
		page.Metadata = req.Metadata
	}
	page.UpdatedAt = s.now()

	updated, err := s.pages.Update(ctx, page)
	if err != nil {
		return nil, err
	}

	tags := []string{"page:" + updated.Slug}
	if previousSlug != updated.Slug {
		tags = append(tags, "page:"+previousSlug)
	}
	s.revalidate(ctx, tags...)
	return updated, nil
}

// DeletePage removes the page, its links, and every owned section instance
// in one transaction.
func (s *service) DeletePage(ctx context.Context, id uuid.UUID) error {
	if err := s.authorizer.RequireWrite(ctx, "pages"); err != nil {
		return err
	}

	page, err := s.pages.GetByID(ctx, id)
	if err != nil {
		return err
	}
	links, err := s.links.ListByPage(ctx, id)
	if err != nil {
		return err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, link := range links {
			storage, err := s.registry.ResolveStorage(link.SectionType)
			if err != nil {
				s.logger.Warn("orphaned section left behind on page delete",
					"page_id", id, "section_type", link.SectionType)
				continue
			}
			if err := storage.Delete(ctx, link.SectionID); err != nil && !sections.IsNotFound(err) {
				return err
			}
		}
		if err := s.links.DeleteByPage(ctx, id); err != nil {
			return err
		}
		return s.pages.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("page deleted", "page_id", id, "slug", page.Slug)
	s.revalidate(ctx, "page:"+page.Slug)
	return nil
}

func (s *service) PublishPage(ctx context.Context, id uuid.UUID) (*Page, error) {
	return s.transitionPage(ctx, id, domain.StatusPublished)
}

func (s *service) UnpublishPage(ctx context.Context, id uuid.UUID) (*Page, error) {
	return s.transitionPage(ctx, id, domain.StatusDraft)
}

func (s *service) ArchivePage(ctx context.Context, id uuid.UUID) (*Page, error) {
	return s.transitionPage(ctx, id, domain.StatusArchived)
}

func (s *service) transitionPage(ctx context.Context, id uuid.UUID, target domain.Status) (*Page, error) {
	if err := s.authorizer.RequireWrite(ctx, "pages"); err != nil {
		return nil, err
	}

	page, err := s.pages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if page.Status == target {
		return page, nil
	}

	if err := domain.Transition(page.Status, target); err != nil {
		return nil, err
	}

	now := s.now()
	page.Status = target
	page.UpdatedAt = now
	if target == domain.StatusPublished {
		page.PublishedAt = &now
	}

	updated, err := s.pages.Update(ctx, page)
	if err != nil {
		return nil, err
	}

	s.logger.Info("page status changed", "page_id", id, "slug", updated.Slug, "status", target)
	s.revalidate(ctx, "page:"+updated.Slug)
	return updated, nil
}

// AddSection validates the payload against the type's schema, creates the
// instance in the type's storage, and appends the link at the end of the
// slot, all inside one transaction.
func (s *service) AddSection(ctx context.Context, pageID uuid.UUID, req AddSectionRequest) (*PageSection, error) {
	if err := s.authorizer.RequireWrite(ctx, "pages"); err != nil {
		return nil, err
	}

	page, err := s.pages.GetByID(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if err := s.registry.ValidatePayload(req.Type, req.Data); err != nil {
		return nil, err
	}
	storage, err := s.registry.ResolveStorage(req.Type)
	if err != nil {
		return nil, err
	}

	slot := req.Slot
	if slot == "" {
		slot = DefaultSlot
	}

	now := s.now()
	var result *PageSection
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var order int
		if req.Order != nil {
			order = *req.Order
		} else {
			maxOrder, err := s.links.MaxOrder(ctx, pageID, slot)
			if err != nil {
				return err
			}
			order = maxOrder + 1
		}

		instance, err := storage.Create(ctx, &sections.Instance{
			ID:        s.id(),
			Type:      req.Type,
			Data:      req.Data,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}

		link, err := s.links.Create(ctx, &PageSectionLink{
			ID:           s.id(),
			PageID:       pageID,
			SectionID:    instance.ID,
			SectionType:  req.Type,
			Slot:         slot,
			DisplayOrder: order,
			CreatedAt:    now,
		})
		if err != nil {
			return err
		}

		result = &PageSection{
			LinkID:       link.ID,
			Slot:         link.Slot,
			DisplayOrder: link.DisplayOrder,
			Section:      instance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.revalidate(ctx, "page:"+page.Slug)
	return result, nil
}

func (s *service) UpdateSection(ctx context.Context, linkID uuid.UUID, data map[string]any) (*PageSection, error) {
	if err := s.authorizer.RequireWrite(ctx, "pages"); err != nil {
		return nil, err
	}

	link, err := s.links.Get(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if err := s.registry.ValidatePayload(link.SectionType, data); err != nil {
		return nil, err
	}
	storage, err := s.registry.ResolveStorage(link.SectionType)
	if err != nil {
		return nil, err
	}

	instance, err := storage.Update(ctx, &sections.Instance{
		ID:        link.SectionID,
		Type:      link.SectionType,
		Data:      data,
		UpdatedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}

	s.revalidateForPage(ctx, link.PageID)
	return &PageSection{
		LinkID:       link.ID,
		Slot:         link.Slot,
		DisplayOrder: link.DisplayOrder,
		Section:      instance,
	}, nil
}

// RemoveSection detaches and destroys one section: the link goes first so a
// failed instance delete can never leave a dangling reference.
func (s *service) RemoveSection(ctx context.Context, linkID uuid.UUID) error {
	if err := s.authorizer.RequireWrite(ctx, "pages"); err != nil {
		return err
	}

	link, err := s.links.Get(ctx, linkID)
	if err != nil {
		return err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.links.Delete(ctx, linkID); err != nil {
			return err
		}
		storage, err := s.registry.ResolveStorage(link.SectionType)
		if err != nil {
			s.logger.Warn("section instance left behind on detach",
				"link_id", linkID, "section_type", link.SectionType)
			return nil
		}
		if err := storage.Delete(ctx, link.SectionID); err != nil && !sections.IsNotFound(err) {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.revalidateForPage(ctx, link.PageID)
	return nil
}

// ReorderSections rewrites the display order of one slot to 1..n. The id
// list must cover the slot's links exactly; partial or foreign ids are
// rejected.
func (s *service) ReorderSections(ctx context.Context, pageID uuid.UUID, slot string, linkIDs []uuid.UUID) error {
	if err := s.authorizer.RequireWrite(ctx, "pages"); err != nil {
		return err
	}
	if slot == "" {
		slot = DefaultSlot
	}

	links, err := s.links.ListByPage(ctx, pageID)
	if err != nil {
		return err
	}
	current := map[uuid.UUID]struct{}{}
	for _, link := range links {
		if link.Slot == slot {
			current[link.ID] = struct{}{}
		}
	}
	if len(linkIDs) != len(current) {
		return ErrOrderMismatch
	}

	orders := make(map[uuid.UUID]int, len(linkIDs))
	for position, id := range linkIDs {
		if _, ok := current[id]; !ok {
			return ErrOrderMismatch
		}
		if _, dup := orders[id]; dup {
			return ErrOrderMismatch
		}
		orders[id] = position + 1
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.links.UpdateOrder(ctx, pageID, orders)
	})
	if err != nil {
		return err
	}

	s.revalidateForPage(ctx, pageID)
	return nil
}

func (s *service) ListSectionTypes(context.Context) []sections.Definition {
	return s.registry.List()
}

func (s *service) lookupPage(ctx context.Context, idOrSlug string) (*Page, error) {
	if id, err := uuid.Parse(idOrSlug); err == nil {
		return s.pages.GetByID(ctx, id)
	}
	return s.pages.GetBySlug(ctx, idOrSlug)
}

func (s *service) resolveSlug(raw, title string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		normalized, err := slug.Normalize(title)
		if err != nil || normalized == "" {
			return "", ErrSlugRequired
		}
		return normalized, nil
	}
	if !slug.IsValid(trimmed) {
		return "", ErrInvalidSlug
	}
	return trimmed, nil
}

func (s *service) revalidateForPage(ctx context.Context, pageID uuid.UUID) {
	page, err := s.pages.GetByID(ctx, pageID)
	if err != nil {
		s.revalidate(ctx, "page:"+pageID.String())
		return
	}
	s.revalidate(ctx, "page:"+page.Slug)
}
