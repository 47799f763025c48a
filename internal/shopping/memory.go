package shopping

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used by tests and ephemeral runs. It
// mirrors the SQLite store's revision semantics exactly.
type MemoryStore struct {
	mu    sync.RWMutex
	lists map[string]*ShoppingList
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lists: make(map[string]*ShoppingList)}
}

func (s *MemoryStore) CreateList(ctx context.Context, list *ShoppingList) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("create list: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug, err := NewSlug()
		if err != nil {
			return err
		}
		if _, taken := s.lists[slug]; taken {
			continue
		}
		list.Slug = slug
		list.Revision = 1
		s.lists[slug] = copyList(list)
		return nil
	}
	return fmt.Errorf("slug space exhausted after %d attempts", maxSlugAttempts)
}

func (s *MemoryStore) GetList(ctx context.Context, slug string) (*ShoppingList, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	list, ok := s.lists[slug]
	if !ok {
		return nil, &NotFoundError{Slug: slug}
	}
	return copyList(list), nil
}

func (s *MemoryStore) ReplaceItems(ctx context.Context, slug string, expectedRevision int64, items []ShoppingItem) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("replace items: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[slug]
	if !ok {
		return 0, &NotFoundError{Slug: slug}
	}
	if list.Revision != expectedRevision {
		return 0, &ConcurrencyConflictError{Slug: slug}
	}
	list.Items = make([]ShoppingItem, len(items))
	copy(list.Items, items)
	list.Revision++
	return list.Revision, nil
}

func (s *MemoryStore) SetItemChecked(ctx context.Context, slug string, itemID int, checked bool) (*ShoppingItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("set item checked: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[slug]
	if !ok {
		return nil, &NotFoundError{Slug: slug}
	}
	for i := range list.Items {
		if list.Items[i].ID == itemID {
			list.Items[i].Checked = checked
			list.Revision++
			item := list.Items[i]
			return &item, nil
		}
	}
	return nil, &NotFoundError{Slug: slug, ItemID: itemID}
}

func (s *MemoryStore) DeleteList(ctx context.Context, slug string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[slug]; !ok {
		return &NotFoundError{Slug: slug}
	}
	delete(s.lists, slug)
	return nil
}

func (s *MemoryStore) Progress(ctx context.Context, slug string) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, fmt.Errorf("progress: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	list, ok := s.lists[slug]
	if !ok {
		return 0, 0, &NotFoundError{Slug: slug}
	}
	checked := 0
	for _, it := range list.Items {
		if it.Checked {
			checked++
		}
	}
	return checked, len(list.Items), nil
}

func (s *MemoryStore) Version(ctx context.Context, slug string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("version: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	list, ok := s.lists[slug]
	if !ok {
		return 0, &NotFoundError{Slug: slug}
	}
	return list.Revision, nil
}

func (s *MemoryStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("purge expired: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for slug, list := range s.lists {
		if !list.ExpiresAt.After(now) {
			delete(s.lists, slug)
			purged++
		}
	}
	return purged, nil
}

func (s *MemoryStore) Close() error { return nil }

func copyList(l *ShoppingList) *ShoppingList {
	out := *l
	out.Items = make([]ShoppingItem, len(l.Items))
	copy(out.Items, l.Items)
	return &out
}
