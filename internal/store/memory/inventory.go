package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/modules/inventory"
)

func (s *Store) ListItems(_ context.Context, f inventory.ListFilter) ([]*inventory.Item, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := []*inventory.Item{}
	for _, i := range s.activeItems() {
		if f.Category != "" && i.Category != f.Category {
			continue
		}
		if f.LowStock && !i.AtOrBelowThreshold() {
			continue
		}
		cp := *i
		matched = append(matched, &cp)
	}
	sortBy(matched, func(a, b *inventory.Item) bool { return a.MaterialName < b.MaterialName })
	return page(matched, f.Offset(), f.Limit), len(matched), nil
}

func (s *Store) GetItem(_ context.Context, id uuid.UUID) (*inventory.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.items[id]
	if !ok {
		return nil, apperr.NotFound("inventory item not found")
	}
	cp := *i
	return &cp, nil
}

func (s *Store) CreateItem(_ context.Context, i *inventory.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i.CreatedAt, i.UpdatedAt = s.now(), s.now()
	cp := *i
	s.items[i.ID] = &cp
	return nil
}

func (s *Store) UpdateItem(_ context.Context, i *inventory.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.items[i.ID]
	if !ok {
		return apperr.NotFound("inventory item not found")
	}
	i.CreatedAt, i.UpdatedAt = cur.CreatedAt, s.now()
	cp := *i
	s.items[i.ID] = &cp
	return nil
}

func (s *Store) DeactivateItem(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.items[id]
	if !ok {
		return apperr.NotFound("inventory item not found")
	}
	i.IsActive = false
	i.UpdatedAt = s.now()
	return nil
}

func (s *Store) ListLowStock(context.Context) ([]*inventory.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*inventory.Item{}
	for _, i := range s.activeItems() {
		if i.AtOrBelowThreshold() {
			cp := *i
			out = append(out, &cp)
		}
	}
	sortBy(out, func(a, b *inventory.Item) bool { return a.CurrentStock.LessThan(b.CurrentStock) })
	return out, nil
}

func (s *Store) ListCategories(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]bool{}
	out := []string{}
	for _, i := range s.activeItems() {
		if !seen[i.Category] {
			seen[i.Category] = true
			out = append(out, i.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

// oldestActiveItem is the item a named material line draws stock from.
func (s *Store) oldestActiveItem(name string) *inventory.Item {
	var found *inventory.Item
	for _, i := range s.activeItems() {
		if i.MaterialName == name && (found == nil || i.CreatedAt.Before(found.CreatedAt)) {
			found = i
		}
	}
	return found
}

func (s *Store) activeItems() []*inventory.Item {
	out := make([]*inventory.Item, 0, len(s.items))
	for _, i := range s.items {
		if i.IsActive {
			out = append(out, i)
		}
	}
	return out
}
