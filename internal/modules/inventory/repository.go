package inventory

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores inventory items. List, low-stock and category reads only
// see active items.
type Repository interface {
	ListItems(ctx context.Context, f ListFilter) ([]*Item, int, error)
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)
	CreateItem(ctx context.Context, item *Item) error
	UpdateItem(ctx context.Context, item *Item) error
	DeactivateItem(ctx context.Context, id uuid.UUID) error
	ListLowStock(ctx context.Context) ([]*Item, error)
	ListCategories(ctx context.Context) ([]string, error)
}
