package repositories

import (
	"context"

	"itemvault/internal/models"
)

// ItemPatch carries the fields of a partial update. A nil field is left
// untouched on the stored document.
type ItemPatch struct {
	Title       *string
	Description *string
}

// IsEmpty reports whether the patch changes anything at all.
func (p ItemPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil
}

// ItemRepository defines the interface for item data access. Every operation
// is scoped by owner id: an item belonging to another owner behaves exactly
// like a missing one.
type ItemRepository interface {
	// Create inserts the item and fills in the assigned ID.
	Create(ctx context.Context, item *models.Item) error
	// List returns up to limit items owned by ownerID after skipping skip of
	// them, in store-native order.
	List(ctx context.Context, ownerID string, skip, limit int64) ([]models.Item, error)
	// GetByID returns the item or ErrItemNotFound.
	GetByID(ctx context.Context, ownerID, itemID string) (*models.Item, error)
	// Update applies the non-nil patch fields and returns the resulting
	// document. An empty patch returns the current document unchanged, still
	// subject to the existence and ownership check.
	Update(ctx context.Context, ownerID, itemID string, patch ItemPatch) (*models.Item, error)
	// Delete removes the item; ErrItemNotFound unless exactly one document
	// was removed.
	Delete(ctx context.Context, ownerID, itemID string) error
}
