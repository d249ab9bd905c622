package repositories

import (
	"context"
	"sync"

	"itemvault/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockItemRepository is an in-memory implementation of ItemRepository. It
// lists items in insertion order, mimicking the store-native order of a
// freshly written collection.
type MockItemRepository struct {
	items map[string]models.Item // keyed by hex id
	order []string               // insertion order of ids
	mu    sync.RWMutex
}

// NewMockItemRepository creates a new instance of MockItemRepository.
func NewMockItemRepository() *MockItemRepository {
	return &MockItemRepository{
		items: make(map[string]models.Item),
	}
}

// Create adds a new item, assigning an id when none is set.
func (r *MockItemRepository) Create(ctx context.Context, item *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	key := item.ID.Hex()
	r.items[key] = *item
	r.order = append(r.order, key)
	return nil
}

// List returns the owner's items in insertion order, honoring skip and limit.
func (r *MockItemRepository) List(ctx context.Context, ownerID string, skip, limit int64) ([]models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var owned []models.Item
	for _, key := range r.order {
		if item, ok := r.items[key]; ok && item.OwnerID == ownerID {
			owned = append(owned, item)
		}
	}

	if skip >= int64(len(owned)) {
		return nil, nil
	}
	owned = owned[skip:]
	if limit < int64(len(owned)) {
		owned = owned[:limit]
	}
	return owned, nil
}

// GetByID returns the item if it exists and belongs to the owner.
func (r *MockItemRepository) GetByID(ctx context.Context, ownerID, itemID string) (*models.Item, error) {
	if _, err := primitive.ObjectIDFromHex(itemID); err != nil {
		return nil, ErrItemNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[itemID]
	if !ok || item.OwnerID != ownerID {
		return nil, ErrItemNotFound
	}
	return &item, nil
}

// Update applies the non-nil patch fields and returns the stored result.
func (r *MockItemRepository) Update(ctx context.Context, ownerID, itemID string, patch ItemPatch) (*models.Item, error) {
	if _, err := primitive.ObjectIDFromHex(itemID); err != nil {
		return nil, ErrItemNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[itemID]
	if !ok || item.OwnerID != ownerID {
		return nil, ErrItemNotFound
	}
	if patch.Title != nil {
		item.Title = *patch.Title
	}
	if patch.Description != nil {
		description := *patch.Description
		item.Description = &description
	}
	r.items[itemID] = item
	return &item, nil
}

// Delete removes the item if it exists and belongs to the owner.
func (r *MockItemRepository) Delete(ctx context.Context, ownerID, itemID string) error {
	if _, err := primitive.ObjectIDFromHex(itemID); err != nil {
		return ErrItemNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[itemID]
	if !ok || item.OwnerID != ownerID {
		return ErrItemNotFound
	}
	delete(r.items, itemID)
	for i, key := range r.order {
		if key == itemID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
