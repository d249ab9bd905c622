package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"itemvault/internal/models"
	"itemvault/internal/repositories"
	"itemvault/pkg/rabbitmq"

	"github.com/google/uuid"
)

// ItemService handles owner-scoped item CRUD. Mutations publish lifecycle
// events to RabbitMQ when a client is wired; publishing is best-effort and
// never fails the request.
type ItemService struct {
	itemRepo repositories.ItemRepository
	mqClient *rabbitmq.Client // nil disables event publishing
}

// NewItemService creates a new ItemService.
func NewItemService(itemRepo repositories.ItemRepository, mqClient *rabbitmq.Client) *ItemService {
	return &ItemService{
		itemRepo: itemRepo,
		mqClient: mqClient,
	}
}

// CreateItem inserts a new item owned by ownerID.
func (s *ItemService) CreateItem(ctx context.Context, ownerID, title string, description *string) (*models.Item, error) {
	item := &models.Item{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	s.publishEvent("item.created", item.ID.Hex(), ownerID)
	return item, nil
}

// ListItems returns the owner's items honoring skip and limit.
func (s *ItemService) ListItems(ctx context.Context, ownerID string, skip, limit int64) ([]models.Item, error) {
	return s.itemRepo.List(ctx, ownerID, skip, limit)
}

// GetItem returns a single item owned by ownerID.
func (s *ItemService) GetItem(ctx context.Context, ownerID, itemID string) (*models.Item, error) {
	return s.itemRepo.GetByID(ctx, ownerID, itemID)
}

// UpdateItem applies a partial patch to an item owned by ownerID.
func (s *ItemService) UpdateItem(ctx context.Context, ownerID, itemID string, patch repositories.ItemPatch) (*models.Item, error) {
	item, err := s.itemRepo.Update(ctx, ownerID, itemID, patch)
	if err != nil {
		return nil, err
	}
	s.publishEvent("item.updated", itemID, ownerID)
	return item, nil
}

// DeleteItem removes an item owned by ownerID.
func (s *ItemService) DeleteItem(ctx context.Context, ownerID, itemID string) error {
	if err := s.itemRepo.Delete(ctx, ownerID, itemID); err != nil {
		return err
	}
	s.publishEvent("item.deleted", itemID, ownerID)
	return nil
}

// publishEvent sends an item lifecycle event when a broker is wired.
// Failures are logged, never surfaced to the caller.
func (s *ItemService) publishEvent(eventType, itemID, ownerID string) {
	if s.mqClient == nil {
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"event_id":    uuid.New().String(),
		"type":        eventType,
		"item_id":     itemID,
		"owner_id":    ownerID,
		"occurred_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", eventType, err)
		return
	}

	if err := s.mqClient.Publish(eventType, body); err != nil {
		log.Printf("Warning: failed to publish %s event for item %s: %v", eventType, itemID, err)
	}
}
