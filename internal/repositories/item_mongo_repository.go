package repositories

import (
	"context"
	"errors"
	"fmt"

	"itemvault/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const itemsCollection = "items"

// MongoItemRepository is a MongoDB implementation of ItemRepository.
type MongoItemRepository struct {
	coll *mongo.Collection
}

// NewMongoItemRepository creates a new instance of MongoItemRepository.
func NewMongoItemRepository(db *mongo.Database) *MongoItemRepository {
	return &MongoItemRepository{
		coll: db.Collection(itemsCollection),
	}
}

// Create inserts a new item into the database.
func (r *MongoItemRepository) Create(ctx context.Context, item *models.Item) error {
	res, err := r.coll.InsertOne(ctx, item)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		item.ID = oid
	}
	return nil
}

// List retrieves the owner's items in store-native order. No explicit sort is
// applied.
func (r *MongoItemRepository) List(ctx context.Context, ownerID string, skip, limit int64) ([]models.Item, error) {
	opts := options.Find().SetSkip(skip).SetLimit(limit)
	cursor, err := r.coll.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	var items []models.Item
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	return items, nil
}

// GetByID retrieves a single item scoped by owner.
func (r *MongoItemRepository) GetByID(ctx context.Context, ownerID, itemID string) (*models.Item, error) {
	oid, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		// A malformed id is indistinguishable from a missing item.
		return nil, ErrItemNotFound
	}
	var item models.Item
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid, "owner_id": ownerID}).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item %s: %w", itemID, err)
	}
	return &item, nil
}

// Update applies the non-nil patch fields via $set, then refetches. The two
// steps are not atomic: a concurrent delete in between surfaces as
// ErrItemNotFound on the refetch.
func (r *MongoItemRepository) Update(ctx context.Context, ownerID, itemID string, patch ItemPatch) (*models.Item, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, ownerID, itemID)
	}

	oid, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return nil, ErrItemNotFound
	}

	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}

	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid, "owner_id": ownerID}, bson.M{"$set": set}); err != nil {
		return nil, fmt.Errorf("failed to update item %s: %w", itemID, err)
	}
	return r.GetByID(ctx, ownerID, itemID)
}

// Delete removes a single item scoped by owner.
func (r *MongoItemRepository) Delete(ctx context.Context, ownerID, itemID string) error {
	oid, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return ErrItemNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("failed to delete item %s: %w", itemID, err)
	}
	if res.DeletedCount != 1 {
		return ErrItemNotFound
	}
	return nil
}
