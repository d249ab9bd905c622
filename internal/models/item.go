package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Item is a document in the "items" collection. OwnerID references a User by
// its hex identifier; ownership is enforced by query filtering only, there is
// no foreign key in the store.
type Item struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID     string             `bson:"owner_id"`
	Title       string             `bson:"title"`
	Description *string            `bson:"description"`
}

// ItemCreateRequest is the request body for creating an item.
type ItemCreateRequest struct {
	Title       string  `json:"title" validate:"required,min=2,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

// ItemUpdateRequest is the request body for a partial update. A nil field is
// left unchanged on the stored document.
type ItemUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=2,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

// ItemOut is the public view of an item.
type ItemOut struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	OwnerID     string  `json:"owner_id"`
}

// Out converts the stored document into its public view.
func (i *Item) Out() ItemOut {
	return ItemOut{
		ID:          i.ID.Hex(),
		Title:       i.Title,
		Description: i.Description,
		OwnerID:     i.OwnerID,
	}
}
