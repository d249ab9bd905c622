package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is a document in the "users" collection. The email is stored
// lowercased and kept unique by a store-level index.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"` // Never serialized
}

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// TokenRequest is the form body for the token endpoint.
type TokenRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// UserOut is the public view of a user.
type UserOut struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// TokenResponse carries a freshly issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Out converts the stored document into its public view.
func (u *User) Out() UserOut {
	return UserOut{
		ID:    u.ID.Hex(),
		Email: u.Email,
	}
}
