package repositories

import (
	"context"

	"itemvault/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// EnsureIndexes creates the unique email index. Idempotent; called once
	// at startup before the first registration can arrive.
	EnsureIndexes(ctx context.Context) error
	// Create inserts the user and fills in the assigned ID. Returns
	// ErrDuplicateEmail when the email is already taken.
	Create(ctx context.Context, user *models.User) error
	// GetByEmail looks up a user by its lowercased email. Returns
	// ErrUserNotFound when no document matches.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
