package repositories

import "errors"

// Sentinel errors shared by all repository implementations. Handlers match on
// these to pick response status codes.
var (
	// ErrDuplicateEmail reports a violation of the unique index on users.email.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrUserNotFound reports a missing user document.
	ErrUserNotFound = errors.New("user not found")

	// ErrItemNotFound reports a missing item document. It also covers items
	// owned by another user and malformed item identifiers, so a caller can
	// never tell whether the item exists at all.
	ErrItemNotFound = errors.New("item not found")
)
