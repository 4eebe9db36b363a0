package store

import (
	"context"

	"github.com/dreamlister/dreamlister-api/internal/domain"
)

// ItemStore defines the interface for item data persistence. Every operation
// is scoped to an owner username; no call can see or touch another user's
// rows.
type ItemStore interface {
	// ListByOwner retrieves all items owned by the given username, ordered
	// by item ID. Returns an empty slice, not an error, when the user owns
	// no items.
	ListByOwner(ctx context.Context, username string) ([]*domain.Item, error)

	// GetByID retrieves a single item by owner and item ID.
	// Returns ErrItemNotFound if no matching row exists.
	GetByID(ctx context.Context, username string, itemID int64) (*domain.Item, error)

	// Create inserts a new item owned by username with the given
	// allow-listed fields. Returns the new item's ID.
	Create(ctx context.Context, username string, fields domain.Fields) (int64, error)

	// Update sets the given allow-listed fields on the item matching owner
	// and ID. Returns ErrItemNotFound if no row matched.
	Update(ctx context.Context, username string, itemID int64, fields domain.Fields) error

	// Delete removes the item matching owner and ID. Deleting an absent
	// row is not an error; the operation is idempotent.
	Delete(ctx context.Context, username string, itemID int64) error
}
