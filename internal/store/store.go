// Package store defines the storage interfaces for clipvault's persistence layer.
// It provides abstractions for clipboard history, runtime settings, and
// user-defined item groups.
package store

import (
	"context"
)

// HistoryStore manages clipboard item persistence.
// Every item row has a search shadow row; implementations must write and
// delete the two together so neither is ever observable without the other.
type HistoryStore interface {
	// Insert stores a new item and its search shadow row in one transaction.
	// The ID is generated by the store and returned.
	// Returns ErrDuplicateHash if an item with the same content hash exists.
	Insert(ctx context.Context, item *NewItem) (string, error)

	// FindAndBump looks up an item by content hash and, if present, advances
	// its UpdatedAt in the same statement. The returned bool reports whether
	// an item was found.
	FindAndBump(ctx context.Context, hash string) (string, bool, error)

	// Get retrieves a single item by ID without blobs.
	// Returns ErrNotFound if the item does not exist.
	Get(ctx context.Context, id string) (*Item, error)

	// GetDetail retrieves an item together with its rich content.
	GetDetail(ctx context.Context, id string) (*ItemDetail, error)

	// GetThumbnail returns the PNG thumbnail of an item, or nil if it has none.
	GetThumbnail(ctx context.Context, id string) ([]byte, error)

	// GetImagePath returns the archived image path of an item, or "" if it has none.
	GetImagePath(ctx context.Context, id string) (string, error)

	// UpdateThumbnail sets the thumbnail of an existing item.
	UpdateThumbnail(ctx context.Context, id string, thumbnail []byte) error

	// ToggleFavorite flips the favorite flag and returns the new value.
	ToggleFavorite(ctx context.Context, id string) (bool, error)

	// Delete removes an item, its shadow row, and its group memberships.
	// Returns ErrNotFound if the item does not exist.
	Delete(ctx context.Context, id string) error

	// List returns items ordered by UpdatedAt (newest first).
	// Thumbnails and rich content are excluded.
	List(ctx context.Context, query ListQuery) ([]*Item, error)

	// Favorites is List restricted to favorited items.
	Favorites(ctx context.Context, query ListQuery) ([]*Item, error)

	// Search finds items whose plain text, file name or source application
	// name contain the query. Queries of three or more characters ignore
	// case across Unicode; shorter ones ignore ASCII case only.
	Search(ctx context.Context, query SearchQuery) ([]*Item, error)

	// Count returns the total number of items in the store.
	Count(ctx context.Context) (int, error)

	// ImagePaths returns every archived image path referenced by an item.
	ImagePaths(ctx context.Context) ([]string, error)

	// RetentionImagePaths returns the image paths of the items Cleanup would
	// remove for the same policy. It does not modify anything.
	RetentionImagePaths(ctx context.Context, policy RetentionPolicy) ([]string, error)

	// Cleanup removes the non-favorited items selected by policy and returns
	// how many item rows were deleted. Favorited items are never removed.
	Cleanup(ctx context.Context, policy RetentionPolicy) (int, error)
}

// SettingsStore manages runtime settings stored as key-value pairs.
type SettingsStore interface {
	// Get retrieves a setting by key.
	// Returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a setting, replacing any existing value.
	Set(ctx context.Context, key, value string) error

	// List returns all settings.
	List(ctx context.Context) (map[string]string, error)

	// Delete removes a setting.
	// Returns ErrNotFound if the key does not exist.
	Delete(ctx context.Context, key string) error
}

// GroupStore manages named item groups.
type GroupStore interface {
	// CreateGroup creates a group with a unique name.
	// Returns ErrDuplicateGroup if the name is taken.
	CreateGroup(ctx context.Context, name string) (*Group, error)

	// ListGroups returns all groups ordered by name.
	ListGroups(ctx context.Context) ([]*Group, error)

	// DeleteGroup removes a group and its memberships. Items are kept.
	DeleteGroup(ctx context.Context, id string) error

	// AddItem adds an item to a group. Adding an existing member is a no-op.
	AddItem(ctx context.Context, groupID, itemID string) error

	// RemoveItem removes an item from a group.
	RemoveItem(ctx context.Context, groupID, itemID string) error

	// Items lists the items of a group with the same ordering as List.
	Items(ctx context.Context, groupID string, query ListQuery) ([]*Item, error)
}

// Store combines the history, settings and group stores.
// Implementations manage their lifecycle as a single unit.
type Store interface {
	History() HistoryStore
	Settings() SettingsStore
	Groups() GroupStore

	// Close releases all resources for the underlying storage.
	Close() error
}
