package shopping

import (
	"context"
	"time"
)

// Store persists shopping lists. It owns slug generation and concurrency
// control: all mutations to one list are serialized through the revision
// counter, mutations to different lists never contend.
type Store interface {
	// CreateList persists a new list atomically with its items, generating
	// a collision-free slug and setting Revision to 1. The passed list is
	// updated in place with the generated slug and revision.
	CreateList(ctx context.Context, list *ShoppingList) error

	// GetList returns a list with its items in insertion order.
	GetList(ctx context.Context, slug string) (*ShoppingList, error)

	// ReplaceItems swaps a list's full item set if the list is still at
	// expectedRevision, returning the new revision. A stale revision yields
	// ConcurrencyConflictError so the caller can re-read and retry.
	ReplaceItems(ctx context.Context, slug string, expectedRevision int64, items []ShoppingItem) (int64, error)

	// SetItemChecked toggles one item's checked flag and bumps the list
	// revision in the same transaction.
	SetItemChecked(ctx context.Context, slug string, itemID int, checked bool) (*ShoppingItem, error)

	// DeleteList removes a list and all its items.
	DeleteList(ctx context.Context, slug string) error

	// Progress returns how many of the list's items are checked.
	Progress(ctx context.Context, slug string) (checked, total int, err error)

	// Version returns the list's current revision for cheap change polling.
	Version(ctx context.Context, slug string) (int64, error)

	// PurgeExpired deletes every list whose expiry is at or before now and
	// returns how many lists were removed.
	PurgeExpired(ctx context.Context, now time.Time) (int, error)

	Close() error
}
