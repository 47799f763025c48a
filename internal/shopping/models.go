// Package shopping holds the core domain model: lists, items, the area
// orderer and the edit applier, plus the Store interface they are persisted
// through.
package shopping

import "time"

// ShoppingItem is a single entry on a list. IDs are unique within their list
// and monotonically increasing; Position records insertion order and stays
// stable across edits.
type ShoppingItem struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
	Area     string `json:"area"`
	Checked  bool   `json:"checked"`
	Position int    `json:"-"`
}

// ShoppingList is a persisted list identified by its slug. Revision strictly
// increases on every mutation and is the basis for optimistic-concurrency
// checks.
type ShoppingList struct {
	Slug        string
	Supermarket string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Revision    int64
	Items       []ShoppingItem
}

// Group is one area's worth of items, ordered for walking the store.
type Group struct {
	Area        string         `json:"area"`
	AreaDisplay string         `json:"area_display"`
	Items       []ShoppingItem `json:"items"`
}
