package shopping

import "fmt"

// NotFoundError reports an unknown slug, or an unknown item within a known
// list when ItemID is set.
type NotFoundError struct {
	Slug   string
	ItemID int
}

func (e *NotFoundError) Error() string {
	if e.ItemID != 0 {
		return fmt.Sprintf("item %d not found in list %q", e.ItemID, e.Slug)
	}
	return fmt.Sprintf("shopping list %q not found", e.Slug)
}

// Kind returns the stable machine-readable error kind.
func (e *NotFoundError) Kind() string { return "not_found" }

// Hint returns a human-readable suggestion for the caller.
func (e *NotFoundError) Hint() string {
	return "check the link, the list may have expired"
}

// ConcurrencyConflictError reports that the optimistic revision check failed
// after the retry budget was exhausted.
type ConcurrencyConflictError struct {
	Slug string
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("list %q was modified concurrently", e.Slug)
}

func (e *ConcurrencyConflictError) Kind() string { return "concurrency_conflict" }

func (e *ConcurrencyConflictError) Hint() string {
	return "the list changed while your edit was running, try again"
}
