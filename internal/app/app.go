// Package app wires the pipeline together and exposes the operations the
// serving layer calls into.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"shoppr/internal/input"
	"shoppr/internal/layout"
	"shoppr/internal/organizer"
	"shoppr/internal/shopping"
)

// editRetryBudget bounds how often an edit is re-applied after losing an
// optimistic-concurrency race before giving up.
const editRetryBudget = 3

// InvalidRequestError reports request input the pipeline refuses to process.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s", e.Reason)
}

func (e *InvalidRequestError) Kind() string { return "invalid_request" }

func (e *InvalidRequestError) Hint() string { return "check the request and try again" }

// ListView is the ordered grouping handed back to the serving layer.
type ListView struct {
	Slug               string           `json:"slug"`
	Supermarket        string           `json:"supermarket,omitempty"`
	SupermarketDisplay string           `json:"supermarket_display,omitempty"`
	Groups             []shopping.Group `json:"groups"`
}

// EditResult is a successful edit plus any non-fatal discrepancies collected
// along the way.
type EditResult struct {
	List     *ListView `json:"list"`
	Warnings []string  `json:"warnings,omitempty"`
}

// Progress is the checked/total counters for a list.
type Progress struct {
	Checked int `json:"checked"`
	Total   int `json:"total"`
}

// App holds the application's dependencies.
type App struct {
	store     shopping.Store
	organizer *organizer.Organizer
	retention time.Duration
	log       *zap.Logger
}

// NewApp creates and initializes a new App instance.
func NewApp(store shopping.Store, org *organizer.Organizer, retention time.Duration, log *zap.Logger) *App {
	return &App{
		store:     store,
		organizer: org,
		retention: retention,
		log:       log,
	}
}

// CreateFromText ingests a free-text shopping list and persists the
// categorized result under a fresh slug.
func (a *App) CreateFromText(ctx context.Context, text, supermarket string) (*ListView, error) {
	if err := checkSupermarket(supermarket); err != nil {
		return nil, err
	}
	req, err := input.NormalizeText(text, supermarket)
	if err != nil {
		return nil, err
	}
	if req.Text == "" {
		return nil, &InvalidRequestError{Reason: "empty shopping list text"}
	}
	return a.createList(ctx, req.Text, supermarket)
}

// CreateFromImage OCRs a photographed list through the vision model and runs
// the extracted text through the same categorization pipeline.
func (a *App) CreateFromImage(ctx context.Context, image []byte, supermarket string) (*ListView, error) {
	if err := checkSupermarket(supermarket); err != nil {
		return nil, err
	}
	req, err := input.NormalizeImage(image, supermarket)
	if err != nil {
		return nil, err
	}

	text, err := a.organizer.ExtractText(ctx, req.Image, req.ImageMIME)
	if err != nil {
		return nil, err
	}
	a.log.Debug("ocr extracted text", zap.Int("bytes", len(text)))

	normalized, err := input.NormalizeText(text, supermarket)
	if err != nil {
		return nil, err
	}
	return a.createList(ctx, normalized.Text, supermarket)
}

func (a *App) createList(ctx context.Context, text, supermarket string) (*ListView, error) {
	l := layout.Get(supermarket)

	items, warnings, err := a.organizer.Categorize(ctx, l, text)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		a.log.Warn("categorize discrepancy", zap.String("warning", w))
	}

	now := time.Now().UTC()
	list := &shopping.ShoppingList{
		Supermarket: supermarket,
		CreatedAt:   now,
		ExpiresAt:   now.Add(a.retention),
		Items:       items,
	}
	if err := a.store.CreateList(ctx, list); err != nil {
		return nil, err
	}

	a.log.Info("created shopping list",
		zap.String("slug", list.Slug),
		zap.String("supermarket", supermarket),
		zap.Int("items", len(items)))
	return a.view(list), nil
}

// GetList returns the current ordered grouping for a slug. Expired lists are
// indistinguishable from unknown ones.
func (a *App) GetList(ctx context.Context, slug string) (*ListView, error) {
	list, err := a.loadLive(ctx, slug)
	if err != nil {
		return nil, err
	}
	return a.view(list), nil
}

// ApplyEdit interprets a natural-language instruction against the list and
// commits the resulting state, retrying the read-apply-write cycle when a
// concurrent mutation wins the race.
func (a *App) ApplyEdit(ctx context.Context, slug, instruction string) (*EditResult, error) {
	list, err := a.loadLive(ctx, slug)
	if err != nil {
		return nil, err
	}

	l := layout.Get(list.Supermarket)
	ops, warnings, err := a.organizer.PlanEdit(ctx, l, list.Items, instruction)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < editRetryBudget; attempt++ {
		newItems, applyWarnings := shopping.ApplyOperations(list.Items, ops, l)

		newRevision, err := a.store.ReplaceItems(ctx, slug, list.Revision, newItems)
		var conflict *shopping.ConcurrencyConflictError
		if errors.As(err, &conflict) {
			a.log.Info("edit lost optimistic race, retrying",
				zap.String("slug", slug),
				zap.Int("attempt", attempt+1))
			list, err = a.loadLive(ctx, slug)
			if err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, err
		}

		list.Items = newItems
		list.Revision = newRevision
		allWarnings := append(warnings, applyWarnings...)
		for _, w := range allWarnings {
			a.log.Warn("edit discrepancy", zap.String("slug", slug), zap.String("warning", w))
		}
		return &EditResult{List: a.view(list), Warnings: allWarnings}, nil
	}

	return nil, &shopping.ConcurrencyConflictError{Slug: slug}
}

// SetItemChecked toggles one item's checked flag.
func (a *App) SetItemChecked(ctx context.Context, slug string, itemID int, checked bool) (*shopping.ShoppingItem, error) {
	if !shopping.ValidSlug(slug) {
		return nil, &InvalidRequestError{Reason: "malformed list id"}
	}
	return a.store.SetItemChecked(ctx, slug, itemID, checked)
}

// DeleteList removes a list and its items.
func (a *App) DeleteList(ctx context.Context, slug string) error {
	if !shopping.ValidSlug(slug) {
		return &InvalidRequestError{Reason: "malformed list id"}
	}
	return a.store.DeleteList(ctx, slug)
}

// GetProgress returns how many items on the list are checked off.
func (a *App) GetProgress(ctx context.Context, slug string) (*Progress, error) {
	if !shopping.ValidSlug(slug) {
		return nil, &InvalidRequestError{Reason: "malformed list id"}
	}
	checked, total, err := a.store.Progress(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &Progress{Checked: checked, Total: total}, nil
}

// GetVersion returns the list's revision counter for change polling.
func (a *App) GetVersion(ctx context.Context, slug string) (int64, error) {
	if !shopping.ValidSlug(slug) {
		return 0, &InvalidRequestError{Reason: "malformed list id"}
	}
	return a.store.Version(ctx, slug)
}

// PurgeExpired deletes lists past their retention window.
func (a *App) PurgeExpired(ctx context.Context) (int, error) {
	return a.store.PurgeExpired(ctx, time.Now().UTC())
}

// loadLive fetches a list and treats expired ones as gone.
func (a *App) loadLive(ctx context.Context, slug string) (*shopping.ShoppingList, error) {
	if !shopping.ValidSlug(slug) {
		return nil, &InvalidRequestError{Reason: "malformed list id"}
	}
	list, err := a.store.GetList(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !list.ExpiresAt.IsZero() && !list.ExpiresAt.After(time.Now().UTC()) {
		return nil, &shopping.NotFoundError{Slug: slug}
	}
	return list, nil
}

func (a *App) view(list *shopping.ShoppingList) *ListView {
	l := layout.Get(list.Supermarket)
	return &ListView{
		Slug:               list.Slug,
		Supermarket:        list.Supermarket,
		SupermarketDisplay: layout.SupermarketDisplay(list.Supermarket),
		Groups:             shopping.GroupItems(list.Items, l),
	}
}

func checkSupermarket(supermarket string) error {
	if supermarket != "" && !layout.ValidSupermarket(supermarket) {
		return &InvalidRequestError{Reason: fmt.Sprintf("unknown supermarket %q", supermarket)}
	}
	return nil
}
