package shopping

import (
	"testing"

	"shoppr/internal/layout"
)

func TestGroupItemsFollowsWalkOrder(t *testing.T) {
	l := layout.Get("generic")
	items := []ShoppingItem{
		{ID: 1, Name: "Milk", Quantity: "2L", Area: "dairy", Position: 0},
		{ID: 2, Name: "Bread", Area: "bakery", Position: 1},
		{ID: 3, Name: "Eggs", Area: "dairy", Position: 2},
		{ID: 4, Name: "Bananas", Area: "produce", Position: 3},
	}

	groups := GroupItems(items, l)

	wantAreas := []string{"produce", "bakery", "dairy"}
	if len(groups) != len(wantAreas) {
		t.Fatalf("got %d groups, want %d", len(groups), len(wantAreas))
	}
	for i, want := range wantAreas {
		if groups[i].Area != want {
			t.Errorf("group %d has area %q, want %q", i, groups[i].Area, want)
		}
	}

	dairy := groups[2]
	if len(dairy.Items) != 2 {
		t.Fatalf("dairy group has %d items, want 2", len(dairy.Items))
	}
	if dairy.Items[0].Name != "Milk" || dairy.Items[1].Name != "Eggs" {
		t.Errorf("dairy items out of response order: %q, %q", dairy.Items[0].Name, dairy.Items[1].Name)
	}
}

func TestGroupItemsUnknownAreaFallsBackToCatchAll(t *testing.T) {
	l := layout.Get("generic")
	items := []ShoppingItem{
		{ID: 1, Name: "Stamps", Area: "post-office", Position: 0},
		{ID: 2, Name: "Apples", Area: "produce", Position: 1},
	}

	groups := GroupItems(items, l)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Area != "produce" {
		t.Errorf("first group is %q, want produce", groups[0].Area)
	}
	last := groups[len(groups)-1]
	if last.Area != layout.CatchAllKey {
		t.Errorf("fallback group is %q, want %q", last.Area, layout.CatchAllKey)
	}
	if len(last.Items) != 1 || last.Items[0].Name != "Stamps" {
		t.Errorf("unexpected catch-all items: %+v", last.Items)
	}
}

func TestGroupItemsDoesNotMutateInput(t *testing.T) {
	l := layout.Get("generic")
	items := []ShoppingItem{
		{ID: 1, Name: "Eggs", Area: "dairy", Position: 0},
		{ID: 2, Name: "Apples", Area: "produce", Position: 1},
	}

	GroupItems(items, l)

	if items[0].Name != "Eggs" || items[1].Name != "Apples" {
		t.Errorf("input slice was reordered: %+v", items)
	}
}

func TestGroupItemsEmpty(t *testing.T) {
	if groups := GroupItems(nil, layout.Get("generic")); len(groups) != 0 {
		t.Errorf("got %d groups for an empty list", len(groups))
	}
}
