package shopping

import (
	"testing"

	"shoppr/internal/layout"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func snapshot() []ShoppingItem {
	return []ShoppingItem{
		{ID: 1, Name: "Milk", Quantity: "2L", Area: "dairy", Position: 0},
		{ID: 2, Name: "Bread", Area: "bakery", Position: 1},
		{ID: 3, Name: "Eggs", Area: "dairy", Position: 2},
	}
}

func TestApplyRemoveAndSetChecked(t *testing.T) {
	l := layout.Get("generic")
	ops := []Operation{
		{Kind: OpRemove, ID: 2},
		{Kind: OpSetChecked, ID: 1, Checked: boolPtr(true)},
	}

	out, warnings := ApplyOperations(snapshot(), ops, l)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(out) != 2 {
		t.Fatalf("got %d items, want 2", len(out))
	}
	for _, it := range out {
		if it.Name == "Bread" {
			t.Error("removed item still present")
		}
		if it.Name == "Milk" && !it.Checked {
			t.Error("milk was not checked off")
		}
	}
}

func TestApplyAddDefaults(t *testing.T) {
	l := layout.Get("generic")
	ops := []Operation{
		{Kind: OpAdd, Name: strPtr("Batteries")},
		{Kind: OpAdd, Name: strPtr("Apples"), Quantity: strPtr("6"), Area: strPtr("produce")},
	}

	out, warnings := ApplyOperations(snapshot(), ops, l)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(out) != 5 {
		t.Fatalf("got %d items, want 5", len(out))
	}

	batteries := out[3]
	if batteries.ID != 4 || batteries.Position != 3 {
		t.Errorf("first added item got id=%d position=%d", batteries.ID, batteries.Position)
	}
	if batteries.Area != layout.CatchAllKey {
		t.Errorf("add without area got %q, want %q", batteries.Area, layout.CatchAllKey)
	}
	if batteries.Checked {
		t.Error("added item starts checked")
	}

	apples := out[4]
	if apples.ID != 5 || apples.Area != "produce" || apples.Quantity != "6" {
		t.Errorf("unexpected second added item: %+v", apples)
	}
}

func TestApplyAddNeverReusesRemovedID(t *testing.T) {
	l := layout.Get("generic")
	ops := []Operation{
		{Kind: OpRemove, ID: 3},
		{Kind: OpAdd, Name: strPtr("Butter"), Area: strPtr("dairy")},
	}

	out, _ := ApplyOperations(snapshot(), ops, l)
	for _, it := range out {
		if it.Name == "Butter" && it.ID != 4 {
			t.Errorf("new item reused id %d", it.ID)
		}
	}
}

func TestApplyUpdatePatchesOnlyPresentFields(t *testing.T) {
	l := layout.Get("generic")
	ops := []Operation{
		{Kind: OpUpdate, ID: 1, Quantity: strPtr("4 pints")},
	}

	out, _ := ApplyOperations(snapshot(), ops, l)
	milk := out[0]
	if milk.Quantity != "4 pints" {
		t.Errorf("quantity not updated: %q", milk.Quantity)
	}
	if milk.Name != "Milk" || milk.Area != "dairy" || milk.Checked {
		t.Errorf("untouched fields changed: %+v", milk)
	}
}

func TestApplyUpdateUnknownAreaFallsBack(t *testing.T) {
	l := layout.Get("generic")
	ops := []Operation{
		{Kind: OpUpdate, ID: 2, Area: strPtr("garden-centre")},
	}

	out, _ := ApplyOperations(snapshot(), ops, l)
	if out[1].Area != layout.CatchAllKey {
		t.Errorf("unknown area resolved to %q, want %q", out[1].Area, layout.CatchAllKey)
	}
}

func TestApplyUnknownIDsWarnWithoutFailing(t *testing.T) {
	l := layout.Get("generic")
	ops := []Operation{
		{Kind: OpRemove, ID: 99},
		{Kind: OpSetChecked, ID: 42, Checked: boolPtr(true)},
		{Kind: OpSetChecked, ID: 1, Checked: boolPtr(true)},
	}

	out, warnings := ApplyOperations(snapshot(), ops, l)
	if len(warnings) != 2 {
		t.Fatalf("got %d warnings, want 2: %v", len(warnings), warnings)
	}
	if len(out) != 3 {
		t.Fatalf("got %d items, want 3", len(out))
	}
	if !out[0].Checked {
		t.Error("valid operation after warnings was not applied")
	}
}

func TestApplyDoesNotMutateSnapshot(t *testing.T) {
	l := layout.Get("generic")
	before := snapshot()
	ops := []Operation{
		{Kind: OpRemove, ID: 1},
		{Kind: OpSetChecked, ID: 2, Checked: boolPtr(true)},
	}

	ApplyOperations(before, ops, l)

	if len(before) != 3 || before[0].Name != "Milk" || before[1].Checked {
		t.Errorf("snapshot mutated: %+v", before)
	}
}

func TestApplyAddToEmptyListStartsAtOne(t *testing.T) {
	l := layout.Get("generic")
	out, _ := ApplyOperations(nil, []Operation{{Kind: OpAdd, Name: strPtr("Tea")}}, l)
	if len(out) != 1 || out[0].ID != 1 || out[0].Position != 0 {
		t.Errorf("unexpected item on empty list: %+v", out)
	}
}
