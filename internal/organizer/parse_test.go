package organizer

import (
	"strings"
	"testing"

	"shoppr/internal/layout"
	"shoppr/internal/shopping"
)

func TestStripWrapping(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare array", `[{"name":"Milk"}]`, `[{"name":"Milk"}]`},
		{"json fence", "```json\n[1, 2]\n```", "[1, 2]"},
		{"plain fence", "```\n[1, 2]\n```", "[1, 2]"},
		{"prose around array", "Here is your list:\n[1, 2]\nHope that helps!", "[1, 2]"},
		{"fence and prose", "Sure!\n```json\n[1, 2]\n```", "[1, 2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripWrapping(tt.in); got != tt.want {
				t.Errorf("stripWrapping(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseItemsValid(t *testing.T) {
	l := layout.Get("generic")
	raw := `[
		{"name": "Milk", "quantity": "2L", "area": "dairy"},
		{"name": "Bread", "quantity": null, "area": "bakery"}
	]`

	items, warnings, violation := parseItems(raw, l)
	if violation != "" {
		t.Fatalf("unexpected violation: %s", violation)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ID != 1 || items[0].Position != 0 || items[1].ID != 2 || items[1].Position != 1 {
		t.Errorf("ids or positions not assigned in response order: %+v", items)
	}
	if items[0].Quantity != "2L" || items[1].Quantity != "" {
		t.Errorf("quantities mishandled: %+v", items)
	}
}

func TestParseItemsHardViolations(t *testing.T) {
	l := layout.Get("generic")
	tests := []struct {
		name string
		raw  string
	}{
		{"prose instead of json", "I could not find any groceries in that text."},
		{"object instead of array", `{"items": []}`},
		{"empty array", `[]`},
		{"missing name field", `[{"quantity": "2L", "area": "dairy"}]`},
		{"all names empty", `[{"name": "", "area": "dairy"}, {"name": "  ", "area": "bakery"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, _, violation := parseItems(tt.raw, l)
			if violation == "" {
				t.Fatalf("expected a violation, got items %+v", items)
			}
		})
	}
}

func TestParseItemsSoftensBadAreasAndEmptyNames(t *testing.T) {
	l := layout.Get("generic")
	raw := `[
		{"name": "Milk", "area": "dairy"},
		{"name": "", "area": "dairy"},
		{"name": "Stamps", "area": "post_office"},
		{"name": "Mystery", "area": null}
	]`

	items, warnings, violation := parseItems(raw, l)
	if violation != "" {
		t.Fatalf("unexpected violation: %s", violation)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if items[1].Area != layout.CatchAllKey || items[2].Area != layout.CatchAllKey {
		t.Errorf("bad areas not moved to catch-all: %+v", items)
	}
	if len(warnings) != 2 {
		t.Errorf("got %d warnings, want 2: %v", len(warnings), warnings)
	}
	// ids stay contiguous after the drop
	for i, it := range items {
		if it.ID != i+1 {
			t.Errorf("item %d has id %d", i, it.ID)
		}
	}
}

func opsSnapshot() []shopping.ShoppingItem {
	return []shopping.ShoppingItem{
		{ID: 1, Name: "Milk", Quantity: "2L", Area: "dairy", Position: 0},
		{ID: 2, Name: "Bread", Area: "bakery", Position: 1},
	}
}

func TestParseOperationsValid(t *testing.T) {
	raw := "```json\n" + `[
		{"op": "remove", "id": 2},
		{"op": "set_checked", "id": 1, "checked": true},
		{"op": "add", "name": "Apples", "quantity": "6", "area": "produce"},
		{"op": "update", "id": 1, "quantity": "4 pints"}
	]` + "\n```"

	ops, warnings, violation := parseOperations(raw, opsSnapshot())
	if violation != "" {
		t.Fatalf("unexpected violation: %s", violation)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(ops) != 4 {
		t.Fatalf("got %d ops, want 4", len(ops))
	}
	if ops[0].Kind != shopping.OpRemove || ops[0].ID != 2 {
		t.Errorf("unexpected first op: %+v", ops[0])
	}
	if ops[1].Kind != shopping.OpSetChecked || ops[1].Checked == nil || !*ops[1].Checked {
		t.Errorf("unexpected second op: %+v", ops[1])
	}
	if ops[2].Kind != shopping.OpAdd || ops[2].Name == nil || *ops[2].Name != "Apples" {
		t.Errorf("unexpected third op: %+v", ops[2])
	}
	if ops[3].Kind != shopping.OpUpdate || ops[3].Name != nil || ops[3].Quantity == nil {
		t.Errorf("update op should carry only the changed fields: %+v", ops[3])
	}
}

func TestParseOperationsHardViolations(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"prose", "Done, I removed the bread for you.", "not a JSON array"},
		{"missing op", `[{"id": 1}]`, `missing the required "op"`},
		{"unknown op", `[{"op": "merge", "id": 1}]`, "unknown op"},
		{"remove without id", `[{"op": "remove"}]`, `malformed "id"`},
		{"add without name", `[{"op": "add", "area": "dairy"}]`, `missing the required "name"`},
		{"set_checked without checked", `[{"op": "set_checked", "id": 1}]`, `missing the required "checked"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, violation := parseOperations(tt.raw, opsSnapshot())
			if violation == "" {
				t.Fatal("expected a violation")
			}
			if !strings.Contains(violation, tt.want) {
				t.Errorf("violation %q does not mention %q", violation, tt.want)
			}
		})
	}
}

func TestParseOperationsFiltersUnknownIDs(t *testing.T) {
	raw := `[
		{"op": "remove", "id": 99},
		{"op": "update", "id": 42, "name": "Ghost"},
		{"op": "set_checked", "id": 7, "checked": true},
		{"op": "remove", "id": 1}
	]`

	ops, warnings, violation := parseOperations(raw, opsSnapshot())
	if violation != "" {
		t.Fatalf("unexpected violation: %s", violation)
	}
	if len(ops) != 1 || ops[0].ID != 1 {
		t.Fatalf("got ops %+v, want only the remove of id 1", ops)
	}
	if len(warnings) != 3 {
		t.Errorf("got %d warnings, want 3: %v", len(warnings), warnings)
	}
}

func TestParseOperationsSkipsNoOpUpdates(t *testing.T) {
	raw := `[
		{"op": "update", "id": 1},
		{"op": "add", "name": "   "}
	]`

	ops, warnings, violation := parseOperations(raw, opsSnapshot())
	if violation != "" {
		t.Fatalf("unexpected violation: %s", violation)
	}
	if len(ops) != 0 {
		t.Errorf("got ops %+v, want none", ops)
	}
	if len(warnings) != 2 {
		t.Errorf("got %d warnings, want 2: %v", len(warnings), warnings)
	}
}

func TestParseOperationsEmptyArrayIsValid(t *testing.T) {
	ops, warnings, violation := parseOperations(`[]`, opsSnapshot())
	if violation != "" || len(ops) != 0 || len(warnings) != 0 {
		t.Errorf("empty operation list should be a no-op: ops=%v warnings=%v violation=%q",
			ops, warnings, violation)
	}
}
