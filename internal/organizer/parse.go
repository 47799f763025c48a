package organizer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"shoppr/internal/layout"
	"shoppr/internal/shopping"
)

var (
	fenceOpen  = regexp.MustCompile("(?m)^```(?:json)?\\s*\n?")
	fenceClose = regexp.MustCompile("(?m)\n?```\\s*$")
)

// stripWrapping removes code-fence markers and any prose around the outermost
// JSON array so the payload can be parsed.
func stripWrapping(text string) string {
	text = fenceOpen.ReplaceAllString(text, "")
	text = fenceClose.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "[") {
		start := strings.IndexByte(text, '[')
		end := strings.LastIndexByte(text, ']')
		if start >= 0 && end > start {
			text = text[start : end+1]
		}
	}
	return text
}

// rawItem uses pointer fields so a missing key (hard violation) is
// distinguishable from an empty value (soft violation).
type rawItem struct {
	Name     *string `json:"name"`
	Quantity *string `json:"quantity"`
	Area     *string `json:"area"`
}

// parseItems validates a categorize-mode response. A non-empty violation
// means the response needs a repair attempt; warnings report items that were
// softened (dropped or moved to the catch-all area) without failing the
// response.
func parseItems(raw string, l *layout.Layout) (items []shopping.ShoppingItem, warnings []string, violation string) {
	var parsed []rawItem
	if err := json.Unmarshal([]byte(stripWrapping(raw)), &parsed); err != nil {
		return nil, nil, fmt.Sprintf("response is not a JSON array of items: %v", err)
	}
	if len(parsed) == 0 {
		return nil, nil, "response contained no items"
	}

	for i, ri := range parsed {
		if ri.Name == nil {
			return nil, nil, fmt.Sprintf("item %d is missing the required \"name\" field", i+1)
		}
		name := strings.TrimSpace(*ri.Name)
		if name == "" {
			warnings = append(warnings, fmt.Sprintf("dropped item %d: empty name", i+1))
			continue
		}

		item := shopping.ShoppingItem{Name: name}
		if ri.Quantity != nil {
			item.Quantity = strings.TrimSpace(*ri.Quantity)
		}
		if ri.Area == nil || strings.TrimSpace(*ri.Area) == "" {
			item.Area = l.CatchAll().Key
		} else if area, ok := l.Resolve(strings.TrimSpace(*ri.Area)); ok {
			item.Area = area.Key
		} else {
			warnings = append(warnings, fmt.Sprintf(
				"item %q: unknown area %q, using %q", name, *ri.Area, l.CatchAll().Key))
			item.Area = l.CatchAll().Key
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, warnings, "every item in the response had an empty name"
	}

	for i := range items {
		items[i].ID = i + 1
		items[i].Position = i
	}
	return items, warnings, ""
}

// rawOp mirrors rawItem for edit-mode operations.
type rawOp struct {
	Op       *string `json:"op"`
	ID       *int    `json:"id"`
	Name     *string `json:"name"`
	Quantity *string `json:"quantity"`
	Area     *string `json:"area"`
	Checked  *bool   `json:"checked"`
}

// parseOperations validates an edit-mode response against the current item
// snapshot. Operations referencing ids outside the snapshot are filtered out
// as warnings, never trusted through to the applier.
func parseOperations(raw string, snapshot []shopping.ShoppingItem) (ops []shopping.Operation, warnings []string, violation string) {
	var parsed []rawOp
	if err := json.Unmarshal([]byte(stripWrapping(raw)), &parsed); err != nil {
		return nil, nil, fmt.Sprintf("response is not a JSON array of operations: %v", err)
	}

	known := make(map[int]bool, len(snapshot))
	for _, it := range snapshot {
		known[it.ID] = true
	}

	for i, ro := range parsed {
		if ro.Op == nil {
			return nil, nil, fmt.Sprintf("operation %d is missing the required \"op\" field", i+1)
		}
		kind := shopping.OpKind(strings.TrimSpace(*ro.Op))

		switch kind {
		case shopping.OpAdd:
			if ro.Name == nil {
				return nil, nil, fmt.Sprintf("add operation %d is missing the required \"name\" field", i+1)
			}
			if strings.TrimSpace(*ro.Name) == "" {
				warnings = append(warnings, fmt.Sprintf("skipped add operation %d: empty name", i+1))
				continue
			}
			name := strings.TrimSpace(*ro.Name)
			ops = append(ops, shopping.Operation{
				Kind:     shopping.OpAdd,
				Name:     &name,
				Quantity: ro.Quantity,
				Area:     ro.Area,
			})

		case shopping.OpUpdate:
			if ro.ID == nil {
				return nil, nil, fmt.Sprintf("update operation %d has a missing or malformed \"id\"", i+1)
			}
			if !known[*ro.ID] {
				warnings = append(warnings, fmt.Sprintf("skipped update of unknown item id %d", *ro.ID))
				continue
			}
			if ro.Name == nil && ro.Quantity == nil && ro.Area == nil && ro.Checked == nil {
				warnings = append(warnings, fmt.Sprintf("skipped update of item %d: no fields to change", *ro.ID))
				continue
			}
			ops = append(ops, shopping.Operation{
				Kind:     shopping.OpUpdate,
				ID:       *ro.ID,
				Name:     ro.Name,
				Quantity: ro.Quantity,
				Area:     ro.Area,
				Checked:  ro.Checked,
			})

		case shopping.OpRemove:
			if ro.ID == nil {
				return nil, nil, fmt.Sprintf("remove operation %d has a missing or malformed \"id\"", i+1)
			}
			if !known[*ro.ID] {
				warnings = append(warnings, fmt.Sprintf("skipped remove of unknown item id %d", *ro.ID))
				continue
			}
			ops = append(ops, shopping.Operation{Kind: shopping.OpRemove, ID: *ro.ID})

		case shopping.OpSetChecked:
			if ro.ID == nil {
				return nil, nil, fmt.Sprintf("set_checked operation %d has a missing or malformed \"id\"", i+1)
			}
			if ro.Checked == nil {
				return nil, nil, fmt.Sprintf("set_checked operation %d is missing the required \"checked\" field", i+1)
			}
			if !known[*ro.ID] {
				warnings = append(warnings, fmt.Sprintf("skipped set_checked of unknown item id %d", *ro.ID))
				continue
			}
			ops = append(ops, shopping.Operation{
				Kind:    shopping.OpSetChecked,
				ID:      *ro.ID,
				Checked: ro.Checked,
			})

		default:
			return nil, nil, fmt.Sprintf("operation %d has unknown op %q", i+1, *ro.Op)
		}
	}

	return ops, warnings, ""
}
