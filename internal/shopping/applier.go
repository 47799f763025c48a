package shopping

import (
	"fmt"

	"shoppr/internal/layout"
)

// OpKind enumerates the closed set of edit operations.
type OpKind string

const (
	OpAdd        OpKind = "add"
	OpUpdate     OpKind = "update"
	OpRemove     OpKind = "remove"
	OpSetChecked OpKind = "set_checked"
)

// Operation is one validated edit step. Pointer fields on update carry only
// the fields the instruction actually changed.
type Operation struct {
	Kind     OpKind
	ID       int
	Name     *string
	Quantity *string
	Area     *string
	Checked  *bool
}

// ApplyOperations applies a validated operation sequence to a snapshot of a
// list's items and returns the new item set. Operations referencing ids that
// are not in the snapshot are skipped and reported as warnings, never as
// failures. The input slice is not mutated.
func ApplyOperations(items []ShoppingItem, ops []Operation, l *layout.Layout) ([]ShoppingItem, []string) {
	out := make([]ShoppingItem, len(items))
	copy(out, items)

	nextID := 0
	nextPos := 0
	for _, it := range out {
		if it.ID >= nextID {
			nextID = it.ID + 1
		}
		if it.Position >= nextPos {
			nextPos = it.Position + 1
		}
	}
	if nextID == 0 {
		nextID = 1
	}

	var warnings []string
	for _, op := range ops {
		switch op.Kind {
		case OpAdd:
			item := ShoppingItem{
				ID:       nextID,
				Position: nextPos,
				Area:     l.CatchAll().Key,
			}
			nextID++
			nextPos++
			if op.Name != nil {
				item.Name = *op.Name
			}
			if op.Quantity != nil {
				item.Quantity = *op.Quantity
			}
			if op.Area != nil {
				item.Area = ResolveArea(*op.Area, l).Key
			}
			out = append(out, item)

		case OpUpdate:
			idx := indexOf(out, op.ID)
			if idx < 0 {
				warnings = append(warnings, fmt.Sprintf("update: no item with id %d", op.ID))
				continue
			}
			if op.Name != nil {
				out[idx].Name = *op.Name
			}
			if op.Quantity != nil {
				out[idx].Quantity = *op.Quantity
			}
			if op.Area != nil {
				out[idx].Area = ResolveArea(*op.Area, l).Key
			}
			if op.Checked != nil {
				out[idx].Checked = *op.Checked
			}

		case OpRemove:
			idx := indexOf(out, op.ID)
			if idx < 0 {
				warnings = append(warnings, fmt.Sprintf("remove: no item with id %d", op.ID))
				continue
			}
			out = append(out[:idx], out[idx+1:]...)

		case OpSetChecked:
			idx := indexOf(out, op.ID)
			if idx < 0 {
				warnings = append(warnings, fmt.Sprintf("set_checked: no item with id %d", op.ID))
				continue
			}
			if op.Checked != nil {
				out[idx].Checked = *op.Checked
			}

		default:
			warnings = append(warnings, fmt.Sprintf("unknown operation %q skipped", op.Kind))
		}
	}

	return out, warnings
}

func indexOf(items []ShoppingItem, id int) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
