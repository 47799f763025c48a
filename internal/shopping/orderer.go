package shopping

import (
	"sort"

	"shoppr/internal/layout"
)

// ResolveArea maps an item's area key onto the layout, falling back to the
// catch-all area when the key is unknown or empty.
func ResolveArea(key string, l *layout.Layout) layout.Area {
	if a, ok := l.Resolve(key); ok {
		return a
	}
	return l.CatchAll()
}

// GroupItems groups items by area and orders the groups by the layout's walk
// order. Within a group the items keep their insertion order (stable by
// Position), so identical input always produces identical output.
func GroupItems(items []ShoppingItem, l *layout.Layout) []Group {
	sorted := make([]ShoppingItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		oi := ResolveArea(sorted[i].Area, l).Order
		oj := ResolveArea(sorted[j].Area, l).Order
		if oi != oj {
			return oi < oj
		}
		return sorted[i].Position < sorted[j].Position
	})

	var groups []Group
	for _, item := range sorted {
		area := ResolveArea(item.Area, l)
		if len(groups) == 0 || groups[len(groups)-1].Area != area.Key {
			groups = append(groups, Group{Area: area.Key, AreaDisplay: area.Display})
		}
		groups[len(groups)-1].Items = append(groups[len(groups)-1].Items, item)
	}
	return groups
}
