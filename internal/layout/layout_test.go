package layout

import "testing"

func TestEveryLayoutIsWellFormed(t *testing.T) {
	for key := range walks {
		l := Get(key)
		areas := l.Areas()
		if len(areas) == 0 {
			t.Fatalf("layout %q has no areas", key)
		}

		seen := map[string]bool{}
		for i, a := range areas {
			if a.Order != i+1 {
				t.Errorf("layout %q: area %q has order %d, want %d", key, a.Key, a.Order, i+1)
			}
			if seen[a.Key] {
				t.Errorf("layout %q: duplicate area %q", key, a.Key)
			}
			seen[a.Key] = true
			if a.Display == "" {
				t.Errorf("layout %q: area %q has no display name", key, a.Key)
			}
		}

		last := areas[len(areas)-1]
		if last.Key != CatchAllKey {
			t.Errorf("layout %q: last area is %q, want %q", key, last.Key, CatchAllKey)
		}
		if l.CatchAll().Order != len(areas) {
			t.Errorf("layout %q: catch-all order %d is not the highest", key, l.CatchAll().Order)
		}
	}
}

func TestGenericWalkOrder(t *testing.T) {
	l := Get("generic")
	for want, key := range map[int]string{1: "produce", 2: "bakery", 3: "dairy"} {
		a, ok := l.Resolve(key)
		if !ok {
			t.Fatalf("generic layout missing area %q", key)
		}
		if a.Order != want {
			t.Errorf("generic area %q has order %d, want %d", key, a.Order, want)
		}
	}
}

func TestGetFallsBackToGeneric(t *testing.T) {
	if got := Get(""); got.Key != "generic" {
		t.Errorf("Get(\"\") returned layout %q, want generic", got.Key)
	}
	if got := Get("corner-shop"); got.Key != "generic" {
		t.Errorf("Get(unknown) returned layout %q, want generic", got.Key)
	}
	if got := Get("lidl"); got.Key != "lidl" {
		t.Errorf("Get(lidl) returned layout %q", got.Key)
	}
}

func TestEverySupermarketHasALayout(t *testing.T) {
	for key := range supermarkets {
		if Get(key).Key != key {
			t.Errorf("supermarket %q has no dedicated layout", key)
		}
		if SupermarketDisplay(key) == "" {
			t.Errorf("supermarket %q has no display name", key)
		}
	}
	if ValidSupermarket("generic") {
		t.Error("generic is a layout fallback, not a selectable supermarket")
	}
}

func TestAreaDisplayUnknownKeyPassthrough(t *testing.T) {
	if got := AreaDisplay("mystery"); got != "mystery" {
		t.Errorf("AreaDisplay(mystery) = %q", got)
	}
	if got := AreaDisplay("tea_coffee"); got != "Tea & Coffee" {
		t.Errorf("AreaDisplay(tea_coffee) = %q", got)
	}
}
