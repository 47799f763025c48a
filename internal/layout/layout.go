// Package layout holds the static per-supermarket area taxonomy. The registry
// is built once at package init and is read-only afterwards, so lookups need
// no locking.
package layout

// CatchAllKey is the area every layout ends with. Items the model cannot
// place, or places in an unknown area, land here.
const CatchAllKey = "other"

// Area is a single shopping area within a store layout.
type Area struct {
	Key         string
	Display     string
	Order       int
	Description string
}

// Layout is an ordered walk through one supermarket.
type Layout struct {
	Key   string
	areas []Area
	index map[string]Area
}

// areaDisplay maps area keys to their display names.
var areaDisplay = map[string]string{
	"produce":       "Fruit & Veg",
	"bakery":        "Bakery",
	"dairy":         "Dairy & Eggs",
	"meat":          "Meat & Fish",
	"deli":          "Deli",
	"frozen":        "Frozen",
	"pantry":        "Pantry",
	"breakfast":     "Breakfast",
	"snacks":        "Snacks",
	"confectionery": "Confectionery",
	"drinks":        "Drinks",
	"tea_coffee":    "Tea & Coffee",
	"alcohol":       "Alcohol",
	"household":     "Household",
	"health_beauty": "Health & Beauty",
	"baby":          "Baby",
	"pet":           "Pet",
	"world_foods":   "World Foods",
	"other":         "Other",
}

// areaDescription maps area keys to short hints used in categorization prompts.
var areaDescription = map[string]string{
	"produce":       "fresh fruit, vegetables, salad, fresh herbs",
	"bakery":        "bread, rolls, pastries, cakes",
	"dairy":         "milk, cheese, yoghurt, butter, eggs",
	"meat":          "fresh and packaged meat, poultry, fish, seafood",
	"deli":          "cooked meats, olives, dips, fresh pasta",
	"frozen":        "anything from the freezer aisle",
	"pantry":        "tins, jars, dried pasta, rice, sauces, oils, baking",
	"breakfast":     "cereal, porridge, jam, honey, spreads",
	"snacks":        "crisps, nuts, crackers, popcorn",
	"confectionery": "chocolate, sweets, biscuits",
	"drinks":        "soft drinks, juice, water, squash",
	"tea_coffee":    "tea, coffee, hot chocolate",
	"alcohol":       "beer, wine, spirits, cider",
	"household":     "cleaning, laundry, kitchen roll, foil, bin bags",
	"health_beauty": "toiletries, medicine, cosmetics",
	"baby":          "nappies, baby food, formula",
	"pet":           "pet food and supplies",
	"world_foods":   "international ingredients and specialities",
	"other":         "anything that fits nowhere else",
}

// supermarkets maps supermarket keys to display names.
var supermarkets = map[string]string{
	"tesco":      "Tesco",
	"sainsburys": "Sainsbury's",
	"asda":       "Asda",
	"morrisons":  "Morrisons",
	"aldi":       "Aldi",
	"lidl":       "Lidl",
	"waitrose":   "Waitrose",
	"ms":         "M&S",
}

// walks declares each store's area sequence. Every walk must end with the
// catch-all area; buildLayout enforces this.
var walks = map[string][]string{
	"generic": {
		"produce", "bakery", "dairy", "meat", "deli", "frozen", "pantry",
		"breakfast", "snacks", "confectionery", "drinks", "tea_coffee",
		"alcohol", "household", "health_beauty", "baby", "pet", "world_foods",
		"other",
	},
	"tesco": {
		"produce", "bakery", "meat", "deli", "dairy", "pantry", "breakfast",
		"tea_coffee", "world_foods", "snacks", "confectionery", "frozen",
		"drinks", "alcohol", "baby", "health_beauty", "pet", "household",
		"other",
	},
	"sainsburys": {
		"produce", "bakery", "meat", "dairy", "deli", "pantry", "world_foods",
		"breakfast", "tea_coffee", "snacks", "confectionery", "frozen",
		"drinks", "alcohol", "health_beauty", "baby", "pet", "household",
		"other",
	},
	"asda": {
		"produce", "bakery", "meat", "dairy", "deli", "frozen", "pantry",
		"world_foods", "breakfast", "snacks", "confectionery", "tea_coffee",
		"drinks", "alcohol", "baby", "pet", "health_beauty", "household",
		"other",
	},
	"morrisons": {
		"produce", "bakery", "deli", "meat", "dairy", "pantry", "breakfast",
		"world_foods", "tea_coffee", "snacks", "confectionery", "frozen",
		"drinks", "alcohol", "health_beauty", "baby", "household", "pet",
		"other",
	},
	"aldi": {
		"produce", "bakery", "meat", "dairy", "deli", "pantry", "breakfast",
		"snacks", "confectionery", "world_foods", "tea_coffee", "drinks",
		"alcohol", "frozen", "baby", "health_beauty", "pet", "household",
		"other",
	},
	"lidl": {
		"bakery", "produce", "meat", "dairy", "deli", "pantry", "breakfast",
		"snacks", "confectionery", "world_foods", "tea_coffee", "drinks",
		"alcohol", "frozen", "baby", "health_beauty", "pet", "household",
		"other",
	},
	"waitrose": {
		"produce", "bakery", "deli", "meat", "dairy", "pantry", "breakfast",
		"tea_coffee", "world_foods", "snacks", "confectionery", "frozen",
		"drinks", "alcohol", "health_beauty", "baby", "pet", "household",
		"other",
	},
	"ms": {
		"produce", "bakery", "deli", "meat", "dairy", "frozen", "pantry",
		"breakfast", "snacks", "confectionery", "tea_coffee", "drinks",
		"alcohol", "world_foods", "health_beauty", "household", "baby", "pet",
		"other",
	},
}

var registry = map[string]*Layout{}

func init() {
	for key, walk := range walks {
		registry[key] = buildLayout(key, walk)
	}
}

func buildLayout(key string, walk []string) *Layout {
	l := &Layout{
		Key:   key,
		areas: make([]Area, 0, len(walk)),
		index: make(map[string]Area, len(walk)),
	}
	for i, areaKey := range walk {
		display, ok := areaDisplay[areaKey]
		if !ok {
			panic("layout: unknown area key " + areaKey + " in walk " + key)
		}
		area := Area{
			Key:         areaKey,
			Display:     display,
			Order:       i + 1,
			Description: areaDescription[areaKey],
		}
		l.areas = append(l.areas, area)
		l.index[areaKey] = area
	}
	if walk[len(walk)-1] != CatchAllKey {
		panic("layout: walk " + key + " does not end with the catch-all area")
	}
	return l
}

// Get returns the layout for a supermarket key. Empty or unknown keys fall
// back to the generic layout.
func Get(supermarket string) *Layout {
	if l, ok := registry[supermarket]; ok {
		return l
	}
	return registry["generic"]
}

// Areas returns the layout's areas in walk order.
func (l *Layout) Areas() []Area {
	return l.areas
}

// Resolve looks up an area by key.
func (l *Layout) Resolve(key string) (Area, bool) {
	a, ok := l.index[key]
	return a, ok
}

// CatchAll returns the layout's catch-all area.
func (l *Layout) CatchAll() Area {
	return l.index[CatchAllKey]
}

// ValidSupermarket reports whether key names a known supermarket.
func ValidSupermarket(key string) bool {
	_, ok := supermarkets[key]
	return ok
}

// SupermarketDisplay returns the display name for a supermarket key, or the
// empty string if the key is unknown.
func SupermarketDisplay(key string) string {
	return supermarkets[key]
}

// AreaDisplay returns the display name for an area key. Unknown keys are
// returned unchanged so callers always have something to show.
func AreaDisplay(key string) string {
	if d, ok := areaDisplay[key]; ok {
		return d
	}
	return key
}
