package constants

import (
	"strings"
)

// Category is the closed set of amenity kinds accepted by the catalog.
type Category string

const (
	Park        Category = "парк"
	Square      Category = "сквер"
	Playground  Category = "детская площадка"
	SportsField Category = "спортивная площадка"
	Embankment  Category = "набережная"
	Boulevard   Category = "бульвар"
	Plaza       Category = "площадь"
	Fountain    Category = "фонтан"
	Monument    Category = "памятник"
	BusStop     Category = "остановка"
	Other       Category = "другое"
)

var allCategories = []Category{
	Park,
	Square,
	Playground,
	SportsField,
	Embankment,
	Boulevard,
	Plaza,
	Fountain,
	Monument,
	BusStop,
	Other,
}

// CategoryKeyword maps a lowercase keyword to the category it signals.
type CategoryKeyword struct {
	Keyword  string
	Category Category
}

// DefaultCategoryKeywords is ordered by priority: the first keyword found in a block wins.
var DefaultCategoryKeywords = []CategoryKeyword{
	{"парк", Park},
	{"сквер", Square},
	{"детская площадка", Playground},
	{"спортивная площадка", SportsField},
	{"набережная", Embankment},
	{"бульвар", Boulevard},
	{"площадь", Plaza},
	{"фонтан", Fountain},
	{"аллея", Park},
	{"озеленени", Park},
	{"памятник", Monument},
	{"остановка", BusStop},
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps free text onto the closed set, falling back to Other.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Other, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]Category{
		"park":            Park,
		"square":          Square,
		"playground":      Playground,
		"sports ground":   SportsField,
		"embankment":      Embankment,
		"boulevard":       Boulevard,
		"plaza":           Plaza,
		"fountain":        Fountain,
		"monument":        Monument,
		"bus stop":        BusStop,
		"other":           Other,
		"аллея":           Park,
		"спортплощадка":   SportsField,
		"игровая площадка": Playground,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == string(cat) {
			return cat, true
		}
	}

	return Other, false
}
