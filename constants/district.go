package constants

import (
	"sort"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// District is one of the city's administrative districts, or DistrictUnspecified.
type District string

const (
	DistrictCentral          District = "Центральный"
	DistrictDzerzhinsky      District = "Дзержинский"
	DistrictVoroshilovsky    District = "Ворошиловский"
	DistrictSovetsky         District = "Советский"
	DistrictTraktorozavodsky District = "Тракторозаводский"
	DistrictKrasnoarmeysky   District = "Красноармейский"
	DistrictKirovsky         District = "Кировский"
	DistrictKrasnooktyabrsky District = "Краснооктябрьский"

	DistrictUnspecified District = "Не указан"
)

// AllDistricts lists the closed set in lookup order.
var AllDistricts = []District{
	DistrictCentral,
	DistrictDzerzhinsky,
	DistrictVoroshilovsky,
	DistrictSovetsky,
	DistrictTraktorozavodsky,
	DistrictKrasnoarmeysky,
	DistrictKirovsky,
	DistrictKrasnooktyabrsky,
}

// CityCenterLat and CityCenterLng are the fallback coordinates.
const (
	CityCenterLat = 48.7080
	CityCenterLng = 44.5133
)

var districtCoordinates = map[District][2]float64{
	DistrictCentral:          {48.7080, 44.5133},
	DistrictDzerzhinsky:      {48.7200, 44.5400},
	DistrictVoroshilovsky:    {48.7342, 44.5456},
	DistrictSovetsky:         {48.6987, 44.4821},
	DistrictTraktorozavodsky: {48.7789, 44.5678},
	DistrictKrasnoarmeysky:   {48.7234, 44.5234},
	DistrictKirovsky:         {48.6789, 44.4123},
	DistrictKrasnooktyabrsky: {48.7456, 44.4567},
}

// DistrictCoordinates returns the district's reference point, or the city center.
func DistrictCoordinates(d District) (lat, lng float64) {
	if c, ok := districtCoordinates[d]; ok {
		return c[0], c[1]
	}
	return CityCenterLat, CityCenterLng
}

// Stem is the lowercase adjective stem shared by every inflected form
// ("Центрального района", "в Центральном районе").
func (d District) Stem() string {
	s := strings.ToLower(string(d))
	for _, suffix := range []string{"ий", "ый"} {
		if strings.HasSuffix(s, suffix) {
			return strings.TrimSuffix(s, suffix)
		}
	}
	return s
}

func (d District) Known() bool {
	_, ok := districtCoordinates[d]
	return ok
}

// maxFuzzyDistance bounds how far an OCR-mangled word may be from a district name.
const maxFuzzyDistance = 4

// NormalizeDistrict maps free text onto the closed district set. The result is
// always either a known district or DistrictUnspecified, so applying it twice
// gives the same answer as applying it once.
func NormalizeDistrict(input string) District {
	s := strings.TrimSpace(input)
	if s == "" || District(s) == DistrictUnspecified {
		return DistrictUnspecified
	}
	lower := strings.ToLower(s)
	for _, d := range AllDistricts {
		if strings.Contains(lower, d.Stem()) {
			return d
		}
	}

	names := make([]string, len(AllDistricts))
	for i, d := range AllDistricts {
		names[i] = string(d)
	}
	for _, word := range strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) }) {
		lw := strings.ToLower(word)
		if len([]rune(word)) < 6 || lw == "район" || lw == "района" {
			continue
		}
		ranks := fuzzy.RankFindNormalizedFold(word, names)
		if len(ranks) == 0 {
			continue
		}
		sort.Sort(ranks)
		if ranks[0].Distance <= maxFuzzyDistance {
			return AllDistricts[ranks[0].OriginalIndex]
		}
	}
	return DistrictUnspecified
}
