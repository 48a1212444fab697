package fields

import (
	"regexp"
	"strings"
)

var (
	reNumeral  = regexp.MustCompile(`^\d+(?:[.,]\d+)?$`)
	rePureDate = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
	reRegion   = regexp.MustCompile(`г\.\s?[А-ЯЁ][а-яё-]+`)
)

// DefaultRegions are the cities that appear in the region column.
var DefaultRegions = []string{"г.Волгоград", "г.Волжский", "г.Михайловка", "г.Камышин"}

var boilerplate = []string{
	"общественная территория",
	"наименование объекта",
	"№ п/п",
}

func isNumeral(line string) bool  { return reNumeral.MatchString(strings.TrimSpace(line)) }
func isPureDate(line string) bool { return rePureDate.MatchString(strings.TrimSpace(line)) }

// isRegionLine reports lines that only name the city, e.g. "г.Волгоград".
func isRegionLine(line string) bool {
	s := strings.TrimSpace(line)
	loc := reRegion.FindStringIndex(s)
	if loc == nil {
		return false
	}
	rest := strings.TrimSpace(s[:loc[0]] + s[loc[1]:])
	return len([]rune(rest)) <= 3
}

func isBoilerplate(line string) bool {
	s := strings.ToLower(strings.Trim(strings.TrimSpace(line), ",.:;"))
	for _, b := range boilerplate {
		if s == b {
			return true
		}
	}
	return false
}

// wholeToken builds a regexp that finds any of tokens not glued to other letters.
func wholeToken(tokens []string) *regexp.Regexp {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?:^|[^\p{L}])(?:` + strings.Join(quoted, "|") + `)(?:[^\p{L}]|$)`)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
