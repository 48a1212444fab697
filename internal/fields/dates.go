package fields

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var reDate = regexp.MustCompile(`\b(\d{2}\.\d{2}\.\d{4})\b`)

const (
	sourceDateLayout = "02.01.2006"
	isoDateLayout    = "2006-01-02"
)

type datesStrategy struct{}

func NewDatesStrategy() *datesStrategy { return &datesStrategy{} }

func (s *datesStrategy) Field() string { return FieldDates }

// Extract collects every valid DD.MM.YYYY date in block order. The first is
// the start date; the second, if any, is the end date.
func (s *datesStrategy) Extract(block []string) (any, []int, bool) {
	var (
		found    []string
		consumed []int
	)
	for i, line := range block {
		for _, m := range reDate.FindAllStringSubmatch(line, -1) {
			if iso, ok := ToISODate(m[1]); ok {
				found = append(found, iso)
			}
		}
		if isPureDate(line) {
			consumed = append(consumed, i)
		}
	}
	if len(found) == 0 {
		return nil, nil, false
	}
	r := DateRange{Start: found[0], End: found[0]}
	if len(found) > 1 {
		r.End = found[1]
	}
	return r, consumed, true
}

// ToISODate converts DD.MM.YYYY into YYYY-MM-DD, rejecting impossible dates.
func ToISODate(s string) (string, bool) {
	t, err := time.Parse(sourceDateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return t.Format(isoDateLayout), true
}

var reArea = regexp.MustCompile(`(\d{1,3}(?:[ \x{00A0}]\d{3})+|\d+)(?:[.,](\d+))?\s*(м²|м2|кв\.?\s?м|га)`)

var hectare = decimal.NewFromInt(10_000)

type areaStrategy struct{}

func NewAreaStrategy() *areaStrategy { return &areaStrategy{} }

func (s *areaStrategy) Field() string { return FieldArea }

// Extract returns the first area figure in square metres. It consumes nothing
// so the surrounding text stays in the description.
func (s *areaStrategy) Extract(block []string) (any, []int, bool) {
	for _, line := range block {
		m := reArea.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := decimal.NewFromString(stripSpaces(m[1]) + fracPart(m[2]))
		if err != nil {
			continue
		}
		if m[3] == "га" {
			v = v.Mul(hectare)
		}
		return v, nil, true
	}
	return nil, nil, false
}

type HintOptions struct {
	Keywords []string `yaml:"keywords"`
}

var (
	DefaultPhotoHintKeywords = []string{"парк", "сквер", "площадка"}
	DefaultMapHintKeywords   = []string{"ул.", "пр.", "по "}
)

// hintStrategy flags blocks that probably have photos or a map location
// upstream. It never produces the photos themselves.
type hintStrategy struct {
	field    string
	keywords []string
}

func NewPhotoHintStrategy(opts HintOptions) *hintStrategy {
	if len(opts.Keywords) == 0 {
		opts.Keywords = DefaultPhotoHintKeywords
	}
	return &hintStrategy{field: FieldPhotoHint, keywords: opts.Keywords}
}

func NewMapHintStrategy(opts HintOptions) *hintStrategy {
	if len(opts.Keywords) == 0 {
		opts.Keywords = DefaultMapHintKeywords
	}
	return &hintStrategy{field: FieldMapHint, keywords: opts.Keywords}
}

func (s *hintStrategy) Field() string { return s.field }

func (s *hintStrategy) Extract(block []string) (any, []int, bool) {
	for _, line := range block {
		if containsAny(strings.ToLower(line), s.keywords) {
			return true, nil, true
		}
	}
	return nil, nil, false
}
