package fields

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	UnitRuble    = "ruble"
	UnitThousand = "thousand"
	UnitMillion  = "million"
)

var (
	reAmount = regexp.MustCompile(`(\d{1,3}(?:[ \x{00A0}]\d{3})+|\d+)(?:,(\d+))?(?:\s*((?i:млрд|млн|тыс|руб)|₽))?`)
	reBare   = regexp.MustCompile(`^\d+$`)
	// stripped before looking for money so their digits are never read as amounts
	reDateLike = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)
	rePercent  = regexp.MustCompile(`\d+(?:,\d+)?\s*%`)
)

var unitScale = map[string]decimal.Decimal{
	"млрд": decimal.NewFromInt(1_000_000_000),
	"млн":  decimal.NewFromInt(1_000_000),
	"тыс":  decimal.NewFromInt(1_000),
	"руб":  decimal.NewFromInt(1),
	"₽":    decimal.NewFromInt(1),
}

type BudgetOptions struct {
	// ColumnUnit scales decimal-comma figures that carry no unit of their own.
	ColumnUnit    string `yaml:"column_unit"`
	MinBareDigits int    `yaml:"min_bare_digits"`
	YearMin       int    `yaml:"year_min"`
	YearMax       int    `yaml:"year_max"`
}

type budgetStrategy struct {
	columnScale   decimal.Decimal
	minBareDigits int
	yearMin       int
	yearMax       int
}

// NewBudgetStrategy parses amounts in roubles. A figure with a decimal comma or
// a unit word wins over a bare integer; bare integers that look like years are
// never amounts.
func NewBudgetStrategy(opts BudgetOptions) (*budgetStrategy, error) {
	s := &budgetStrategy{minBareDigits: opts.MinBareDigits, yearMin: opts.YearMin, yearMax: opts.YearMax}
	switch opts.ColumnUnit {
	case "", UnitMillion:
		s.columnScale = unitScale["млн"]
	case UnitThousand:
		s.columnScale = unitScale["тыс"]
	case UnitRuble:
		s.columnScale = unitScale["руб"]
	default:
		return nil, fmt.Errorf("budget: unknown column unit %q", opts.ColumnUnit)
	}
	if s.minBareDigits <= 0 {
		s.minBareDigits = 3
	}
	if s.yearMin <= 0 {
		s.yearMin = 1900
	}
	if s.yearMax <= 0 {
		s.yearMax = 2100
	}
	return s, nil
}

func (s *budgetStrategy) Field() string { return FieldBudget }

func (s *budgetStrategy) Extract(block []string) (any, []int, bool) {
	for i, line := range block {
		if v, ok := s.strong(line); ok {
			return v, []int{i}, true
		}
	}
	for i, line := range block {
		if v, ok := s.weak(line); ok {
			return v, []int{i}, true
		}
	}
	return nil, nil, false
}

// ParseAmount applies the same rules as the strategy to a single string.
func (s *budgetStrategy) ParseAmount(text string) (decimal.Decimal, bool) {
	if v, ok := s.strong(text); ok {
		return v, true
	}
	return s.weak(text)
}

func (s *budgetStrategy) strong(line string) (decimal.Decimal, bool) {
	clean := reDateLike.ReplaceAllString(line, " ")
	clean = reArea.ReplaceAllString(clean, " ")
	clean = rePercent.ReplaceAllString(clean, " ")
	for _, m := range reAmount.FindAllStringSubmatch(clean, -1) {
		whole, frac, unit := m[1], m[2], m[3]
		if frac == "" && unit == "" {
			continue
		}
		v, err := decimal.NewFromString(stripSpaces(whole) + fracPart(frac))
		if err != nil {
			continue
		}
		scale := s.columnScale
		if unit != "" {
			scale = unitScale[strings.ToLower(unit)]
		}
		v = v.Mul(scale)
		if v.IsPositive() {
			return v, true
		}
	}
	return decimal.Decimal{}, false
}

func (s *budgetStrategy) weak(line string) (decimal.Decimal, bool) {
	t := stripSpaces(strings.TrimSpace(line))
	if !reBare.MatchString(t) || len(t) < s.minBareDigits {
		return decimal.Decimal{}, false
	}
	if n, err := strconv.Atoi(t); err == nil && len(t) == 4 && n >= s.yearMin && n <= s.yearMax {
		return decimal.Decimal{}, false
	}
	v, err := decimal.NewFromString(t)
	if err != nil || !v.IsPositive() {
		return decimal.Decimal{}, false
	}
	return v, true
}

func stripSpaces(s string) string {
	return strings.NewReplacer(" ", "", "\u00a0", "").Replace(s)
}

func fracPart(frac string) string {
	if frac == "" {
		return ""
	}
	return "." + frac
}
