package fields

import (
	"regexp"
	"strings"
)

var (
	DefaultAddressMarkers = []string{
		"ул.", "улица", "пр.", "проспект", "пер.", "переулок", "б-р", "бульвар",
		"наб.", "набережная", "пл.", "площадь", "шоссе", "в районе", "в границах", "адрес",
	}
	DefaultCustomerMarkers   = []string{"МБУ", "МКУ", "МАУ", "ГКУ", "ГБУ", "Администрация", "Комитет"}
	DefaultContractorMarkers = []string{"ООО", "ИП", "АО", "ЗАО", "ОАО", "ПАО"}
)

var reAddressLabel = regexp.MustCompile(`(?i)^\s*адрес\s*:?\s*`)

// legalMarkers recognises lines naming a legal entity on either side of a contract.
type legalMarkers struct {
	customer   *regexp.Regexp
	contractor *regexp.Regexp
}

func defaultLegalMarkers() *legalMarkers {
	return &legalMarkers{customer: wholeToken(DefaultCustomerMarkers), contractor: wholeToken(DefaultContractorMarkers)}
}

func (m *legalMarkers) any(line string) bool {
	return m.customer.MatchString(line) || m.contractor.MatchString(line)
}

type MarkerOptions struct {
	Markers []string `yaml:"markers"`
}

type addressStrategy struct {
	markers []string
	prefix  *regexp.Regexp
}

func NewAddressStrategy(opts MarkerOptions) *addressStrategy {
	if len(opts.Markers) == 0 {
		opts.Markers = DefaultAddressMarkers
	}
	lower := make([]string, len(opts.Markers))
	for i, m := range opts.Markers {
		lower[i] = strings.ToLower(m)
	}
	return &addressStrategy{markers: lower, prefix: regexp.MustCompile(defaultNamePrefixes[0])}
}

func (s *addressStrategy) Field() string { return FieldAddress }

func (s *addressStrategy) Extract(block []string) (any, []int, bool) {
	for i, line := range block {
		if !containsAny(strings.ToLower(line), s.markers) {
			continue
		}
		addr := reAddressLabel.ReplaceAllString(line, "")
		addr = strings.Trim(strings.TrimSpace(s.prefix.ReplaceAllString(addr, "")), ",;: ")
		if addr != "" {
			return addr, []int{i}, true
		}
	}
	return nil, nil, false
}

// entityStrategy keeps the first line with a whole-token legal-entity marker.
type entityStrategy struct {
	field string
	re    *regexp.Regexp
}

func NewCustomerStrategy(opts MarkerOptions) *entityStrategy {
	if len(opts.Markers) == 0 {
		opts.Markers = DefaultCustomerMarkers
	}
	return &entityStrategy{field: FieldCustomer, re: wholeToken(opts.Markers)}
}

func NewContractorStrategy(opts MarkerOptions) *entityStrategy {
	if len(opts.Markers) == 0 {
		opts.Markers = DefaultContractorMarkers
	}
	return &entityStrategy{field: FieldContractor, re: wholeToken(opts.Markers)}
}

func (s *entityStrategy) Field() string { return s.field }

func (s *entityStrategy) Extract(block []string) (any, []int, bool) {
	for i, line := range block {
		if s.re.MatchString(line) {
			return strings.TrimSpace(line), []int{i}, true
		}
	}
	return nil, nil, false
}

type RegionOptions struct {
	Regions []string `yaml:"regions"`
}

type regionStrategy struct {
	regions []string
}

func NewRegionStrategy(opts RegionOptions) *regionStrategy {
	if len(opts.Regions) == 0 {
		opts.Regions = DefaultRegions
	}
	return &regionStrategy{regions: opts.Regions}
}

func (s *regionStrategy) Field() string { return FieldRegion }

// Extract does not consume: region lines never reach the description anyway.
func (s *regionStrategy) Extract(block []string) (any, []int, bool) {
	for _, line := range block {
		for _, r := range s.regions {
			if strings.Contains(line, r) {
				return r, nil, true
			}
		}
	}
	return nil, nil, false
}
