package fields

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/amenity-parser/constants"
)

type DistrictOptions struct {
	Districts []string `yaml:"districts"`
}

type districtStrategy struct {
	districts []constants.District
}

func NewDistrictStrategy(opts DistrictOptions) *districtStrategy {
	ds := constants.AllDistricts
	if len(opts.Districts) > 0 {
		ds = make([]constants.District, len(opts.Districts))
		for i, d := range opts.Districts {
			ds[i] = constants.District(d)
		}
	}
	return &districtStrategy{districts: ds}
}

func (s *districtStrategy) Field() string { return FieldDistrict }

func (s *districtStrategy) Extract(block []string) (any, []int, bool) {
	for i, line := range block {
		l := strings.ToLower(line)
		for _, d := range s.districts {
			if strings.Contains(l, strings.ToLower(string(d))) {
				return string(d), []int{i}, true
			}
		}
	}
	return nil, nil, false
}

var reDistrictPhrase = regexp.MustCompile(`(?i)([\p{L}-]+)\s+(?:район|р-н)`)

// DistrictFromText looks for inflected "<name> район" phrasing, such as
// "Центрального района", in free text.
func DistrictFromText(text string) (constants.District, bool) {
	for _, m := range reDistrictPhrase.FindAllStringSubmatch(text, -1) {
		word := strings.ToLower(m[1])
		for _, d := range constants.AllDistricts {
			if strings.HasPrefix(word, d.Stem()) {
				return d, true
			}
		}
	}
	return constants.DistrictUnspecified, false
}
