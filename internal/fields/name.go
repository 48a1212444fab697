package fields

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultNameCues mark lines that usually carry the object's name.
var DefaultNameCues = []string{"территория,", "прилегающая к", "благоустройств", "парк", "сквер", "площадка", "набережная"}

var defaultNamePrefixes = []string{
	`(?i)^\s*общественная\s+территория\s*,?\s*`,
	`(?i)^\s*территория\s*,\s*`,
	`(?i)^\s*прилегающая\s+к\s*`,
}

type NameOptions struct {
	Cues              []string `yaml:"cues"`
	Prefixes          []string `yaml:"prefixes"`
	MinLength         int      `yaml:"min_length"`
	FallbackMinLength int      `yaml:"fallback_min_length"`
}

type nameStrategy struct {
	cues      []string
	prefixes  []*regexp.Regexp
	minCue    int
	minFallbk int
	noise     *legalMarkers
}

// NewNameStrategy runs a cue pass (a line with a cue word, longer than
// MinLength once cleaned) and then a fallback pass (any long non-noise line).
func NewNameStrategy(opts NameOptions) (*nameStrategy, error) {
	if len(opts.Cues) == 0 {
		opts.Cues = DefaultNameCues
	}
	if len(opts.Prefixes) == 0 {
		opts.Prefixes = defaultNamePrefixes
	}
	if opts.MinLength <= 0 {
		opts.MinLength = 10
	}
	if opts.FallbackMinLength <= 0 {
		opts.FallbackMinLength = 15
	}
	prefixes := make([]*regexp.Regexp, 0, len(opts.Prefixes))
	for _, p := range opts.Prefixes {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		prefixes = append(prefixes, re)
	}
	return &nameStrategy{
		cues:      opts.Cues,
		prefixes:  prefixes,
		minCue:    opts.MinLength,
		minFallbk: opts.FallbackMinLength,
		noise:     defaultLegalMarkers(),
	}, nil
}

func (s *nameStrategy) Field() string { return FieldName }

func (s *nameStrategy) Extract(block []string) (any, []int, bool) {
	for i, line := range block {
		if !containsAny(strings.ToLower(line), s.cues) || s.noise.any(line) {
			continue
		}
		if name := s.clean(line); utf8.RuneCountInString(name) > s.minCue {
			return name, []int{i}, true
		}
	}
	for i, line := range block {
		if utf8.RuneCountInString(line) <= s.minFallbk || s.isNoise(line) {
			continue
		}
		if name := s.clean(line); name != "" {
			return name, []int{i}, true
		}
	}
	return nil, nil, false
}

func (s *nameStrategy) clean(line string) string { return cleanWith(s.prefixes, line) }

var defaultNameCleaners = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(defaultNamePrefixes))
	for i, p := range defaultNamePrefixes {
		out[i] = regexp.MustCompile(p)
	}
	return out
}()

// CleanName strips the default boilerplate prefixes from a candidate name.
func CleanName(s string) string { return cleanWith(defaultNameCleaners, s) }

func cleanWith(prefixes []*regexp.Regexp, line string) string {
	out := line
	for _, re := range prefixes {
		out = re.ReplaceAllString(out, "")
	}
	return strings.Trim(strings.TrimSpace(out), ",;:- ")
}

func (s *nameStrategy) isNoise(line string) bool {
	l := strings.ToLower(line)
	return isRegionLine(line) || isNumeral(line) || isPureDate(line) || isBoilerplate(line) ||
		strings.Contains(l, "район") || s.noise.any(line)
}
