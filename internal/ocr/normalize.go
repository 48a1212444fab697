package ocr

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`[\t\x{00A0}]+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reBoxNoise   = regexp.MustCompile(`^[_\-=|]{3,}$`)
)

// Linearize turns raw extractor output into the ordered sequence of
// trimmed, non-empty lines the segmenter consumes.
func Linearize(s string) []string {
	if s == "" {
		return nil
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = strings.ReplaceAll(s, "\f", "\n")
	s = reTabs.ReplaceAllString(s, " ")

	raw := strings.Split(s, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(reMultiSpace.ReplaceAllString(l, " "))
		if l == "" || reBoxNoise.MatchString(l) {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
