package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate   = regexp.MustCompile(`\b\d{2}\.\d{2}\.\d{4}\b`)
	reBudget = regexp.MustCompile(`\d+,\d+`)
)

// heuristicConfidence scores how much the text looks like an amenities table.
func heuristicConfidence(lines []string) float32 {
	if len(lines) == 0 {
		return 0
	}
	txt := strings.Join(lines, "\n")
	score := float32(0.2) // base
	if strings.Contains(txt, "Общественная территория") {
		score += 0.3
	}
	if reDate.MatchString(txt) {
		score += 0.2
	}
	if reBudget.MatchString(txt) {
		score += 0.15
	}
	if len(lines) > 30 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}
