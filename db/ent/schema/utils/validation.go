package utils

import (
	"fmt"
	"unicode/utf8"
)

func EnumValidator(allowed ...string) func(string) error {
	set := map[string]struct{}{}
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return func(s string) error {
		if _, ok := set[s]; ok {
			return nil
		}
		return fmt.Errorf("validation failed: %q is not one of %v", s, allowed)
	}
}

// MaxRunes bounds a string by characters rather than bytes; Cyrillic text is
// two bytes per letter.
func MaxRunes(n int) func(string) error {
	return func(s string) error {
		if utf8.RuneCountInString(s) > n {
			return fmt.Errorf("validation failed: longer than %d characters", n)
		}
		return nil
	}
}
