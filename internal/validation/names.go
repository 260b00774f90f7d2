package validation

import "unicode"

// NameViolations returns the characters that make name unusable as an
// identifier in generated code: anything outside letters, digits and
// underscore, plus the first character when it is not a letter (a digit is a
// legal body character but an illegal start, and is still reported). An
// empty name yields a single-space violation so the result is non-empty.
// A legal name yields nil.
func NameViolations(name string) []string {
	if len(name) == 0 {
		return []string{" "}
	}

	runes := []rune(name)
	var violating []string
	seen := make(map[rune]bool)

	if first := runes[0]; !unicode.IsLetter(first) {
		violating = append(violating, string(first))
		seen[first] = true
	}
	for _, c := range runes {
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' {
			continue
		}
		if !seen[c] {
			violating = append(violating, string(c))
			seen[c] = true
		}
	}
	return violating
}
