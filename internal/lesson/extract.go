package lesson

import "strings"

// ExtractObject returns the first balanced JSON object embedded in text,
// tolerating prose before and after it. The scan tracks string-literal and
// escape state, so braces inside quoted values do not desynchronize the
// depth counter. Reports false when no complete object is present.
func ExtractObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}
