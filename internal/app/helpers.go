package app

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// keepName builds the filename a video is kept under when it is not
// published, so leftover files in the output directory stay identifiable.
func keepName(title string) string {
	sanitized := sanitizeForPath(title)
	if sanitized == "" {
		sanitized = "untitled"
	}
	if len(sanitized) > 50 {
		sanitized = sanitized[:50]
	}

	return fmt.Sprintf("%s_%s.mp4", time.Now().Format("20060102_150405"), sanitized)
}

func sanitizeForPath(s string) string {
	s = strings.ToLower(s)
	s = sanitizeRegex.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
