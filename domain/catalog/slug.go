package catalog

import (
	"regexp"
	"strings"
)

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[-\s]+`)
)

// Slugify derives a URL slug the same way the ingestion pipeline does:
// lowercase, strip punctuation, collapse whitespace/hyphen runs into a
// single hyphen, trim leading and trailing hyphens. Slugs computed here
// must match the ones stored upstream or snapshot diffing breaks.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = slugStrip.ReplaceAllString(s, "")
	s = slugCollapse.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
