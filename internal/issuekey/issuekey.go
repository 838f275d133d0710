// Package issuekey finds tracker issue references such as "PROJ-123" in free text.
package issuekey

import "regexp"

// pattern matches an uppercase project prefix, a hyphen, and a numeric sequence.
var pattern = regexp.MustCompile(`[A-Z]+-\d+`)

// Extract returns the first issue key found in the space-joined title and
// description. Matching is case-sensitive.
func Extract(title, description string) (string, bool) {
	key := pattern.FindString(title + " " + description)
	return key, key != ""
}
