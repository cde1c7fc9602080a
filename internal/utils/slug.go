package utils

import "strings"

// Slugify derives a URL-safe slug from a product name: lowercase, every
// non-alphanumeric rune becomes a hyphen, runs of hyphens collapse to one,
// leading and trailing hyphens are trimmed.
func Slugify(name string) string {
	lowered := strings.ToLower(name)

	var b strings.Builder
	prevDash := false
	for _, r := range lowered {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			b.WriteRune(r)
			prevDash = false
			continue
		}
		if !prevDash {
			b.WriteByte('-')
			prevDash = true
		}
	}

	return strings.Trim(b.String(), "-")
}
