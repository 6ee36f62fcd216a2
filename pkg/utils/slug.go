package utils

import "strings"

// Slugify derives a URL-safe page identifier from a title: lowercase, runs
// of non-alphanumeric characters collapsed to single hyphens, leading and
// trailing hyphens trimmed. Deterministic and idempotent:
// Slugify("Hello, World!") == Slugify("hello-world") == "hello-world".
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	pending := false
	for _, r := range strings.ToLower(title) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte('-')
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
