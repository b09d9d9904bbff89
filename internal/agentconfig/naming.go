package agentconfig

import (
	"strings"
	"unicode"
)

// SnakeCase derives the canonical identifier for a display name: lowercase,
// word boundaries (spaces, dashes, camelCase transitions, punctuation)
// collapsed to single underscores.
func SnakeCase(name string) string {
	var b strings.Builder
	prevUnderscore := true // suppress a leading underscore
	prevLowerOrDigit := false

	for _, r := range name {
		switch {
		case unicode.IsUpper(r):
			if prevLowerOrDigit && !prevUnderscore {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevUnderscore = false
			prevLowerOrDigit = false
		case unicode.IsLower(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevUnderscore = false
			prevLowerOrDigit = true
		default:
			// Spaces, dashes, dots and anything else become a single
			// underscore.
			if !prevUnderscore {
				b.WriteRune('_')
			}
			prevUnderscore = true
			prevLowerOrDigit = false
		}
	}

	out := strings.Trim(b.String(), "_")
	if out == "" {
		out = "unnamed"
	}
	return out
}

// CanonicalFileName is the deterministic filename for a node's declared name:
// snake_case(name) + ".yaml". Filenames are unique within a project.
func CanonicalFileName(name string) string {
	return SnakeCase(name) + FileExtension
}
