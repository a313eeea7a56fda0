// Package locale resolves bilingual twin fields. Every entity stores an
// Arabic and an English sibling for its display fields; resolution prefers
// the requested locale and falls back to the sibling rather than rendering
// an empty string.
package locale

import "strings"

type Locale string

const (
	Arabic  Locale = "ar"
	English Locale = "en"
)

// Parse normalizes a caller-supplied locale string, falling back to the
// given default for unknown values.
func Parse(value string, fallback Locale) Locale {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "ar":
		return Arabic
	case "en":
		return English
	default:
		return fallback
	}
}

func (l Locale) String() string { return string(l) }

// Resolve returns the display string for a twin field pair. ar and en are
// the sibling columns; whichever matches the locale is preferred, the other
// is the fallback. Both empty resolves to "".
func Resolve(l Locale, ar, en string) string {
	ar = strings.TrimSpace(ar)
	en = strings.TrimSpace(en)
	if l == English {
		if en != "" {
			return en
		}
		return ar
	}
	if ar != "" {
		return ar
	}
	return en
}
