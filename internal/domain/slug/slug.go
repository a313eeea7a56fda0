// Package slug derives URL identifiers from bilingual titles. Arabic text
// is kept as-is so Arabic posts get readable Arabic slugs; everything else
// is reduced to lowercase ASCII. Slugs are assigned once at creation and
// never regenerated when a title changes.
package slug

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// Arabic block U+0600-06FF plus Arabic Extended-A U+08A0-08FF.
	invalidChars    = regexp.MustCompile("[^؀-ۿࢠ-ࣿa-z0-9-]")
	whitespaceRuns  = regexp.MustCompile(`[\s_]+`)
	hyphenRuns      = regexp.MustCompile(`-+`)
	fallbackEntropy = 4 // bytes of randomness appended to fallback slugs
)

// Generate reduces text to a slug: Latin letters lowercased, Arabic letters
// preserved, whitespace and underscores collapsed to single hyphens, every
// other character stripped. Input that reduces to nothing (symbols only)
// yields a unique fallback of the form item-<base36 millis>-<entropy>.
func Generate(text string) string {
	value := strings.ToLower(strings.TrimSpace(text))
	value = whitespaceRuns.ReplaceAllString(value, "-")
	value = invalidChars.ReplaceAllString(value, "")
	value = hyphenRuns.ReplaceAllString(value, "-")
	value = strings.Trim(value, "-")

	if value == "" {
		return fallback()
	}
	return value
}

// Unique resolves collisions within a collection by appending -2, -3, ...
// until taken reports the candidate as free.
func Unique(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for i := 2; ; i++ {
		candidate := base + "-" + strconv.Itoa(i)
		if !taken(candidate) {
			return candidate
		}
	}
}

func fallback() string {
	buf := make([]byte, fallbackEntropy)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is effectively unreachable; the timestamp
		// alone still avoids collisions across calls in distinct millis.
		return "item-" + strconv.FormatInt(time.Now().UnixMilli(), 36)
	}
	return "item-" + strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + hex.EncodeToString(buf)
}
