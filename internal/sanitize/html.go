package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

var (
	// strictPolicy removes all HTML tags and attributes.
	// Used for fields that should only contain plain text (titles, names,
	// requirement items, keywords).
	strictPolicy = bluemonday.StrictPolicy()

	// ugcPolicy allows safe user-generated content with basic formatting.
	// Used for blog post and project bodies where the editor emits
	// <p>, <b>, <i>, <em>, <strong>, <a>, <ul>, <ol>, <li>, <br>.
	ugcPolicy = bluemonday.UGCPolicy()
)

// Text strips all HTML and returns plain text.
func Text(input string) string {
	return strictPolicy.Sanitize(input)
}

// HTML sanitizes rich-text content, keeping safe formatting tags and
// dropping scripts, iframes, event handlers and style attributes.
func HTML(input string) string {
	return ugcPolicy.Sanitize(input)
}

// TextSlice sanitizes each string in a slice, removing all HTML.
func TextSlice(inputs []string) []string {
	if inputs == nil {
		return nil
	}
	sanitized := make([]string, len(inputs))
	for i, input := range inputs {
		sanitized[i] = Text(input)
	}
	return sanitized
}
