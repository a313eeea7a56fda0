package slug

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var slugShape = regexp.MustCompile(`^[a-z0-9\p{Arabic}-]+$`)

func TestGenerateLatin(t *testing.T) {
	require.Equal(t, "hello-world", Generate("Hello World"))
	require.Equal(t, "hello-world", Generate("  Hello   _  World  "))
	require.Equal(t, "event-2024", Generate("Event: 2024!"))
}

func TestGeneratePreservesArabic(t *testing.T) {
	require.Equal(t, "فعالية-الرياض", Generate("فعالية الرياض"))
	require.Equal(t, "مشروع-tower-1", Generate("مشروع Tower #1"))
}

func TestGenerateCollapsesHyphens(t *testing.T) {
	require.Equal(t, "a-b", Generate("a --- b"))
	require.Equal(t, "a-b", Generate("--a--b--"))
}

func TestGenerateSymbolsOnlyFallsBack(t *testing.T) {
	first := Generate("!!! ***")
	second := Generate("!!! ***")

	require.NotEmpty(t, first)
	require.True(t, slugShape.MatchString(first), "fallback slug %q has invalid characters", first)
	require.Regexp(t, `^item-`, first)
	require.NotEqual(t, first, second, "fallback slugs must not collide")
}

func TestGenerateShapeProperty(t *testing.T) {
	inputs := []string{
		"Hello World", "فعالية الرياض", "a_b_c", "ONLY CAPS", "12 34",
		"#$%", "   ", "مرحبا---بالعالم", "mixed عربي text",
	}
	for _, input := range inputs {
		got := Generate(input)
		require.NotEmpty(t, got, "input %q", input)
		require.True(t, slugShape.MatchString(got), "input %q produced %q", input, got)
	}
}

func TestUnique(t *testing.T) {
	taken := map[string]bool{"riyadh": true, "riyadh-2": true}

	require.Equal(t, "jeddah", Unique("jeddah", func(s string) bool { return taken[s] }))
	require.Equal(t, "riyadh-3", Unique("riyadh", func(s string) bool { return taken[s] }))
}
