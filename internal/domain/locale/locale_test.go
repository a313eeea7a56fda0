package locale

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	require.Equal(t, Arabic, Parse("ar", English))
	require.Equal(t, English, Parse(" EN ", Arabic))
	require.Equal(t, Arabic, Parse("", Arabic))
	require.Equal(t, English, Parse("fr", English))
}

func TestResolvePrefersRequestedLocale(t *testing.T) {
	require.Equal(t, "حفل افتتاح", Resolve(Arabic, "حفل افتتاح", "Opening Ceremony"))
	require.Equal(t, "Opening Ceremony", Resolve(English, "حفل افتتاح", "Opening Ceremony"))
}

func TestResolveFallsBackToSibling(t *testing.T) {
	require.Equal(t, "Opening Ceremony", Resolve(Arabic, "", "Opening Ceremony"))
	require.Equal(t, "حفل افتتاح", Resolve(English, "حفل افتتاح", ""))
}

func TestResolveTrimsWhitespaceOnlyFields(t *testing.T) {
	require.Equal(t, "fallback", Resolve(Arabic, "   ", "fallback"))
	require.Equal(t, "", Resolve(English, "", "  "))
}
