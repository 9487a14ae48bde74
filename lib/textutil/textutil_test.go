package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeFileName(t *testing.T) {
	testCases := []struct {
		display  string
		expected string
	}{
		{display: "I", expected: "Section_I.pdf"},
		{display: " XIV ", expected: "Section_XIV.pdf"},
		{display: "תוספת שלישית WTO", expected: "תוספת_שלישית_WTO.pdf"},
		{display: "נוהל יבוא.pdf", expected: "נוהל_יבוא.pdf"},
		{display: "Section_I.pdf", expected: "Section_I.pdf"},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, NormalizeFileName(test.display))
	}
}

func TestNormalizeFileNameDeterministic(t *testing.T) {
	first := NormalizeFileName("תוספת ראשונה")
	second := NormalizeFileName("תוספת ראשונה")
	require.Equal(t, first, second)
}

func TestIsRomanNumeral(t *testing.T) {
	require.True(t, IsRomanNumeral("I"))
	require.True(t, IsRomanNumeral("XXI"))
	require.True(t, IsRomanNumeral(" VII "))
	require.False(t, IsRomanNumeral(""))
	require.False(t, IsRomanNumeral("Section I"))
	require.False(t, IsRomanNumeral("iv"))
	require.False(t, IsRomanNumeral("123"))
}

func TestMatchName(t *testing.T) {
	require.True(t, MatchName("  Customs Book ", []string{"customsbook"}))
	require.False(t, MatchName("tariff", []string{"supplement"}))
}
