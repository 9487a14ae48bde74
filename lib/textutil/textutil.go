package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

var romanNumeralRegex = regexp.MustCompile(`^[IVXLCDM]+$`)

// IsRomanNumeral reports whether the trimmed label consists solely of
// uppercase Roman numeral characters, the way the portal titles its
// tariff sections.
func IsRomanNumeral(label string) bool {
	return romanNumeralRegex.MatchString(strings.TrimSpace(label))
}

// NormalizeFileName derives the deduplication key for a document label.
// Bare Roman numeral section labels get a "Section_" prefix, whitespace
// runs become single underscores and a .pdf extension is appended when
// missing. The result is deterministic for a given label.
func NormalizeFileName(displayName string) string {
	name := strings.TrimSpace(displayName)
	if IsRomanNumeral(name) {
		name = "Section_" + name
	}
	name = strings.Join(strings.Fields(name), "_")
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}
