package shaarolami

import (
	"regexp"
	"sort"
	"strings"
)

// HS codes appear on chapter pages either as contiguous 10 digit runs
// or grouped like 0123.45.67.89 (dashes and spaces show up as
// separators too, depending on the page).
var (
	groupedCodeRegex    = regexp.MustCompile(`\d{4}[.\- ]\d{2}[.\- ]\d{2}[.\- ]\d{2}`)
	contiguousCodeRegex = regexp.MustCompile(`\d+`)
	codeSeparators      = strings.NewReplacer(".", "", "-", "", " ", "")
)

// ExtractCodes scans raw markup for 10 digit HS codes. Separator
// characters are stripped before the length check, duplicates are
// dropped and the result keeps first-seen document order.
func ExtractCodes(rawMarkup string) []string {
	type match struct {
		start int
		raw   string
	}
	var matches []match

	for _, loc := range groupedCodeRegex.FindAllStringIndex(rawMarkup, -1) {
		if digitAdjacent(rawMarkup, loc[0], loc[1]) {
			continue
		}
		matches = append(matches, match{start: loc[0], raw: rawMarkup[loc[0]:loc[1]]})
	}
	for _, loc := range contiguousCodeRegex.FindAllStringIndex(rawMarkup, -1) {
		if loc[1]-loc[0] != 10 {
			continue
		}
		matches = append(matches, match{start: loc[0], raw: rawMarkup[loc[0]:loc[1]]})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].start < matches[j].start
	})

	seen := map[string]bool{}
	var codes []string
	for _, m := range matches {
		code := codeSeparators.Replace(m.raw)
		if len(code) != 10 || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes
}

// a grouped match starting or ending against another digit is part of
// a longer number, not a code
func digitAdjacent(s string, start, end int) bool {
	if start > 0 && s[start-1] >= '0' && s[start-1] <= '9' {
		return true
	}
	if end < len(s) && s[end] >= '0' && s[end] <= '9' {
		return true
	}
	return false
}
