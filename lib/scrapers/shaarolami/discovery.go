package shaarolami

import (
	"context"
	"errors"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/browser"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/textutil"
)

// Candidate is a prospective document: a display label as seen on the
// portal plus a fetchable locator. An empty URL marks a discovery miss
// that the pipeline records as a failure.
type Candidate struct {
	DisplayName string
	URL         string
}

// NormalizedFileName is the deduplication key for the candidate.
func (c Candidate) NormalizedFileName() string {
	return textutil.NormalizeFileName(c.DisplayName)
}

// ErrExhausted signals the end of a discovery sequence.
var ErrExhausted = errors.New("discovery exhausted")

// Discovery yields candidates lazily, one per Next call, until
// ErrExhausted. Strategies never persist anything themselves.
type Discovery interface {
	Next(ctx context.Context) (Candidate, error)
}

type recognizerKind int

const (
	recognizeExact recognizerKind = iota
	recognizeRoman
	recognizeContains
)

// Recognizer decides whether a page element's visible text names a
// document worth ingesting. It is a tagged variant: an exact label
// (optionally fuzzy), a bare Roman numeral, or a marker token.
type Recognizer struct {
	kind      recognizerKind
	label     string
	threshold float64
}

func ExactLabel(label string) Recognizer {
	return Recognizer{kind: recognizeExact, label: label}
}

// FuzzyLabel matches labels whose Jaro-Winkler similarity to the given
// label meets the threshold. The portal occasionally reflows labels
// with stray whitespace or punctuation, exact matching misses those.
func FuzzyLabel(label string, threshold float64) Recognizer {
	return Recognizer{kind: recognizeExact, label: label, threshold: threshold}
}

func RomanNumeral() Recognizer {
	return Recognizer{kind: recognizeRoman}
}

func ContainsToken(token string) Recognizer {
	return Recognizer{kind: recognizeContains, label: token}
}

func (r Recognizer) Match(el browser.Element) bool {
	text := el.Text
	switch r.kind {
	case recognizeExact:
		if textutil.NormalizeName(text) == textutil.NormalizeName(r.label) {
			return true
		}
		if r.threshold > 0 {
			similarity := matchr.JaroWinkler(
				textutil.NormalizeName(text),
				textutil.NormalizeName(r.label),
				false,
			)
			return similarity >= r.threshold
		}
		return false
	case recognizeRoman:
		return textutil.IsRomanNumeral(text)
	case recognizeContains:
		return strings.Contains(textutil.NormalizeName(text), textutil.NormalizeName(r.label))
	}
	return false
}

// matchElements lists the current page's interactive elements whose
// text any recognizer accepts, in document order.
func matchElements(ctx context.Context, b browser.Browser, selector string, recognizers []Recognizer) ([]browser.Element, error) {
	elements, err := b.Elements(ctx, selector)
	if err != nil {
		return nil, err
	}

	var matched []browser.Element
	for _, el := range elements {
		for _, r := range recognizers {
			if r.Match(el) {
				matched = append(matched, el)
				break
			}
		}
	}
	return matched, nil
}
