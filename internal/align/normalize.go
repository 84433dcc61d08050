package align

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Romanian text arrives with both the legacy cedilla forms and the correct
// comma-below forms depending on the OCR engine and keyboard layout.
var diacritics = strings.NewReplacer(
	"ş", "ș", "Ş", "Ș",
	"ţ", "ț", "Ţ", "Ț",
)

// Tokens splits text into normalized tokens: NFC composed, diacritics
// unified, case folded, and split on anything that is not a letter,
// digit or combining mark.
func Tokens(text string) []string {
	if text == "" {
		return nil
	}

	text = norm.NFC.String(text)
	text = diacritics.Replace(text)
	text = cases.Fold().String(text) // Caser is stateful, one per call
	text = norm.NFC.String(text)

	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.IsMark(r)
	})
}

// Normalize returns the tokens of text joined by single spaces.
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(text string) string {
	return strings.Join(Tokens(text), " ")
}
