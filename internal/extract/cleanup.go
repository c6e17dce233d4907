// Package extract turns raw statement page text into structured partial
// statements and merges them, page-ordered, into a single statement per
// document.
package extract

import (
	"strings"
	"unicode"
)

// CleanPageText normalizes raw page text before extraction: doubled letters
// left behind by PDF text layers are collapsed, then whitespace runs become
// single spaces.
func CleanPageText(s string) string {
	return collapseWhitespace(collapseDoubledLetters(s))
}

// collapseDoubledLetters drops the second letter of every immediately
// repeated pair ("AAccoouunntt" -> "Account"). Digits and punctuation are
// left alone so amounts and references survive intact.
func collapseDoubledLetters(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if i+1 < len(runes) && runes[i+1] == runes[i] && unicode.IsLetter(runes[i]) {
			i++
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
