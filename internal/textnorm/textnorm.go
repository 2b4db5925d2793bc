// Package textnorm canonicalizes free text into the form used for
// title matching: lowercase, punctuation- and digit-free, alphabetic
// tokens joined by single spaces.
package textnorm

import (
	"regexp"
	"strings"
)

// asciiPunctuation is the set of characters stripped in step two.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var (
	digitRun = regexp.MustCompile(`\d+`)
	alphaRun = regexp.MustCompile(`[a-z]+`)
)

// Normalize canonicalizes text for matching. The steps are ordered and
// each operates on the previous step's output:
//
//  1. lowercase
//  2. delete ASCII punctuation (no replacement, so "don't" -> "dont")
//  3. delete carriage returns and newlines (fusing words that spanned
//     a line break)
//  4. delete decimal digit runs
//  5. keep only runs of a-z, rejoined with single spaces
//
// Normalize is pure and idempotent. Degenerate input (no alphabetic
// characters at all) yields the empty string. Titles and body text
// must both go through this same function so substring matching stays
// consistent.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = strings.Map(func(r rune) rune {
		if strings.ContainsRune(asciiPunctuation, r) {
			return -1
		}
		return r
	}, text)
	text = strings.NewReplacer("\r", "", "\n", "").Replace(text)
	text = digitRun.ReplaceAllString(text, "")
	return strings.Join(alphaRun.FindAllString(text, -1), " ")
}
