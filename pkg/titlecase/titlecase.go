// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package titlecase capitalises credit and stage names the way release
// pages print them.
//
// # Rules
//
// Words are letter-led runs that may contain digits, hyphens and
// apostrophes. The first and last words are always capitalised; short
// function words in between are lowercased. Words that are fully upper
// case ("SFX") or already mixed case after their first letter ("McKay")
// are left alone.
package titlecase

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	wordRegex = regexp.MustCompile(`\p{L}[\p{L}\p{N}_\-']*`)

	lowercaseWords = map[string]struct{}{
		"a": {}, "an": {}, "and": {}, "as": {}, "but": {}, "by": {}, "down": {},
		"during": {}, "for": {}, "from": {}, "in": {}, "nor": {}, "of": {},
		"off": {}, "on": {}, "or": {}, "over": {}, "the": {}, "through": {},
		"to": {}, "under": {}, "without": {},
	}
)

// Convert returns text in title case.
func Convert(text string) string {
	total := len(wordRegex.FindAllStringIndex(text, -1))
	if total == 0 {
		return text
	}

	index := 0

	return wordRegex.ReplaceAllStringFunc(text, func(word string) string {
		position := index
		index++

		if isAllUpper(word) || isIrregular(word) {
			return word
		}

		lower := strings.ToLower(word)
		if position != 0 && position != total-1 {
			if _, ok := lowercaseWords[lower]; ok {
				return lower
			}
		}
		return capitalise(lower)
	})
}

// capitalise upper-cases the first rune only, so hyphenated words keep
// their later parts lower case.
func capitalise(word string) string {
	_, size := firstRune(word)
	// A Caser keeps state, so each call gets its own.
	return cases.Upper(language.Und).String(word[:size]) + word[size:]
}

func isAllUpper(word string) bool {
	return strings.ToUpper(word) == word
}

// isIrregular reports an upper-case letter after the first rune, ignoring accents.
func isIrregular(word string) bool {
	_, size := firstRune(word)
	rest, _, err := transform.String(transform.Chain(norm.NFD, transform.RemoveFunc(isMark)), word[size:])
	if err != nil {
		rest = word[size:]
	}
	return strings.IndexFunc(rest, unicode.IsUpper) >= 0
}

func firstRune(s string) (rune, int) {
	for i, r := range s {
		if i == 0 {
			return r, len(string(r))
		}
	}
	return 0, 0
}

func isMark(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
