package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Title and search-key normalization. Both sides of a match go through the
// same pipeline so that "Pokémon +" and "pokemon plus" compare equal:
// symbol substitution, transliteration to ASCII, case folding, punctuation
// stripped to spaces, whitespace collapsed.

// asciiFold decomposes characters and drops combining marks, turning
// "é" into "e", "ū" into "u" and so on.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// substitutions are applied before transliteration. Padding with spaces keeps
// substituted words as separate tokens.
var substitutions = []struct {
	from string
	to   string
}{
	{"+", " plus "},
	{"&", " and "},
	{"™", " "},
	{"©", " "},
	{"®", " "},
}

// Normalize returns the canonical matching form of a title or search key:
// lowercase ASCII words separated by single spaces.
func Normalize(s string) string {
	for _, sub := range substitutions {
		s = strings.ReplaceAll(s, sub.from, sub.to)
	}

	if folded, _, err := transform.String(asciiFold, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	space := true // collapse leading whitespace
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			space = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
			space = false
		default:
			// Punctuation and whitespace both become a single separator.
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Tokens splits a normalized string into its tokens.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}
