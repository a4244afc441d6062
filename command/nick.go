package command

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// stripPunctuation lists the characters Euphoria's clients elide when
// normalizing a nick for comparison or @-mention matching.
const stripPunctuation = ",.!?;&<>'\""

var foldCaser = cases.Fold(cases.Compact)

// NormalizeNick canonicalizes a nick for comparison: it strips whitespace
// and the punctuation set above, applies NFKC normalization, then
// case-folds. Two nicks that a human would consider "the same" nick after
// re-typing whitespace or punctuation normalize to the same string.
func NormalizeNick(nick string) string {
	var b strings.Builder
	for _, r := range nick {
		if unicode.IsSpace(r) || strings.ContainsRune(stripPunctuation, r) {
			continue
		}
		b.WriteRune(r)
	}
	return foldCaser.String(norm.NFKC.String(b.String()))
}

var mentionToken = regexp.MustCompile(`@\S+`)

// Mention reports whether text contains an @-mention of nick, using the
// same normalization as NormalizeNick so punctuation or whitespace
// differences between the mention and the nick's canonical form don't
// prevent a match.
func Mention(text, nick string) bool {
	target := NormalizeNick(nick)
	if target == "" {
		return false
	}

	for _, token := range mentionToken.FindAllString(text, -1) {
		if NormalizeNick(strings.TrimPrefix(token, "@")) == target {
			return true
		}
	}
	return false
}
