package keytao

import (
	"regexp"
	"strings"
	"unicode"
)

var reLink = regexp.MustCompile(`(?i)https?://|www\.`)

// DetectPhraseType resolves the phrase type for a submission whose caller
// did not specify one, mirroring the server's detection order:
// symbol codes/words, then links, then latin words, then single CJK
// characters; everything else is a plain phrase.
func DetectPhraseType(word, code string) string {
	if strings.HasPrefix(code, ";") || isSymbolWord(word) {
		return "Symbol"
	}
	if reLink.MatchString(word) {
		return "Link"
	}
	if strings.IndexFunc(word, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}) >= 0 {
		return "English"
	}
	runes := []rune(word)
	if len(runes) == 1 && isCJK(runes[0]) {
		return "Single"
	}
	return "Phrase"
}

// isSymbolWord reports whether every non-space rune is punctuation or a symbol.
func isSymbolWord(word string) bool {
	if word == "" {
		return false
	}
	seen := false
	for _, r := range word {
		if unicode.IsSpace(r) {
			continue
		}
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
		seen = true
	}
	return seen
}

// isCJK covers Han, kana and hangul ranges.
func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3040 && r <= 0x30FF) ||
		(r >= 0xAC00 && r <= 0xD7AF)
}
