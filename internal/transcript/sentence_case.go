package transcript

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	pronounIContractionPattern = regexp.MustCompile(`\bi['’](?:m|d|ll|ve|re|s)\b`)
	pronounIWordPattern        = regexp.MustCompile(`\bi\b`)

	// nonTerminalAbbreviations keep their trailing period from starting a new sentence.
	nonTerminalAbbreviations = map[string]struct{}{
		"dr":   {},
		"e.g":  {},
		"etc":  {},
		"i.e":  {},
		"mr":   {},
		"mrs":  {},
		"ms":   {},
		"prof": {},
		"vs":   {},
	}
)

// capitalizeSentenceStarts upper-cases the first letter of the text and of each
// word following a sentence-terminating punctuation mark.
func capitalizeSentenceStarts(text string) string {
	runes := []rune(text)

	var out strings.Builder
	out.Grow(len(text))

	capitalizeNext := true
	for i, r := range runes {
		if capitalizeNext && unicode.IsLetter(r) {
			r = unicode.ToUpper(r)
			capitalizeNext = false
		}
		out.WriteRune(r)

		switch r {
		case '.':
			if isSentenceBoundaryPeriod(runes, i) {
				capitalizeNext = true
			}
		case '!', '?':
			capitalizeNext = true
		}
	}

	return out.String()
}

// isSentenceBoundaryPeriod rejects decimals, embedded periods, initialisms,
// and known abbreviations as sentence terminators.
func isSentenceBoundaryPeriod(runes []rune, idx int) bool {
	if idx <= 0 || runes[idx] != '.' {
		return idx == 0
	}

	if idx+1 < len(runes) {
		next := runes[idx+1]
		if unicode.IsLetter(next) || unicode.IsDigit(next) || next == '.' {
			return false
		}
		if unicode.IsDigit(runes[idx-1]) && unicode.IsDigit(next) {
			return false
		}
	}

	token := strings.ToLower(tokenBeforePeriod(runes, idx))
	if token == "" {
		return true
	}
	if _, ok := nonTerminalAbbreviations[token]; ok {
		return false
	}
	return !looksLikeInitialism(token)
}

func tokenBeforePeriod(runes []rune, idx int) string {
	start := idx - 1
	for start >= 0 {
		if r := runes[start]; unicode.IsLetter(r) || r == '.' {
			start--
			continue
		}
		break
	}
	return strings.Trim(string(runes[start+1:idx]), ".")
}

// looksLikeInitialism reports dotted single-letter tokens such as "u.s".
func looksLikeInitialism(token string) bool {
	if !strings.ContainsRune(token, '.') {
		return false
	}
	for _, part := range strings.Split(token, ".") {
		runes := []rune(part)
		if len(runes) != 1 || !unicode.IsLetter(runes[0]) {
			return false
		}
	}
	return true
}
