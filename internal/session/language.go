package session

import (
	"fmt"
	"strings"
)

// Language selects interviewer prompt phrasing; fixed for a session's lifetime.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageKorean  Language = "ko"
)

// ParseLanguage maps a config value onto the closed language enumeration.
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LanguageEnglish:
		return LanguageEnglish, nil
	case LanguageKorean:
		return LanguageKorean, nil
	default:
		return "", fmt.Errorf("unsupported interview language %q", s)
	}
}
