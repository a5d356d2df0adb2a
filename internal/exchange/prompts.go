package exchange

import (
	_ "embed"

	"github.com/parley-dev/parley/internal/session"
)

//go:embed prompts/interviewer_en.md
var interviewerPromptEN string

//go:embed prompts/interviewer_ko.md
var interviewerPromptKO string

//go:embed prompts/report_en.md
var reportPromptEN string

//go:embed prompts/report_ko.md
var reportPromptKO string

func interviewerPrompt(language session.Language) string {
	if language == session.LanguageKorean {
		return interviewerPromptKO
	}
	return interviewerPromptEN
}

func reportPrompt(language session.Language) string {
	if language == session.LanguageKorean {
		return reportPromptKO
	}
	return reportPromptEN
}
