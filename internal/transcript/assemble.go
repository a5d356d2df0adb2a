// Package transcript assembles recognized speech segments into answer text.
package transcript

import "strings"

// Options controls answer assembly formatting behavior.
type Options struct {
	CapitalizeSentences bool
}

// Assemble joins recognized segments and applies configured normalization.
// The result is the candidate's accumulated answer since capture started.
func Assemble(segments []string, opts Options) string {
	if len(segments) == 0 {
		return ""
	}

	joined := strings.Join(segments, " ")
	normalized := strings.Join(strings.Fields(joined), " ")
	if normalized == "" {
		return ""
	}

	if opts.CapitalizeSentences {
		normalized = capitalizeSentences(normalized)
	}
	return normalized
}

func capitalizeSentences(text string) string {
	text = capitalizeSentenceStarts(text)
	text = pronounIContractionPattern.ReplaceAllStringFunc(text, func(match string) string {
		return "I" + match[1:]
	})
	return pronounIWordPattern.ReplaceAllString(text, "I")
}
