// Package report defines the final interview report artifact and its persistence.
package report

import (
	"fmt"
	"strings"
)

// Card is the terminal evaluation artifact produced once per session.
type Card struct {
	Score        int      `json:"score"`
	Summary      string   `json:"summary"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Advice       string   `json:"advice"`
}

// Degraded synthesizes a local placeholder card when report generation fails,
// so the session can still terminate cleanly.
func Degraded(reason string) Card {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown failure"
	}
	return Card{
		Score:   0,
		Summary: fmt.Sprintf("The evaluation service could not produce a report (%s). Your answers were recorded; try again later.", reason),
		Advice:  "Re-run the session when the evaluation service is reachable.",
	}
}

// Unanswered is the terminal card for a session that ended before any answer
// was completed. Nothing reached the evaluation service, so the card is built
// locally.
func Unanswered() Card {
	return Card{
		Score:   0,
		Summary: "The interview ended before any answer was completed, so there is nothing to grade.",
		Advice:  "Start a new session and submit at least one answer to receive feedback.",
	}
}

// Validate enforces the report payload contract.
func Validate(c Card) error {
	if c.Score < 0 || c.Score > 100 {
		return fmt.Errorf("score %d out of range [0,100]", c.Score)
	}
	if strings.TrimSpace(c.Summary) == "" {
		return fmt.Errorf("summary is empty")
	}
	return nil
}
