package session

import "strings"

// Turn is one question/answer exchange unit in the session ledger.
// Question is immutable after creation; Answer and Evaluation are set together,
// exactly once, when the turn closes.
type Turn struct {
	Seq        int    `json:"seq"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Evaluation string `json:"evaluation,omitempty"`
}

// Closed reports whether the turn has received its answer.
func (t Turn) Closed() bool {
	return strings.TrimSpace(t.Answer) != ""
}

// ClosedTurns returns the answered subsequence of a ledger, preserving order.
// Report generation consumes only closed turns; a trailing open question is
// discarded, never submitted as an incomplete answer.
func ClosedTurns(ledger []Turn) []Turn {
	closed := make([]Turn, 0, len(ledger))
	for _, turn := range ledger {
		if turn.Closed() {
			closed = append(closed, turn)
		}
	}
	return closed
}
