package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parley-dev/parley/internal/config"
)

// Render formats a card as user-facing text output.
func Render(c Card) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Score: %d/100\n\n", c.Score)
	fmt.Fprintf(&b, "%s\n", strings.TrimSpace(c.Summary))

	if len(c.Strengths) > 0 {
		b.WriteString("\nStrengths:\n")
		for _, s := range c.Strengths {
			fmt.Fprintf(&b, "  + %s\n", s)
		}
	}
	if len(c.Improvements) > 0 {
		b.WriteString("\nAreas to improve:\n")
		for _, s := range c.Improvements {
			fmt.Fprintf(&b, "  - %s\n", s)
		}
	}
	if strings.TrimSpace(c.Advice) != "" {
		fmt.Fprintf(&b, "\nAdvice: %s\n", strings.TrimSpace(c.Advice))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// artifact is the persisted session record: the card plus the answered turns.
type artifact struct {
	SavedAt time.Time       `json:"saved_at"`
	Card    Card            `json:"card"`
	Turns   json.RawMessage `json:"turns,omitempty"`
}

// Save writes the card and turn history as a timestamped JSON artifact and
// returns the written path. An empty dir selects the XDG state directory.
func Save(dir string, c Card, turns any) (string, error) {
	if strings.TrimSpace(dir) == "" {
		stateDir, err := config.ResolveStateDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(stateDir, "parley", "reports")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	var rawTurns json.RawMessage
	if turns != nil {
		b, err := json.Marshal(turns)
		if err != nil {
			return "", fmt.Errorf("encode turns: %w", err)
		}
		rawTurns = b
	}

	payload, err := json.MarshalIndent(artifact{
		SavedAt: time.Now(),
		Card:    c,
		Turns:   rawTurns,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	name := fmt.Sprintf("interview-%s-%s.json",
		time.Now().Format("20060102-150405"),
		uuid.NewString()[:8],
	)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return "", fmt.Errorf("write report %q: %w", path, err)
	}
	return path, nil
}
