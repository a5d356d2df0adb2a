package app

import (
	"context"
	"fmt"
	"io"

	"github.com/parley-dev/parley/internal/report"
)

// stdoutPresenter renders session progress into the owner terminal.
type stdoutPresenter struct {
	out io.Writer
}

func (p stdoutPresenter) ShowQuestion(_ context.Context, seq int, question string) {
	fmt.Fprintf(p.out, "\nQ%d: %s\n", seq, question)
}

func (p stdoutPresenter) ShowEvaluation(_ context.Context, seq int, evaluation string) {
	if evaluation == "" {
		return
	}
	fmt.Fprintf(p.out, "feedback on Q%d: %s\n", seq, evaluation)
}

func (p stdoutPresenter) ShowNotice(_ context.Context, message string) {
	fmt.Fprintf(p.out, "-- %s\n", message)
}

func (p stdoutPresenter) ShowError(_ context.Context, message string) {
	fmt.Fprintf(p.out, "!! %s\n", message)
}

func (p stdoutPresenter) ShowReport(_ context.Context, card report.Card) {
	fmt.Fprintf(p.out, "\n%s\n", report.Render(card))
}
