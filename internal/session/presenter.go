package session

import (
	"context"

	"github.com/parley-dev/parley/internal/report"
)

// Presenter is the session-facing subset of presentation behavior.
type Presenter interface {
	ShowQuestion(ctx context.Context, seq int, question string)
	ShowEvaluation(ctx context.Context, seq int, evaluation string)
	ShowNotice(ctx context.Context, message string)
	ShowError(ctx context.Context, message string)
	ShowReport(ctx context.Context, card report.Card)
}

// noopPresenter preserves session flow when no presenter is wired.
type noopPresenter struct{}

func (noopPresenter) ShowQuestion(context.Context, int, string)   {}
func (noopPresenter) ShowEvaluation(context.Context, int, string) {}
func (noopPresenter) ShowNotice(context.Context, string)          {}
func (noopPresenter) ShowError(context.Context, string)           {}
func (noopPresenter) ShowReport(context.Context, report.Card)     {}
