package session

import (
	"context"
	"errors"

	"github.com/parley-dev/parley/internal/report"
)

var (
	// ErrCaptureUnsupported indicates speech capture cannot run on this system.
	ErrCaptureUnsupported = errors.New("speech capture is not supported on this system")
	// ErrExchangeUnavailable indicates runtime exchange wiring is missing.
	ErrExchangeUnavailable = errors.New("interview exchange client not configured")
	// ErrNoExchangeContext indicates Submit was called without an open context.
	// This is a programming error, not a recoverable user-facing condition.
	ErrNoExchangeContext = errors.New("no open exchange context; open a session first")
)

// TurnResult is one continuation payload from the exchange collaborator.
// Evaluation is empty exactly for the opening question.
type TurnResult struct {
	Evaluation   string
	NextQuestion string
}

// ExchangeContext is the conversational handle created by Open and required by
// Submit. Threading it explicitly keeps concurrent sessions and retries from
// cross-contaminating.
type ExchangeContext interface {
	ID() string
}

// Exchange abstracts the question-generating collaborator. Implementations
// hold no session state beyond what an ExchangeContext carries; Close is
// stateless and receives the full answered history explicitly.
type Exchange interface {
	Open(ctx context.Context, lang Language) (ExchangeContext, TurnResult, error)
	Submit(ctx context.Context, conv ExchangeContext, answer string) (TurnResult, error)
	Close(ctx context.Context, closed []Turn, lang Language) (report.Card, error)
}

// placeholderExchange preserves orchestrator flow when no client is wired.
type placeholderExchange struct{}

func (placeholderExchange) Open(context.Context, Language) (ExchangeContext, TurnResult, error) {
	return nil, TurnResult{}, ErrExchangeUnavailable
}

func (placeholderExchange) Submit(context.Context, ExchangeContext, string) (TurnResult, error) {
	return TurnResult{}, ErrExchangeUnavailable
}

func (placeholderExchange) Close(context.Context, []Turn, Language) (report.Card, error) {
	return report.Card{}, ErrExchangeUnavailable
}
