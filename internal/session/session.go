// Package session coordinates the timed interview lifecycle: the state
// machine, the turn ledger, and the exchange between continuous speech
// capture and the turn-based question collaborator.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/parley-dev/parley/internal/countdown"
	"github.com/parley-dev/parley/internal/fsm"
	"github.com/parley-dev/parley/internal/ipc"
	"github.com/parley-dev/parley/internal/report"
)

type command int

const (
	commandSubmit command = iota + 1
	commandFinish
	commandQuit
	commandMic
)

// Settings fixes per-session parameters at start.
type Settings struct {
	Language  Language
	TimeLimit time.Duration
}

// Result is the complete lifecycle output returned by one Run invocation.
type Result struct {
	State         fsm.State
	Ledger        []Turn
	Report        *report.Card
	Cancelled     bool
	Err           error
	TurnsAnswered int
	StartedAt     time.Time
	FinishedAt    time.Time
}

// exchangeOutcome carries one completed exchange call back into the run loop.
// Epoch tagging lets the loop drop responses from a superseded session.
type exchangeOutcome struct {
	epoch   uint64
	closing bool
	answer  string
	turn    TurnResult
	card    report.Card
	err     error
}

// Orchestrator owns session status, the turn ledger, and the active answer
// buffer, and serializes every state transition through one run loop.
type Orchestrator struct {
	logger     *slog.Logger
	exchange   Exchange
	recognizer Recognizer
	presenter  Presenter
	settings   Settings

	mu        sync.RWMutex
	state     fsm.State
	ledger    []Turn
	frozen    string // buffer text committed across capture restarts
	live      string // latest capture snapshot since last Start
	remaining int
	lastErr   string
	epoch     uint64

	commands chan command
	outcomes chan exchangeOutcome
}

// NewOrchestrator constructs a session orchestrator with safe default fallbacks.
func NewOrchestrator(
	logger *slog.Logger,
	exchange Exchange,
	recognizer Recognizer,
	presenter Presenter,
	settings Settings,
) *Orchestrator {
	if exchange == nil {
		exchange = placeholderExchange{}
	}
	if recognizer == nil {
		recognizer = PlaceholderRecognizer{}
	}
	if presenter == nil {
		presenter = noopPresenter{}
	}

	return &Orchestrator{
		logger:     logger,
		exchange:   exchange,
		recognizer: recognizer,
		presenter:  presenter,
		settings:   settings,
		state:      fsm.StateIdle,
		commands:   make(chan command, 1),
		outcomes:   make(chan exchangeOutcome, 1),
	}
}

// State returns the current FSM state snapshot.
func (o *Orchestrator) State() fsm.State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// Ledger returns a copy of the current turn ledger.
func (o *Orchestrator) Ledger() []Turn {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]Turn(nil), o.ledger...)
}

// Buffer returns the in-progress answer text: committed prefix plus live snapshot.
func (o *Orchestrator) Buffer() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return joinBuffer(o.frozen, o.live)
}

// transition applies one FSM event to the orchestrator state.
func (o *Orchestrator) transition(event fsm.Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	next, err := fsm.Transition(o.state, event)
	if err != nil {
		return err
	}
	o.state = next
	return nil
}

// Run executes one interview lifecycle from start to report/quit/failure.
func (o *Orchestrator) Run(ctx context.Context) Result {
	result := Result{StartedAt: time.Now()}

	if !o.recognizer.Supported() {
		o.fail(ErrCaptureUnsupported.Error())
		result.State = o.State()
		result.Err = ErrCaptureUnsupported
		result.FinishedAt = time.Now()
		return result
	}

	if err := o.transition(fsm.EventBegin); err != nil {
		result.State = o.State()
		result.Err = err
		result.FinishedAt = time.Now()
		return result
	}

	o.mu.Lock()
	o.epoch++
	epoch := o.epoch
	o.ledger = nil
	o.frozen, o.live = "", ""
	o.lastErr = ""
	o.remaining = int(o.settings.TimeLimit.Seconds())
	o.mu.Unlock()

	o.presenter.ShowNotice(ctx, "Contacting interviewer...")

	conv, first, err := o.exchange.Open(ctx, o.settings.Language)
	if err != nil {
		o.fail("unable to start interview: " + err.Error())
		o.presenter.ShowError(ctx, o.LastError())
		_ = o.transition(fsm.EventOpenFailed)
		result.State = o.State()
		result.Err = fmt.Errorf("open session: %w", err)
		result.FinishedAt = time.Now()
		return result
	}

	clock := countdown.New(int(o.settings.TimeLimit.Seconds()))

	// Capture starts before the opening turn is recorded; a failed start must
	// leave the ledger empty.
	if err := o.recognizer.Start(ctx); err != nil {
		o.fail("unable to start speech capture: " + err.Error())
		o.presenter.ShowError(ctx, o.LastError())
		_ = o.transition(fsm.EventOpenFailed)
		result.State = o.State()
		result.Err = fmt.Errorf("start capture: %w", err)
		result.FinishedAt = time.Now()
		return result
	}

	o.appendTurn(first.NextQuestion)
	o.presenter.ShowQuestion(ctx, 1, first.NextQuestion)

	clock.Start()
	defer clock.Stop()
	_ = o.transition(fsm.EventOpened)

	snapshots := o.recognizer.Snapshots()
	expired := clock.Done()
	micOn := true
	pendingExpire := false

	finishWith := func(mutate func(*Result)) Result {
		o.mu.RLock()
		result.State = o.state
		result.Ledger = append([]Turn(nil), o.ledger...)
		o.mu.RUnlock()
		result.TurnsAnswered = len(ClosedTurns(result.Ledger))
		mutate(&result)
		result.FinishedAt = time.Now()
		return result
	}

	for {
		select {
		case <-ctx.Done():
			o.invalidateEpoch()
			clock.Stop()
			_ = o.recognizer.Stop(context.Background())
			_ = o.transition(fsm.EventQuit)
			return finishWith(func(r *Result) {
				r.Cancelled = true
				r.Err = ctx.Err()
			})

		case snap, ok := <-snapshots:
			if !ok {
				// Capture stream ended without a requested stop; surface as
				// not-listening, never restart automatically.
				snapshots = nil
				o.logWarn("capture stream ended unexpectedly")
				continue
			}
			if o.State() == fsm.StateActive && micOn {
				o.setLive(snap)
			}

		case remaining := <-clock.Ticks():
			o.setRemaining(remaining)
			if remaining == 60 {
				o.presenter.ShowNotice(ctx, "One minute remaining.")
			}

		case <-expired:
			expired = nil
			if o.State() != fsm.StateActive {
				pendingExpire = true
				continue
			}
			o.beginClose(ctx, epoch, fsm.EventExpire, "Time is up.")

		case cmd := <-o.commands:
			switch cmd {
			case commandSubmit:
				o.beginSubmit(ctx, epoch, conv, clock)
			case commandFinish:
				if o.State() != fsm.StateActive {
					continue
				}
				clock.Stop()
				o.beginClose(ctx, epoch, fsm.EventFinish, "Wrapping up the interview...")
			case commandQuit:
				o.invalidateEpoch()
				clock.Stop()
				_ = o.recognizer.Stop(context.Background())
				_ = o.transition(fsm.EventQuit)
				o.presenter.ShowNotice(ctx, "Session ended. No report was generated.")
				return finishWith(func(r *Result) { r.Cancelled = true })
			case commandMic:
				micOn = o.toggleMic(ctx, micOn)
				snapshots = o.recognizer.Snapshots()
			}

		case out := <-o.outcomes:
			if out.epoch != o.currentEpoch() {
				continue
			}
			if out.closing {
				card := out.card
				if out.err != nil {
					o.logWarn("report generation failed", "error", out.err.Error())
					o.fail("report generation failed: " + out.err.Error())
					card = report.Degraded(out.err.Error())
				}
				_ = o.transition(fsm.EventClose)
				o.presenter.ShowReport(ctx, card)
				final := finishWith(func(r *Result) { r.Report = &card })
				_ = o.transition(fsm.EventReset)
				return final
			}

			if out.err != nil {
				o.fail("submission failed: " + out.err.Error())
				o.presenter.ShowError(ctx, o.LastError())
				o.rollForwardBuffer()
				_ = o.transition(fsm.EventRetry)
				micOn = o.resumeCapture(ctx, false)
				snapshots = o.recognizer.Snapshots()
				clock.Resume()
			} else {
				o.closeTurnAndOpenNext(ctx, out)
				_ = o.transition(fsm.EventContinue)
				micOn = true
				if err := o.recognizer.Start(ctx); err != nil {
					o.fail("unable to resume speech capture: " + err.Error())
					o.presenter.ShowError(ctx, o.LastError())
					micOn = false
				}
				// Each Start opens a fresh snapshot channel; text queued from
				// the previous stream must never reach the new turn's buffer.
				snapshots = o.recognizer.Snapshots()
				clock.Resume()
			}

			if pendingExpire && o.State() == fsm.StateActive {
				pendingExpire = false
				o.beginClose(ctx, epoch, fsm.EventExpire, "Time is up.")
			}
		}
	}
}

// beginSubmit freezes the answer buffer and dispatches it to the exchange.
// A no-op unless Active with a non-empty trimmed buffer.
func (o *Orchestrator) beginSubmit(ctx context.Context, epoch uint64, conv ExchangeContext, clock *countdown.Countdown) {
	if o.State() != fsm.StateActive {
		return
	}
	answer := strings.TrimSpace(o.Buffer())
	if answer == "" {
		return
	}

	// Stop the timer and capture before the exchange call is issued, so a
	// slow response cannot race a second submission or a tick against the
	// same open turn.
	_ = o.transition(fsm.EventSubmit)
	clock.Pause()
	_ = o.recognizer.Stop(context.Background())
	o.presenter.ShowNotice(ctx, "Answer submitted. Waiting for the interviewer...")

	go func() {
		turn, err := o.exchange.Submit(ctx, conv, answer)
		o.outcomes <- exchangeOutcome{epoch: epoch, answer: answer, turn: turn, err: err}
	}()
}

// beginClose leaves Active for Processing and dispatches report generation
// over the answered turns only.
func (o *Orchestrator) beginClose(ctx context.Context, epoch uint64, event fsm.Event, notice string) {
	_ = o.transition(event)
	_ = o.recognizer.Stop(context.Background())
	o.presenter.ShowNotice(ctx, notice)

	closed := ClosedTurns(o.Ledger())
	if len(closed) == 0 {
		// Nothing to grade; synthesize the terminal card without calling the
		// evaluation service.
		go func() {
			o.outcomes <- exchangeOutcome{epoch: epoch, closing: true, card: report.Unanswered()}
		}()
		return
	}
	go func() {
		card, err := o.exchange.Close(ctx, closed, o.settings.Language)
		o.outcomes <- exchangeOutcome{epoch: epoch, closing: true, card: card, err: err}
	}()
}

// closeTurnAndOpenNext applies one successful continuation: the open turn
// receives its answer and evaluation, and exactly one new open turn is appended.
func (o *Orchestrator) closeTurnAndOpenNext(ctx context.Context, out exchangeOutcome) {
	o.mu.Lock()
	last := &o.ledger[len(o.ledger)-1]
	last.Answer = out.answer
	last.Evaluation = out.turn.Evaluation
	closedSeq := last.Seq
	next := Turn{Seq: len(o.ledger) + 1, Question: out.turn.NextQuestion}
	o.ledger = append(o.ledger, next)
	o.frozen, o.live = "", ""
	o.lastErr = ""
	o.mu.Unlock()

	o.presenter.ShowEvaluation(ctx, closedSeq, out.turn.Evaluation)
	o.presenter.ShowQuestion(ctx, next.Seq, next.Question)
}

// toggleMic pauses or resumes capture while Active, preserving buffered text.
func (o *Orchestrator) toggleMic(ctx context.Context, micOn bool) bool {
	if o.State() != fsm.StateActive {
		return micOn
	}

	if micOn {
		_ = o.recognizer.Stop(context.Background())
		o.rollForwardBuffer()
		o.presenter.ShowNotice(ctx, "Microphone off.")
		return false
	}
	return o.resumeCapture(ctx, false)
}

// resumeCapture restarts the recognizer, surfacing failure without a transition.
func (o *Orchestrator) resumeCapture(ctx context.Context, micOn bool) bool {
	if micOn {
		return true
	}
	if err := o.recognizer.Start(ctx); err != nil {
		o.fail("unable to resume speech capture: " + err.Error())
		o.presenter.ShowError(ctx, o.LastError())
		return false
	}
	o.presenter.ShowNotice(ctx, "Microphone on.")
	return true
}

// rollForwardBuffer commits the live snapshot into the frozen prefix so a
// capture restart (which clears engine-side accumulation) loses nothing.
func (o *Orchestrator) rollForwardBuffer() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.frozen = joinBuffer(o.frozen, o.live)
	o.live = ""
}

// Handle serves IPC commands for the active owner session.
func (o *Orchestrator) Handle(_ context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case ipc.CommandStatus:
		return o.statusResponse()
	case ipc.CommandSubmit:
		return o.requestSubmit()
	case ipc.CommandFinish:
		return o.requestFinish()
	case ipc.CommandQuit:
		return o.requestQuit()
	case ipc.CommandMic:
		return o.requestMic()
	default:
		return ipc.Response{OK: false, State: string(o.State()), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

// statusResponse snapshots user-visible session state.
func (o *Orchestrator) statusResponse() ipc.Response {
	o.mu.RLock()
	resp := ipc.Response{
		OK:        true,
		State:     string(o.state),
		Message:   o.lastErr,
		Turn:      len(o.ledger),
		Remaining: o.remaining,
		Buffer:    joinBuffer(o.frozen, o.live),
	}
	o.mu.RUnlock()
	resp.Listening = o.recognizer.Listening()
	return resp
}

// requestSubmit enqueues a submit command when state and buffer permit it.
func (o *Orchestrator) requestSubmit() ipc.Response {
	state := o.State()
	if state != fsm.StateActive {
		return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("cannot submit from state %s", state)}
	}
	if strings.TrimSpace(o.Buffer()) == "" {
		return ipc.Response{OK: false, State: string(state), Error: "nothing to submit yet; say something first"}
	}
	return o.enqueue(commandSubmit, state, "answer submission requested")
}

// requestFinish enqueues an explicit session-end command.
func (o *Orchestrator) requestFinish() ipc.Response {
	state := o.State()
	if state != fsm.StateActive {
		return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("cannot finish from state %s", state)}
	}
	if len(ClosedTurns(o.Ledger())) == 0 {
		return ipc.Response{OK: false, State: string(state), Error: "no answered questions yet; quit instead"}
	}
	return o.enqueue(commandFinish, state, "finish requested")
}

// requestQuit enqueues a quit command from any in-flight state. A quit
// received while still Initializing waits in the queue until the run loop
// starts draining commands.
func (o *Orchestrator) requestQuit() ipc.Response {
	state := o.State()
	if state != fsm.StateInitializing && state != fsm.StateActive && state != fsm.StateProcessing {
		return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("cannot quit from state %s", state)}
	}
	return o.enqueue(commandQuit, state, "quit requested")
}

// requestMic enqueues a capture toggle while Active.
func (o *Orchestrator) requestMic() ipc.Response {
	state := o.State()
	if state != fsm.StateActive {
		return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("cannot toggle microphone from state %s", state)}
	}
	return o.enqueue(commandMic, state, "microphone toggle requested")
}

// enqueue performs a non-blocking command send; a full queue means an
// equivalent command is already pending.
func (o *Orchestrator) enqueue(cmd command, state fsm.State, message string) ipc.Response {
	select {
	case o.commands <- cmd:
		return ipc.Response{OK: true, State: string(state), Message: message}
	default:
		return ipc.Response{OK: true, State: string(state), Message: "command already pending"}
	}
}

// LastError returns the most recent recoverable failure description.
func (o *Orchestrator) LastError() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.lastErr
}

func (o *Orchestrator) appendTurn(question string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ledger = append(o.ledger, Turn{Seq: len(o.ledger) + 1, Question: question})
}

func (o *Orchestrator) setLive(snapshot string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.live = snapshot
}

func (o *Orchestrator) setRemaining(remaining int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.remaining = remaining
}

func (o *Orchestrator) fail(message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastErr = message
}

func (o *Orchestrator) currentEpoch() uint64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.epoch
}

// invalidateEpoch makes any outstanding exchange response stale.
func (o *Orchestrator) invalidateEpoch() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.epoch++
}

func (o *Orchestrator) logWarn(message string, args ...any) {
	if o.logger == nil {
		return
	}
	o.logger.Warn(message, args...)
}

// joinBuffer concatenates the frozen prefix and live snapshot with one space.
func joinBuffer(frozen, live string) string {
	frozen = strings.TrimSpace(frozen)
	live = strings.TrimSpace(live)
	switch {
	case frozen == "":
		return live
	case live == "":
		return frozen
	default:
		return frozen + " " + live
	}
}
