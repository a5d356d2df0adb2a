// Package app wires configuration, logging, IPC, and the session orchestrator
// behind the parley command surface.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/parley-dev/parley/internal/audio"
	"github.com/parley-dev/parley/internal/cli"
	"github.com/parley-dev/parley/internal/config"
	"github.com/parley-dev/parley/internal/doctor"
	"github.com/parley-dev/parley/internal/exchange"
	"github.com/parley-dev/parley/internal/ipc"
	"github.com/parley-dev/parley/internal/logging"
	"github.com/parley-dev/parley/internal/pipeline"
	"github.com/parley-dev/parley/internal/report"
	"github.com/parley-dev/parley/internal/session"
	"github.com/parley-dev/parley/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("parley"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("parley"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
		logger.Warn("config warning", "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandSubmit:
		return r.forwardOrFail(ctx, ipc.CommandSubmit)
	case cli.CommandFinish:
		return r.forwardOrFail(ctx, ipc.CommandFinish)
	case cli.CommandQuit:
		return r.forwardOrFail(ctx, ipc.CommandQuit)
	case cli.CommandMic:
		return r.forwardOrFail(ctx, ipc.CommandMic)
	case cli.CommandStart:
		return r.commandStart(ctx, parsed, cfgLoaded.Config, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		availability := "yes"
		if !device.Available {
			availability = "no"
		}
		muted := "no"
		if device.Muted {
			muted = "yes"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			availability,
			muted,
		)
	}

	return 0
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, ipc.CommandStatus)
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		r.printStatus(resp)
		return 0
	}

	fmt.Fprintln(r.Stdout, "idle")
	return 0
}

// printStatus renders the owner session snapshot for other terminals.
func (r Runner) printStatus(resp ipc.Response) {
	state := resp.State
	if state == "" {
		state = "idle"
	}
	fmt.Fprintf(r.Stdout, "state: %s\n", state)
	if state == "idle" || state == "finished" {
		return
	}

	listening := "no"
	if resp.Listening {
		listening = "yes"
	}
	fmt.Fprintf(r.Stdout, "question: %d\n", resp.Turn)
	fmt.Fprintf(r.Stdout, "remaining: %s\n", formatRemaining(resp.Remaining))
	fmt.Fprintf(r.Stdout, "listening: %s\n", listening)
	if strings.TrimSpace(resp.Buffer) != "" {
		fmt.Fprintf(r.Stdout, "buffer: %s\n", resp.Buffer)
	}
}

func formatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func (r Runner) forwardOrFail(ctx context.Context, command ipc.Command) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, command)
	if !handled {
		fmt.Fprintf(r.Stderr, "error: no active parley session\n")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

// commandStart becomes the owner process: it acquires the control socket,
// runs the interview in this terminal, and serves IPC commands from others.
func (r Runner) commandStart(ctx context.Context, parsed cli.Parsed, cfg config.Config, logger *slog.Logger) int {
	if parsed.Minutes > 0 {
		cfg.Interview.TimeLimitMinutes = parsed.Minutes
	}
	if parsed.Language != "" {
		cfg.Interview.Language = parsed.Language
	}
	if _, err := config.Validate(cfg); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	language, err := session.ParseLanguage(cfg.Interview.Language)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8, nil)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintln(r.Stderr, "error: a parley session is already running; use status/submit/finish/quit")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	exchangeClient, err := exchange.NewClient(cfg.LLM, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	recognizer := pipeline.NewRecognizer(ctx, cfg, language, logger)
	presenter := stdoutPresenter{out: r.Stdout}
	orchestrator := session.NewOrchestrator(logger, exchangeClient, recognizer, presenter, session.Settings{
		Language:  language,
		TimeLimit: time.Duration(cfg.Interview.TimeLimitMinutes) * time.Minute,
	})

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(serverCtx, listener, orchestrator)
	}()

	result := orchestrator.Run(ctx)
	serverCancel()
	if serverErr := <-serverErrCh; serverErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serverErr)
		return 1
	}

	logSessionResult(logger, result)

	if result.Report != nil && cfg.Report.Save {
		path, saveErr := report.Save(cfg.Report.Dir, *result.Report, result.Ledger)
		if saveErr != nil {
			fmt.Fprintf(r.Stderr, "warning: save report: %v\n", saveErr)
			logger.Warn("save report failed", "error", saveErr.Error())
		} else {
			fmt.Fprintf(r.Stdout, "report saved to %s\n", path)
		}
	}

	if result.Cancelled {
		return 0
	}
	if result.Err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", result.Err)
		return 1
	}
	return 0
}

func logSessionResult(logger *slog.Logger, result session.Result) {
	if logger == nil {
		return
	}
	fields := []any{
		"state", result.State,
		"cancelled", result.Cancelled,
		"started_at", result.StartedAt.Format(time.RFC3339Nano),
		"finished_at", result.FinishedAt.Format(time.RFC3339Nano),
		"duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
		"turns_answered", result.TurnsAnswered,
		"has_report", result.Report != nil,
	}

	if result.Err != nil {
		logger.Error("session failed", append(fields, "error", result.Err.Error())...)
		return
	}
	logger.Info("session complete", fields...)
}

func tryForward(ctx context.Context, socketPath string, command ipc.Command) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, ipc.Request{Command: command}, 220*time.Millisecond)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if isSocketMissing(err) {
		return ipc.Response{}, false, nil
	}
	if isConnectionRefused(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", command, err)
}

func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
