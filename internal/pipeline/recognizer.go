// Package pipeline owns the live capture -> speech recognition -> snapshot
// path feeding the interview answer buffer.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/parley-dev/parley/internal/asr"
	"github.com/parley-dev/parley/internal/audio"
	"github.com/parley-dev/parley/internal/config"
	"github.com/parley-dev/parley/internal/session"
	"github.com/parley-dev/parley/internal/transcript"
)

// Recognizer is a restartable capture pipeline implementing session.Recognizer.
// Each Start opens a fresh speech stream, so engine-side accumulation resets;
// the session layer carries text across restarts.
type Recognizer struct {
	logger    *slog.Logger
	speechCfg config.SpeechConfig
	audioCfg  config.AudioConfig
	language  session.Language

	supported bool
	listening atomic.Bool

	mu        sync.Mutex
	started   bool
	snapshots chan string
	capture   *audio.Capture
	stream    *asr.Stream

	sendErrCh chan error
	debugFile *os.File
}

// NewRecognizer probes audio availability once and constructs the pipeline.
func NewRecognizer(ctx context.Context, cfg config.Config, language session.Language, logger *slog.Logger) *Recognizer {
	r := &Recognizer{
		logger:    logger,
		speechCfg: cfg.Speech,
		audioCfg:  cfg.Audio,
		language:  language,
		snapshots: make(chan string, 1),
	}

	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if _, err := audio.SelectDevice(probeCtx, cfg.Audio.Input, cfg.Audio.Fallback); err != nil {
		r.logWarn("audio capture unavailable", "error", err.Error())
		return r
	}
	r.supported = true
	return r
}

// Supported reports whether a usable input device was found at construction.
func (r *Recognizer) Supported() bool {
	return r.supported
}

// Listening reports whether capture is currently running.
func (r *Recognizer) Listening() bool {
	return r.listening.Load()
}

// Snapshots returns the snapshot channel for the current capture stream. Each
// Start replaces it, so text queued from a superseded stream is never
// delivered; callers must re-acquire the channel after restarting capture.
func (r *Recognizer) Snapshots() <-chan string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshots
}

// Start resolves a device, opens a speech stream, and begins forwarding audio.
func (r *Recognizer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}
	if !r.supported {
		return session.ErrCaptureUnsupported
	}

	selection, err := audio.SelectDevice(ctx, r.audioCfg.Input, r.audioCfg.Fallback)
	if err != nil {
		return err
	}
	if selection.Warning != "" {
		r.logWarn(selection.Warning)
	}

	if r.speechCfg.DebugResponseDump {
		file, ferr := createDebugFile("asr", "jsonl")
		if ferr != nil {
			return ferr
		}
		r.debugFile = file
	}

	// A fresh channel per stream: late publishes from this stream land on its
	// own channel and die with it instead of leaking into the next turn.
	snapshots := make(chan string, 1)

	stream, err := asr.DialStream(ctx, asr.StreamConfig{
		Endpoint:              r.speechCfg.Endpoint,
		Insecure:              r.speechCfg.Insecure,
		LanguageCode:          languageCode(r.language, r.speechCfg.LanguageCode),
		Model:                 r.speechCfg.Model,
		AutomaticPunctuation:  r.speechCfg.AutomaticPunctuation,
		DialTimeout:           3 * time.Second,
		DebugResponseSinkJSON: debugSink(r.debugFile),
		OnUpdate:              func(text string) { r.publishTo(snapshots, text) },
	})
	if err != nil {
		r.closeDebugArtifacts()
		return err
	}

	capture, err := audio.StartCapture(ctx, selection.Device)
	if err != nil {
		_ = stream.Cancel()
		r.closeDebugArtifacts()
		return err
	}

	r.stream = stream
	r.capture = capture
	r.snapshots = snapshots
	r.sendErrCh = make(chan error, 1)
	r.started = true
	r.listening.Store(true)
	go r.sendLoop(capture, stream, r.sendErrCh)

	r.logInfo("capture started", "device", describeDevice(selection.Device))
	return nil
}

// Stop halts capture and drains the speech stream. Already-published
// snapshots stay valid; the stream's trailing words are logged, not surfaced.
func (r *Recognizer) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return nil
	}
	r.started = false
	capture := r.capture
	stream := r.stream
	sendErrCh := r.sendErrCh
	r.capture = nil
	r.stream = nil
	r.sendErrCh = nil
	r.mu.Unlock()

	r.listening.Store(false)
	_ = capture.Stop()

	var sendErr error
	if sendErrCh != nil {
		sendErr = <-sendErrCh
	}
	if sendErr != nil {
		_ = stream.Cancel()
		r.closeDebugArtifacts()
		return fmt.Errorf("send audio stream: %w", sendErr)
	}

	closeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	segments, latency, err := stream.CloseAndCollect(closeCtx)
	r.closeDebugArtifacts()
	if err != nil {
		return fmt.Errorf("collect final transcript: %w", err)
	}

	r.logInfo("capture stopped",
		"segments", len(segments),
		"bytes_captured", capture.BytesCaptured(),
		"stream_latency_ms", latency.Milliseconds())
	return nil
}

// publishTo pushes one assembled snapshot onto the owning stream's channel,
// replacing any unconsumed one.
func (r *Recognizer) publishTo(ch chan string, text string) {
	if !r.listening.Load() {
		return
	}

	snapshot := transcript.Assemble([]string{text}, transcript.Options{
		CapitalizeSentences: r.language == session.LanguageEnglish,
	})
	if snapshot == "" {
		return
	}

	for {
		select {
		case ch <- snapshot:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// sendLoop forwards capture chunks to the speech stream until the chunk
// channel closes, reporting the first send failure.
func (r *Recognizer) sendLoop(capture *audio.Capture, stream *asr.Stream, errCh chan error) {
	sent := false
	sendResult := func(err error) {
		if sent {
			return
		}
		errCh <- err
		sent = true
	}
	defer sendResult(nil)

	for chunk := range capture.Chunks() {
		if len(chunk) == 0 {
			continue
		}
		if err := stream.SendAudio(chunk); err != nil {
			_ = capture.Stop()
			sendResult(err)
			return
		}
	}
}

// languageCode resolves the recognition language, preferring an explicit
// non-default config value.
func languageCode(language session.Language, configured string) string {
	configured = strings.TrimSpace(configured)
	if configured != "" && configured != "en-US" {
		return configured
	}
	if language == session.LanguageKorean {
		return "ko-KR"
	}
	if configured == "" {
		return "en-US"
	}
	return configured
}

// describeDevice formats device metadata for logs.
func describeDevice(device audio.Device) string {
	description := strings.TrimSpace(device.Description)
	id := strings.TrimSpace(device.ID)
	if description == "" {
		return id
	}
	if id == "" {
		return description
	}
	return fmt.Sprintf("%s (%s)", description, id)
}

func (r *Recognizer) logWarn(message string, args ...any) {
	if r.logger == nil {
		return
	}
	r.logger.Warn(message, args...)
}

func (r *Recognizer) logInfo(message string, args ...any) {
	if r.logger == nil {
		return
	}
	r.logger.Info(message, args...)
}

// debugSink narrows a possibly-nil file into the stream config sink without
// producing a typed-nil writer.
func debugSink(file *os.File) io.Writer {
	if file == nil {
		return nil
	}
	return file
}

// closeDebugArtifacts closes open debug sinks.
func (r *Recognizer) closeDebugArtifacts() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.debugFile != nil {
		_ = r.debugFile.Close()
		r.debugFile = nil
	}
}

// createDebugFile creates timestamped debug artifacts under state/parley/debug.
func createDebugFile(prefix string, extension string) (*os.File, error) {
	stateDir, err := config.ResolveStateDir()
	if err != nil {
		return nil, err
	}
	debugDir := filepath.Join(stateDir, "parley", "debug")
	if err := os.MkdirAll(debugDir, 0o700); err != nil {
		return nil, fmt.Errorf("create debug dir: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405.000")
	path := filepath.Join(debugDir, fmt.Sprintf("%s-%s.%s", prefix, timestamp, extension))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open debug file %q: %w", path, err)
	}
	return file, nil
}
