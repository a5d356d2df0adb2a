package session

import "context"

// Recognizer abstracts continuous speech capture for session orchestration.
// Start clears any previously accumulated text; Stop preserves it. Snapshots
// republishes the full accumulated utterance since the last Start; rapid
// updates may coalesce but always converge to the complete text. Each Start
// replaces the snapshot channel, so callers must re-acquire it after
// restarting capture; text queued from a superseded stream is never delivered.
type Recognizer interface {
	Start(context.Context) error
	Stop(context.Context) error
	Snapshots() <-chan string
	Supported() bool
	Listening() bool
}

// PlaceholderRecognizer is the no-capture fallback; it reports unsupported so
// session start is refused before any state changes.
type PlaceholderRecognizer struct{}

func (PlaceholderRecognizer) Start(context.Context) error { return nil }

func (PlaceholderRecognizer) Stop(context.Context) error { return nil }

func (PlaceholderRecognizer) Snapshots() <-chan string { return nil }

func (PlaceholderRecognizer) Supported() bool { return false }

func (PlaceholderRecognizer) Listening() bool { return false }
