// Package asr wraps one Cloud Speech StreamingRecognize RPC lifecycle with
// interim/final transcript merging.
package asr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
)

// StreamConfig controls stream initialization and recognition behavior.
type StreamConfig struct {
	// Endpoint overrides the default Cloud Speech endpoint, typically for a
	// self-hosted speech gateway. Insecure disables TLS and authentication
	// for such gateways.
	Endpoint              string
	Insecure              bool
	LanguageCode          string
	Model                 string
	AutomaticPunctuation  bool
	DialTimeout           time.Duration
	DebugResponseSinkJSON io.Writer

	// OnUpdate receives the merged transcript after every recognition
	// response. Called from the receive goroutine without locks held.
	OnUpdate func(text string)
}

// Stream wraps one active StreamingRecognize RPC lifecycle.
type Stream struct {
	client *speech.Client
	stream speechpb.Speech_StreamingRecognizeClient

	recvDone chan struct{}
	onUpdate func(string)

	mu            sync.Mutex
	segments      []string // committed transcript segments (final and pause-committed interim)
	lastInterim   string
	recvErr       error
	closedSend    bool
	debugSinkJSON io.Writer
}

// DialStream establishes a stream, sends config, and starts the receive loop.
func DialStream(ctx context.Context, cfg StreamConfig) (*Stream, error) {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 3 * time.Second
	}
	if strings.TrimSpace(cfg.LanguageCode) == "" {
		cfg.LanguageCode = "en-US"
	}

	var opts []option.ClientOption
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	if cfg.Insecure {
		opts = append(opts,
			option.WithoutAuthentication(),
			option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	client, err := speech.NewClient(dialCtx, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial speech service: %w", err)
	}

	stream, err := client.StreamingRecognize(ctx)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("open streaming recognizer: %w", err)
	}

	req := &speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:                   speechpb.RecognitionConfig_LINEAR16,
					SampleRateHertz:            16000,
					LanguageCode:               cfg.LanguageCode,
					EnableAutomaticPunctuation: cfg.AutomaticPunctuation,
					AudioChannelCount:          1,
					Model:                      strings.TrimSpace(cfg.Model),
				},
				InterimResults: true,
			},
		},
	}

	if err := stream.Send(req); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("send initial streaming config: %w", err)
	}

	s := &Stream{
		client:        client,
		stream:        stream,
		recvDone:      make(chan struct{}),
		onUpdate:      cfg.OnUpdate,
		debugSinkJSON: cfg.DebugResponseSinkJSON,
	}
	go s.recvLoop()
	return s, nil
}

// recvLoop continuously receives recognition responses until stream close/error.
func (s *Stream) recvLoop() {
	defer close(s.recvDone)

	for {
		resp, err := s.stream.Recv()
		if err == nil {
			s.recordResponse(resp)
			continue
		}
		if errors.Is(err, io.EOF) {
			return
		}

		s.mu.Lock()
		s.recvErr = err
		s.mu.Unlock()
		return
	}
}

// recordResponse merges final/interim segments into stream state.
func (s *Stream) recordResponse(resp *speechpb.StreamingRecognizeResponse) {
	if sink := s.debugSinkJSON; sink != nil {
		b, err := protojson.Marshal(resp)
		if err == nil {
			_, _ = sink.Write(append(b, '\n'))
		}
	}

	s.mu.Lock()
	for _, result := range resp.GetResults() {
		alternatives := result.GetAlternatives()
		if len(alternatives) == 0 {
			continue
		}
		transcript := cleanSegment(alternatives[0].GetTranscript())
		if transcript == "" {
			continue
		}
		if result.GetIsFinal() {
			s.segments = appendSegment(s.segments, transcript)
			s.lastInterim = ""
			continue
		}

		if s.lastInterim != "" && !isInterimContinuation(s.lastInterim, transcript) {
			s.segments = appendSegment(s.segments, s.lastInterim)
		}
		s.lastInterim = transcript
	}
	merged := strings.Join(collectSegments(s.segments, s.lastInterim), " ")
	s.mu.Unlock()

	if s.onUpdate != nil {
		s.onUpdate(merged)
	}
}

// SendAudio sends one chunk of PCM audio over the active stream.
func (s *Stream) SendAudio(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	s.mu.Lock()
	closed := s.closedSend
	recvErr := s.recvErr
	s.mu.Unlock()

	if closed {
		return errors.New("stream already closed for sending")
	}
	if recvErr != nil {
		return fmt.Errorf("stream receive loop failed: %w", recvErr)
	}

	return s.stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{AudioContent: chunk},
	})
}

// CloseAndCollect closes send-side audio and returns merged transcript segments.
func (s *Stream) CloseAndCollect(ctx context.Context) ([]string, time.Duration, error) {
	closedAt := time.Now()

	s.mu.Lock()
	if !s.closedSend {
		s.closedSend = true
		_ = s.stream.CloseSend()
	}
	s.mu.Unlock()

	select {
	case <-s.recvDone:
	case <-ctx.Done():
		_ = s.client.Close()
		return nil, 0, ctx.Err()
	}
	latency := time.Since(closedAt)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { _ = s.client.Close() }()

	if s.recvErr != nil {
		return nil, latency, s.recvErr
	}

	segments := collectSegments(s.segments, s.lastInterim)
	return segments, latency, nil
}

// Cancel aborts stream processing and closes the underlying client.
func (s *Stream) Cancel() error {
	s.mu.Lock()
	if !s.closedSend {
		s.closedSend = true
		_ = s.stream.CloseSend()
	}
	s.mu.Unlock()
	return s.client.Close()
}
