//go:build integration

package audio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Requires a running PulseAudio daemon with at least one input source.
func TestInterviewCaptureProfileIntegration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	devices, err := ListDevices(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, devices)

	selection, err := SelectDevice(ctx, "", "")
	require.NoError(t, err)
	require.NotEmpty(t, selection.Device.ID)

	capture, err := StartCapture(ctx, selection.Device)
	require.NoError(t, err)

	// Answers stream as 20ms chunks of 16kHz mono s16 PCM.
	received := 0
	deadline := time.After(2 * time.Second)
collect:
	for received < 10 {
		select {
		case chunk, ok := <-capture.Chunks():
			if !ok {
				break collect
			}
			require.Len(t, chunk, chunkSizeBytes)
			received++
		case <-deadline:
			break collect
		}
	}

	require.NoError(t, capture.Stop())
	require.NotZero(t, received)
	require.GreaterOrEqual(t, capture.BytesCaptured(), int64(received*chunkSizeBytes))
}
