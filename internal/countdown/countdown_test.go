package countdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fastCountdown compresses tick time so tests run in milliseconds.
func fastCountdown(seconds int) *Countdown {
	c := New(seconds)
	c.interval = 2 * time.Millisecond
	return c
}

func waitDone(t *testing.T, c *Countdown, within time.Duration) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(within):
		t.Fatal("countdown did not fire in time")
	}
}

func TestCountdownFiresOnceAtZero(t *testing.T) {
	c := fastCountdown(3)
	c.Start()

	waitDone(t, c, time.Second)
	require.Equal(t, 0, c.Remaining())

	// Done stays closed; remaining never goes negative.
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, 0, c.Remaining())
	select {
	case <-c.Done():
	default:
		t.Fatal("Done must remain closed after firing")
	}
}

func TestCountdownPauseFreezesRemaining(t *testing.T) {
	c := fastCountdown(1000)
	c.Start()

	require.Eventually(t, func() bool {
		return c.Remaining() < 1000
	}, time.Second, time.Millisecond)

	c.Pause()
	frozen := c.Remaining()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, frozen, c.Remaining())

	c.Resume()
	require.Eventually(t, func() bool {
		return c.Remaining() < frozen
	}, time.Second, time.Millisecond)
	c.Stop()
}

func TestCountdownStopPreventsFiring(t *testing.T) {
	c := fastCountdown(2)
	c.Start()
	c.Stop()

	select {
	case <-c.Done():
		t.Fatal("stopped countdown must not fire")
	case <-time.After(20 * time.Millisecond):
	}

	// Restarting a stopped countdown is a no-op.
	c.Start()
	select {
	case <-c.Done():
		t.Fatal("stopped countdown must not fire after restart")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestCountdownZeroSecondsFiresOnStart(t *testing.T) {
	c := New(0)
	c.Start()
	waitDone(t, c, time.Second)
	require.Equal(t, 0, c.Remaining())
}

func TestCountdownNegativeSecondsClamped(t *testing.T) {
	c := New(-5)
	require.Equal(t, 0, c.Remaining())
}

func TestCountdownTicksCarryLatestRemaining(t *testing.T) {
	c := fastCountdown(5)
	c.Start()
	waitDone(t, c, time.Second)

	select {
	case remaining := <-c.Ticks():
		require.GreaterOrEqual(t, remaining, 0)
		require.Less(t, remaining, 5)
	default:
		t.Fatal("expected at least one buffered tick")
	}
}

func TestCountdownDoubleStartKeepsSingleRunner(t *testing.T) {
	c := fastCountdown(500)
	c.Start()
	c.Start()

	time.Sleep(20 * time.Millisecond)
	c.Pause()
	frozen := c.Remaining()

	// With a duplicated runner the count would keep moving after pause.
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, frozen, c.Remaining())
}
