// internal/timer/timer.go
//
// Elapsed-time tracking for a running game.
// Responsibilities:
//   - Record a fixed start instant (local creation time or the server's created_at).
//   - Recompute the "MM:SS" display on a fixed period.
//   - Stop the periodic schedule when the game ends.
//
// Notes:
//   - The clock is injectable so tests control "now".
//   - onTick runs on the ticker goroutine without the timer lock held. Once Stop
//     returns, Elapsed never changes again; callers that must not observe a late
//     tick check Running() under their own lock (see session).
package timer

import (
	"fmt"
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Zero is the display value before a game starts.
const Zero = "00:00"

// Timer derives the elapsed display from a start instant.
type Timer struct {
	clock  Clock
	period time.Duration
	onTick func(elapsed string)

	mu      sync.Mutex
	start   time.Time
	elapsed string
	run     uint64        // incremented on every Start/Stop
	stop    chan struct{} // closed to end the current run
}

// New builds a stopped timer. A nil clock means time.Now, a non-positive period means one second.
func New(clock Clock, period time.Duration, onTick func(elapsed string)) *Timer {
	if clock == nil {
		clock = ClockFunc(time.Now)
	}
	if period <= 0 {
		period = time.Second
	}
	if onTick == nil {
		onTick = func(string) {}
	}
	return &Timer{clock: clock, period: period, onTick: onTick, elapsed: Zero}
}

// Start records at as the start instant and begins ticking.
// A running schedule is replaced.
func (t *Timer) Start(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()

	t.run++
	t.start = at
	t.elapsed = Format(t.clock.Now().Sub(at))
	t.stop = make(chan struct{})
	go t.loop(t.run, t.stop)
}

// Stop cancels the periodic schedule. The last elapsed value is kept.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Timer) stopLocked() {
	if t.stop == nil {
		return
	}
	close(t.stop)
	t.stop = nil
	t.run++
}

// Clear stops the timer and resets the display and start instant.
func (t *Timer) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.start = time.Time{}
	t.elapsed = Zero
}

// Running reports whether a schedule is active.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

// StartTime returns the recorded start instant (zero if never started).
func (t *Timer) StartTime() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.start
}

// Elapsed returns the last computed "MM:SS" value.
func (t *Timer) Elapsed() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed
}

func (t *Timer) loop(run uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(t.period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			elapsed, ok := t.tick(run)
			if !ok {
				return
			}
			t.onTick(elapsed)
		}
	}
}

// tick recomputes the display for run; it reports false once run is no longer current.
func (t *Timer) tick(run uint64) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if run != t.run {
		return "", false
	}
	t.elapsed = Format(t.clock.Now().Sub(t.start))
	return t.elapsed, true
}

// Format renders d as zero-padded minutes and seconds. Fractions of a second are
// dropped, minutes are not wrapped, and negative durations read as zero.
func Format(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
