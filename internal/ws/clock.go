package ws

import "time"

// Ticker cadence bounds in milliseconds. The interval adapts to the
// minimum remaining clock; see checkClock in match.go.
const (
	initialTickMs = 15_000
	tickPanicMs   = 500
	tickUrgentMs  = 2_000
	tickCloseMs   = 5_000
	tickIdleMs    = 10_000
)

// startTicker runs the per-match clock ticker. Every interval it fires
// the wake callback, which does a non-blocking CheckClock send into
// the match mailbox. The match retunes the cadence by sending a new
// millisecond interval on ctrl; closing ctrl stops the ticker.
func startTicker(ctrl <-chan int64, wake func()) {
	go func() {
		interval := time.Duration(initialTickMs) * time.Millisecond
		timer := time.NewTimer(interval)
		defer timer.Stop()
		for {
			select {
			case ms, ok := <-ctrl:
				if !ok || ms <= 0 {
					return
				}
				next := time.Duration(ms) * time.Millisecond
				if next == interval {
					continue
				}
				interval = next
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(interval)
			case <-timer.C:
				wake()
				timer.Reset(interval)
			}
		}
	}()
}

// tickInterval picks the ticker cadence for the minimum remaining
// clock in milliseconds.
func tickInterval(minRemaining int64) int64 {
	switch {
	case minRemaining < 10_000:
		return tickPanicMs
	case minRemaining < 60_000:
		return tickUrgentMs
	case minRemaining < 300_000:
		return tickCloseMs
	default:
		return tickIdleMs
	}
}
