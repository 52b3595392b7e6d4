package ws

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickIntervalCadence(t *testing.T) {
	cases := []struct {
		remaining int64
		want      int64
	}{
		{0, tickPanicMs},
		{9_999, tickPanicMs},
		{10_000, tickUrgentMs},
		{59_999, tickUrgentMs},
		{60_000, tickCloseMs},
		{299_999, tickCloseMs},
		{300_000, tickIdleMs},
		{3_600_000, tickIdleMs},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, tickInterval(c.remaining), "remaining %dms", c.remaining)
	}
}

func TestTickerFiresAfterRetune(t *testing.T) {
	ctrl := make(chan int64, 1)
	var fired atomic.Int32
	startTicker(ctrl, func() { fired.Add(1) })
	defer close(ctrl)

	// The initial cadence is far away; retuning pulls the next tick in.
	ctrl <- 20
	assert.Eventually(t, func() bool { return fired.Load() >= 3 },
		2*time.Second, 10*time.Millisecond)
}

func TestTickerStopsWhenControlCloses(t *testing.T) {
	ctrl := make(chan int64, 1)
	var fired atomic.Int32
	startTicker(ctrl, func() { fired.Add(1) })

	ctrl <- 10
	assert.Eventually(t, func() bool { return fired.Load() >= 1 },
		time.Second, 5*time.Millisecond)
	close(ctrl)

	time.Sleep(50 * time.Millisecond)
	seen := fired.Load()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, seen, fired.Load())
}
