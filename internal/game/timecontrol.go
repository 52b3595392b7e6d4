package game

import "time"

// Clock stages. Stages 0-2 mirror the game stages; stage 3 is a
// transient mode used by Select so that confirming a selection settles
// the remaining budget without restarting the clock.
const (
	StageSelection uint8 = 0
	StagePlacement uint8 = 1
	StageFight     uint8 = 2
	stageConfirm   uint8 = 3
)

// TimeControl is a two-sided chess clock. Clocks hold milliseconds.
// Only LastClick and Clocks are persisted; stage and increment are
// reconstructed from the game document.
type TimeControl struct {
	LastClick time.Time `json:"last_click" bson:"last_click"`
	Clocks    [2]int64  `json:"clocks" bson:"clocks"`
	Stage     uint8     `json:"-" bson:"-"`
	Incr      int64     `json:"-" bson:"-"` // seconds per move
}

// NewTimeControl seeds both clocks with minutes*60+incr seconds.
func NewTimeControl(minutes, incr int64) *TimeControl {
	ms := (minutes*60 + incr) * 1000
	return &TimeControl{
		LastClick: time.Now(),
		Clocks:    [2]int64{ms, ms},
		Incr:      incr,
	}
}

// UpdateStage moves the clock to a new stage and restamps it.
func (tc *TimeControl) UpdateStage(stage uint8) {
	tc.Stage = stage
	tc.LastClick = time.Now()
}

func (tc *TimeControl) elapsed() int64 {
	return time.Since(tc.LastClick).Milliseconds()
}

// CurrentDuration returns the live remaining time for a color in
// milliseconds. ok is false once the side is more than a second past
// its flag; sub-second overdrafts are forgiven, matching the ticker's
// own resolution.
func (tc *TimeControl) CurrentDuration(color int) (int64, bool) {
	d := tc.Clocks[color] - tc.elapsed()
	if d <= -1000 {
		return 0, false
	}
	if d < 0 {
		d = 0
	}
	return d, true
}

// Play consumes the mover's elapsed time and applies the increment.
// During selection (stage 0) the clocks are read but never mutated; in
// the confirm mode (stage 3) the clock is settled without restamping
// LastClick. Returns both clocks in milliseconds, or ok=false when the
// mover's flag has fallen.
func (tc *TimeControl) Play(color int) ([2]int64, bool) {
	d, ok := tc.CurrentDuration(color)
	if !ok {
		return [2]int64{}, false
	}
	if tc.Stage != StageSelection {
		tc.Clocks[color] = d + tc.Incr*1000
		if tc.Stage < stageConfirm {
			tc.LastClick = time.Now()
		}
	}
	return tc.Clocks, true
}

// Select settles the confirmer's remaining selection budget into their
// clock without starting placement timing.
func (tc *TimeControl) Select(color int) [2]int64 {
	tc.Stage = stageConfirm
	tc.Play(color)
	tc.Stage = StageSelection
	return tc.Clocks
}

// SetToZero flags a side.
func (tc *TimeControl) SetToZero(color int) {
	tc.Clocks[color] = 0
}
