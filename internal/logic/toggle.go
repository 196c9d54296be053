package logic

import "time"

// SettleDelay is the wait after a detected press, absorbing contact bounce.
const SettleDelay = 50 * time.Millisecond

// Toggle flips a persistent override flag on each falling edge of a pull-up
// button (idle HIGH, pressed LOW).
//
// The zero value is a released button with the override off.
type Toggle struct {
	// lastLow is the previously observed level (false = HIGH).
	lastLow  bool
	override bool
}

// Observe feeds one button sample. On a HIGH->LOW edge the override flips and
// SettleDelay is returned; the caller must wait that long before sampling
// again. Otherwise zero is returned.
//
// Holding the button produces one flip only: the last level is recorded
// unconditionally, so another edge needs a HIGH in between.
func (t *Toggle) Observe(level Level) time.Duration {
	var settle time.Duration
	if !t.lastLow && level == Low {
		t.override = !t.override
		settle = SettleDelay
	}
	t.lastLow = level == Low
	return settle
}

// Override returns the current override flag.
func (t *Toggle) Override() bool {
	return t.override
}

// Last returns the previously observed button level.
func (t *Toggle) Last() Level {
	return Level(!t.lastLow)
}

// NewToggle returns a toggle in its power-on state: button released, override off.
func NewToggle() *Toggle {
	return &Toggle{}
}
