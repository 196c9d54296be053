package logic

import "time"

// Blinker derives the indicator level from the time elapsed since alerting
// began, so the blink rate does not depend on how often it is sampled.
type Blinker struct {
	alerting bool
	since    time.Time
}

// Level returns the indicator level for state at now. Entering
// WarningAlerting starts a fresh cycle with the ON phase; any other state
// drives LOW and resets the cycle.
func (b *Blinker) Level(state WarningState, now time.Time) Level {
	if state != WarningAlerting {
		b.alerting = false
		return Low
	}
	if !b.alerting {
		b.alerting = true
		b.since = now
	}

	elapsed := now.Sub(b.since)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed%(BlinkOn+BlinkOff) < BlinkOn {
		return High
	}
	return Low
}
