// Package pwm drives the duty-cycle output port ("actuator-enable").
package pwm

import "time"

// MaxDuty is the full-scale duty level (always on).
const MaxDuty = 255

// DefaultPeriod matches the ~490 Hz PWM of the reference motor board.
const DefaultPeriod = 2040816 * time.Nanosecond

// Output is a duty-cycle capable output.
type Output interface {
	// SetDuty sets the duty level in [0, MaxDuty]. Values outside the range
	// are clamped.
	SetDuty(level int) error

	// Close stops the output and releases it.
	Close() error
}

func clampDuty(level int) int {
	if level < 0 {
		return 0
	}
	if level > MaxDuty {
		return MaxDuty
	}
	return level
}
