package logic

import "time"

// Warning constants.
const (
	Threshold = 40.0 // degrees C, strict greater-than

	BlinkOn        = 300 * time.Millisecond
	BlinkOff       = 300 * time.Millisecond
	SuppressedHold = 50 * time.Millisecond
)

// Phase is one indicator output level held for a duration.
type Phase struct {
	Level    Level
	Duration time.Duration
}

// Evaluate returns the warning state for a temperature and override flag.
// There is no hysteresis: a temperature hovering at the threshold flickers
// between states on consecutive calls.
func Evaluate(temperature float64, override bool) WarningState {
	if temperature > Threshold && !override {
		return WarningAlerting
	}
	return WarningSuppressed
}

// Pattern returns the indicator phases for one iteration in the given state:
// a single LOW hold when suppressed, one full blink cycle when alerting.
func Pattern(state WarningState) []Phase {
	if state == WarningAlerting {
		return []Phase{
			{Level: High, Duration: BlinkOn},
			{Level: Low, Duration: BlinkOff},
		}
	}
	return []Phase{{Level: Low, Duration: SuppressedHold}}
}

// CycleDuration is the total time Pattern holds the indicator for state.
func CycleDuration(state WarningState) time.Duration {
	var total time.Duration
	for _, p := range Pattern(state) {
		total += p.Duration
	}
	return total
}
