// Package logic contains the pure control rules for the motor sentry.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Waits are returned as durations and time is injected via time.Time parameters,
// so the caller decides how a wait is realised.
package logic

import "time"

// Level is a binary pin level.
type Level bool

const (
	High Level = true
	Low  Level = false
)

func (l Level) String() string {
	if l {
		return "HIGH"
	}
	return "LOW"
}

// WarningState is the state of the warning indicator.
type WarningState string

const (
	// WarningSuppressed means override active or temperature at/below threshold.
	WarningSuppressed WarningState = "SUPPRESSED"
	// WarningAlerting means temperature above threshold and no override.
	WarningAlerting WarningState = "ALERTING"
)

// EventType represents a state transition event.
type EventType string

const (
	EventOverrideOn  EventType = "OVERRIDE_ON"
	EventOverrideOff EventType = "OVERRIDE_OFF"
	EventAlertOn     EventType = "ALERT_ON"
	EventAlertOff    EventType = "ALERT_OFF"
)

// Event represents a state transition to be published.
type Event struct {
	Timestamp   time.Time
	Type        EventType
	Temperature float64
	Override    bool
	Warning     WarningState
}

// Sample is everything one control loop iteration observed and derived.
type Sample struct {
	Time           time.Time
	ControlRaw     int
	TemperatureRaw int
	Level          int     // actuation level, 0..255
	Temperature    float64 // degrees C
	// HaveTemperature is false until a temperature read has succeeded;
	// Temperature is meaningless before then.
	HaveTemperature bool
	Override        bool
	Warning         WarningState
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	OverrideOn  int
	OverrideOff int
	AlertOn     int
	AlertOff    int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp  time.Time
	Uptime     time.Duration
	Iterations int
	Counts     EventCounts
}
