// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/motor-sentry/internal/logic"
)

// Topic is the MQTT topic for override and alert transitions.
const Topic = "motor/sentry/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "motor/sentry/system"

// TopicTelemetry is the MQTT topic for telemetry lines.
const TopicTelemetry = "motor/sentry/telemetry"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a transition event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// PublishTelemetry sends one telemetry line, fire-and-forget.
	PublishTelemetry(line string) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Sentry SentryPayload `json:"sentry"`
}

// SentryPayload contains the transition details.
type SentryPayload struct {
	Timestamp   string  `json:"timestamp"`
	Event       string  `json:"event"`
	Temperature float64 `json:"temperature_c"`
	Override    bool    `json:"override"`
	Warning     string  `json:"warning"`
}

// FormatPayload creates the JSON payload for a transition event.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Sentry: SentryPayload{
			Timestamp:   event.Timestamp.UTC().Format(time.RFC3339),
			Event:       string(event.Type),
			Temperature: event.Temperature,
			Override:    event.Override,
			Warning:     string(event.Warning),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// willPayload is the last-will message the broker publishes if the daemon
// drops off without a SHUTDOWN. It has no timestamp: the broker sends it
// long after it was registered.
func willPayload() []byte {
	data, _ := json.Marshal(SystemPayload{System: SystemPayloadInner{Event: "OFFLINE", Reason: "CONNECTION_LOST"}})
	return data
}
