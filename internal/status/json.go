package status

import (
	"encoding/json"
	"math"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Ready         bool       `json:"ready"`
	Temperature   *float64   `json:"temperature_c"`
	Warning       string     `json:"warning"`
	Override      bool       `json:"override"`
	MotorLevel    int        `json:"motor_level"`
	Raw           RawJSON    `json:"raw"`
	Iterations    int        `json:"iterations"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"event_counts"`
	Config        ConfigJSON `json:"config"`
}

// RawJSON holds the unscaled analog samples.
type RawJSON struct {
	Control     int `json:"control"`
	Temperature int `json:"temperature"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	OverrideOn  int `json:"override_on"`
	OverrideOff int `json:"override_off"`
	AlertOn     int `json:"alert_on"`
	AlertOff    int `json:"alert_off"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Mode        string `json:"mode"`
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	SerialPort  string `json:"serial_port,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	warning := string(snap.Last.Warning)
	if warning == "" {
		warning = "UNKNOWN"
	}

	inner := StatusInner{
		Ready:         snap.Baselined,
		Warning:       warning,
		Override:      snap.Last.Override,
		MotorLevel:    snap.Last.Level,
		Raw:           RawJSON{Control: snap.Last.ControlRaw, Temperature: snap.Last.TemperatureRaw},
		Iterations:    snap.Iterations,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			OverrideOn:  snap.Counts.OverrideOn,
			OverrideOff: snap.Counts.OverrideOff,
			AlertOn:     snap.Counts.AlertOn,
			AlertOff:    snap.Counts.AlertOff,
		},
		Config: ConfigJSON{
			Mode:        snap.Config.Mode,
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			SerialPort:  snap.Config.SerialPort,
		},
	}

	// null until a temperature read has succeeded; rounded like the
	// telemetry line.
	if snap.Baselined && snap.Last.HaveTemperature {
		temp := math.Round(snap.Last.Temperature*100) / 100
		inner.Temperature = &temp
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
