package status

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/motor-sentry/internal/logic"
)

func fixedTracker(start, now time.Time, cfg Config) *Tracker {
	tr := NewTracker(start, cfg)
	tr.now = func() time.Time { return now }
	return tr
}

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{Mode: "blocking", PollMs: 50, Broker: "tcp://localhost:1883", HTTPAddr: ":80"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.PollMs != 50 {
		t.Errorf("Config.PollMs: got %d, want 50", snap.Config.PollMs)
	}
	if snap.Baselined {
		t.Error("expected Baselined=false initially")
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.Update(logic.Sample{Temperature: 45.5, Override: true, Warning: logic.WarningSuppressed, Level: 200},
		7, logic.EventCounts{OverrideOn: 1, AlertOn: 2})

	snap := tr.Snapshot()
	if !snap.Baselined {
		t.Error("expected Baselined=true")
	}
	if snap.Last.Temperature != 45.5 {
		t.Errorf("Temperature: got %v, want 45.5", snap.Last.Temperature)
	}
	if !snap.Last.Override {
		t.Error("expected Override=true")
	}
	if snap.Iterations != 7 {
		t.Errorf("Iterations: got %d, want 7", snap.Iterations)
	}
	if snap.Counts.AlertOn != 2 {
		t.Errorf("Counts.AlertOn: got %d, want 2", snap.Counts.AlertOn)
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}
	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := fixedTracker(start, start.Add(90*time.Second), Config{})

	if got := tr.Snapshot().Uptime(); got != 90*time.Second {
		t.Errorf("Uptime: got %v, want 90s", got)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Update(logic.Sample{Temperature: 20}, 1, logic.EventCounts{})

	snap := tr.Snapshot()
	tr.Update(logic.Sample{Temperature: 99}, 2, logic.EventCounts{})

	if snap.Last.Temperature != 20 {
		t.Errorf("snapshot mutated: got %v", snap.Last.Temperature)
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := fixedTracker(start, start.Add(61*time.Second), Config{Mode: "decoupled", PollMs: 100, Broker: "tcp://b:1883", HTTPAddr: ":8080"})
	tr.Update(logic.Sample{
		ControlRaw:      512,
		TemperatureRaw:  820,
		Level:           127,
		Temperature:     logic.Temperature(820),
		HaveTemperature: true,
		Warning:         logic.WarningAlerting,
	}, 3, logic.EventCounts{AlertOn: 1})
	tr.SetMQTTConnected(true)

	var sj StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &sj); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	s := sj.Status
	if !s.Ready {
		t.Error("expected ready")
	}
	if s.Temperature == nil || *s.Temperature != 400.78 {
		t.Errorf("Temperature: got %v, want 400.78", s.Temperature)
	}
	if s.Warning != "ALERTING" {
		t.Errorf("Warning: got %q", s.Warning)
	}
	if s.MotorLevel != 127 {
		t.Errorf("MotorLevel: got %d", s.MotorLevel)
	}
	if s.Raw.Control != 512 || s.Raw.Temperature != 820 {
		t.Errorf("Raw: got %+v", s.Raw)
	}
	if s.UptimeSeconds != 61 {
		t.Errorf("UptimeSeconds: got %d", s.UptimeSeconds)
	}
	if s.Timestamp != "2026-01-01T00:01:01Z" {
		t.Errorf("Timestamp: got %q", s.Timestamp)
	}
	if !s.MQTT.Connected || s.MQTT.Broker != "tcp://b:1883" {
		t.Errorf("MQTT: got %+v", s.MQTT)
	}
	if s.Counts.AlertOn != 1 {
		t.Errorf("Counts.AlertOn: got %d", s.Counts.AlertOn)
	}
	if s.Config.Mode != "decoupled" || s.Config.HTTPAddr != ":8080" {
		t.Errorf("Config: got %+v", s.Config)
	}
	if s.Event != "" || s.Reason != "" {
		t.Error("web JSON should carry no event or reason")
	}
}

func TestFormatJSONBeforeFirstIteration(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	data := FormatJSON(tr.Snapshot())

	if !strings.Contains(string(data), `"temperature_c": null`) {
		t.Errorf("expected null temperature, got %s", data)
	}
	if !strings.Contains(string(data), `"warning": "UNKNOWN"`) {
		t.Errorf("expected UNKNOWN warning, got %s", data)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	data := FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGTERM")

	var sj StatusJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if sj.Status.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q", sj.Status.Event)
	}
	if sj.Status.Reason != "SIGTERM" {
		t.Errorf("Reason: got %q", sj.Status.Reason)
	}
	if strings.Contains(string(data), "\n") {
		t.Error("MQTT payload should be compact")
	}
}

func TestFormatStatusEventOmitsReasonWhenEmpty(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	data := FormatStatusEvent(tr.Snapshot(), "STARTUP", "")
	if strings.Contains(string(data), `"reason"`) {
		t.Errorf("expected no reason field, got %s", data)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Update(logic.Sample{Level: j}, i*100+j, logic.EventCounts{})
				tr.SetMQTTConnected(j%2 == 0)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = FormatJSON(tr.Snapshot())
			}
		}()
	}
	wg.Wait()
}

func TestFormatJSONNullUntilTemperatureRead(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Update(logic.Sample{ControlRaw: 300, Level: 74, Warning: logic.WarningSuppressed}, 1, logic.EventCounts{})

	var sj StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &sj); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !sj.Status.Ready {
		t.Error("expected ready after the first iteration")
	}
	if sj.Status.Temperature != nil {
		t.Errorf("Temperature: got %v, want null before a successful read", *sj.Status.Temperature)
	}
	if sj.Status.MotorLevel != 74 {
		t.Errorf("MotorLevel: got %d, want 74", sj.Status.MotorLevel)
	}
}
