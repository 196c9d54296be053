package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/motor-sentry/internal/logic"
	"github.com/sweeney/motor-sentry/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		Mode:        "blocking",
		PollMs:      50,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":80",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func overheated() logic.Sample {
	return logic.Sample{
		ControlRaw:      512,
		TemperatureRaw:  820,
		Level:           127,
		Temperature:     logic.Temperature(820),
		HaveTemperature: true,
		Warning:         logic.WarningAlerting,
	}
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(overheated(), 4, logic.EventCounts{AlertOn: 1})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Warning != "ALERTING" {
		t.Errorf("Warning: got %q, want ALERTING", sj.Status.Warning)
	}
	if sj.Status.MotorLevel != 127 {
		t.Errorf("MotorLevel: got %d, want 127", sj.Status.MotorLevel)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.Iterations != 4 {
		t.Errorf("Iterations: got %d, want 4", sj.Status.Iterations)
	}
	if sj.Status.Config.PollMs != 50 {
		t.Errorf("Config.PollMs: got %d, want 50", sj.Status.Config.PollMs)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(overheated(), 1, logic.EventCounts{})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"400.78", "ALERTING", "127/255 (49%)", "control=512"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestHTMLBeforeFirstReading(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Waiting for first reading") {
		t.Error("expected waiting message before first reading")
	}
}

func TestTextEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.txt")
	if err != nil {
		t.Fatalf("GET /index.txt: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status before first reading: got %d, want 503", resp.StatusCode)
	}

	tr.Update(overheated(), 1, logic.EventCounts{})
	resp, err = http.Get(ts.URL + "/index.txt")
	if err != nil {
		t.Fatalf("GET /index.txt: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "Temperature: 400.78 °C\n" {
		t.Errorf("body: got %q", body)
	}
}

// noReading is an iteration in which every temperature read so far failed.
func noReading() logic.Sample {
	return logic.Sample{ControlRaw: 512, Level: 127, Warning: logic.WarningSuppressed}
}

func TestTextEndpointWithoutTemperatureReading(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(noReading(), 1, logic.EventCounts{})

	resp, err := http.Get(ts.URL + "/index.txt")
	if err != nil {
		t.Fatalf("GET /index.txt: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if strings.Contains(string(body), "Temperature:") {
		t.Errorf("body should carry no temperature line, got %q", body)
	}
}

func TestJSONEndpointWithoutTemperatureReading(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(noReading(), 1, logic.EventCounts{})

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if !sj.Status.Ready {
		t.Error("expected Ready=true after the first iteration")
	}
	if sj.Status.Temperature != nil {
		t.Errorf("Temperature: got %v, want null", *sj.Status.Temperature)
	}
}

func TestHTMLEndpointWithoutTemperatureReading(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(noReading(), 1, logic.EventCounts{})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "no reading") {
		t.Error("expected a no-reading placeholder for temperature")
	}
	if strings.Contains(string(body), "0.00 &deg;C") {
		t.Error("page shows a temperature that was never read")
	}
	if !strings.Contains(string(body), "127/255") {
		t.Error("motor level should still be shown")
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	resp1, _ := http.Get(ts.URL + "/index.json")
	var sj1 status.StatusJSON
	json.NewDecoder(resp1.Body).Decode(&sj1)
	resp1.Body.Close()
	if sj1.Status.Ready {
		t.Error("expected Ready=false initially")
	}

	s := overheated()
	s.Override = true
	s.Warning = logic.WarningSuppressed
	tr.Update(s, 2, logic.EventCounts{OverrideOn: 1})

	resp2, _ := http.Get(ts.URL + "/index.json")
	var sj2 status.StatusJSON
	json.NewDecoder(resp2.Body).Decode(&sj2)
	resp2.Body.Close()

	if !sj2.Status.Ready {
		t.Error("expected Ready=true after update")
	}
	if !sj2.Status.Override {
		t.Error("expected Override=true after update")
	}
	if sj2.Status.Warning != "SUPPRESSED" {
		t.Errorf("Warning: got %q, want SUPPRESSED", sj2.Status.Warning)
	}
	if sj2.Status.Counts.OverrideOn != 1 {
		t.Errorf("Counts.OverrideOn: got %d, want 1", sj2.Status.Counts.OverrideOn)
	}
}
