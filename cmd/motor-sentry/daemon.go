package main

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/motor-sentry/internal/control"
	"github.com/sweeney/motor-sentry/internal/logic"
	"github.com/sweeney/motor-sentry/internal/mqtt"
	"github.com/sweeney/motor-sentry/internal/status"
)

// daemon turns loop reports into MQTT events and status updates.
// Its methods are called from the control loop goroutine only.
type daemon struct {
	monitor    *logic.Monitor
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus // nil when MQTT is disabled
	tracker    *status.Tracker
	heartbeat  time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

func newDaemon(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, start time.Time, log zerolog.Logger) *daemon {
	return &daemon{
		monitor:    logic.NewMonitor(start),
		publisher:  publisher,
		mqttStatus: mqttStatus,
		tracker:    tracker,
		heartbeat:  heartbeat,
		now:        time.Now,
		log:        log,
	}
}

func (d *daemon) refreshConnection() {
	if d.mqttStatus != nil {
		d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
	}
}

// startup publishes the retained STARTUP event with a full status snapshot.
func (d *daemon) startup() {
	d.refreshConnection()
	snap := d.tracker.Snapshot()
	event := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := d.publisher.PublishSystem(event); err != nil {
		d.log.Warn().Err(err).Msg("failed to publish startup event")
	} else {
		d.log.Info().Msg("published startup event")
	}
}

// handleReport processes one completed loop iteration.
func (d *daemon) handleReport(r control.Report) {
	for _, event := range d.monitor.Process(r.Sample) {
		d.log.Info().
			Str("event", string(event.Type)).
			Float64("temperature", event.Temperature).
			Bool("override", event.Override).
			Str("warning", string(event.Warning)).
			Msg("event")
		if err := d.publisher.Publish(event); err != nil {
			// Don't crash on publish failure
			d.log.Warn().Err(err).Str("event", string(event.Type)).Msg("publish error")
		}
	}

	d.tracker.Update(r.Sample, d.monitor.Iterations(), d.monitor.EventCountsSnapshot())
	d.refreshConnection()

	if hb := d.monitor.CheckHeartbeat(r.Time, d.heartbeat); hb != nil {
		d.log.Info().
			Dur("uptime", hb.Uptime).
			Int("iterations", hb.Iterations).
			Int("alert_on", hb.Counts.AlertOn).
			Int("override_on", hb.Counts.OverrideOn).
			Msg("heartbeat")

		snap := d.tracker.Snapshot()
		event := mqtt.SystemEvent{
			Timestamp:  hb.Timestamp,
			Event:      "HEARTBEAT",
			RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
		}
		if err := d.publisher.PublishSystem(event); err != nil {
			d.log.Warn().Err(err).Msg("heartbeat publish error")
		}
	}
}

// shutdown publishes the retained SHUTDOWN event. reason is the signal name.
func (d *daemon) shutdown(reason string) {
	d.refreshConnection()
	snap := d.tracker.Snapshot()
	event := mqtt.SystemEvent{
		Timestamp:  d.now(),
		Event:      "SHUTDOWN",
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", reason),
	}
	if err := d.publisher.PublishSystem(event); err != nil {
		d.log.Warn().Err(err).Msg("failed to publish shutdown event")
	} else {
		d.log.Info().Str("reason", reason).Msg("published shutdown event")
	}
}
