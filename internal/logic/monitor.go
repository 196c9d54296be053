package logic

import "time"

// Monitor watches successive samples and reports override and alert
// transitions.
type Monitor struct {
	baselined     bool
	override      bool
	warning       WarningState
	startTime     time.Time
	iterations    int
	eventCounts   EventCounts
	lastHeartbeat time.Time
}

// NewMonitor creates a transition monitor.
// The startTime is used for calculating uptime in heartbeat events.
func NewMonitor(startTime time.Time) *Monitor {
	return &Monitor{
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Process takes the sample from one iteration and returns any events that
// should be emitted. The first sample sets the baseline and emits nothing.
func (m *Monitor) Process(s Sample) []Event {
	m.iterations++

	if !m.baselined {
		m.baselined = true
		m.override = s.Override
		m.warning = s.Warning
		return nil
	}

	var events []Event

	// Override first: a press that silences an alert reports OVERRIDE_ON
	// before ALERT_OFF.
	if s.Override != m.override {
		typ := EventOverrideOff
		if s.Override {
			typ = EventOverrideOn
		}
		events = append(events, newEvent(typ, s))
		m.override = s.Override
	}

	if s.Warning != m.warning {
		typ := EventAlertOff
		if s.Warning == WarningAlerting {
			typ = EventAlertOn
		}
		events = append(events, newEvent(typ, s))
		m.warning = s.Warning
	}

	for _, e := range events {
		switch e.Type {
		case EventOverrideOn:
			m.eventCounts.OverrideOn++
		case EventOverrideOff:
			m.eventCounts.OverrideOff++
		case EventAlertOn:
			m.eventCounts.AlertOn++
		case EventAlertOff:
			m.eventCounts.AlertOff++
		}
	}

	return events
}

func newEvent(typ EventType, s Sample) Event {
	return Event{
		Timestamp:   s.Time,
		Type:        typ,
		Temperature: s.Temperature,
		Override:    s.Override,
		Warning:     s.Warning,
	}
}

// IsBaselined returns whether the monitor has seen its first sample.
func (m *Monitor) IsBaselined() bool {
	return m.baselined
}

// Iterations returns the number of samples processed.
func (m *Monitor) Iterations() int {
	return m.iterations
}

// EventCountsSnapshot returns a copy of the event counters.
func (m *Monitor) EventCountsSnapshot() EventCounts {
	return m.eventCounts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if not yet baselined, if the
// interval has not elapsed, or if interval is <= 0 (disabled).
func (m *Monitor) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 || !m.baselined {
		return nil
	}
	if now.Sub(m.lastHeartbeat) < interval {
		return nil
	}

	m.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp:  now,
		Uptime:     now.Sub(m.startTime),
		Iterations: m.iterations,
		Counts:     m.eventCounts,
	}
}
