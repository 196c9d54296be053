// Package status provides a thread-safe status tracker for the motor-sentry daemon.
// The control loop writes it once per iteration; HTTP handlers and MQTT
// lifecycle events read snapshots.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/motor-sentry/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	Mode        string
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	SerialPort  string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Last          logic.Sample
	Baselined     bool
	Iterations    int
	Counts        logic.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Update records the latest iteration, iteration count and event counts.
func (t *Tracker) Update(last logic.Sample, iterations int, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.Last = last
	t.snap.Baselined = true
	t.snap.Iterations = iterations
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
