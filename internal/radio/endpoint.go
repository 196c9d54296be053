package radio

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/motor-sentry/internal/telemetry"
)

// Transmitter sends a fixed payload once per tick, whether or not anyone
// hears it.
type Transmitter struct {
	link    Sender
	payload []byte
	log     zerolog.Logger

	// Sent and Failed count send attempts.
	Sent   int
	Failed int
}

// NewTransmitter creates a transmitter for payload.
func NewTransmitter(link Sender, payload []byte, log zerolog.Logger) (*Transmitter, error) {
	if err := checkPayload(payload); err != nil {
		return nil, err
	}
	p := make([]byte, len(payload))
	copy(p, payload)
	return &Transmitter{link: link, payload: p, log: log}, nil
}

// SendOnce transmits the payload once. Failures are counted and logged, never
// retried.
func (t *Transmitter) SendOnce() {
	if err := t.link.Send(t.payload); err != nil {
		t.Failed++
		t.log.Debug().Err(err).Msg("send failed")
		return
	}
	t.Sent++
}

// Run sends immediately and then on every tick until ctx is done.
func (t *Transmitter) Run(ctx context.Context, tick <-chan time.Time) error {
	t.SendOnce()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			t.SendOnce()
		}
	}
}

// Receiver forwards every received message to a telemetry sink.
type Receiver struct {
	link Poller
	sink telemetry.Sink
	log  zerolog.Logger

	// Received counts forwarded messages.
	Received int
}

// NewReceiver creates a receiver.
func NewReceiver(link Poller, sink telemetry.Sink, log zerolog.Logger) *Receiver {
	return &Receiver{link: link, sink: sink, log: log}
}

// PollOnce checks for one pending message and forwards its text. Returns
// whether a message was available.
func (r *Receiver) PollOnce() bool {
	msg, ok := r.link.Poll()
	if !ok {
		return false
	}
	r.Received++
	if err := r.sink.Emit(msg.Text()); err != nil {
		r.log.Warn().Err(err).Msg("telemetry emit failed")
	}
	return true
}

// Run polls on every tick until ctx is done, draining all pending messages
// each time.
func (r *Receiver) Run(ctx context.Context, tick <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			for r.PollOnce() {
			}
		}
	}
}

// String summarises the transmitter counters for logging.
func (t *Transmitter) String() string {
	return fmt.Sprintf("sent=%d failed=%d", t.Sent, t.Failed)
}
