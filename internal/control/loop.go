// Package control runs the sampling and actuation loop: read the control
// and temperature inputs, drive the motor, emit telemetry, debounce the
// override button and drive the warning indicator.
package control

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/motor-sentry/internal/analog"
	"github.com/sweeney/motor-sentry/internal/gpio"
	"github.com/sweeney/motor-sentry/internal/logic"
	"github.com/sweeney/motor-sentry/internal/telemetry"
)

// Mode selects how iteration timing is derived.
type Mode string

const (
	// ModeBlocking holds each iteration for the indicator pattern: 50 ms
	// when suppressed, one 300+300 ms blink cycle when alerting.
	ModeBlocking Mode = "blocking"
	// ModeDecoupled samples every Poll interval and derives the blink from
	// elapsed time, so the sampling rate does not depend on the alert state.
	ModeDecoupled Mode = "decoupled"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeBlocking, ModeDecoupled:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown loop mode %q (want %q or %q)", s, ModeBlocking, ModeDecoupled)
}

// Actuator takes the duty command every iteration.
type Actuator interface {
	Drive(level int) error
	Stop() error
}

// Ports are the physical inputs and outputs the loop owns.
type Ports struct {
	Control     analog.Reader
	Temperature analog.Reader
	Button      gpio.Input
	Indicator   gpio.Output
	Motor       Actuator
}

// Config holds loop timing options.
type Config struct {
	Mode Mode
	// Poll is the iteration period in ModeDecoupled. Ignored in ModeBlocking.
	Poll time.Duration
}

// Report describes one completed iteration.
type Report struct {
	logic.Sample

	// Settle is the debounce wait taken after a button edge (0 if none).
	Settle time.Duration
	// Phases are the indicator levels written this iteration and how long
	// each was held.
	Phases []logic.Phase
}

// Loop is the control loop. It owns all state that outlives an iteration:
// the button toggle, the blinker, and the last temperature sample.
// Not safe for concurrent use.
type Loop struct {
	ports Ports
	sink  telemetry.Sink
	clock Clock
	cfg   Config
	log   zerolog.Logger

	toggle  logic.Toggle
	blinker logic.Blinker

	haveTemp bool
	tempRaw  int
	ctrlRaw  int
	level    int
}

// New creates a loop. A zero Poll in ModeDecoupled defaults to
// logic.SuppressedHold.
func New(ports Ports, sink telemetry.Sink, clock Clock, cfg Config, log zerolog.Logger) *Loop {
	if cfg.Mode == "" {
		cfg.Mode = ModeBlocking
	}
	if cfg.Poll <= 0 {
		cfg.Poll = logic.SuppressedHold
	}
	return &Loop{
		ports: ports,
		sink:  sink,
		clock: clock,
		cfg:   cfg,
		log:   log,
	}
}

// Override returns the current override flag.
func (l *Loop) Override() bool {
	return l.toggle.Override()
}

// Step runs one iteration in fixed order: control input, motor, temperature
// input, telemetry, button, indicator. A failed read skips the steps that
// depend on it and is logged; only context cancellation returns an error.
func (l *Loop) Step(ctx context.Context) (Report, error) {
	var r Report
	r.Time = l.clock.Now()

	if raw, err := l.ports.Control.Read(); err != nil {
		l.log.Warn().Err(err).Msg("control input read failed")
	} else {
		l.ctrlRaw = raw
		l.level = logic.ActuationLevel(raw)
	}
	// Duty and direction are rewritten every iteration, at the last good
	// level if the read failed.
	if err := l.ports.Motor.Drive(l.level); err != nil {
		l.log.Warn().Err(err).Int("level", l.level).Msg("motor drive failed")
	}

	if raw, err := l.ports.Temperature.Read(); err != nil {
		l.log.Warn().Err(err).Msg("temperature input read failed")
	} else {
		l.tempRaw = raw
		l.haveTemp = true
	}
	temperature := logic.Temperature(l.tempRaw)

	if l.haveTemp {
		if err := l.sink.Emit(telemetry.FormatTemperature(temperature)); err != nil {
			l.log.Debug().Err(err).Msg("telemetry emit failed")
		}
	}

	if high, err := l.ports.Button.Read(); err != nil {
		l.log.Warn().Err(err).Msg("button read failed")
	} else if settle := l.toggle.Observe(logic.Level(high)); settle > 0 {
		l.log.Info().Bool("override", l.toggle.Override()).Msg("override toggled")
		r.Settle = settle
		if err := l.clock.Sleep(ctx, settle); err != nil {
			return r, err
		}
	}

	state := logic.Evaluate(temperature, l.toggle.Override())

	r.ControlRaw = l.ctrlRaw
	r.TemperatureRaw = l.tempRaw
	r.Level = l.level
	r.Temperature = temperature
	r.HaveTemperature = l.haveTemp
	r.Override = l.toggle.Override()
	r.Warning = state

	var phases []logic.Phase
	if l.cfg.Mode == ModeDecoupled {
		level := l.blinker.Level(state, l.clock.Now())
		phases = []logic.Phase{{Level: level, Duration: l.cfg.Poll}}
	} else {
		phases = logic.Pattern(state)
	}

	for _, p := range phases {
		if err := l.ports.Indicator.Set(bool(p.Level)); err != nil {
			l.log.Warn().Err(err).Msg("indicator write failed")
		}
		r.Phases = append(r.Phases, p)
		if err := l.clock.Sleep(ctx, p.Duration); err != nil {
			return r, err
		}
	}

	return r, nil
}

// Run iterates until ctx is cancelled, passing every completed iteration to
// onReport (which may be nil). On exit the motor is stopped and the
// indicator driven LOW.
func (l *Loop) Run(ctx context.Context, onReport func(Report)) error {
	l.log.Info().Str("mode", string(l.cfg.Mode)).Dur("poll", l.cfg.Poll).Msg("control loop started")
	defer l.shutdown()

	for ctx.Err() == nil {
		r, err := l.Step(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if onReport != nil {
			onReport(r)
		}
	}
	return nil
}

func (l *Loop) shutdown() {
	if err := l.ports.Motor.Stop(); err != nil {
		l.log.Warn().Err(err).Msg("motor stop failed")
	}
	if err := l.ports.Indicator.Set(false); err != nil {
		l.log.Warn().Err(err).Msg("indicator off failed")
	}
	l.log.Info().Msg("control loop stopped")
}
