// Command motor-sentry drives a DC motor from an analog speed input, reports
// temperature, and blinks a warning indicator when the motor runs hot unless
// the operator has pressed the override button.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/sweeney/motor-sentry/internal/analog"
	"github.com/sweeney/motor-sentry/internal/config"
	"github.com/sweeney/motor-sentry/internal/control"
	"github.com/sweeney/motor-sentry/internal/gpio"
	"github.com/sweeney/motor-sentry/internal/logger"
	"github.com/sweeney/motor-sentry/internal/logic"
	"github.com/sweeney/motor-sentry/internal/motor"
	"github.com/sweeney/motor-sentry/internal/mqtt"
	"github.com/sweeney/motor-sentry/internal/pwm"
	"github.com/sweeney/motor-sentry/internal/status"
	"github.com/sweeney/motor-sentry/internal/telemetry"
	"github.com/sweeney/motor-sentry/internal/web"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "motor-sentry: %v\n", err)
		os.Exit(2)
	}

	log, err := logger.Default(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "motor-sentry: %v\n", err)
		os.Exit(2)
	}
	if cfg.File != "" {
		log.Info().Str("file", cfg.File).Msg("loaded config file")
	}

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	chip, err := gpio.OpenChip(cfg.GPIO.Chip)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer chip.Close()

	button, err := chip.Input(cfg.GPIO.Button)
	if err != nil {
		return fmt.Errorf("init button: %w", err)
	}
	defer button.Close()

	ctrl, err := analog.NewIIOReader(cfg.Analog.Control, cfg.Analog.Bits)
	if err != nil {
		return fmt.Errorf("init control input: %w", err)
	}
	temp, err := analog.NewIIOReader(cfg.Analog.Temperature, cfg.Analog.Bits)
	if err != nil {
		return fmt.Errorf("init temperature input: %w", err)
	}

	if cfg.PrintState {
		return printState(os.Stdout, ctrl, temp, button)
	}

	indicator, err := chip.Output(cfg.GPIO.Indicator)
	if err != nil {
		return fmt.Errorf("init indicator: %w", err)
	}
	defer indicator.Close()

	dirA, err := chip.Output(cfg.GPIO.DirA)
	if err != nil {
		return fmt.Errorf("init direction pin A: %w", err)
	}
	defer dirA.Close()

	dirB, err := chip.Output(cfg.GPIO.DirB)
	if err != nil {
		return fmt.Errorf("init direction pin B: %w", err)
	}
	defer dirB.Close()

	enable, err := pwm.OpenSysfs(cfg.PWM.Chip, cfg.PWM.Channel, cfg.PWM.Period)
	if err != nil {
		return fmt.Errorf("init pwm: %w", err)
	}
	defer enable.Close()

	// Initialize MQTT
	var publisher mqtt.Publisher = discard{}
	var connStatus mqtt.ConnectionStatus
	if cfg.MQTT.Broker != "" {
		p, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID)
		if err != nil {
			log.Warn().Err(err).Str("broker", cfg.MQTT.Broker).Msg("mqtt disabled")
		} else {
			publisher, connStatus = p, p
			log.Info().Str("broker", cfg.MQTT.Broker).Msg("mqtt connected")
		}
	}
	defer publisher.Close()

	sinks := telemetry.Multi{telemetry.NewLogSink(log)}
	if cfg.Serial.Port != "" {
		serialSink, err := telemetry.OpenSerial(cfg.Serial.Port, cfg.Serial.Baud)
		if err != nil {
			return fmt.Errorf("init serial telemetry: %w", err)
		}
		defer serialSink.Close()
		sinks = append(sinks, serialSink)
	}
	if connStatus != nil {
		sinks = append(sinks, telemetry.SinkFunc(publisher.PublishTelemetry))
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Mode:        cfg.Loop.Mode,
		PollMs:      cfg.Loop.Poll.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.MQTT.Broker,
		HTTPAddr:    cfg.HTTP,
		SerialPort:  cfg.Serial.Port,
	})

	d := newDaemon(publisher, connStatus, tracker, cfg.Heartbeat, time.Now(), log)
	d.startup()

	if cfg.HTTP != "" {
		srv := web.New(cfg.HTTP, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info().Str("addr", cfg.HTTP).Msg("http status server listening")
	}

	loop := control.New(control.Ports{
		Control:     ctrl,
		Temperature: temp,
		Button:      button,
		Indicator:   indicator,
		Motor:       motor.NewDriver(enable, dirA, dirB),
	}, sinks, control.RealClock{}, control.Config{
		Mode: cfg.Mode(),
		Poll: cfg.Loop.Poll,
	}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	reason := make(chan string, 1)
	go func() {
		select {
		case s := <-sigCh:
			log.Info().Str("signal", s.String()).Msg("shutting down")
			reason <- signalName(s)
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Info().
		Str("mode", cfg.Loop.Mode).
		Dur("poll", cfg.Loop.Poll).
		Str("broker", cfg.MQTT.Broker).
		Dur("heartbeat", cfg.Heartbeat).
		Msg("started")

	err = loop.Run(ctx, d.handleReport)

	select {
	case r := <-reason:
		d.shutdown(r)
	default:
		d.shutdown("ERROR")
	}
	return err
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// printState reads every input once and prints the derived values.
func printState(w io.Writer, ctrl, temp analog.Reader, button gpio.Input) error {
	c, err := ctrl.Read()
	if err != nil {
		return fmt.Errorf("read control input: %w", err)
	}
	t, err := temp.Read()
	if err != nil {
		return fmt.Errorf("read temperature input: %w", err)
	}
	b, err := button.Read()
	if err != nil {
		return fmt.Errorf("read button: %w", err)
	}
	celsius := logic.Temperature(t)
	fmt.Fprintf(w, "Control: %d (level %d), Temperature: %.2f °C (raw %d), Button: %s, Warning: %s\n",
		c, logic.ActuationLevel(c), celsius, t, logic.Level(b), logic.Evaluate(celsius, false))
	return nil
}

// discard stands in for MQTT when no broker is configured.
type discard struct{}

func (discard) Publish(logic.Event) error            { return nil }
func (discard) PublishSystem(mqtt.SystemEvent) error { return nil }
func (discard) PublishTelemetry(string) error        { return nil }
func (discard) Close() error                         { return nil }
