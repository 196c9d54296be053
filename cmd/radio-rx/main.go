// Command radio-rx listens on a radio pipe and prints every payload it
// receives, one line per packet.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/sweeney/motor-sentry/internal/logger"
	"github.com/sweeney/motor-sentry/internal/radio"
	"github.com/sweeney/motor-sentry/internal/telemetry"
)

type options struct {
	broker     string
	clientID   string
	address    string
	channel    int
	poll       time.Duration
	serialPort string
	serialBaud int
	logLevel   string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := pflag.NewFlagSet("radio-rx", pflag.ContinueOnError)
	fs.StringVar(&o.broker, "broker", "tcp://localhost:1883", "MQTT broker carrying the radio pipe")
	fs.StringVar(&o.clientID, "client-id", "radio-rx", "MQTT client ID")
	fs.StringVar(&o.address, "address", radio.DefaultAddress, "5-byte pipe address")
	fs.IntVar(&o.channel, "channel", radio.DefaultChannel, "Radio channel")
	fs.DurationVar(&o.poll, "poll", 10*time.Millisecond, "Receive poll interval")
	fs.StringVar(&o.serialPort, "serial-port", "", "Also write received lines to this serial port")
	fs.IntVar(&o.serialBaud, "serial-baud", telemetry.DefaultBaud, "Serial baud rate")
	fs.StringVar(&o.logLevel, "log-level", "info", "Log level")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.poll <= 0 {
		return o, fmt.Errorf("poll must be positive, got %v", o.poll)
	}
	return o, nil
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "radio-rx: %v\n", err)
		os.Exit(2)
	}
	log, err := logger.Default(o.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "radio-rx: %v\n", err)
		os.Exit(2)
	}

	addr, err := radio.ParseAddress(o.address)
	if err != nil {
		log.Fatal().Err(err).Msg("bad address")
	}

	sinks := telemetry.Multi{telemetry.NewWriterSink(os.Stdout)}
	if o.serialPort != "" {
		s, err := telemetry.OpenSerial(o.serialPort, o.serialBaud)
		if err != nil {
			log.Fatal().Err(err).Str("port", o.serialPort).Msg("open serial")
		}
		defer s.Close()
		sinks = append(sinks, s)
	}

	link, err := radio.DialMQTT(o.broker, o.clientID, o.channel, addr, true, log)
	if err != nil {
		log.Fatal().Err(err).Str("broker", o.broker).Msg("dial")
	}
	defer link.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("topic", radio.Topic(o.channel, addr)).Msg("listening")

	rx := run(ctx, link, sinks, o.poll, log)
	log.Info().Int("received", rx.Received).Int("dropped", link.Dropped()).Msg("stopped")
}

func run(ctx context.Context, link radio.Poller, sink telemetry.Sink, poll time.Duration, log zerolog.Logger) *radio.Receiver {
	rx := radio.NewReceiver(link, sink, log)
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	rx.Run(ctx, ticker.C)
	return rx
}
