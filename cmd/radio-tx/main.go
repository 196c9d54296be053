// Command radio-tx broadcasts a fixed greeting on a radio pipe once per
// period, without waiting for acknowledgement.
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
)

type options struct {
	broker   string
	clientID string
	address  string
	channel  int
	period   time.Duration
	logLevel string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := pflag.NewFlagSet("radio-tx", pflag.ContinueOnError)
	fs.StringVar(&o.broker, "broker", "tcp://localhost:1883", "MQTT broker carrying the radio pipe")
	fs.StringVar(&o.clientID, "client-id", "radio-tx", "MQTT client ID")
	fs.StringVar(&o.address, "address", radio.DefaultAddress, "5-byte pipe address")
	fs.IntVar(&o.channel, "channel", radio.DefaultChannel, "Radio channel")
	fs.DurationVar(&o.period, "period", radio.TransmitPeriod, "Transmit period")
	fs.StringVar(&o.logLevel, "log-level", "info", "Log level")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.period <= 0 {
		return o, fmt.Errorf("period must be positive, got %v", o.period)
	}
	return o, nil
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "radio-tx: %v\n", err)
		os.Exit(2)
	}
	log, err := logger.Default(o.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "radio-tx: %v\n", err)
		os.Exit(2)
	}

	addr, err := radio.ParseAddress(o.address)
	if err != nil {
		log.Fatal().Err(err).Msg("bad address")
	}
	link, err := radio.DialMQTT(o.broker, o.clientID, o.channel, addr, false, log)
	if err != nil {
		log.Fatal().Err(err).Str("broker", o.broker).Msg("dial")
	}
	defer link.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("topic", radio.Topic(o.channel, addr)).
		Dur("period", o.period).
		Msg("transmitting")

	tx, err := run(ctx, link, o.period, log)
	if err != nil {
		log.Fatal().Err(err).Msg("transmit")
	}
	log.Info().Stringer("counts", tx).Msg("stopped")
}

func run(ctx context.Context, link radio.Sender, period time.Duration, log zerolog.Logger) (*radio.Transmitter, error) {
	tx, err := radio.NewTransmitter(link, radio.HelloPayload, log)
	if err != nil {
		return nil, err
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	return tx, tx.Run(ctx, ticker.C)
}
