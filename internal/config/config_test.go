package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/motor-sentry/internal/control"
	"github.com/sweeney/motor-sentry/internal/gpio"
	"github.com/sweeney/motor-sentry/internal/pwm"
)

// load parses args with the config file defaulting to path, without marking
// --config as explicitly set.
func load(t *testing.T, path string, args ...string) (*Config, error) {
	t.Helper()
	flags := FlagSet("test")
	require.NoError(t, flags.Lookup("config").Value.Set(path))
	require.NoError(t, flags.Parse(args))
	return LoadFlags(flags)
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func missing(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.yaml")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(t, missing(t))
	require.NoError(t, err)

	assert.Equal(t, gpio.DefaultChip, cfg.GPIO.Chip)
	assert.Equal(t, gpio.DefaultPinButton, cfg.GPIO.Button)
	assert.Equal(t, gpio.DefaultPinIndicator, cfg.GPIO.Indicator)
	assert.Equal(t, 10, cfg.Analog.Bits)
	assert.Equal(t, pwm.DefaultPeriod, cfg.PWM.Period)
	assert.Equal(t, control.ModeDecoupled, cfg.Mode())
	assert.Equal(t, 50*time.Millisecond, cfg.Loop.Poll)
	assert.Equal(t, "", cfg.MQTT.Broker)
	assert.Equal(t, ":80", cfg.HTTP)
	assert.Equal(t, 9600, cfg.Serial.Baud)
	assert.Equal(t, 15*time.Minute, cfg.Heartbeat)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.PrintState)
	assert.Empty(t, cfg.File)
}

func TestLoadFlags(t *testing.T) {
	cfg, err := load(t, missing(t),
		"--mode", "blocking",
		"--poll", "20ms",
		"--broker", "tcp://10.0.0.5:1883",
		"--pin-button", "5",
		"--print-state",
	)
	require.NoError(t, err)

	assert.Equal(t, control.ModeBlocking, cfg.Mode())
	assert.Equal(t, 20*time.Millisecond, cfg.Loop.Poll)
	assert.Equal(t, "tcp://10.0.0.5:1883", cfg.MQTT.Broker)
	assert.Equal(t, 5, cfg.GPIO.Button)
	assert.True(t, cfg.PrintState)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "motor-sentry.yaml", `
loop:
  mode: blocking
  poll: 75ms
mqtt:
  broker: tcp://broker:1883
gpio:
  dir_a: 5
serial:
  port: /dev/ttyUSB0
heartbeat: 1m
`)
	cfg, err := load(t, path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, control.ModeBlocking, cfg.Mode())
	assert.Equal(t, 75*time.Millisecond, cfg.Loop.Poll)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.Equal(t, 5, cfg.GPIO.DirA)
	assert.Equal(t, gpio.DefaultPinDirB, cfg.GPIO.DirB)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, time.Minute, cfg.Heartbeat)
}

func TestPrecedence(t *testing.T) {
	path := writeFile(t, "motor-sentry.yaml", `
loop:
  mode: blocking
  poll: 75ms
log:
  level: warn
`)
	t.Setenv("MOTOR_SENTRY_LOOP_POLL", "30ms")
	t.Setenv("MOTOR_SENTRY_LOG_LEVEL", "debug")

	cfg, err := load(t, path, "--log-level", "error")
	require.NoError(t, err)

	assert.Equal(t, control.ModeBlocking, cfg.Mode(), "file beats default")
	assert.Equal(t, 30*time.Millisecond, cfg.Loop.Poll, "env beats file")
	assert.Equal(t, "error", cfg.Log.Level, "flag beats env")
}

func TestExplicitMissingConfigFails(t *testing.T) {
	_, err := Load([]string{"--config", missing(t)})
	assert.Error(t, err)
}

func TestMalformedConfigFails(t *testing.T) {
	path := writeFile(t, "bad.yaml", "loop: [unterminated\n")
	_, err := load(t, path)
	assert.Error(t, err)
}

func TestUnknownFlagFails(t *testing.T) {
	_, err := Load([]string{"--no-such-flag"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := load(t, missing(t))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown mode", func(c *Config) { c.Loop.Mode = "turbo" }},
		{"zero poll", func(c *Config) { c.Loop.Poll = 0 }},
		{"poll longer than blink phase", func(c *Config) { c.Loop.Poll = 600 * time.Millisecond }},
		{"poll off blink edges", func(c *Config) { c.Loop.Poll = 200 * time.Millisecond }},
		{"poll 7ms", func(c *Config) { c.Loop.Poll = 7 * time.Millisecond }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"empty log level", func(c *Config) { c.Log.Level = "" }},
		{"negative button", func(c *Config) { c.GPIO.Button = -1 }},
		{"negative channel", func(c *Config) { c.PWM.Channel = -2 }},
		{"zero bits", func(c *Config) { c.Analog.Bits = 0 }},
		{"zero period", func(c *Config) { c.PWM.Period = 0 }},
		{"negative heartbeat", func(c *Config) { c.Heartbeat = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}

	assert.NoError(t, valid().Validate())
}

func TestEnvInvalidModeRejected(t *testing.T) {
	t.Setenv("MOTOR_SENTRY_LOOP_MODE", "sometimes")
	_, err := load(t, missing(t))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidateAcceptsPollsOnBlinkEdges(t *testing.T) {
	for _, poll := range []time.Duration{
		time.Millisecond,
		10 * time.Millisecond,
		50 * time.Millisecond,
		100 * time.Millisecond,
		150 * time.Millisecond,
		300 * time.Millisecond,
	} {
		cfg, err := load(t, missing(t), "--poll", poll.String())
		require.NoError(t, err, "poll %v", poll)
		assert.Equal(t, poll, cfg.Loop.Poll)
	}
}

func TestLoadRejectsPollOffBlinkEdges(t *testing.T) {
	_, err := load(t, missing(t), "--poll", "200ms")
	assert.ErrorIs(t, err, ErrInvalid)
}
