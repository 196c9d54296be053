// Package config loads daemon settings from compiled-in defaults, an optional
// config file, MOTOR_SENTRY_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sweeney/motor-sentry/internal/analog"
	"github.com/sweeney/motor-sentry/internal/control"
	"github.com/sweeney/motor-sentry/internal/gpio"
	"github.com/sweeney/motor-sentry/internal/logic"
	"github.com/sweeney/motor-sentry/internal/pwm"
	"github.com/sweeney/motor-sentry/internal/telemetry"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// DefaultFile is read when --config is not given. It may be absent.
const DefaultFile = "/etc/motor-sentry.yaml"

// EnvPrefix namespaces environment overrides, e.g. MOTOR_SENTRY_LOOP_MODE.
const EnvPrefix = "MOTOR_SENTRY"

type GPIOConfig struct {
	Chip      string `mapstructure:"chip"`
	Button    int    `mapstructure:"button"`
	Indicator int    `mapstructure:"indicator"`
	DirA      int    `mapstructure:"dir_a"`
	DirB      int    `mapstructure:"dir_b"`
}

type AnalogConfig struct {
	Control     string `mapstructure:"control"`
	Temperature string `mapstructure:"temperature"`
	Bits        int    `mapstructure:"bits"`
}

type PWMConfig struct {
	Chip    string        `mapstructure:"chip"`
	Channel int           `mapstructure:"channel"`
	Period  time.Duration `mapstructure:"period"`
}

type LoopConfig struct {
	Mode string        `mapstructure:"mode"`
	Poll time.Duration `mapstructure:"poll"`
}

type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	ClientID string `mapstructure:"client_id"`
}

type SerialConfig struct {
	Port string `mapstructure:"port"`
	Baud int    `mapstructure:"baud"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Config is the full daemon configuration.
type Config struct {
	GPIO       GPIOConfig    `mapstructure:"gpio"`
	Analog     AnalogConfig  `mapstructure:"analog"`
	PWM        PWMConfig     `mapstructure:"pwm"`
	Loop       LoopConfig    `mapstructure:"loop"`
	MQTT       MQTTConfig    `mapstructure:"mqtt"`
	HTTP       string        `mapstructure:"http"`
	Serial     SerialConfig  `mapstructure:"serial"`
	Heartbeat  time.Duration `mapstructure:"heartbeat"`
	Log        LogConfig     `mapstructure:"log"`
	PrintState bool          `mapstructure:"print_state"`

	// File is the config file that was read, or "" if none was.
	File string `mapstructure:"-"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"gpio-chip":          "gpio.chip",
	"pin-button":         "gpio.button",
	"pin-indicator":      "gpio.indicator",
	"pin-dir-a":          "gpio.dir_a",
	"pin-dir-b":          "gpio.dir_b",
	"analog-control":     "analog.control",
	"analog-temperature": "analog.temperature",
	"analog-bits":        "analog.bits",
	"pwm-chip":           "pwm.chip",
	"pwm-channel":        "pwm.channel",
	"pwm-period":         "pwm.period",
	"mode":               "loop.mode",
	"poll":               "loop.poll",
	"broker":             "mqtt.broker",
	"client-id":          "mqtt.client_id",
	"http":               "http",
	"serial-port":        "serial.port",
	"serial-baud":        "serial.baud",
	"heartbeat":          "heartbeat",
	"log-level":          "log.level",
	"print-state":        "print_state",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gpio.chip", gpio.DefaultChip)
	v.SetDefault("gpio.button", gpio.DefaultPinButton)
	v.SetDefault("gpio.indicator", gpio.DefaultPinIndicator)
	v.SetDefault("gpio.dir_a", gpio.DefaultPinDirA)
	v.SetDefault("gpio.dir_b", gpio.DefaultPinDirB)
	v.SetDefault("analog.control", analog.DefaultControlPath)
	v.SetDefault("analog.temperature", analog.DefaultTemperaturePath)
	v.SetDefault("analog.bits", 10)
	v.SetDefault("pwm.chip", "/sys/class/pwm/pwmchip0")
	v.SetDefault("pwm.channel", 0)
	v.SetDefault("pwm.period", pwm.DefaultPeriod)
	v.SetDefault("loop.mode", string(control.ModeDecoupled))
	v.SetDefault("loop.poll", 50*time.Millisecond)
	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id", "motor-sentry")
	v.SetDefault("http", ":80")
	v.SetDefault("serial.port", "")
	v.SetDefault("serial.baud", telemetry.DefaultBaud)
	v.SetDefault("heartbeat", 15*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("print_state", false)
}

// FlagSet returns the daemon's flags. Defaults shown in usage match the
// compiled-in defaults; only flags set explicitly override other sources.
func FlagSet(name string) *pflag.FlagSet {
	f := pflag.NewFlagSet(name, pflag.ContinueOnError)
	f.String("config", DefaultFile, "Config file (yaml, toml or json)")

	f.String("gpio-chip", gpio.DefaultChip, "GPIO character device")
	f.Int("pin-button", gpio.DefaultPinButton, "Line offset of the override button")
	f.Int("pin-indicator", gpio.DefaultPinIndicator, "Line offset of the warning indicator")
	f.Int("pin-dir-a", gpio.DefaultPinDirA, "Line offset of motor direction input 1")
	f.Int("pin-dir-b", gpio.DefaultPinDirB, "Line offset of motor direction input 2")
	f.String("analog-control", analog.DefaultControlPath, "IIO raw file for the speed control input")
	f.String("analog-temperature", analog.DefaultTemperaturePath, "IIO raw file for the temperature input")
	f.Int("analog-bits", 10, "ADC resolution in bits")
	f.String("pwm-chip", "/sys/class/pwm/pwmchip0", "sysfs PWM chip directory")
	f.Int("pwm-channel", 0, "PWM channel driving the motor enable")
	f.Duration("pwm-period", pwm.DefaultPeriod, "PWM period")
	f.String("mode", string(control.ModeDecoupled), `Loop mode: "blocking" or "decoupled"`)
	f.Duration("poll", 50*time.Millisecond, "Sampling interval in decoupled mode")
	f.String("broker", "", "MQTT broker address (empty to disable)")
	f.String("client-id", "motor-sentry", "MQTT client ID")
	f.String("http", ":80", "HTTP status address (empty to disable)")
	f.String("serial-port", "", "Serial port for telemetry lines (empty to disable)")
	f.Int("serial-baud", telemetry.DefaultBaud, "Serial baud rate")
	f.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	f.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	f.Bool("print-state", false, "Print current readings and exit")
	return f
}

// Load parses args and merges every configuration source.
func Load(args []string) (*Config, error) {
	flags := FlagSet("motor-sentry")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	return LoadFlags(flags)
}

// LoadFlags merges defaults, config file, environment and the already
// parsed flag set.
func LoadFlags(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	file, _ := flags.GetString("config")
	explicit := flags.Changed("config")
	var used string
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else {
			used = v.ConfigFileUsed()
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.File = used
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if _, err := control.ParseMode(c.Loop.Mode); err != nil {
		return fmt.Errorf("%w: loop.mode: %v", ErrInvalid, err)
	}
	if c.Loop.Poll <= 0 {
		return fmt.Errorf("%w: loop.poll must be positive, got %v", ErrInvalid, c.Loop.Poll)
	}
	// The decoupled indicator is written once per poll, so the poll must land
	// on every blink edge.
	if logic.BlinkOn%c.Loop.Poll != 0 || logic.BlinkOff%c.Loop.Poll != 0 {
		return fmt.Errorf("%w: loop.poll %v must divide the %v/%v blink phases",
			ErrInvalid, c.Loop.Poll, logic.BlinkOn, logic.BlinkOff)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil || c.Log.Level == "" {
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	pins := map[string]int{
		"gpio.button":    c.GPIO.Button,
		"gpio.indicator": c.GPIO.Indicator,
		"gpio.dir_a":     c.GPIO.DirA,
		"gpio.dir_b":     c.GPIO.DirB,
		"pwm.channel":    c.PWM.Channel,
	}
	for key, pin := range pins {
		if pin < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalid, key, pin)
		}
	}
	if c.Analog.Bits < 1 || c.Analog.Bits > 16 {
		return fmt.Errorf("%w: analog.bits must be in 1..16, got %d", ErrInvalid, c.Analog.Bits)
	}
	if c.PWM.Period <= 0 {
		return fmt.Errorf("%w: pwm.period must be positive, got %v", ErrInvalid, c.PWM.Period)
	}
	if c.Heartbeat < 0 {
		return fmt.Errorf("%w: heartbeat must not be negative, got %v", ErrInvalid, c.Heartbeat)
	}
	return nil
}

// Mode returns the validated loop mode.
func (c *Config) Mode() control.Mode {
	return control.Mode(c.Loop.Mode)
}
