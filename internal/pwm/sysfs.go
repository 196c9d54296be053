package pwm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// SysfsOutput drives a channel of a Linux sysfs PWM chip
// (/sys/class/pwm/pwmchipN/pwmM).
type SysfsOutput struct {
	chipDir  string
	channel  int
	dir      string
	periodNs int64
	exported bool
}

// OpenSysfs exports channel on the chip at chipDir (e.g.
// /sys/class/pwm/pwmchip0), sets the period, starts at zero duty and enables
// the output.
func OpenSysfs(chipDir string, channel int, period time.Duration) (*SysfsOutput, error) {
	if period <= 0 {
		return nil, fmt.Errorf("pwm: invalid period %v", period)
	}

	o := &SysfsOutput{
		chipDir:  chipDir,
		channel:  channel,
		dir:      filepath.Join(chipDir, "pwm"+strconv.Itoa(channel)),
		periodNs: period.Nanoseconds(),
	}

	if _, err := os.Stat(o.dir); errors.Is(err, os.ErrNotExist) {
		if err := writeAttr(filepath.Join(chipDir, "export"), strconv.Itoa(channel)); err != nil {
			return nil, fmt.Errorf("export pwm channel %d: %w", channel, err)
		}
		o.exported = true
	}

	// duty_cycle must never exceed period, so zero it before changing period.
	if err := o.write("duty_cycle", 0); err != nil {
		return nil, err
	}
	if err := o.write("period", o.periodNs); err != nil {
		return nil, err
	}
	if err := o.write("enable", 1); err != nil {
		return nil, err
	}
	return o, nil
}

// SetDuty sets duty_cycle to level/MaxDuty of the period.
func (o *SysfsOutput) SetDuty(level int) error {
	duty := o.periodNs * int64(clampDuty(level)) / MaxDuty
	return o.write("duty_cycle", duty)
}

// Close zeroes the duty, disables the channel and unexports it if this
// process exported it.
func (o *SysfsOutput) Close() error {
	var errs []error

	if err := o.write("duty_cycle", 0); err != nil {
		errs = append(errs, err)
	}
	if err := o.write("enable", 0); err != nil {
		errs = append(errs, err)
	}
	if o.exported {
		if err := writeAttr(filepath.Join(o.chipDir, "unexport"), strconv.Itoa(o.channel)); err != nil {
			errs = append(errs, fmt.Errorf("unexport pwm channel %d: %w", o.channel, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func (o *SysfsOutput) write(attr string, value int64) error {
	if err := writeAttr(filepath.Join(o.dir, attr), strconv.FormatInt(value, 10)); err != nil {
		return fmt.Errorf("write pwm%d %s: %w", o.channel, attr, err)
	}
	return nil
}

func writeAttr(path, value string) error {
	return os.WriteFile(path, []byte(value), 0o644)
}
