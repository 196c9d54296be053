// Package motor drives a single-direction DC motor through an H-bridge:
// one duty-cycle enable input and two direction inputs fixed to forward.
package motor

import (
	"errors"
	"fmt"

	"github.com/sweeney/motor-sentry/internal/gpio"
	"github.com/sweeney/motor-sentry/internal/pwm"
)

// Driver is the actuation driver. It never reverses, brakes or ramps.
type Driver struct {
	enable pwm.Output
	dirA   gpio.Output
	dirB   gpio.Output
}

// NewDriver creates a driver over the enable output and the two direction pins.
func NewDriver(enable pwm.Output, dirA, dirB gpio.Output) *Driver {
	return &Driver{enable: enable, dirA: dirA, dirB: dirB}
}

// Drive writes level as the duty command and asserts forward polarity
// (A HIGH, B LOW). Direction is rewritten every call.
func (d *Driver) Drive(level int) error {
	if err := d.enable.SetDuty(level); err != nil {
		return fmt.Errorf("set motor duty: %w", err)
	}
	if err := d.dirA.Set(true); err != nil {
		return fmt.Errorf("set direction A: %w", err)
	}
	if err := d.dirB.Set(false); err != nil {
		return fmt.Errorf("set direction B: %w", err)
	}
	return nil
}

// Stop zeroes the duty and releases both direction pins (coast).
func (d *Driver) Stop() error {
	return errors.Join(
		d.enable.SetDuty(0),
		d.dirA.Set(false),
		d.dirB.Set(false),
	)
}
