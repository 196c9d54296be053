//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// Chip opens lines on a Linux GPIO character device.
type Chip struct {
	chip *gpiocdev.Chip
}

// OpenChip opens the named GPIO chip, e.g. "gpiochip0".
func OpenChip(name string) (*Chip, error) {
	chip, err := gpiocdev.NewChip(name)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", name, err)
	}
	return &Chip{chip: chip}, nil
}

// Close releases the chip. Lines requested from it must be closed first.
func (c *Chip) Close() error {
	return c.chip.Close()
}

// RealInput reads a pull-up input line.
type RealInput struct {
	pin  int
	line *gpiocdev.Line
}

// Input requests pin as an input with the internal pull-up enabled, so an
// unpressed button to ground reads HIGH.
func (c *Chip) Input(pin int) (*RealInput, error) {
	line, err := c.chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		return nil, fmt.Errorf("request input pin %d: %w", pin, err)
	}
	return &RealInput{pin: pin, line: line}, nil
}

// Read returns true when the line is HIGH.
func (r *RealInput) Read() (bool, error) {
	v, err := r.line.Value()
	if err != nil {
		return false, fmt.Errorf("read pin %d: %w", r.pin, err)
	}
	return v == 1, nil
}

// Close releases the line.
func (r *RealInput) Close() error {
	if err := r.line.Close(); err != nil {
		return fmt.Errorf("close pin %d: %w", r.pin, err)
	}
	return nil
}

// RealOutput drives an output line.
type RealOutput struct {
	pin  int
	line *gpiocdev.Line
}

// Output requests pin as an output, initially LOW.
func (c *Chip) Output(pin int) (*RealOutput, error) {
	line, err := c.chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}
	return &RealOutput{pin: pin, line: line}, nil
}

// Set drives the line HIGH or LOW.
func (o *RealOutput) Set(high bool) error {
	v := 0
	if high {
		v = 1
	}
	if err := o.line.SetValue(v); err != nil {
		return fmt.Errorf("write pin %d: %w", o.pin, err)
	}
	return nil
}

// Close drives the line LOW and hands it back as an input with pull-down
// (Pi boot default) so the motor driver and LED stay off after exit.
func (o *RealOutput) Close() error {
	var errs []error

	if err := o.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("drive pin %d low: %w", o.pin, err))
	}
	if err := o.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", o.pin, err))
	}
	if err := o.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pin %d: %w", o.pin, err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
