// Package gpio provides digital port access with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

// Input reads a digital input port.
type Input interface {
	// Read returns the raw electrical level: true = HIGH.
	// No inversion is applied; a pull-up button reads HIGH when idle.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Output drives a digital output port.
type Output interface {
	// Set drives the port HIGH (true) or LOW (false).
	Set(high bool) error

	// Close releases GPIO resources.
	Close() error
}

// Default line offsets on gpiochip0 (BCM numbering).
const (
	DefaultChip         = "gpiochip0"
	DefaultPinButton    = 17 // override button, pull-up, active-low
	DefaultPinIndicator = 27 // warning LED
	DefaultPinDirA      = 23 // motor driver input 1
	DefaultPinDirB      = 24 // motor driver input 2
)
