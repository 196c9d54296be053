// Package analog reads the analog input ports ("control" and "temperature").
// Samples are normalised to 10 bits, [0, 1023], whatever the converter's
// native resolution.
package analog

import "errors"

// Bits is the normalised sample width; Max is the largest normalised sample.
const (
	Bits = 10
	Max  = 1<<Bits - 1
)

// ErrOutOfRange is returned when a converter reports a value outside its
// declared resolution.
var ErrOutOfRange = errors.New("analog: sample out of range")

// Reader reads one analog input port.
type Reader interface {
	// Read returns a sample in [0, Max].
	Read() (int, error)
}

// Default IIO raw attribute paths for a two-channel ADC.
const (
	DefaultControlPath     = "/sys/bus/iio/devices/iio:device0/in_voltage0_raw"
	DefaultTemperaturePath = "/sys/bus/iio/devices/iio:device0/in_voltage1_raw"
)
