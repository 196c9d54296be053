package analog

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// IIOReader reads a Linux Industrial I/O raw channel attribute, e.g.
// /sys/bus/iio/devices/iio:device0/in_voltage0_raw.
type IIOReader struct {
	path string
	bits int
}

// NewIIOReader creates a reader for the attribute at path. bits is the
// converter's native resolution; readings wider than 10 bits are shifted
// down, narrower ones shifted up, so Read returns [0, Max].
func NewIIOReader(path string, bits int) (*IIOReader, error) {
	if bits <= 0 || bits > 24 {
		return nil, fmt.Errorf("analog: invalid resolution %d bits", bits)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open adc channel: %w", err)
	}
	return &IIOReader{path: path, bits: bits}, nil
}

// Read returns the current sample scaled to [0, Max].
func (r *IIOReader) Read() (int, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return 0, fmt.Errorf("read adc %s: %w", r.path, err)
	}

	raw, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse adc %s: %w", r.path, err)
	}
	if raw < 0 || raw >= 1<<r.bits {
		return 0, fmt.Errorf("%w: %d (%d bits)", ErrOutOfRange, raw, r.bits)
	}

	switch {
	case r.bits > Bits:
		raw >>= r.bits - Bits
	case r.bits < Bits:
		raw <<= Bits - r.bits
	}
	return raw, nil
}
