package analog

import (
	"errors"
	"fmt"
)

// FakeReader is a test double that returns scripted samples.
type FakeReader struct {
	// Samples contains scripted samples to return.
	// Each call to Read() consumes the next sample; the last one repeats.
	Samples []int

	index int

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples ...int) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample. Samples outside [0, Max] are
// reported as ErrOutOfRange, as the IIO reader does.
func (f *FakeReader) Read() (int, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	if sample < 0 || sample > Max {
		return 0, fmt.Errorf("%w: %d", ErrOutOfRange, sample)
	}
	return sample, nil
}
