package pwm

// FakeOutput records duty levels for test assertions.
type FakeOutput struct {
	// Duties contains every level passed to SetDuty, after clamping.
	Duties []int

	// SetError, if set, will be returned by SetDuty.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeOutput creates an empty FakeOutput.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// SetDuty records the level.
func (f *FakeOutput) SetDuty(level int) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Duties = append(f.Duties, clampDuty(level))
	return nil
}

// Duty returns the last level written (0 if none).
func (f *FakeOutput) Duty() int {
	if len(f.Duties) == 0 {
		return 0
	}
	return f.Duties[len(f.Duties)-1]
}

// Close marks the output as closed.
func (f *FakeOutput) Close() error {
	f.Closed = true
	return nil
}
