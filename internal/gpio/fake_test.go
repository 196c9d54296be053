package gpio

import (
	"errors"
	"testing"
)

func TestFakeInputRead(t *testing.T) {
	f := NewFakeInput(true, false, true)

	want := []bool{true, false, true, true}
	for i, w := range want {
		got, err := f.Read()
		if err != nil {
			t.Fatalf("read %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("read %d: expected %v, got %v", i, w, got)
		}
	}
}

func TestFakeInputNoSamples(t *testing.T) {
	f := NewFakeInput()

	if _, err := f.Read(); err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeInputError(t *testing.T) {
	f := NewFakeInput(true)
	f.ReadError = errors.New("simulated error")

	_, err := f.Read()
	if err == nil {
		t.Fatal("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeInputCloseAndReset(t *testing.T) {
	f := NewFakeInput(false, true)

	f.Read()
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}

	f.Reset()
	if f.Closed {
		t.Error("Reset should clear Closed")
	}
	if got, _ := f.Read(); got != false {
		t.Errorf("after reset: expected first sample (false), got %v", got)
	}
}

func TestFakeOutputRecordsWrites(t *testing.T) {
	f := NewFakeOutput()

	if f.Level() {
		t.Error("unwritten output should read LOW")
	}

	f.Set(true)
	f.Set(false)
	f.Set(true)

	if len(f.Writes) != 3 {
		t.Fatalf("expected 3 writes, got %d", len(f.Writes))
	}
	if !f.Level() {
		t.Error("expected last level HIGH")
	}
}

func TestFakeOutputError(t *testing.T) {
	f := NewFakeOutput()
	f.SetError = errors.New("stuck pin")

	if err := f.Set(true); err == nil {
		t.Error("expected error")
	}
	if len(f.Writes) != 0 {
		t.Error("failed write should not be recorded")
	}
}
