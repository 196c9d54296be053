// Package telemetry emits human-readable status lines to fire-and-forget
// sinks: the log, a serial port, MQTT, or any writer.
package telemetry

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Sink accepts one line of telemetry. Delivery is best effort; callers log
// errors and carry on.
type Sink interface {
	Emit(line string) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(line string) error

// Emit calls f(line).
func (f SinkFunc) Emit(line string) error {
	return f(line)
}

// FormatTemperature formats the per-iteration temperature line.
// Two decimals, as printed by the reference firmware.
func FormatTemperature(celsius float64) string {
	return fmt.Sprintf("Temperature: %.2f °C", celsius)
}

// Multi fans a line out to every sink. All sinks are tried; errors are joined.
type Multi []Sink

// Emit sends line to each sink.
func (m Multi) Emit(line string) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(line); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes lines to a zerolog logger at info level.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

// Emit logs the line.
func (s *LogSink) Emit(line string) error {
	s.log.Info().Str("sink", "telemetry").Msg(line)
	return nil
}

// WriterSink writes newline-terminated lines to an io.Writer, e.g. stdout.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a WriterSink.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Emit writes line followed by '\n'.
func (s *WriterSink) Emit(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.w, line)
	return err
}

// FakeSink records lines for test assertions.
type FakeSink struct {
	Lines []string

	// EmitError, if set, will be returned by Emit (the line is not recorded).
	EmitError error
}

// Emit records the line.
func (f *FakeSink) Emit(line string) error {
	if f.EmitError != nil {
		return f.EmitError
	}
	f.Lines = append(f.Lines, line)
	return nil
}
