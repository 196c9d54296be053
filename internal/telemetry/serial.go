package telemetry

import (
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"
)

// DefaultBaud is the UART speed of the reference firmware's serial monitor.
const DefaultBaud = 9600

// SerialSink writes CRLF-terminated lines to a serial port, like a
// microcontroller's println.
type SerialSink struct {
	mu   sync.Mutex
	port io.WriteCloser
}

// OpenSerial opens portName at baud, 8N1.
func OpenSerial(portName string, baud int) (*SerialSink, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	return &SerialSink{port: port}, nil
}

// Emit writes line + "\r\n". There is no flow control; a slow reader loses data.
func (s *SerialSink) Emit(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := io.WriteString(s.port, line+"\r\n"); err != nil {
		return fmt.Errorf("serial write: %w", err)
	}
	return nil
}

// Close closes the port.
func (s *SerialSink) Close() error {
	return s.port.Close()
}
