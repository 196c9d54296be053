// Package radio is a point-to-point, unidirectional, fixed-payload message
// link keyed by a 5-byte address. There is no acknowledgement, retry,
// ordering or loss detection: a send either lands or it doesn't.
package radio

import (
	"bytes"
	"errors"
	"fmt"
	"time"
)

// Link constants.
const (
	AddressSize    = 5
	PayloadSize    = 32 // largest payload a receiver will copy out
	RxQueueDepth   = 3  // receive FIFO depth; newer packets are dropped when full
	TransmitPeriod = 1000 * time.Millisecond
	DefaultChannel = 76
)

// DefaultAddress is the shared pipe address used by both ends.
const DefaultAddress = "00001"

// HelloPayload is the fixed transmitter payload: "Hello World" plus the
// terminating NUL, 12 bytes.
var HelloPayload = []byte("Hello World\x00")

var (
	ErrPayloadTooLarge = errors.New("radio: payload exceeds 32 bytes")
	ErrInvalidAddress  = errors.New("radio: address must be 5 bytes")
)

// Address identifies a pipe shared by a transmitter and a receiver.
type Address [AddressSize]byte

// ParseAddress converts a 5-character string into an Address.
func ParseAddress(s string) (Address, error) {
	var a Address
	if len(s) != AddressSize {
		return a, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	copy(a[:], s)
	return a, nil
}

// String returns the address as text when printable, hex otherwise.
func (a Address) String() string {
	for _, b := range a {
		if b < 0x20 || b > 0x7e {
			return fmt.Sprintf("%x", a[:])
		}
	}
	return string(a[:])
}

// Message is one received packet.
type Message struct {
	Data [PayloadSize]byte
	Len  int
}

// NewMessage copies up to PayloadSize bytes of p into a Message. Longer
// payloads are truncated.
func NewMessage(p []byte) Message {
	var m Message
	m.Len = copy(m.Data[:], p)
	return m
}

// Bytes returns the received bytes.
func (m Message) Bytes() []byte {
	return m.Data[:m.Len]
}

// Text returns the payload as a C string: everything up to the first NUL.
func (m Message) Text() string {
	b := m.Bytes()
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// Sender transmits payloads without waiting for acknowledgement.
type Sender interface {
	Send(payload []byte) error
}

// Poller is the receive side: a non-blocking check for a pending message.
type Poller interface {
	// Poll returns the oldest pending message, if any.
	Poll() (Message, bool)
}

// Link is both ends of a radio pipe. MemoryLink and MQTTLink implement it.
type Link interface {
	Sender
	Poller
}

func checkPayload(p []byte) error {
	if len(p) > PayloadSize {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(p))
	}
	return nil
}
