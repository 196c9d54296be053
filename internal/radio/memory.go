package radio

// MemoryLink is an in-process link: whatever is sent can be polled. It has
// the same drop-when-full receive queue as the MQTT link.
type MemoryLink struct {
	rx chan Message

	// Dropped counts packets lost to a full receive queue.
	Dropped int
}

// NewMemoryLink creates a link with an RxQueueDepth receive queue.
func NewMemoryLink() *MemoryLink {
	return &MemoryLink{rx: make(chan Message, RxQueueDepth)}
}

// Send enqueues payload, dropping it if the queue is full.
func (l *MemoryLink) Send(payload []byte) error {
	if err := checkPayload(payload); err != nil {
		return err
	}
	select {
	case l.rx <- NewMessage(payload):
	default:
		l.Dropped++
	}
	return nil
}

// Poll returns the oldest queued message without blocking.
func (l *MemoryLink) Poll() (Message, bool) {
	select {
	case m := <-l.rx:
		return m, true
	default:
		return Message{}, false
	}
}
