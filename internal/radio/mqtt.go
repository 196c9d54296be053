package radio

import (
	"fmt"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// TopicPrefix is the MQTT topic root for radio pipes.
const TopicPrefix = "motor/sentry/radio"

// Topic returns the MQTT topic carrying a pipe.
func Topic(channel int, addr Address) string {
	return fmt.Sprintf("%s/%d/%x", TopicPrefix, channel, addr[:])
}

// MQTTLink carries a pipe over an MQTT broker at QoS 0 (at-most-once),
// matching the no-ack semantics of the link.
type MQTTLink struct {
	client  paho.Client
	topic   string
	rx      chan Message
	log     zerolog.Logger
	dropped atomic.Int64
}

// DialMQTT connects to broker. When listen is true the link subscribes to the
// pipe and queues incoming packets for Poll.
func DialMQTT(broker, clientID string, channel int, addr Address, listen bool, log zerolog.Logger) (*MQTTLink, error) {
	l := newMQTTLink(Topic(channel, addr), log)

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)
	if listen {
		// Resubscribe on every (re)connect; the session is not persistent.
		opts.SetOnConnectHandler(func(c paho.Client) {
			l.subscribe(c)
		})
	}

	l.client = paho.NewClient(opts)
	token := l.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return l, nil
}

func newMQTTLink(topic string, log zerolog.Logger) *MQTTLink {
	return &MQTTLink{
		topic: topic,
		rx:    make(chan Message, RxQueueDepth),
		log:   log,
	}
}

// subscribe listens on the pipe topic. A failure is logged at error level
// since the receiver hears nothing until the next reconnect.
func (l *MQTTLink) subscribe(c paho.Client) error {
	var err error
	token := c.Subscribe(l.topic, 0, l.handle)
	if !token.WaitTimeout(10 * time.Second) {
		err = fmt.Errorf("subscribe %s: timeout", l.topic)
	} else if terr := token.Error(); terr != nil {
		err = fmt.Errorf("subscribe %s: %w", l.topic, terr)
	}
	if err != nil {
		l.log.Error().Err(err).Msg("radio receiver not listening")
		return err
	}
	l.log.Debug().Str("topic", l.topic).Msg("subscribed")
	return nil
}

// handle queues an incoming packet, dropping it if the queue is full.
func (l *MQTTLink) handle(_ paho.Client, msg paho.Message) {
	select {
	case l.rx <- NewMessage(msg.Payload()):
	default:
		l.dropped.Add(1)
	}
}

// Dropped returns the number of packets lost to a full receive queue.
func (l *MQTTLink) Dropped() int {
	return int(l.dropped.Load())
}

// Send publishes payload. It does not wait for the broker: the only errors
// are an oversized payload or an offline client.
func (l *MQTTLink) Send(payload []byte) error {
	if err := checkPayload(payload); err != nil {
		return err
	}
	if !l.client.IsConnected() {
		return fmt.Errorf("radio: not connected")
	}
	l.client.Publish(l.topic, 0, false, payload)
	return nil
}

// Poll returns the oldest queued message without blocking.
func (l *MQTTLink) Poll() (Message, bool) {
	select {
	case m := <-l.rx:
		return m, true
	default:
		return Message{}, false
	}
}

// Close disconnects from the broker.
func (l *MQTTLink) Close() error {
	l.client.Disconnect(1000)
	return nil
}
