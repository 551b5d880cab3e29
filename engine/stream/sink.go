package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/smoothie/common"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// DefaultTopic is the MQTT topic frames are published on when none is configured.
const DefaultTopic = "smoothie/frames"

var (
	// ErrSinkClosed is returned by Publish after Close.
	ErrSinkClosed = errors.New("stream: sink closed")

	// ErrPublishTimeout is returned when the broker does not acknowledge a publish in time.
	ErrPublishTimeout = errors.New("stream: publish timed out")
)

// Sink receives one Frame per rendered snapshot.
type Sink interface {
	// Publish sends f. Implementations must not retain f.Primitives after returning.
	//
	// Parameters:
	//   - ctx: bounds how long Publish may block
	//   - f: the frame to send
	//
	// Returns:
	//   - error: an error if the frame could not be sent
	Publish(ctx context.Context, f Frame) error

	// Close releases the sink. Publish fails with ErrSinkClosed afterwards.
	//
	// Returns:
	//   - error: an error if the underlying transport failed to close
	Close() error
}

// SinkFunc adapts a function to a Sink with a no-op Close.
type SinkFunc func(ctx context.Context, f Frame) error

func (fn SinkFunc) Publish(ctx context.Context, f Frame) error {
	return fn(ctx, f)
}

func (fn SinkFunc) Close() error {
	return nil
}

// Publisher is the part of mqtt.Client the sink uses.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type mqttSink struct {
	mu     *sync.Mutex
	client Publisher
	closed bool

	topic    string
	qos      byte
	retained bool
	timeout  time.Duration

	// disconnectOnClose is set when the sink created the client itself.
	disconnectOnClose bool

	logger zerolog.Logger
}

var _ Sink = &mqttSink{}

// NewMQTTSink creates a Sink publishing marshalled frames through client. Panics if client is nil.
//
// Parameters:
//   - client: a connected MQTT client (or anything with its Publish method)
//   - options: functional options to configure the sink
//
// Returns:
//   - Sink: the sink
func NewMQTTSink(client Publisher, options ...MQTTSinkOption) Sink {
	if client == nil {
		panic("stream: NewMQTTSink requires a non-nil client")
	}
	s := &mqttSink{
		mu:      &sync.Mutex{},
		client:  client,
		topic:   DefaultTopic,
		timeout: 5 * time.Second,
		logger:  common.Logger().With().Str("component", "stream").Logger(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// DialMQTT connects to broker and returns a Sink that disconnects the client on Close.
//
// Parameters:
//   - ctx: bounds the connection attempt
//   - broker: the broker URL, e.g. tcp://localhost:1883
//   - clientID: the MQTT client id
//   - username, password: credentials, empty to connect anonymously
//   - options: functional options to configure the sink
//
// Returns:
//   - Sink: the connected sink
//   - error: an error if the connection failed
func DialMQTT(ctx context.Context, broker, clientID, username, password string, options ...MQTTSinkOption) (Sink, error) {
	logger := common.Logger().With().Str("component", "stream").Logger()
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetUsername(username).
		SetPassword(password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(mqtt.Client) {
			logger.Info().Str("broker", broker).Msg("mqtt connected")
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warn().Err(err).Str("broker", broker).Msg("mqtt connection lost")
		})
	client := mqtt.NewClient(opts)

	if err := waitToken(ctx, client.Connect()); err != nil {
		return nil, fmt.Errorf("stream: connect %s: %w", broker, err)
	}

	s := NewMQTTSink(client, options...).(*mqttSink)
	s.disconnectOnClose = true
	return s, nil
}

func (s *mqttSink) Publish(ctx context.Context, f Frame) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrSinkClosed
	}

	payload, err := f.MarshalBinary()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := waitToken(ctx, s.client.Publish(s.topic, s.qos, s.retained, payload)); err != nil {
		return fmt.Errorf("stream: publish seq %d to %s: %w", f.Seq, s.topic, err)
	}
	return nil
}

func (s *mqttSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if d, ok := s.client.(interface{ Disconnect(quiesce uint) }); ok && s.disconnectOnClose {
		d.Disconnect(250)
		s.logger.Debug().Msg("mqtt disconnected")
	}
	return nil
}

// waitToken blocks until token completes or ctx is done.
func waitToken(ctx context.Context, token mqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrPublishTimeout
		}
		return ctx.Err()
	}
}
