package stream

import (
	"time"

	"github.com/rs/zerolog"
)

// MQTTSinkOption is a functional option for configuring an MQTT sink.
type MQTTSinkOption func(s *mqttSink)

// WithTopic sets the topic frames are published on.
//
// Parameters:
//   - topic: the MQTT topic (DefaultTopic if empty)
//
// Returns:
//   - MQTTSinkOption: option function to apply
func WithTopic(topic string) MQTTSinkOption {
	return func(s *mqttSink) {
		if topic != "" {
			s.topic = topic
		}
	}
}

// WithQoS sets the MQTT quality of service. Values above 2 are clamped to 2.
//
// Parameters:
//   - qos: 0 (default), 1 or 2
//
// Returns:
//   - MQTTSinkOption: option function to apply
func WithQoS(qos byte) MQTTSinkOption {
	return func(s *mqttSink) {
		s.qos = min(qos, 2)
	}
}

// WithRetained marks published frames as retained so late subscribers get the latest one.
//
// Returns:
//   - MQTTSinkOption: option function to apply
func WithRetained() MQTTSinkOption {
	return func(s *mqttSink) {
		s.retained = true
	}
}

// WithPublishTimeout bounds how long Publish waits for the broker.
//
// Parameters:
//   - d: the timeout (ignored if <= 0)
//
// Returns:
//   - MQTTSinkOption: option function to apply
func WithPublishTimeout(d time.Duration) MQTTSinkOption {
	return func(s *mqttSink) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger overrides the logger inherited from common.Logger.
//
// Parameters:
//   - l: the logger to use
//
// Returns:
//   - MQTTSinkOption: option function to apply
func WithLogger(l zerolog.Logger) MQTTSinkOption {
	return func(s *mqttSink) {
		s.logger = l.With().Str("component", "stream").Logger()
	}
}
