package kafka

import (
	"crypto/tls"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

// Config holds Kafka connection parameters.
type Config struct {
	ClientID      string
	ConsumerGroup string

	// SASL configuration for authentication.
	SASLMechanism string // "PLAIN" or "SCRAM-SHA-256" or "SCRAM-SHA-512"
	SASLUsername  string
	SASLPassword  string

	Brokers []string

	// RetryBackoff is the first wait before a consumer redelivers a message
	// whose handler failed. It doubles per attempt up to MaxRetryBackoff.
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration

	// TLS enables TLS for Kafka connections.
	TLS         bool
	SASLEnabled bool
}

// Validate checks the fields every client needs.
func (c Config) Validate() error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("kafka: at least one broker is required")
	}
	if c.SASLEnabled {
		if _, err := saslMechanism(c); err != nil {
			return err
		}
	}
	return nil
}

func saslMechanism(cfg Config) (sasl.Mechanism, error) {
	switch cfg.SASLMechanism {
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.SASLUsername, cfg.SASLPassword)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.SASLUsername, cfg.SASLPassword)
	case "PLAIN", "":
		return plain.Mechanism{Username: cfg.SASLUsername, Password: cfg.SASLPassword}, nil
	default:
		return nil, fmt.Errorf("kafka: unsupported SASL mechanism %q", cfg.SASLMechanism)
	}
}

func tlsConfig(cfg Config) *tls.Config {
	if !cfg.TLS {
		return nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}

// dialer returns nil when neither TLS nor SASL is configured.
func dialer(cfg Config) (*kafkago.Dialer, error) {
	if !cfg.TLS && !cfg.SASLEnabled {
		return nil, nil
	}
	d := &kafkago.Dialer{
		ClientID:  cfg.ClientID,
		Timeout:   10 * time.Second,
		DualStack: true,
		TLS:       tlsConfig(cfg),
	}
	if cfg.SASLEnabled {
		m, err := saslMechanism(cfg)
		if err != nil {
			return nil, err
		}
		d.SASLMechanism = m
	}
	return d, nil
}

// transport mirrors dialer for writers.
func transport(cfg Config) (*kafkago.Transport, error) {
	t := &kafkago.Transport{ClientID: cfg.ClientID, TLS: tlsConfig(cfg)}
	if cfg.SASLEnabled {
		m, err := saslMechanism(cfg)
		if err != nil {
			return nil, err
		}
		t.SASL = m
	}
	return t, nil
}
