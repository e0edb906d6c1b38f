package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/logging"
	"github.com/landgauge/landgauge/pkg/errors"
)

// ErrPublisherClosed is returned when publishing after Close.
var ErrPublisherClosed = errors.New(errors.CodeMessageQueueError, "publisher closed")

// Publisher emits domain events.  The topic is a suffix; the configured
// prefix is applied before the message is written.
type Publisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
	Close() error
}

// messageWriter abstracts kafka.Writer for testing.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type publisher struct {
	writer      messageWriter
	topicPrefix string
	logger      logging.Logger
	closed      atomic.Bool
	sent        atomic.Int64
	failed      atomic.Int64
}

// NewPublisher builds a Kafka-backed publisher.  When cfg.Enabled is false
// it returns a no-op publisher so callers need no conditional wiring.
func NewPublisher(cfg Config, log logging.Logger) (Publisher, error) {
	if !cfg.Enabled {
		return NopPublisher{}, nil
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CodeMessageQueueError, "invalid kafka config")
	}

	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Balancer:     &kafkago.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafkago.RequireOne,
		Compression:  kafkago.Snappy,
	}
	return &publisher{
		writer:      writer,
		topicPrefix: cfg.TopicPrefix,
		logger:      log,
	}, nil
}

func (p *publisher) Publish(ctx context.Context, topic string, key string, event any) error {
	if p.closed.Load() {
		return ErrPublisherClosed
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "marshal event").WithDetail(topic)
	}

	msg := kafkago.Message{
		Topic: p.topicPrefix + "." + topic,
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.failed.Add(1)
		return errors.Wrap(err, errors.CodeMessageQueueError, "publish event").WithDetail(topic)
	}

	p.sent.Add(1)
	p.logger.Debug("event published",
		logging.String("topic", msg.Topic),
		logging.Int("bytes", len(payload)))
	return nil
}

func (p *publisher) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("kafka publisher closed", logging.Int64("sent", p.sent.Load()))
	return err
}

// NopPublisher discards events.  Used when event publishing is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }
func (NopPublisher) Close() error                                       { return nil }
