package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Sink receives placed orders. Delivery is best effort.
type Sink interface {
	Deliver(ctx context.Context, o Order) error
}

// LogSink records orders in the application log.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Deliver(_ context.Context, o Order) error {
	s.logger.Info("order handed off",
		zap.String("reference", o.Reference),
		zap.Int("items", o.Items),
		zap.String("total", o.Total.StringFixed(2)),
	)
	return nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaAnnouncer publishes each order as JSON keyed by its reference.
type KafkaAnnouncer struct {
	writer messageWriter
}

func NewKafkaAnnouncer(topic string, brokers ...string) *KafkaAnnouncer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaAnnouncer{writer: w}
}

func (k *KafkaAnnouncer) Deliver(ctx context.Context, o Order) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("kafka: marshal order: %w", err)
	}
	if err := k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(o.Reference), Value: payload}); err != nil {
		return fmt.Errorf("kafka: write order %s: %w", o.Reference, err)
	}
	return nil
}

func (k *KafkaAnnouncer) Close() error {
	return k.writer.Close()
}

// Fanout delivers to every sink and joins their errors.
type Fanout []Sink

func (f Fanout) Deliver(ctx context.Context, o Order) error {
	var errs []error
	for _, s := range f {
		if err := s.Deliver(ctx, o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
