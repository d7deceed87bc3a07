package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

type MessageHandler func(ctx context.Context, key, value []byte) error

// messageReader is the part of *kafka.Reader the consumer loop uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads one topic in a consumer group. Every fetched message is
// committed after the handler returns, whether or not it succeeded.
type Consumer struct {
	reader messageReader
	topic  string
	log    *slog.Logger
}

func NewConsumer(brokers []string, topic, groupID string, log *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return newConsumer(reader, topic, log)
}

func newConsumer(reader messageReader, topic string, log *slog.Logger) *Consumer {
	return &Consumer{
		reader: reader,
		topic:  topic,
		log:    log.With("component", "kafka-consumer", "topic", topic),
	}
}

// Consume blocks until ctx is cancelled.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	const op = "Consumer.Consume"
	log := c.log.With("op", op)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				// reader closed
				return err
			}
			log.Error("fetch failed", "err", err)
			continue
		}

		msgLog := log.With("partition", msg.Partition, "offset", msg.Offset)
		if err := handler(ctx, msg.Key, msg.Value); err != nil {
			msgLog.Error("handler failed, committing anyway", "err", err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			msgLog.Error("commit failed", "err", err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
