package kafka

import (
	"context"
	"errors"

	"github.com/segmentio/kafka-go"

	"ms-dayreport/internal/logger"
)

type Consumer struct {
	reader *kafka.Reader
	logger *logger.Logger
}

func NewConsumer(brokers []string, topic, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, logger: log}
}

// Start consumes messages until the context is cancelled, passing each raw
// payload to the handler. Handler errors are logged and the loop continues.
func (c *Consumer) Start(ctx context.Context, handler func(ctx context.Context, value []byte) error) {
	c.logger.LogKafka("START", c.reader.Config().Topic, "consumer loop running")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				c.logger.LogKafka("STOP", c.reader.Config().Topic, "consumer loop stopped")
				return
			}
			c.logger.Error("KAFKA", "failed to read message: "+err.Error())
			continue
		}

		if err := handler(ctx, msg.Value); err != nil {
			c.logger.Error("KAFKA", "handler failed: "+err.Error())
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
