// Package gateway contains adapters for external message queues. The fax
// gateway is an out-of-process service consuming dispatch requests from a
// Kafka topic and reporting outcomes through the HTTP callback boundary.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/votehq/turnout-backend/internal/services"
)

// KafkaFaxGateway publishes fax dispatch requests to the gateway topic.
// The message key is the grouping destination, so all faxes to one line are
// partitioned together and delivered in order.
type KafkaFaxGateway struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaFaxGateway constructs a gateway publisher for the given brokers
// and topic.
func NewKafkaFaxGateway(brokers []string, topic string) (*KafkaFaxGateway, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("fax gateway requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("fax gateway requires a topic")
	}
	return &KafkaFaxGateway{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topic: topic,
	}, nil
}

// Publish implements services.FaxGateway.
func (g *KafkaFaxGateway) Publish(ctx context.Context, msg services.FaxMessage, groupKey string) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return g.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(groupKey),
		Value: payload,
		Time:  time.Now().UTC(),
	})
}

// Close flushes and closes the underlying writer.
func (g *KafkaFaxGateway) Close() error {
	return g.writer.Close()
}
