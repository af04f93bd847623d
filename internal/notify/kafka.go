package notify

import (
	"context"
	"encoding/json"
	"time"

	skafka "github.com/segmentio/kafka-go"
)

// Writer defines the subset of segmentio kafka.Writer we need. This makes
// the producer testable.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// ShipmentEvent is the payload published for each transition notification.
type ShipmentEvent struct {
	ShipmentID string `json:"shipment_id"`
	Message    string `json:"message"`
	EmittedAt  string `json:"emitted_at"`
}

// KafkaNotifier publishes transition notifications to a Kafka topic, keyed
// by shipment id so events for one shipment stay in order on one partition.
type KafkaNotifier struct {
	writer Writer
}

// NewKafkaNotifier creates a notifier that writes to the given broker/topic.
func NewKafkaNotifier(brokerURL, topic string) *KafkaNotifier {
	w := &skafka.Writer{
		Addr:     skafka.TCP(brokerURL),
		Topic:    topic,
		Balancer: &skafka.LeastBytes{},
	}
	return &KafkaNotifier{writer: w}
}

// NewKafkaNotifierWithWriter allows injecting a test writer.
func NewKafkaNotifierWithWriter(w Writer) *KafkaNotifier {
	return &KafkaNotifier{writer: w}
}

func (n *KafkaNotifier) Notify(ctx context.Context, shipmentID, message string) error {
	ev := ShipmentEvent{
		ShipmentID: shipmentID,
		Message:    message,
		EmittedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.writer.WriteMessages(ctx, skafka.Message{Key: []byte(shipmentID), Value: b})
}

// Close closes the underlying writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
