package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// pushMessage is the payload handed to the push transport via Kafka.
type pushMessage struct {
	ID       string    `json:"id"`
	Token    string    `json:"token"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	QueuedAt time.Time `json:"queued_at"`
}

// KafkaDispatcher publishes notifications to the topic the push transport
// consumes.
type KafkaDispatcher struct {
	writer *kafka.Writer
}

// NewKafkaDispatcher builds a dispatcher writing to the given brokers/topic.
func NewKafkaDispatcher(brokers []string, topic string) *KafkaDispatcher {
	return &KafkaDispatcher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (d *KafkaDispatcher) Send(ctx context.Context, token, title, body string) error {
	msg := pushMessage{
		ID:       uuid.NewString(),
		Token:    token,
		Title:    title,
		Body:     body,
		QueuedAt: time.Now().UTC(),
	}

	value, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	if err := d.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(token),
		Value: value,
	}); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
