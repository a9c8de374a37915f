package repository

import (
	"context"
	"encoding/json"

	"marketplace_chat_service/internal/chat/domain"

	"github.com/segmentio/kafka-go"
)

// ActivityProducer definition message lifecycle event stream for
// downstream consumers (analytics, moderation)
type ActivityProducer interface {
	Emit(ctx context.Context, ev domain.ActivityEvent) error
}

type kafkaActivityProducer struct {
	writer *kafka.Writer
}

// NewKafkaActivityProducer create an ActivityProducer on kafka
func NewKafkaActivityProducer(writer *kafka.Writer) ActivityProducer {
	return &kafkaActivityProducer{writer: writer}
}

func (p *kafkaActivityProducer) Emit(ctx context.Context, ev domain.ActivityEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.MessageID),
		Value: data,
	})
}
