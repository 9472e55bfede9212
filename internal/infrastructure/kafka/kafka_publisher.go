package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nexaline/comp-service/internal/domain"
	"github.com/segmentio/kafka-go"
)

type DefaultKafkaPublisher struct {
	writer *kafka.Writer
}

func NewDefaultKafkaPublisher(brokers []string) *DefaultKafkaPublisher {
	return &DefaultKafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (k *DefaultKafkaPublisher) Publish(topic string, msgs ...domain.Message) error {
	var km []kafka.Message
	for _, m := range msgs {
		km = append(km, kafka.Message{
			Key:   m.Key,
			Value: m.Value,
			Time:  time.Now(),
			Topic: topic,
		})
	}

	return k.writer.WriteMessages(context.Background(), km...)
}

func (k *DefaultKafkaPublisher) PublishCommission(topic string, event CommissionEvent) error {
	v, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return k.Publish(topic, domain.Message{Key: []byte(event.DistributorID), Value: v})
}

// BatchPublishCommissions publishes a period's line items in one write.
func (k *DefaultKafkaPublisher) BatchPublishCommissions(topic string, events []CommissionEvent) error {
	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(events))
	timestamp := time.Now()

	for _, event := range events {
		v, err := json.Marshal(event)
		if err != nil {
			return err
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(event.DistributorID),
			Value: v,
			Time:  timestamp,
			Topic: topic,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return k.writer.WriteMessages(ctx, messages...)
}

func (k *DefaultKafkaPublisher) PublishPayout(topic string, event PayoutEvent) error {
	v, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return k.Publish(topic, domain.Message{Key: []byte(event.DistributorID), Value: v})
}
