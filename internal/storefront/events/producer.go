// Package events publishes payment lifecycle events to Kafka. The broker is
// optional infrastructure: the storefront runs fine without one, downstream
// consumers (accounting, notifications) just see nothing.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"

	"github.com/ferremas-cl/storefront/internal/storefront/core/ports"
)

const defaultTopic = "payments_confirmed"

// Producer implements ports.EventPublisher over a Kafka sync producer.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

var _ ports.EventPublisher = (*Producer)(nil)

// NewProducer connects a sync producer to the given brokers.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	if topic == "" {
		topic = defaultTopic
	}

	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("connect kafka producer: %w", err)
	}
	return &Producer{producer: producer, topic: topic}, nil
}

// PaymentConfirmed publishes a terminal confirmation outcome, keyed by buy
// order so per-order events stay in partition order.
func (p *Producer) PaymentConfirmed(ctx context.Context, evt ports.PaymentEvent) error {
	raw, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal payment event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(evt.BuyOrder),
		Value: sarama.ByteEncoder(raw),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("publish payment event: %w", err)
	}

	slog.DebugContext(ctx, "payment event published",
		"topic", p.topic, "partition", partition, "offset", offset, "status", evt.Status)
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
