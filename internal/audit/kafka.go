package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaStore forwards audit events to a Kafka topic for downstream consumers.
// It satisfies Store but is write-only; pair it with a queryable store when
// the admin API needs to read the trail back.
type KafkaStore struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaStore connects to the given seed brokers. The publisher is
// fire-and-forget: produce errors surface through the delivery callback log,
// not the request path.
func NewKafkaStore(brokers []string, topic string, logger *slog.Logger) (*KafkaStore, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	return &KafkaStore{client: client, topic: topic, logger: logger}, nil
}

func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(strconv.FormatInt(event.ActorID, 10)),
		Value: payload,
	}
	s.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			s.logger.Warn("audit event delivery failed",
				"action", event.Action,
				"error", err,
			)
		}
	})
	return nil
}

// ListByActor is unsupported on the Kafka sink; the trail is consumed
// downstream.
func (s *KafkaStore) ListByActor(context.Context, int64) ([]Event, error) {
	return nil, fmt.Errorf("kafka audit store is write-only")
}

func (s *KafkaStore) Close() {
	s.client.Close()
}
