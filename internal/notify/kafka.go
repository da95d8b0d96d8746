package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// producer is the subset of *kgo.Client used for publishing.
type producer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
}

// KafkaPublisher produces events asynchronously, keyed by submission so one
// submission's events stay ordered within a partition.
type KafkaPublisher struct {
	client producer
	topic  string
	logger *slog.Logger
	failed prometheus.Counter
}

// NewKafkaPublisher wraps a franz-go client. failed may be nil.
func NewKafkaPublisher(client *kgo.Client, topic string, logger *slog.Logger, failed prometheus.Counter) *KafkaPublisher {
	return newKafkaPublisher(client, topic, logger, failed)
}

func newKafkaPublisher(client producer, topic string, logger *slog.Logger, failed prometheus.Counter) *KafkaPublisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &KafkaPublisher{client: client, topic: topic, logger: logger, failed: failed}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) {
	value, err := json.Marshal(event)
	if err != nil {
		p.fail(ctx, event, err)
		return
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.SubmissionID.String()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	p.client.Produce(context.WithoutCancel(ctx), record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.fail(ctx, event, err)
		}
	})
}

func (p *KafkaPublisher) fail(ctx context.Context, event Event, err error) {
	if p.failed != nil {
		p.failed.Inc()
	}
	p.logger.WarnContext(ctx, "failed to publish notification",
		"type", event.Type,
		"submission_id", event.SubmissionID.String(),
		"error", err,
	)
}

// EnsureTopic creates the notification topic if it does not exist.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32, replication int16) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, partitions, replication, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}
