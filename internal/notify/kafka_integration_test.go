//go:build integration

package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	id "credverify/pkg/domain"
	"credverify/pkg/testutil/containers"
)

func TestKafkaPublisherIntegration(t *testing.T) {
	kafka := containers.GetManager().GetRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	const topic = "verification.status.it"
	producer, err := kgo.NewClient(kgo.SeedBrokers(kafka.Broker), kgo.AllowAutoTopicCreation())
	require.NoError(t, err)
	defer producer.Close()

	require.NoError(t, EnsureTopic(ctx, producer, topic, 1, 1))
	require.NoError(t, EnsureTopic(ctx, producer, topic, 1, 1), "second creation is idempotent")

	subID := id.NewSubmissionID()
	NewKafkaPublisher(producer, topic, nil, nil).Publish(ctx, Event{
		Type:          EventStatusChanged,
		SubmissionID:  subID,
		OverallStatus: "partially_verified",
		OccurredAt:    time.Now(),
	})
	require.NoError(t, producer.Flush(ctx))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(kafka.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	var got Event
	for got.SubmissionID.IsNil() {
		fetches := consumer.PollFetches(ctx)
		require.Empty(t, fetches.Errors())
		fetches.EachRecord(func(r *kgo.Record) {
			require.NoError(t, json.Unmarshal(r.Value, &got))
		})
	}
	assert.Equal(t, subID, got.SubmissionID)
	assert.Equal(t, "partially_verified", got.OverallStatus)
}
