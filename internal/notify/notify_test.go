package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	id "credverify/pkg/domain"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, e Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func TestChannelPublisherDropsWhenFull(t *testing.T) {
	p := NewChannelPublisher(1, nil)
	ev := Event{Type: EventStatusChanged, SubmissionID: id.NewSubmissionID()}
	p.Publish(context.Background(), ev)
	p.Publish(context.Background(), ev)
	assert.Equal(t, int64(1), p.Dropped())
}

func TestWorkerDeliversAndSurvivesErrors(t *testing.T) {
	p := NewChannelPublisher(4, nil)
	n := &recordingNotifier{err: errors.New("smtp down")}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewWorker(p.Events(), n, nil).Run(ctx) }()

	p.Publish(ctx, Event{Type: EventStatusChanged, SubmissionID: id.NewSubmissionID()})
	p.Publish(ctx, Event{Type: EventReviewResolved, SubmissionID: id.NewSubmissionID()})

	require.Eventually(t, func() bool { return n.count() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) Produce(_ context.Context, r *kgo.Record, promise func(*kgo.Record, error)) {
	f.records = append(f.records, r)
	promise(r, f.err)
}

func TestKafkaPublisher(t *testing.T) {
	subID := id.NewSubmissionID()
	ev := Event{Type: EventStatusChanged, SubmissionID: subID, OverallStatus: "verified"}

	t.Run("keys records by submission", func(t *testing.T) {
		fp := &fakeProducer{}
		newKafkaPublisher(fp, "verification.status", nil, nil).Publish(context.Background(), ev)
		require.Len(t, fp.records, 1)
		assert.Equal(t, "verification.status", fp.records[0].Topic)
		assert.Equal(t, subID.String(), string(fp.records[0].Key))

		var decoded Event
		require.NoError(t, json.Unmarshal(fp.records[0].Value, &decoded))
		assert.Equal(t, "verified", decoded.OverallStatus)
	})

	t.Run("delivery failure is counted, not returned", func(t *testing.T) {
		failed := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_notify_failed_total"})
		fp := &fakeProducer{err: errors.New("broker unavailable")}
		newKafkaPublisher(fp, "t", nil, failed).Publish(context.Background(), ev)
		assert.Equal(t, 1.0, testutil.ToFloat64(failed))
	})
}
