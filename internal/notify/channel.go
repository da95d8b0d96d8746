package notify

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// ChannelPublisher buffers events in memory for a Worker. When the buffer is
// full the event is dropped and counted.
type ChannelPublisher struct {
	ch      chan Event
	dropped atomic.Int64
	logger  *slog.Logger
}

func NewChannelPublisher(buffer int, logger *slog.Logger) *ChannelPublisher {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ChannelPublisher{ch: make(chan Event, buffer), logger: logger}
}

func (p *ChannelPublisher) Publish(ctx context.Context, event Event) {
	select {
	case p.ch <- event:
	default:
		p.dropped.Add(1)
		p.logger.WarnContext(ctx, "notification buffer full, dropping event",
			"type", event.Type,
			"submission_id", event.SubmissionID.String(),
		)
	}
}

// Events exposes the buffer to a Worker.
func (p *ChannelPublisher) Events() <-chan Event { return p.ch }

// Dropped reports how many events were discarded.
func (p *ChannelPublisher) Dropped() int64 { return p.dropped.Load() }

// Worker drains a ChannelPublisher into a Notifier.
type Worker struct {
	events   <-chan Event
	notifier Notifier
	logger   *slog.Logger
}

func NewWorker(events <-chan Event, notifier Notifier, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Worker{events: events, notifier: notifier, logger: logger}
}

// Run delivers events until ctx is cancelled. Delivery errors are logged.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.events:
			if err := w.notifier.Notify(ctx, event); err != nil {
				w.logger.WarnContext(ctx, "notification delivery failed",
					"type", event.Type,
					"submission_id", event.SubmissionID.String(),
					"error", err,
				)
			}
		}
	}
}

// LogNotifier writes events to the log. It stands in for the external
// email/webhook notifier.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, event Event) error {
	if n.Logger == nil {
		return nil
	}
	n.Logger.InfoContext(ctx, "submitter notification",
		"type", event.Type,
		"submission_id", event.SubmissionID.String(),
		"overall_status", event.OverallStatus,
		"trigger", event.Trigger,
	)
	return nil
}
