package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sifan077/LinkMe/internal/app/model"
	apprepository "github.com/sifan077/LinkMe/internal/app/repository"
	"go.uber.org/zap"
)

const (
	activityFetchBatch   = 10
	activityFetchMaxWait = 5 * time.Second
	activityRetryDelay   = time.Second
)

// pullSubscription is the part of *nats.Subscription the fetch loop uses.
type pullSubscription interface {
	Fetch(batch int, opts ...nats.PullOpt) ([]*nats.Msg, error)
	Unsubscribe() error
}

// ActivityConsumer consumes activity events from NATS JetStream and stores them.
type ActivityConsumer struct {
	js         nats.JetStreamContext
	logger     *zap.Logger
	repo       apprepository.ActivityRepository
	retryDelay time.Duration
}

// NewActivityConsumer creates a new activity event consumer.
func NewActivityConsumer(js nats.JetStreamContext, logger *zap.Logger, repo apprepository.ActivityRepository) *ActivityConsumer {
	return &ActivityConsumer{js: js, logger: logger, repo: repo, retryDelay: activityRetryDelay}
}

// Start ensures the stream and durable consumer exist, then consumes in the
// background until ctx is cancelled.
func (c *ActivityConsumer) Start(ctx context.Context) error {
	// Create stream if not exists
	if _, err := c.js.StreamInfo(model.ActivityStreamName); err != nil {
		_, err = c.js.AddStream(&nats.StreamConfig{
			Name:     model.ActivityStreamName,
			Subjects: []string{model.ActivityStreamSubject},
			MaxBytes: model.ActivityStreamMaxBytes,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
	}

	// Create consumer if not exists
	if _, err := c.js.ConsumerInfo(model.ActivityStreamName, model.ActivityConsumerName); err != nil {
		_, err = c.js.AddConsumer(model.ActivityStreamName, &nats.ConsumerConfig{
			Durable:   model.ActivityConsumerName,
			AckPolicy: nats.AckExplicitPolicy,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}
	}

	sub, err := c.js.PullSubscribe(model.ActivityStreamSubject, model.ActivityConsumerName,
		nats.Bind(model.ActivityStreamName, model.ActivityConsumerName))
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	go c.consume(ctx, sub)
	return nil
}

func (c *ActivityConsumer) consume(ctx context.Context, sub pullSubscription) {
	defer func() {
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			c.logger.Warn("failed to unsubscribe activity consumer", zap.Error(err))
		}
	}()

	for {
		if ctx.Err() != nil {
			c.logger.Info("activity consumer stopped")
			return
		}

		msgs, err := sub.Fetch(activityFetchBatch, nats.MaxWait(activityFetchMaxWait))
		if err != nil && !errors.Is(err, nats.ErrTimeout) {
			c.logger.Error("failed to fetch activity events", zap.Error(err))
			// Back off while the connection is down or reconnecting.
			select {
			case <-ctx.Done():
			case <-time.After(c.retryDelay):
			}
			continue
		}

		for _, msg := range msgs {
			if err := c.process(ctx, msg.Data); err != nil {
				c.logger.Error("failed to process activity event", zap.Error(err))
				_ = msg.Nak()
				continue
			}
			_ = msg.Ack()
		}
	}
}

// process decodes one message payload and stores the event.
func (c *ActivityConsumer) process(ctx context.Context, data []byte) error {
	var event model.ActivityEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("unmarshal activity event: %w", err)
	}
	if event.ID == "" || event.UserID == "" {
		return fmt.Errorf("activity event missing id or user_id")
	}

	if err := c.repo.Create(ctx, &event); err != nil {
		return fmt.Errorf("store activity event %s: %w", event.ID, err)
	}

	c.logger.Debug("activity event stored",
		zap.String("id", event.ID),
		zap.String("type", event.Type),
		zap.String("user_id", event.UserID),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}
