package service

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sifan077/LinkMe/internal/app/model"
)

// NATSActivityPublisher publishes activity events to NATS JetStream.
type NATSActivityPublisher struct {
	js nats.JetStreamContext
}

// NewNATSActivityPublisher creates a new activity event publisher.
func NewNATSActivityPublisher(js nats.JetStreamContext) *NATSActivityPublisher {
	return &NATSActivityPublisher{js: js}
}

// Publish publishes an activity event to the stream. The event ID doubles as
// the JetStream message ID so that retried publishes are deduplicated.
func (p *NATSActivityPublisher) Publish(event model.ActivityEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = p.js.Publish(model.ActivityStreamSubject, data, nats.MsgId(event.ID))
	return err
}
