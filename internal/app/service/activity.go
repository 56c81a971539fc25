package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/sifan077/LinkMe/internal/app/model"
	"go.uber.org/zap"
)

// ActivityPublisher delivers activity events to the event stream.
type ActivityPublisher interface {
	Publish(event model.ActivityEvent) error
}

// activityEmitter publishes best-effort activity events; failures are logged
// and never surface to the caller.
type activityEmitter struct {
	publisher ActivityPublisher
	logger    *zap.Logger
}

func (e activityEmitter) emit(at time.Time, userID, eventType, subjectID, detail string) {
	if e.publisher == nil {
		return
	}
	event := model.ActivityEvent{
		ID:         uuid.NewString(),
		UserID:     userID,
		Type:       eventType,
		SubjectID:  subjectID,
		Detail:     detail,
		OccurredAt: at,
	}
	if err := e.publisher.Publish(event); err != nil {
		e.logger.Warn("failed to publish activity event",
			zap.String("type", eventType),
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
