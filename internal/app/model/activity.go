package model

import "time"

// ActivityEvent records a mutation performed by a user. It is published to
// NATS JetStream and persisted by the activity consumer.
type ActivityEvent struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	UserID     string    `json:"user_id" gorm:"size:36;not null;index:idx_activity_user_time,priority:1"`
	Type       string    `json:"type" gorm:"size:32;not null"`
	SubjectID  string    `json:"subject_id" gorm:"size:36"`
	Detail     string    `json:"detail" gorm:"type:text"`
	OccurredAt time.Time `json:"occurred_at" gorm:"not null;index:idx_activity_user_time,priority:2,sort:desc"`
}

// Activity event types.
const (
	ActivitySignedUp      = "user.signed_up"
	ActivityLoggedIn      = "session.created"
	ActivityLoggedOut     = "session.revoked"
	ActivityFolderCreated = "folder.created"
	ActivityFolderRenamed = "folder.renamed"
	ActivityFolderDeleted = "folder.deleted"
	ActivityLinkCreated   = "link.created"
	ActivityLinkUpdated   = "link.updated"
	ActivityLinkDeleted   = "link.deleted"
)

const (
	ActivityStreamName     = "ACTIVITY"
	ActivityStreamSubject  = "activity.events"
	ActivityConsumerName   = "activity-recorder"
	ActivityStreamMaxBytes = 1024 * 1024 * 100 // 100MB
)
