package repository

import (
	"context"

	"github.com/sifan077/LinkMe/internal/app/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// ActivityRepository defines the data access contract for the activity log.
type ActivityRepository interface {
	Create(ctx context.Context, event *model.ActivityEvent) error
	ListByUser(ctx context.Context, userID string, limit int) ([]model.ActivityEvent, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository returns a GORM-backed ActivityRepository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

// Create stores the event. Redelivered events with a known ID are ignored.
func (r *activityRepository) Create(ctx context.Context, event *model.ActivityEvent) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event).Error
}

func (r *activityRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.ActivityEvent, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	var result []model.ActivityEvent
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}
