package repository

import (
	"context"
	"time"

	"github.com/sifan077/LinkMe/internal/app/model"
	"gorm.io/gorm"
)

// SessionRepository defines the data access contract for login sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	GetByToken(ctx context.Context, token string) (*model.Session, error)
	DeleteByToken(ctx context.Context, token string) (int64, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository returns a GORM-backed SessionRepository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *model.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	var session model.Session
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&session).Error; err != nil {
		return nil, translate(err, ErrSessionNotFound, nil)
	}
	return &session, nil
}

func (r *sessionRepository) DeleteByToken(ctx context.Context, token string) (int64, error) {
	result := r.db.WithContext(ctx).Where("token = ?", token).Delete(&model.Session{})
	return result.RowsAffected, result.Error
}

// DeleteExpired removes sessions whose expiry is at or before the cutoff.
func (r *sessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", before).Delete(&model.Session{})
	return result.RowsAffected, result.Error
}
