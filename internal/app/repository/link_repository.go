package repository

import (
	"context"
	"time"

	"github.com/sifan077/LinkMe/internal/app/model"
	"gorm.io/gorm"
)

// LinkRepository defines the data access contract for bookmarked links.
// Every mutation also bumps the updated_at of the folder the link is filed
// under, within the same transaction.
type LinkRepository interface {
	Create(ctx context.Context, link *model.Link) error
	GetByID(ctx context.Context, id string) (*model.Link, error)
	Update(ctx context.Context, link *model.Link) error
	Delete(ctx context.Context, link *model.Link, at time.Time) error
	ListByFolder(ctx context.Context, folderID string) ([]model.Link, error)
	ListByUser(ctx context.Context, userID string) ([]model.Link, error)
}

type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository returns a GORM-backed LinkRepository.
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *model.Link) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(link).Error; err != nil {
			return err
		}
		return touchFolder(tx, link.FolderID, link.UpdatedAt)
	})
}

func (r *linkRepository) GetByID(ctx context.Context, id string) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&link).Error; err != nil {
		return nil, translate(err, ErrLinkNotFound, nil)
	}
	return &link, nil
}

// Update patches the link and touches its (possibly new) folder only.
func (r *linkRepository) Update(ctx context.Context, link *model.Link) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Link{}).
			Where("id = ?", link.ID).
			Updates(map[string]interface{}{
				"title":      link.Title,
				"url":        link.URL,
				"keywords":   link.Keywords,
				"folder_id":  link.FolderID,
				"updated_at": link.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrLinkNotFound
		}
		return touchFolder(tx, link.FolderID, link.UpdatedAt)
	})
}

func (r *linkRepository) Delete(ctx context.Context, link *model.Link, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", link.ID).Delete(&model.Link{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrLinkNotFound
		}
		return touchFolder(tx, link.FolderID, at)
	})
}

func (r *linkRepository) ListByFolder(ctx context.Context, folderID string) ([]model.Link, error) {
	return r.list(ctx, "folder_id = ?", folderID)
}

func (r *linkRepository) ListByUser(ctx context.Context, userID string) ([]model.Link, error) {
	return r.list(ctx, "user_id = ?", userID)
}

func (r *linkRepository) list(ctx context.Context, query string, arg interface{}) ([]model.Link, error) {
	var result []model.Link
	if err := r.db.WithContext(ctx).
		Where(query, arg).
		Order("updated_at DESC").
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}
