package repository

import (
	"context"
	"time"

	"github.com/sifan077/LinkMe/internal/app/model"
	"gorm.io/gorm"
)

// FolderRepository defines the data access contract for folders.
type FolderRepository interface {
	Create(ctx context.Context, folder *model.Folder) error
	GetByID(ctx context.Context, id string) (*model.Folder, error)
	GetByUserAndName(ctx context.Context, userID, name string) (*model.Folder, error)
	ListByUser(ctx context.Context, userID string) ([]model.Folder, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Folder, error)
	Rename(ctx context.Context, id, name string, updatedAt time.Time) error
	DeleteCascade(ctx context.Context, id string) error
}

type folderRepository struct {
	db *gorm.DB
}

// NewFolderRepository returns a GORM-backed FolderRepository.
func NewFolderRepository(db *gorm.DB) FolderRepository {
	return &folderRepository{db: db}
}

func (r *folderRepository) Create(ctx context.Context, folder *model.Folder) error {
	return translate(r.db.WithContext(ctx).Create(folder).Error, nil, ErrDuplicateFolder)
}

func (r *folderRepository) GetByID(ctx context.Context, id string) (*model.Folder, error) {
	var folder model.Folder
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&folder).Error; err != nil {
		return nil, translate(err, ErrFolderNotFound, nil)
	}
	return &folder, nil
}

func (r *folderRepository) GetByUserAndName(ctx context.Context, userID, name string) (*model.Folder, error) {
	var folder model.Folder
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		First(&folder).Error; err != nil {
		return nil, translate(err, ErrFolderNotFound, nil)
	}
	return &folder, nil
}

func (r *folderRepository) ListByUser(ctx context.Context, userID string) ([]model.Folder, error) {
	var result []model.Folder
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *folderRepository) ListByIDs(ctx context.Context, ids []string) ([]model.Folder, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var result []model.Folder
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *folderRepository) Rename(ctx context.Context, id, name string, updatedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Folder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":       name,
			"updated_at": updatedAt,
		})

	if result.Error != nil {
		return translate(result.Error, nil, ErrDuplicateFolder)
	}
	if result.RowsAffected == 0 {
		return ErrFolderNotFound
	}
	return nil
}

// DeleteCascade removes the folder and every link filed under it in one transaction.
func (r *folderRepository) DeleteCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("folder_id = ?", id).Delete(&model.Link{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.Folder{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrFolderNotFound
		}
		return nil
	})
}

// touchFolder bumps a folder's updated_at inside an existing transaction.
// A folder that vanished concurrently is not an error.
func touchFolder(tx *gorm.DB, folderID string, at time.Time) error {
	return tx.Model(&model.Folder{}).
		Where("id = ?", folderID).
		Update("updated_at", at).Error
}
