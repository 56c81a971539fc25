package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sifan077/LinkMe/internal/app/model"
	"github.com/sifan077/LinkMe/internal/app/repository"
	"github.com/sifan077/LinkMe/internal/infra/logger"
	"go.uber.org/zap"
)

// FolderService defines owner-scoped operations on folders.
type FolderService interface {
	CreateFolder(ctx context.Context, userID, name string) (*model.Folder, error)
	ListFolders(ctx context.Context, userID string) ([]model.Folder, error)
	RenameFolder(ctx context.Context, userID, folderID, name string) (*model.Folder, error)
	DeleteFolder(ctx context.Context, userID, folderID string) error
	GetFolderWithLinks(ctx context.Context, userID, folderID string) (*model.FolderWithLinks, error)
}

// FolderDeps groups dependencies required by the folder service.
type FolderDeps struct {
	Folders  repository.FolderRepository
	Links    repository.LinkRepository
	Activity ActivityPublisher
	Logger   *zap.Logger
	Now      func() time.Time
}

type folderService struct {
	folders  repository.FolderRepository
	links    repository.LinkRepository
	activity activityEmitter
	now      func() time.Time
}

// NewFolderService returns a FolderService backed by the given repositories.
func NewFolderService(deps FolderDeps) FolderService {
	s := &folderService{
		folders:  deps.Folders,
		links:    deps.Links,
		activity: activityEmitter{publisher: deps.Activity, logger: logger.OrNop(deps.Logger)},
		now:      deps.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ownedFolder loads a folder and checks it belongs to userID. Missing and
// foreign folders both yield ErrNotFoundOrUnauthorized.
func ownedFolder(ctx context.Context, folders repository.FolderRepository, userID, folderID string) (*model.Folder, error) {
	folder, err := folders.GetByID(ctx, folderID)
	if err != nil {
		if errors.Is(err, repository.ErrFolderNotFound) {
			return nil, ErrNotFoundOrUnauthorized
		}
		return nil, fmt.Errorf("load folder: %w", err)
	}
	if folder.UserID != userID {
		return nil, ErrNotFoundOrUnauthorized
	}
	return folder, nil
}

func (s *folderService) CreateFolder(ctx context.Context, userID, name string) (*model.Folder, error) {
	if err := validateFolderName(name); err != nil {
		return nil, err
	}

	if _, err := s.folders.GetByUserAndName(ctx, userID, name); err == nil {
		return nil, ErrDuplicateFolderName
	} else if !errors.Is(err, repository.ErrFolderNotFound) {
		return nil, fmt.Errorf("lookup folder name: %w", err)
	}

	now := s.now()
	folder := &model.Folder{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.folders.Create(ctx, folder); err != nil {
		if errors.Is(err, repository.ErrDuplicateFolder) {
			return nil, ErrDuplicateFolderName
		}
		return nil, fmt.Errorf("create folder: %w", err)
	}

	s.activity.emit(now, userID, model.ActivityFolderCreated, folder.ID, folder.Name)
	return folder, nil
}

func (s *folderService) ListFolders(ctx context.Context, userID string) ([]model.Folder, error) {
	folders, err := s.folders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return folders, nil
}

// RenameFolder allows renaming a folder to its own current name.
func (s *folderService) RenameFolder(ctx context.Context, userID, folderID, name string) (*model.Folder, error) {
	if err := validateFolderName(name); err != nil {
		return nil, err
	}

	folder, err := ownedFolder(ctx, s.folders, userID, folderID)
	if err != nil {
		return nil, err
	}

	existing, err := s.folders.GetByUserAndName(ctx, userID, name)
	switch {
	case err == nil && existing.ID != folder.ID:
		return nil, ErrDuplicateFolderName
	case err != nil && !errors.Is(err, repository.ErrFolderNotFound):
		return nil, fmt.Errorf("lookup folder name: %w", err)
	}

	now := s.now()
	if err := s.folders.Rename(ctx, folder.ID, name, now); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateFolder):
			return nil, ErrDuplicateFolderName
		case errors.Is(err, repository.ErrFolderNotFound):
			return nil, ErrNotFoundOrUnauthorized
		}
		return nil, fmt.Errorf("rename folder: %w", err)
	}

	previous := folder.Name
	folder.Name = name
	folder.UpdatedAt = now
	s.activity.emit(now, userID, model.ActivityFolderRenamed, folder.ID, previous+" -> "+name)
	return folder, nil
}

// DeleteFolder removes the folder together with all of its links.
func (s *folderService) DeleteFolder(ctx context.Context, userID, folderID string) error {
	folder, err := ownedFolder(ctx, s.folders, userID, folderID)
	if err != nil {
		return err
	}

	if err := s.folders.DeleteCascade(ctx, folder.ID); err != nil {
		if errors.Is(err, repository.ErrFolderNotFound) {
			return ErrNotFoundOrUnauthorized
		}
		return fmt.Errorf("delete folder: %w", err)
	}

	s.activity.emit(s.now(), userID, model.ActivityFolderDeleted, folder.ID, folder.Name)
	return nil
}

// GetFolderWithLinks returns nil, nil instead of an error when the folder is
// missing or belongs to another user.
func (s *folderService) GetFolderWithLinks(ctx context.Context, userID, folderID string) (*model.FolderWithLinks, error) {
	folder, err := ownedFolder(ctx, s.folders, userID, folderID)
	if err != nil {
		if errors.Is(err, ErrNotFoundOrUnauthorized) {
			return nil, nil
		}
		return nil, err
	}

	links, err := s.links.ListByFolder(ctx, folder.ID)
	if err != nil {
		return nil, fmt.Errorf("list folder links: %w", err)
	}
	if links == nil {
		links = []model.Link{}
	}

	return &model.FolderWithLinks{Folder: *folder, Links: links}, nil
}
