package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sifan077/LinkMe/internal/app/model"
	"github.com/sifan077/LinkMe/internal/app/repository"
	"github.com/sifan077/LinkMe/internal/infra/logger"
	"go.uber.org/zap"
)

// LinkService defines owner-scoped operations on links.
type LinkService interface {
	CreateLink(ctx context.Context, userID string, input LinkInput) (*model.Link, error)
	UpdateLink(ctx context.Context, userID, linkID string, input LinkInput) (*model.Link, error)
	DeleteLink(ctx context.Context, userID, linkID string) error
	ListFolderLinks(ctx context.Context, userID, folderID string) ([]model.Link, error)
	SearchLinks(ctx context.Context, userID, term string) ([]model.LinkWithFolder, error)
	ListUserLinks(ctx context.Context, userID string) ([]model.Link, error)
}

// LinkInput captures the fields written on create and update. A nil
// Keywords slice is stored as an empty list.
type LinkInput struct {
	FolderID string
	Title    string
	URL      string
	Keywords []string
}

// LinkDeps groups dependencies required by the link service.
type LinkDeps struct {
	Folders  repository.FolderRepository
	Links    repository.LinkRepository
	Activity ActivityPublisher
	Logger   *zap.Logger
	Now      func() time.Time
}

type linkService struct {
	folders  repository.FolderRepository
	links    repository.LinkRepository
	activity activityEmitter
	now      func() time.Time
}

// NewLinkService returns a LinkService backed by the given repositories.
func NewLinkService(deps LinkDeps) LinkService {
	s := &linkService{
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

func (s *linkService) ownedLink(ctx context.Context, userID, linkID string) (*model.Link, error) {
	link, err := s.links.GetByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrNotFoundOrUnauthorized
		}
		return nil, fmt.Errorf("load link: %w", err)
	}
	if link.UserID != userID {
		return nil, ErrNotFoundOrUnauthorized
	}
	return link, nil
}

func (s *linkService) CreateLink(ctx context.Context, userID string, input LinkInput) (*model.Link, error) {
	if err := validateLinkFields(input.Title, input.URL); err != nil {
		return nil, err
	}

	folder, err := ownedFolder(ctx, s.folders, userID, input.FolderID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	link := &model.Link{
		ID:        uuid.NewString(),
		UserID:    userID,
		FolderID:  folder.ID,
		Title:     input.Title,
		URL:       input.URL,
		Keywords:  normalizeKeywords(input.Keywords),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.links.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("create link: %w", err)
	}

	s.activity.emit(now, userID, model.ActivityLinkCreated, link.ID, link.Title)
	return link, nil
}

// UpdateLink rewrites every field of the link and may move it to another of
// the caller's folders. Only the destination folder's updatedAt is bumped.
func (s *linkService) UpdateLink(ctx context.Context, userID, linkID string, input LinkInput) (*model.Link, error) {
	if err := validateLinkFields(input.Title, input.URL); err != nil {
		return nil, err
	}

	link, err := s.ownedLink(ctx, userID, linkID)
	if err != nil {
		return nil, err
	}
	folder, err := ownedFolder(ctx, s.folders, userID, input.FolderID)
	if err != nil {
		return nil, err
	}

	link.Title = input.Title
	link.URL = input.URL
	link.Keywords = normalizeKeywords(input.Keywords)
	link.FolderID = folder.ID
	link.UpdatedAt = s.now()

	if err := s.links.Update(ctx, link); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrNotFoundOrUnauthorized
		}
		return nil, fmt.Errorf("update link: %w", err)
	}

	s.activity.emit(link.UpdatedAt, userID, model.ActivityLinkUpdated, link.ID, link.Title)
	return link, nil
}

func (s *linkService) DeleteLink(ctx context.Context, userID, linkID string) error {
	link, err := s.ownedLink(ctx, userID, linkID)
	if err != nil {
		return err
	}

	now := s.now()
	if err := s.links.Delete(ctx, link, now); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return ErrNotFoundOrUnauthorized
		}
		return fmt.Errorf("delete link: %w", err)
	}

	s.activity.emit(now, userID, model.ActivityLinkDeleted, link.ID, link.Title)
	return nil
}

// ListFolderLinks returns an empty list, not an error, for missing or foreign folders.
func (s *linkService) ListFolderLinks(ctx context.Context, userID, folderID string) ([]model.Link, error) {
	folder, err := ownedFolder(ctx, s.folders, userID, folderID)
	if err != nil {
		if errors.Is(err, ErrNotFoundOrUnauthorized) {
			return []model.Link{}, nil
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
	return links, nil
}

// SearchLinks scans all of the user's links and keeps those whose title, url
// or any keyword contains term, ignoring case. Results keep the repository's
// updatedAt-descending order.
func (s *linkService) SearchLinks(ctx context.Context, userID, term string) ([]model.LinkWithFolder, error) {
	if strings.TrimSpace(term) == "" {
		return []model.LinkWithFolder{}, nil
	}
	needle := strings.ToLower(term)

	links, err := s.links.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user links: %w", err)
	}

	matches := make([]model.Link, 0, len(links))
	folderIDs := make([]string, 0)
	seen := make(map[string]struct{})
	for _, link := range links {
		if !linkMatches(link, needle) {
			continue
		}
		matches = append(matches, link)
		if _, ok := seen[link.FolderID]; !ok {
			seen[link.FolderID] = struct{}{}
			folderIDs = append(folderIDs, link.FolderID)
		}
	}

	names := make(map[string]string, len(folderIDs))
	if len(folderIDs) > 0 {
		folders, err := s.folders.ListByIDs(ctx, folderIDs)
		if err != nil {
			return nil, fmt.Errorf("resolve folder names: %w", err)
		}
		for _, f := range folders {
			names[f.ID] = f.Name
		}
	}

	result := make([]model.LinkWithFolder, 0, len(matches))
	for _, link := range matches {
		name, ok := names[link.FolderID]
		if !ok {
			name = model.UnknownFolderName
		}
		result = append(result, model.LinkWithFolder{Link: link, FolderName: name})
	}
	return result, nil
}

func linkMatches(link model.Link, needle string) bool {
	if strings.Contains(strings.ToLower(link.Title), needle) ||
		strings.Contains(strings.ToLower(link.URL), needle) {
		return true
	}
	for _, kw := range link.Keywords {
		if strings.Contains(strings.ToLower(kw), needle) {
			return true
		}
	}
	return false
}

func (s *linkService) ListUserLinks(ctx context.Context, userID string) ([]model.Link, error) {
	links, err := s.links.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user links: %w", err)
	}
	if links == nil {
		links = []model.Link{}
	}
	return links, nil
}
