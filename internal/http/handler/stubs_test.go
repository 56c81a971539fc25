package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/LinkMe/internal/app/model"
	"github.com/sifan077/LinkMe/internal/app/service"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	signupFn  func(ctx context.Context, input service.SignupInput) (*service.AuthResult, error)
	loginFn   func(ctx context.Context, identifier, password string) (*service.AuthResult, error)
	logoutFn  func(ctx context.Context, token string) error
	currentFn func(ctx context.Context, token string) (*model.PublicUser, error)
	verifyFn  func(ctx context.Context, token string) (bool, error)
}

func (s *stubAuth) Signup(ctx context.Context, input service.SignupInput) (*service.AuthResult, error) {
	return s.signupFn(ctx, input)
}

func (s *stubAuth) Login(ctx context.Context, identifier, password string) (*service.AuthResult, error) {
	return s.loginFn(ctx, identifier, password)
}

func (s *stubAuth) Logout(ctx context.Context, token string) error {
	if s.logoutFn == nil {
		return nil
	}
	return s.logoutFn(ctx, token)
}

func (s *stubAuth) CurrentUser(ctx context.Context, token string) (*model.PublicUser, error) {
	return s.currentFn(ctx, token)
}

func (s *stubAuth) VerifySession(ctx context.Context, token string) (bool, error) {
	return s.verifyFn(ctx, token)
}

func (s *stubAuth) PurgeExpiredSessions(context.Context) (int64, error) { return 0, nil }

type stubFolders struct {
	createFn func(ctx context.Context, userID, name string) (*model.Folder, error)
	listFn   func(ctx context.Context, userID string) ([]model.Folder, error)
	renameFn func(ctx context.Context, userID, folderID, name string) (*model.Folder, error)
	deleteFn func(ctx context.Context, userID, folderID string) error
	getFn    func(ctx context.Context, userID, folderID string) (*model.FolderWithLinks, error)
}

func (s *stubFolders) CreateFolder(ctx context.Context, userID, name string) (*model.Folder, error) {
	return s.createFn(ctx, userID, name)
}

func (s *stubFolders) ListFolders(ctx context.Context, userID string) ([]model.Folder, error) {
	return s.listFn(ctx, userID)
}

func (s *stubFolders) RenameFolder(ctx context.Context, userID, folderID, name string) (*model.Folder, error) {
	return s.renameFn(ctx, userID, folderID, name)
}

func (s *stubFolders) DeleteFolder(ctx context.Context, userID, folderID string) error {
	return s.deleteFn(ctx, userID, folderID)
}

func (s *stubFolders) GetFolderWithLinks(ctx context.Context, userID, folderID string) (*model.FolderWithLinks, error) {
	return s.getFn(ctx, userID, folderID)
}

type stubLinks struct {
	createFn     func(ctx context.Context, userID string, input service.LinkInput) (*model.Link, error)
	updateFn     func(ctx context.Context, userID, linkID string, input service.LinkInput) (*model.Link, error)
	deleteFn     func(ctx context.Context, userID, linkID string) error
	listFolderFn func(ctx context.Context, userID, folderID string) ([]model.Link, error)
	searchFn     func(ctx context.Context, userID, term string) ([]model.LinkWithFolder, error)
	listUserFn   func(ctx context.Context, userID string) ([]model.Link, error)
}

func (s *stubLinks) CreateLink(ctx context.Context, userID string, input service.LinkInput) (*model.Link, error) {
	return s.createFn(ctx, userID, input)
}

func (s *stubLinks) UpdateLink(ctx context.Context, userID, linkID string, input service.LinkInput) (*model.Link, error) {
	return s.updateFn(ctx, userID, linkID, input)
}

func (s *stubLinks) DeleteLink(ctx context.Context, userID, linkID string) error {
	return s.deleteFn(ctx, userID, linkID)
}

func (s *stubLinks) ListFolderLinks(ctx context.Context, userID, folderID string) ([]model.Link, error) {
	return s.listFolderFn(ctx, userID, folderID)
}

func (s *stubLinks) SearchLinks(ctx context.Context, userID, term string) ([]model.LinkWithFolder, error) {
	return s.searchFn(ctx, userID, term)
}

func (s *stubLinks) ListUserLinks(ctx context.Context, userID string) ([]model.Link, error) {
	return s.listUserFn(ctx, userID)
}

type stubActivity struct {
	listFn func(ctx context.Context, userID string, limit int) ([]model.ActivityEvent, error)
}

func (s *stubActivity) Create(context.Context, *model.ActivityEvent) error { return nil }

func (s *stubActivity) ListByUser(ctx context.Context, userID string, limit int) ([]model.ActivityEvent, error) {
	return s.listFn(ctx, userID, limit)
}

// withUser mimics the session middleware for handler-level tests.
func withUser(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	}
}

func doJSON(t *testing.T, app *fiber.App, method, target, payload string, headers ...string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if payload != "" {
		reader = strings.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if payload != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func decode(t *testing.T, body string, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), v))
}
