package service

import (
	"context"
	"testing"
	"time"

	"github.com/sifan077/LinkMe/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkService_CreateLink(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	folder, err := env.folders.CreateFolder(ctx, "u1", "Reading")
	require.NoError(t, err)

	env.clock.Advance(time.Minute)
	link, err := env.links.CreateLink(ctx, "u1", LinkInput{
		FolderID: folder.ID,
		Title:    "Go",
		URL:      "https://go.dev",
		Keywords: []string{" lang ", "lang", "", "docs"},
	})
	require.NoError(t, err)

	assert.Equal(t, "u1", link.UserID)
	assert.Equal(t, model.Keywords{"lang", "docs"}, link.Keywords)
	assert.Equal(t, env.clock.Now(), link.CreatedAt)
	assert.Equal(t, env.clock.Now(), env.store.folders[folder.ID].UpdatedAt, "folder is touched")
}

func TestLinkService_CreateLinkValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	folder, err := env.folders.CreateFolder(ctx, "u1", "Reading")
	require.NoError(t, err)

	cases := []struct {
		name  string
		input LinkInput
	}{
		{"missing title", LinkInput{FolderID: folder.ID, URL: "https://go.dev"}},
		{"missing url", LinkInput{FolderID: folder.ID, Title: "Go"}},
		{"relative url", LinkInput{FolderID: folder.ID, Title: "Go", URL: "/docs"}},
		{"unsupported scheme", LinkInput{FolderID: folder.ID, Title: "Go", URL: "ftp://go.dev"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.links.CreateLink(ctx, "u1", tc.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Empty(t, env.store.links)
}

func TestLinkService_CreateLinkInForeignFolder(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	folder, err := env.folders.CreateFolder(ctx, "owner", "Private")
	require.NoError(t, err)

	_, err = env.links.CreateLink(ctx, "intruder", LinkInput{FolderID: folder.ID, Title: "x", URL: "https://x.org"})
	assert.ErrorIs(t, err, ErrNotFoundOrUnauthorized)

	_, err = env.links.CreateLink(ctx, "owner", LinkInput{FolderID: "missing", Title: "x", URL: "https://x.org"})
	assert.ErrorIs(t, err, ErrNotFoundOrUnauthorized)
	assert.Empty(t, env.store.links)
}

func TestLinkService_CreateLinkStoreFailure(t *testing.T) {
	store := newMemStore()
	svc := NewLinkService(LinkDeps{
		Folders: memFolders{store},
		Links:   memLinks{memStore: store, createErr: errStoreDown},
	})
	store.folders["f1"] = model.Folder{ID: "f1", UserID: "u1", Name: "Reading"}

	_, err := svc.CreateLink(context.Background(), "u1", LinkInput{FolderID: "f1", Title: "Go", URL: "https://go.dev"})
	assert.ErrorIs(t, err, errStoreDown)
}

func TestLinkService_OtherUserCannotTouchLinks(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	folderA, err := env.folders.CreateFolder(ctx, "userA", "Reading")
	require.NoError(t, err)
	folderB, err := env.folders.CreateFolder(ctx, "userB", "Reading")
	require.NoError(t, err)
	link, err := env.links.CreateLink(ctx, "userA", LinkInput{FolderID: folderA.ID, Title: "Go", URL: "https://go.dev"})
	require.NoError(t, err)

	_, err = env.links.UpdateLink(ctx, "userB", link.ID, LinkInput{FolderID: folderB.ID, Title: "Mine", URL: "https://evil.example"})
	assert.ErrorIs(t, err, ErrNotFoundOrUnauthorized)

	err = env.links.DeleteLink(ctx, "userB", link.ID)
	assert.ErrorIs(t, err, ErrNotFoundOrUnauthorized)

	links, err := env.links.ListFolderLinks(ctx, "userB", folderA.ID)
	require.NoError(t, err)
	assert.NotNil(t, links)
	assert.Empty(t, links)

	results, err := env.links.SearchLinks(ctx, "userB", "go")
	require.NoError(t, err)
	assert.Empty(t, results)

	stored := env.store.links[link.ID]
	assert.Equal(t, "Go", stored.Title)
	assert.Equal(t, folderA.ID, stored.FolderID)
}

func TestLinkService_UpdateMovesLink(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	src, err := env.folders.CreateFolder(ctx, "u1", "Source")
	require.NoError(t, err)
	dst, err := env.folders.CreateFolder(ctx, "u1", "Dest")
	require.NoError(t, err)
	link, err := env.links.CreateLink(ctx, "u1", LinkInput{FolderID: src.ID, Title: "Go", URL: "https://go.dev"})
	require.NoError(t, err)
	srcTouched := env.store.folders[src.ID].UpdatedAt

	env.clock.Advance(time.Hour)
	updated, err := env.links.UpdateLink(ctx, "u1", link.ID, LinkInput{
		FolderID: dst.ID,
		Title:    "Go home",
		URL:      "https://go.dev/doc",
	})
	require.NoError(t, err)

	assert.Equal(t, dst.ID, updated.FolderID)
	assert.Equal(t, model.Keywords{}, updated.Keywords)
	assert.Equal(t, link.CreatedAt, updated.CreatedAt)
	assert.Equal(t, env.clock.Now(), updated.UpdatedAt)
	assert.Equal(t, env.clock.Now(), env.store.folders[dst.ID].UpdatedAt)
	assert.Equal(t, srcTouched, env.store.folders[src.ID].UpdatedAt, "source folder is not touched")
}

func TestLinkService_UpdateIntoForeignFolder(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	mine, err := env.folders.CreateFolder(ctx, "u1", "Mine")
	require.NoError(t, err)
	theirs, err := env.folders.CreateFolder(ctx, "u2", "Theirs")
	require.NoError(t, err)
	link, err := env.links.CreateLink(ctx, "u1", LinkInput{FolderID: mine.ID, Title: "Go", URL: "https://go.dev"})
	require.NoError(t, err)

	_, err = env.links.UpdateLink(ctx, "u1", link.ID, LinkInput{FolderID: theirs.ID, Title: "Go", URL: "https://go.dev"})
	assert.ErrorIs(t, err, ErrNotFoundOrUnauthorized)
	assert.Equal(t, mine.ID, env.store.links[link.ID].FolderID)
}

func TestLinkService_DeleteLink(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	folder, err := env.folders.CreateFolder(ctx, "u1", "Reading")
	require.NoError(t, err)
	link, err := env.links.CreateLink(ctx, "u1", LinkInput{FolderID: folder.ID, Title: "Go", URL: "https://go.dev"})
	require.NoError(t, err)

	env.clock.Advance(time.Minute)
	require.NoError(t, env.links.DeleteLink(ctx, "u1", link.ID))
	assert.Empty(t, env.store.links)
	assert.Equal(t, env.clock.Now(), env.store.folders[folder.ID].UpdatedAt)

	err = env.links.DeleteLink(ctx, "u1", link.ID)
	assert.ErrorIs(t, err, ErrNotFoundOrUnauthorized)

	assert.Equal(t, []string{
		model.ActivityFolderCreated,
		model.ActivityLinkCreated,
		model.ActivityLinkDeleted,
	}, env.publisher.types())
}

func TestLinkService_ListFolderLinksOrder(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	folder, err := env.folders.CreateFolder(ctx, "u1", "Reading")
	require.NoError(t, err)
	older, err := env.links.CreateLink(ctx, "u1", LinkInput{FolderID: folder.ID, Title: "old", URL: "https://a.example"})
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	newer, err := env.links.CreateLink(ctx, "u1", LinkInput{FolderID: folder.ID, Title: "new", URL: "https://b.example"})
	require.NoError(t, err)

	links, err := env.links.ListFolderLinks(ctx, "u1", folder.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, newer.ID, links[0].ID)
	assert.Equal(t, older.ID, links[1].ID)

	// Editing the older link moves it to the front.
	env.clock.Advance(time.Minute)
	_, err = env.links.UpdateLink(ctx, "u1", older.ID, LinkInput{FolderID: folder.ID, Title: "old!", URL: "https://a.example"})
	require.NoError(t, err)

	all, err := env.links.ListUserLinks(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, older.ID, all[0].ID)
}

func TestLinkService_SearchLinks(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	reading, err := env.folders.CreateFolder(ctx, "u1", "Reading")
	require.NoError(t, err)
	tools, err := env.folders.CreateFolder(ctx, "u1", "Tools")
	require.NoError(t, err)

	byTitle, err := env.links.CreateLink(ctx, "u1", LinkInput{FolderID: reading.ID, Title: "Effective GO", URL: "https://a.example"})
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	byURL, err := env.links.CreateLink(ctx, "u1", LinkInput{FolderID: tools.ID, Title: "Playground", URL: "https://GO.dev/play"})
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	byKeyword, err := env.links.CreateLink(ctx, "u1", LinkInput{FolderID: tools.ID, Title: "Debugger", URL: "https://b.example", Keywords: []string{"Golang"}})
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	_, err = env.links.CreateLink(ctx, "u1", LinkInput{FolderID: reading.ID, Title: "Rust book", URL: "https://c.example"})
	require.NoError(t, err)

	results, err := env.links.SearchLinks(ctx, "u1", "Go")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, byKeyword.ID, results[0].ID)
	assert.Equal(t, "Tools", results[0].FolderName)
	assert.Equal(t, byURL.ID, results[1].ID)
	assert.Equal(t, byTitle.ID, results[2].ID)
	assert.Equal(t, "Reading", results[2].FolderName)

	for _, term := range []string{"", "   "} {
		empty, err := env.links.SearchLinks(ctx, "u1", term)
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	}

	none, err := env.links.SearchLinks(ctx, "u1", "python")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLinkService_SearchUnknownFolder(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	now := env.clock.Now()
	env.store.links["orphan"] = model.Link{
		ID: "orphan", UserID: "u1", FolderID: "gone", Title: "Orphan", URL: "https://o.example",
		Keywords: model.Keywords{}, CreatedAt: now, UpdatedAt: now,
	}

	results, err := env.links.SearchLinks(ctx, "u1", "orphan")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.UnknownFolderName, results[0].FolderName)
}
