package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sifan077/LinkMe/internal/app/model"
	"github.com/sifan077/LinkMe/internal/app/repository"
	"golang.org/x/crypto/bcrypt"
)

// memStore is an in-memory stand-in for the Postgres repositories. It mirrors
// the unique indexes and the folder touch performed by link mutations.
type memStore struct {
	mu       sync.Mutex
	users    map[string]model.User
	sessions map[string]model.Session
	folders  map[string]model.Folder
	links    map[string]model.Link
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]model.User{},
		sessions: map[string]model.Session{},
		folders:  map[string]model.Folder{},
		links:    map[string]model.Link{},
	}
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.ActivityEvent
	err    error
}

func (p *recordingPublisher) Publish(event model.ActivityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixedTokens struct {
	tokens []string
	err    error
}

func (f *fixedTokens) Issue() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	tok := f.tokens[0]
	f.tokens = f.tokens[1:]
	return tok, nil
}

// --- users ---

type memUsers struct {
	*memStore
	getByEmailErr error
}

func (m memUsers) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email || u.Username == user.Username {
			return repository.ErrDuplicateUser
		}
	}
	m.users[user.ID] = *user
	return nil
}

func (m memUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (m memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if m.getByEmailErr != nil {
		return nil, m.getByEmailErr
	}
	return m.find(func(u model.User) bool { return u.Email == email })
}

func (m memUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return m.find(func(u model.User) bool { return u.Username == username })
}

func (m memUsers) find(match func(model.User) bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// --- sessions ---

type memSessions struct{ *memStore }

func (m memSessions) Create(_ context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = *s
	return nil
}

func (m memSessions) GetByToken(_ context.Context, token string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &s, nil
}

func (m memSessions) DeleteByToken(_ context.Context, token string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[token]; !ok {
		return 0, nil
	}
	delete(m.sessions, token)
	return 1, nil
}

func (m memSessions) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for tok, s := range m.sessions {
		if !s.ExpiresAt.After(before) {
			delete(m.sessions, tok)
			n++
		}
	}
	return n, nil
}

// --- folders ---

type memFolders struct{ *memStore }

func (m memFolders) Create(_ context.Context, f *model.Folder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.folders {
		if existing.UserID == f.UserID && existing.Name == f.Name {
			return repository.ErrDuplicateFolder
		}
	}
	m.folders[f.ID] = *f
	return nil
}

func (m memFolders) GetByID(_ context.Context, id string) (*model.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.folders[id]
	if !ok {
		return nil, repository.ErrFolderNotFound
	}
	return &f, nil
}

func (m memFolders) GetByUserAndName(_ context.Context, userID, name string) (*model.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.folders {
		if f.UserID == userID && f.Name == name {
			f := f
			return &f, nil
		}
	}
	return nil, repository.ErrFolderNotFound
}

func (m memFolders) ListByUser(_ context.Context, userID string) ([]model.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Folder
	for _, f := range m.folders {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m memFolders) ListByIDs(_ context.Context, ids []string) ([]model.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Folder
	for _, id := range ids {
		if f, ok := m.folders[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m memFolders) Rename(_ context.Context, id, name string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.folders[id]
	if !ok {
		return repository.ErrFolderNotFound
	}
	for _, other := range m.folders {
		if other.ID != id && other.UserID == f.UserID && other.Name == name {
			return repository.ErrDuplicateFolder
		}
	}
	f.Name = name
	f.UpdatedAt = at
	m.folders[id] = f
	return nil
}

func (m memFolders) DeleteCascade(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.folders[id]; !ok {
		return repository.ErrFolderNotFound
	}
	for lid, l := range m.links {
		if l.FolderID == id {
			delete(m.links, lid)
		}
	}
	delete(m.folders, id)
	return nil
}

// touch must be called with mu held.
func (m *memStore) touch(folderID string, at time.Time) {
	if f, ok := m.folders[folderID]; ok {
		f.UpdatedAt = at
		m.folders[folderID] = f
	}
}

// --- links ---

type memLinks struct {
	*memStore
	createErr error
}

func (m memLinks) Create(_ context.Context, l *model.Link) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[l.ID] = *l
	m.touch(l.FolderID, l.UpdatedAt)
	return nil
}

func (m memLinks) GetByID(_ context.Context, id string) (*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[id]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	return &l, nil
}

func (m memLinks) Update(_ context.Context, l *model.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[l.ID]; !ok {
		return repository.ErrLinkNotFound
	}
	m.links[l.ID] = *l
	m.touch(l.FolderID, l.UpdatedAt)
	return nil
}

func (m memLinks) Delete(_ context.Context, l *model.Link, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[l.ID]; !ok {
		return repository.ErrLinkNotFound
	}
	delete(m.links, l.ID)
	m.touch(l.FolderID, at)
	return nil
}

func (m memLinks) ListByFolder(_ context.Context, folderID string) ([]model.Link, error) {
	return m.list(func(l model.Link) bool { return l.FolderID == folderID }), nil
}

func (m memLinks) ListByUser(_ context.Context, userID string) ([]model.Link, error) {
	return m.list(func(l model.Link) bool { return l.UserID == userID }), nil
}

func (m memLinks) list(match func(model.Link) bool) []model.Link {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Link
	for _, l := range m.links {
		if match(l) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}

// --- wiring ---

type testEnv struct {
	store     *memStore
	clock     *fakeClock
	publisher *recordingPublisher
	auth      AuthService
	folders   FolderService
	links     LinkService
}

func newTestEnv() *testEnv {
	store := newMemStore()
	clock := newFakeClock()
	pub := &recordingPublisher{}

	return &testEnv{
		store:     store,
		clock:     clock,
		publisher: pub,
		auth: NewAuthService(AuthDeps{
			Users:    memUsers{memStore: store},
			Sessions: memSessions{store},
			Hasher:   NewBcryptHasher(bcrypt.MinCost),
			Activity: pub,
			Now:      clock.Now,
		}),
		folders: NewFolderService(FolderDeps{
			Folders:  memFolders{store},
			Links:    memLinks{memStore: store},
			Activity: pub,
			Now:      clock.Now,
		}),
		links: NewLinkService(LinkDeps{
			Folders:  memFolders{store},
			Links:    memLinks{memStore: store},
			Activity: pub,
			Now:      clock.Now,
		}),
	}
}

var errStoreDown = errors.New("store unavailable")
