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

// DefaultSessionTTL is how long a freshly issued session stays valid.
const DefaultSessionTTL = 30 * 24 * time.Hour

// AuthService handles account creation and the session lifecycle.
type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*AuthResult, error)
	Login(ctx context.Context, emailOrUsername, password string) (*AuthResult, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*model.PublicUser, error)
	VerifySession(ctx context.Context, token string) (bool, error)
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// SignupInput captures data required to register an account.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult is returned by a successful signup or login.
type AuthResult struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthDeps groups dependencies required by the auth service.
type AuthDeps struct {
	Users      repository.UserRepository
	Sessions   repository.SessionRepository
	Hasher     PasswordHasher
	Tokens     TokenIssuer
	Activity   ActivityPublisher
	Logger     *zap.Logger
	SessionTTL time.Duration
	Now        func() time.Time
}

type authService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	activity activityEmitter
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthService returns an AuthService backed by the given repositories.
func NewAuthService(deps AuthDeps) AuthService {
	s := &authService{
		users:    deps.Users,
		sessions: deps.Sessions,
		hasher:   deps.Hasher,
		tokens:   deps.Tokens,
		activity: activityEmitter{publisher: deps.Activity, logger: logger.OrNop(deps.Logger)},
		ttl:      deps.SessionTTL,
		now:      deps.Now,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultSessionTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.tokens == nil {
		s.tokens = NewRandomTokenIssuer()
	}
	return s
}

// Signup checks email then username availability and creates the account.
// The checks are reads; two concurrent signups can both pass them, in which
// case the unique index rejects the loser and it gets the same error kind.
func (s *authService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	if err := validateSignupFields(input.Username, input.Email, input.Password); err != nil {
		return nil, err
	}

	if err := s.ensureAvailable(ctx, input.Email, input.Username); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			if availErr := s.ensureAvailable(ctx, input.Email, input.Username); availErr != nil {
				return nil, availErr
			}
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	result, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.activity.emit(user.CreatedAt, user.ID, model.ActivitySignedUp, user.ID, user.Username)
	return result, nil
}

func (s *authService) ensureAvailable(ctx context.Context, email, username string) error {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("lookup email: %w", err)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return ErrDuplicateUsername
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("lookup username: %w", err)
	}
	return nil
}

// Login resolves the identifier as an email first, then as a username.
// Prior sessions of the user stay valid.
func (s *authService) Login(ctx context.Context, emailOrUsername, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, emailOrUsername)
	if errors.Is(err, repository.ErrUserNotFound) {
		user, err = s.users.GetByUsername(ctx, emailOrUsername)
	}
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.burn(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	result, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.activity.emit(s.now(), user.ID, model.ActivityLoggedIn, "", "")
	return result, nil
}

func (s *authService) burn(password string) {
	if b, ok := s.hasher.(interface{ Burn(string) }); ok {
		b.Burn(password)
	}
}

func (s *authService) openSession(ctx context.Context, userID string) (*AuthResult, error) {
	token, err := s.tokens.Issue()
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	now := s.now()
	session := &model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &AuthResult{
		Token:     token,
		UserID:    userID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout revokes the session holding token. Unknown tokens are not an error.
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("load session: %w", err)
	}

	if _, err := s.sessions.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.activity.emit(s.now(), session.UserID, model.ActivityLoggedOut, "", "")
	return nil
}

// CurrentUser returns nil, nil when the token has no active session or the
// session's user no longer exists.
func (s *authService) CurrentUser(ctx context.Context, token string) (*model.PublicUser, error) {
	session, err := s.activeSession(ctx, token)
	if err != nil || session == nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user.Public(), nil
}

func (s *authService) VerifySession(ctx context.Context, token string) (bool, error) {
	session, err := s.activeSession(ctx, token)
	if err != nil {
		return false, err
	}
	return session != nil, nil
}

func (s *authService) activeSession(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, nil
	}
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !session.Active(s.now()) {
		return nil, nil
	}
	return session, nil
}

// PurgeExpiredSessions deletes every session that is no longer active.
func (s *authService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}
