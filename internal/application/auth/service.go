package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Samith-P/ciphercopdemo/internal/application"
	"github.com/Samith-P/ciphercopdemo/internal/domain/tests"
	"github.com/Samith-P/ciphercopdemo/internal/domain/users"
)

const defaultSessionTTL = 24 * time.Hour

// Service implements signup/login/logout use-cases.
type Service struct {
	Users      users.Repository
	Sessions   users.SessionStore
	Clock      application.Clock
	SessionTTL time.Duration
}

type SignupCommand struct {
	Email    string
	Username string
	Password string
}

// Signup creates an account and an initial session.
func (s *Service) Signup(ctx context.Context, cmd SignupCommand) (*users.User, *users.Session, error) {
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if email == "" || cmd.Password == "" {
		return nil, nil, fmt.Errorf("%w: email and password are required", tests.ErrMissingInput)
	}
	if len(cmd.Password) < 6 {
		return nil, nil, users.ErrWeakPassword
	}

	if existing, err := s.Users.ByEmail(ctx, email); err == nil && existing != nil {
		return nil, nil, users.ErrEmailTaken
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, err
	}

	u := &users.User{
		ID:        uuid.New().String(),
		Email:     email,
		Username:  strings.TrimSpace(cmd.Username),
		CreatedAt: s.Clock.Now(),
	}
	if u.Username == "" {
		u.Username = email
		if i := strings.IndexByte(email, '@'); i > 0 {
			u.Username = email[:i]
		}
	}
	if err := u.SetPassword(cmd.Password); err != nil {
		return nil, nil, err
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, nil, err
	}

	sess, err := s.openSession(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, sess, nil
}

// Login verifies credentials and opens a session.
func (s *Service) Login(ctx context.Context, email, password string) (*users.User, *users.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, users.ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !u.CheckPassword(password) {
		return nil, nil, users.ErrInvalidCredentials
	}
	sess, err := s.openSession(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, sess, nil
}

// Logout invalidates a session token. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.Sessions.Delete(ctx, token)
}

// Resolve returns the user owning a live session token.
func (s *Service) Resolve(ctx context.Context, token string) (*users.User, error) {
	sess, err := s.Sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, users.ErrSessionExpired
		}
		return nil, err
	}
	if sess.Expired(s.Clock.Now()) {
		_ = s.Sessions.Delete(ctx, token)
		return nil, users.ErrSessionExpired
	}
	u, err := s.Users.ByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, users.ErrSessionExpired
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) openSession(ctx context.Context, userID string) (*users.Session, error) {
	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	now := s.Clock.Now()
	sess := &users.Session{
		Token:     uuid.New().String(),
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.Sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}
