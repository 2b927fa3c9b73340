package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/Samith-P/ciphercopdemo/internal/domain/tests"
	"github.com/Samith-P/ciphercopdemo/internal/domain/users"
)

type memUsers struct {
	byEmail map[string]*users.User
	byID    map[string]*users.User
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]*users.User{}, byID: map[string]*users.User{}}
}

func (m *memUsers) Create(ctx context.Context, u *users.User) error {
	m.byEmail[u.Email] = u
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) ByEmail(ctx context.Context, email string) (*users.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (m *memUsers) ByID(ctx context.Context, id string) (*users.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

type memSessions struct {
	byToken map[string]*users.Session
}

func newMemSessions() *memSessions {
	return &memSessions{byToken: map[string]*users.Session{}}
}

func (m *memSessions) Save(ctx context.Context, s *users.Session) error {
	m.byToken[s.Token] = s
	return nil
}

func (m *memSessions) Get(ctx context.Context, token string) (*users.Session, error) {
	s, ok := m.byToken[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (m *memSessions) Delete(ctx context.Context, token string) error {
	delete(m.byToken, token)
	return nil
}

type stubClock struct{ t time.Time }

func (c *stubClock) Now() time.Time { return c.t }

func newTestService() (*Service, *memUsers, *memSessions, *stubClock) {
	u := newMemUsers()
	s := newMemSessions()
	clk := &stubClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return &Service{Users: u, Sessions: s, Clock: clk}, u, s, clk
}

func TestSignup(t *testing.T) {
	svc, _, sessions, _ := newTestService()

	u, sess, err := svc.Signup(context.Background(), SignupCommand{
		Email:    "  Alice@Example.COM ",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", u.Email)
	}
	if u.Username != "alice" {
		t.Errorf("username fallback = %q, want alice", u.Username)
	}
	if u.PasswordHash == "" || u.PasswordHash == "hunter22" {
		t.Error("password stored without hashing")
	}
	if sess == nil || sessions.byToken[sess.Token] == nil {
		t.Fatal("no session opened")
	}
	if !sess.ExpiresAt.After(sess.CreatedAt) {
		t.Error("session expires before it starts")
	}
}

func TestSignup_Validation(t *testing.T) {
	svc, _, _, _ := newTestService()

	if _, _, err := svc.Signup(context.Background(), SignupCommand{Email: "", Password: "x"}); !errors.Is(err, tests.ErrMissingInput) {
		t.Errorf("empty email err = %v, want ErrMissingInput", err)
	}
	if _, _, err := svc.Signup(context.Background(), SignupCommand{Email: "a@b.com", Password: ""}); !errors.Is(err, tests.ErrMissingInput) {
		t.Errorf("empty password err = %v, want ErrMissingInput", err)
	}
	if _, _, err := svc.Signup(context.Background(), SignupCommand{Email: "a@b.com", Password: "short"}); !errors.Is(err, users.ErrWeakPassword) {
		t.Errorf("5-char password err = %v, want ErrWeakPassword", err)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestService()

	if _, _, err := svc.Signup(context.Background(), SignupCommand{Email: "a@b.com", Password: "hunter22"}); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	_, _, err := svc.Signup(context.Background(), SignupCommand{Email: "A@B.com", Password: "hunter22"})
	if !errors.Is(err, users.ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}
}

func TestLoginAndResolve(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, SignupCommand{Email: "a@b.com", Password: "hunter22"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	u, sess, err := svc.Login(ctx, "a@b.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	got, err := svc.Resolve(ctx, sess.Token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("resolved user %s, want %s", got.ID, u.ID)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	if _, _, err := svc.Signup(ctx, SignupCommand{Email: "a@b.com", Password: "hunter22"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, _, err := svc.Login(ctx, "a@b.com", "wrongpass"); !errors.Is(err, users.ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@b.com", "hunter22"); !errors.Is(err, users.ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v", err)
	}
}

func TestResolve_ExpiredSession(t *testing.T) {
	svc, _, sessions, clk := newTestService()
	ctx := context.Background()

	_, sess, err := svc.Signup(ctx, SignupCommand{Email: "a@b.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	clk.t = clk.t.Add(25 * time.Hour)
	if _, err := svc.Resolve(ctx, sess.Token); !errors.Is(err, users.ErrSessionExpired) {
		t.Errorf("expired session err = %v", err)
	}
	// An expired session is reaped on touch.
	if sessions.byToken[sess.Token] != nil {
		t.Error("expired session not deleted")
	}
}

func TestLogout(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, sess, err := svc.Signup(ctx, SignupCommand{Email: "a@b.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := svc.Logout(ctx, sess.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Resolve(ctx, sess.Token); !errors.Is(err, users.ErrSessionExpired) {
		t.Errorf("resolved after logout: %v", err)
	}
}
