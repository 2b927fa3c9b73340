package postgres

import (
	"context"
	"database/sql"

	domain "github.com/Samith-P/ciphercopdemo/internal/domain/users"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository { return &SessionRepository{db: db} }

func (r *SessionRepository) Save(ctx context.Context, s *domain.Session) error {
	const q = `
INSERT INTO sessions (token, user_id, expires_at, created_at)
VALUES ($1,$2,$3,$4);
`
	_, err := r.db.ExecContext(ctx, q, s.Token, s.UserID, s.ExpiresAt, s.CreatedAt)
	return err
}

func (r *SessionRepository) Get(ctx context.Context, token string) (*domain.Session, error) {
	const q = `
SELECT token, user_id, expires_at, created_at
FROM sessions WHERE token=$1 LIMIT 1;`
	var s domain.Session
	if err := r.db.QueryRowContext(ctx, q, token).Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token=$1;`, token)
	return err
}
