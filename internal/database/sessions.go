package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Session struct {
	ID        uuid.UUID
	Token     string
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}

type CreateSessionParams struct {
	Token     string
	UserID    uuid.UUID
	ExpiresAt time.Time
}

func (db *Database) CreateSession(ctx context.Context, params CreateSessionParams) (Session, error) {
	session := Session{
		ID:        uuid.New(),
		Token:     params.Token,
		UserID:    params.UserID,
		ExpiresAt: params.ExpiresAt,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_session (id, token, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)`,
		session.ID, session.Token, session.UserID, session.ExpiresAt, session.CreatedAt); err != nil {
		return session, fmt.Errorf("database: failed to insert session (user_id=%s): %w", session.UserID, err)
	}
	return session, nil
}

func (db *Database) GetSessionByToken(ctx context.Context, token string) (Session, error) {
	var session Session
	err := db.Pool.QueryRow(ctx, `SELECT id, token, user_id, expires_at, created_at FROM tbl_session WHERE token = $1`, token).
		Scan(&session.ID, &session.Token, &session.UserID, &session.ExpiresAt, &session.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session, ErrSessionNotFound
		}
		return session, fmt.Errorf("database: failed to scan session: %w", err)
	}
	return session, nil
}

func (db *Database) DeleteSessionByToken(ctx context.Context, token string) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM tbl_session WHERE token = $1`, token); err != nil {
		return fmt.Errorf("database: failed to delete session: %w", err)
	}
	return nil
}

func (db *Database) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM tbl_session WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("database: failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
