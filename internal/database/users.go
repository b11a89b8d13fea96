package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
}

func (db *Database) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	now := time.Now().UTC()
	user := User{
		ID:           uuid.New(),
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_user (id, name, email, password_hash, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt); err != nil {
		return user, fmt.Errorf("database: failed to insert user (email=%s): %w", user.Email, err)
	}
	return user, nil
}

func (db *Database) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	return db.getUser(ctx, `id = $1`, id)
}

func (db *Database) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return db.getUser(ctx, `email = $1`, email)
}

func (db *Database) getUser(ctx context.Context, predicate string, arg any) (User, error) {
	var user User
	err := db.Pool.QueryRow(ctx, `SELECT id, name, email, password_hash, created_at, updated_at FROM tbl_user WHERE `+predicate, arg).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user, ErrUserNotFound
		}
		return user, fmt.Errorf("database: failed to scan user: %w", err)
	}
	return user, nil
}

// ListUsers pages through all users, oldest first. The digest job is the
// only caller; there is no user browsing surface.
func (db *Database) ListUsers(ctx context.Context, limit, offset int) ([]User, error) {
	rows, err := db.Pool.Query(ctx, `SELECT id, name, email, password_hash, created_at, updated_at FROM tbl_user ORDER BY created_at ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate users: %w", err)
	}
	return users, nil
}

func (db *Database) UpdateUserNameByID(ctx context.Context, id uuid.UUID, name string) error {
	tag, err := db.Pool.Exec(ctx, `UPDATE tbl_user SET name = $1, updated_at = $2 WHERE id = $3`,
		name, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("database: failed to update user name (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListTeamsForUser returns the team names the user belongs to. Role
// derivation checks these against the configured admin/volunteer teams.
func (db *Database) ListTeamsForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `SELECT team FROM tbl_team_member WHERE user_id = $1 ORDER BY team`, userID)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []string
	for rows.Next() {
		var team string
		if err := rows.Scan(&team); err != nil {
			return nil, fmt.Errorf("database: failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate teams: %w", err)
	}
	return teams, nil
}

func (db *Database) AddTeamMember(ctx context.Context, userID uuid.UUID, team string) error {
	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_team_member (user_id, team, created_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		userID, team, time.Now().UTC()); err != nil {
		return fmt.Errorf("database: failed to add team member (user_id=%s, team=%s): %w", userID, team, err)
	}
	return nil
}
