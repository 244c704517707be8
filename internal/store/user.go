package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wellness-tracker/apiserver/types"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint violation.
const uniqueViolation = "23505"

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	if uuid.Validate(id) != nil {
		return types.User{}, ErrNotFound
	}

	const query = `
		SELECT id, name, email, password_hash, reminder_preferences, created_at, updated_at
		FROM users
		WHERE id = $1`
	var user types.User
	var prefs []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&prefs,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	user.ReminderPreferences = json.RawMessage(prefs)
	return user, nil
}

// GetByEmail looks up a user by exact, case-sensitive email match.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT id, name, email, password_hash, reminder_preferences, created_at, updated_at
		FROM users
		WHERE email = $1`
	var user types.User
	var prefs []byte
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&prefs,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	user.ReminderPreferences = json.RawMessage(prefs)
	return user, nil
}

// Create persists a new user. Email uniqueness is enforced by the database;
// a unique violation is mapped to ErrDuplicateUser.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.ReminderPreferences == nil {
		user.ReminderPreferences = json.RawMessage(`{}`)
	}

	const query = `
		INSERT INTO users (id, name, email, password_hash, reminder_preferences, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		[]byte(user.ReminderPreferences),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return types.User{}, ErrDuplicateUser
		}
		return types.User{}, err
	}
	return user, nil
}

// GetReminderPreferences reads the user's preference blob.
func (r *UserRepository) GetReminderPreferences(ctx context.Context, userID string) (json.RawMessage, error) {
	if uuid.Validate(userID) != nil {
		return nil, ErrNotFound
	}

	const query = `SELECT reminder_preferences FROM users WHERE id = $1`
	var prefs []byte
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&prefs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return json.RawMessage(prefs), nil
}

// SetReminderPreferences replaces the user's preference blob wholesale and
// returns the stored value.
func (r *UserRepository) SetReminderPreferences(ctx context.Context, userID string, prefs json.RawMessage) (json.RawMessage, error) {
	if uuid.Validate(userID) != nil {
		return nil, ErrNotFound
	}
	if prefs == nil {
		prefs = json.RawMessage(`{}`)
	}

	const query = `
		UPDATE users
		SET reminder_preferences = $1,
			updated_at = $2
		WHERE id = $3
		RETURNING reminder_preferences`
	var stored []byte
	err := r.db.QueryRowContext(ctx, query, []byte(prefs), time.Now(), userID).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return json.RawMessage(stored), nil
}
