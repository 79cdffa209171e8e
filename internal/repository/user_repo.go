package repository

import (
	"context"
	"strings"
	"time"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
)

// UserRepository handles database operations for learner accounts
type UserRepository struct {
	db    *database.DB
	guard *database.Guard
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB, guard *database.Guard) *UserRepository {
	return &UserRepository{db: db, guard: guard}
}

type userRow struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r userRow) toModel() *models.User {
	return &models.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

// Create inserts a new user. A taken username fails with ErrIntegrityViolation.
func (r *UserRepository) Create(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	var id int64
	err := r.guard.Write(ctx, "create user", func(ctx context.Context) error {
		var err error
		id, err = r.db.ExecReturningID(ctx,
			"INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)",
			username, email, passwordHash)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &models.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}, nil
}

// GetByUsername retrieves a user by username, or nil if none exists
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, "get user by username",
		"SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?",
		strings.TrimSpace(username))
}

func (r *UserRepository) getOne(ctx context.Context, op, query string, arg interface{}) (*models.User, error) {
	var user *models.User
	err := r.guard.Read(ctx, op, func(ctx context.Context) error {
		var row userRow
		if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
			if isNoRows(err) {
				user = nil
				return nil
			}
			return err
		}
		user = row.toModel()
		return nil
	})
	return user, err
}
