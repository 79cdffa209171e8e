package service

import (
	"context"
	"errors"

	"vocabdrill/internal/models"
)

var (
	// ErrNoActiveExample is returned when an operation needs a loaded example and there is none
	ErrNoActiveExample = errors.New("no example is loaded")
	// ErrAlreadyAnswered is returned for a repeated submit on an answered example
	ErrAlreadyAnswered = errors.New("example already answered")
	// ErrStaleExample is returned for an answer to an example that is no longer loaded
	ErrStaleExample = errors.New("answer is for an example that is no longer loaded")

	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ContentStore is the read side of the word, definition and example hierarchy
type ContentStore interface {
	FindByDifficulty(ctx context.Context, tier models.Tier) ([]models.Example, error)
	FindByWordSubstring(ctx context.Context, q string) ([]models.Example, error)
}

// ProgressStore holds cumulative per-user, per-example scores
type ProgressStore interface {
	GetUnmastered(ctx context.Context, userID int64, tier models.Tier, limit int) ([]models.ProgressRecord, error)
	RecordAnswer(ctx context.Context, userID, exampleID int64, answerID string, delta int) (*models.ProgressRecord, error)
	Enroll(ctx context.Context, userID int64, exampleIDs []int64) ([]models.ProgressRecord, error)
}

// SessionStore keeps one practice session per user
type SessionStore interface {
	// Get returns nil when the user has no session
	Get(ctx context.Context, userID int64) (*models.PracticeSession, error)
	Save(ctx context.Context, session *models.PracticeSession) error
	Delete(ctx context.Context, userID int64) error
}
