package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"vocabdrill/internal/logger"
	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
)

const backupVersion = "1"

// BackupData is a portable snapshot of learner progress
type BackupData struct {
	Version    string                     `json:"version"`
	ExportedAt time.Time                  `json:"exported_at"`
	Progress   []repository.ProgressEntry `json:"progress"`
}

// RestoreResult counts what a restore did
type RestoreResult struct {
	Restored       int `json:"restored"`
	UnknownUsers   int `json:"unknown_users"`
	UnknownContent int `json:"unknown_content"`
}

// BackupStore is the storage used for export and restore
type BackupStore interface {
	Export(ctx context.Context) ([]repository.ProgressEntry, error)
	Merge(ctx context.Context, userID, exampleID int64, score int) error
}

// ExampleResolver maps an example's natural key to its id
type ExampleResolver interface {
	FindExampleID(ctx context.Context, word string, tier models.Tier, definition, sourceText string) (int64, error)
}

// UserResolver maps a username to a user
type UserResolver interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// BackupService handles progress export and restore
type BackupService struct {
	progress BackupStore
	examples ExampleResolver
	users    UserResolver
	log      *logger.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(progress BackupStore, examples ExampleResolver, users UserResolver, log *logger.Logger) *BackupService {
	if log == nil {
		log = logger.NewNop()
	}
	return &BackupService{progress: progress, examples: examples, users: users, log: log}
}

// Export writes a JSON snapshot of all progress to w
func (s *BackupService) Export(ctx context.Context, w io.Writer) (int, error) {
	entries, err := s.progress.Export(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to export progress: %w", err)
	}

	data := BackupData{
		Version:    backupVersion,
		ExportedAt: time.Now().UTC(),
		Progress:   entries,
	}
	if data.Progress == nil {
		data.Progress = []repository.ProgressEntry{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return 0, fmt.Errorf("failed to encode backup: %w", err)
	}
	return len(entries), nil
}

// Restore merges a snapshot read from r into storage. Scores are only ever
// raised; entries for unknown users or content are skipped and counted.
func (s *BackupService) Restore(ctx context.Context, r io.Reader) (*RestoreResult, error) {
	var data BackupData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	if data.Version != backupVersion {
		return nil, fmt.Errorf("unsupported backup version %q", data.Version)
	}

	result := &RestoreResult{}
	userIDs := make(map[string]int64)

	for _, entry := range data.Progress {
		userID, ok := userIDs[entry.Username]
		if !ok {
			user, err := s.users.GetByUsername(ctx, entry.Username)
			if err != nil {
				return result, fmt.Errorf("failed to resolve user %s: %w", entry.Username, err)
			}
			if user != nil {
				userID = user.ID
			}
			userIDs[entry.Username] = userID
		}
		if userID == 0 {
			result.UnknownUsers++
			continue
		}

		exampleID, err := s.examples.FindExampleID(ctx, entry.Word, models.Tier(entry.Difficulty), entry.Definition, entry.SourceText)
		if err != nil {
			return result, fmt.Errorf("failed to resolve example: %w", err)
		}
		if exampleID == 0 {
			result.UnknownContent++
			continue
		}

		if err := s.progress.Merge(ctx, userID, exampleID, entry.Score); err != nil {
			return result, fmt.Errorf("failed to restore progress: %w", err)
		}
		result.Restored++
	}

	s.log.Info("progress restored",
		"restored", result.Restored,
		"unknown_users", result.UnknownUsers,
		"unknown_content", result.UnknownContent)
	return result, nil
}
