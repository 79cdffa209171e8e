package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
)

type testStores struct {
	db       *database.DB
	content  *ContentRepository
	progress *ProgressRepository
	users    *UserRepository
}

func newTestStores(t *testing.T) *testStores {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "drill.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.RunMigrations(context.Background())
	require.NoError(t, err)

	guard := db.NewGuard(database.GuardConfig{
		Timeout:        2 * time.Second,
		Retries:        1,
		InitialBackoff: time.Millisecond,
	}, nil)

	return &testStores{
		db:       db,
		content:  NewContentRepository(db, guard),
		progress: NewProgressRepository(db, guard),
		users:    NewUserRepository(db, guard),
	}
}

var sampleEntries = []ContentEntry{
	{Word: "apple", WordType: "noun", Pronunciation: "ˈæp.əl", Difficulty: models.Tier100,
		Definition: "a round fruit", SourceText: "من سیب دوست دارم", TargetText: "I like apples"},
	{Word: "apple", WordType: "noun", Pronunciation: "ˈæp.əl", Difficulty: models.Tier100,
		Definition: "a round fruit", SourceText: "سیب قرمز است", TargetText: "The apple is red"},
	{Word: "pineapple", WordType: "noun", Pronunciation: "ˈpaɪnˌæp.əl", Difficulty: models.Tier1000,
		Definition: "a tropical fruit", SourceText: "آناناس شیرین است", TargetText: "The pineapple is sweet"},
	{Word: "weather", WordType: "noun", Pronunciation: "ˈweð.ər", Difficulty: models.Tier1000,
		Definition: "the state of the air", SourceText: "هوا امروز خوب است", TargetText: "The weather is nice today"},
}

func (s *testStores) seedContent(t *testing.T) {
	t.Helper()
	for _, entry := range sampleEntries {
		_, err := s.content.AddEntry(context.Background(), entry)
		require.NoError(t, err)
	}
}

func (s *testStores) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := s.users.Create(context.Background(), username, username+"@example.com", "hash")
	require.NoError(t, err)
	return user
}

func (s *testStores) exampleIDs(t *testing.T, tier models.Tier) []int64 {
	t.Helper()
	examples, err := s.content.FindByDifficulty(context.Background(), tier)
	require.NoError(t, err)
	ids := make([]int64, 0, len(examples))
	for _, e := range examples {
		ids = append(ids, e.ID)
	}
	return ids
}

func newAnswerID() string {
	return uuid.NewString()
}

func (s *testStores) record(t *testing.T, userID, exampleID int64) models.ProgressRecord {
	t.Helper()
	row, err := getProgress(context.Background(), s.db, userID, exampleID)
	require.NoError(t, err)
	return row.toModel()
}
