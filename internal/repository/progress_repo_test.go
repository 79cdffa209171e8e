package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabdrill/internal/models"
	"vocabdrill/internal/validation"
)

func TestRecordAnswerAccumulates(t *testing.T) {
	s := newTestStores(t)
	s.seedContent(t)
	user := s.createUser(t, "sara")
	exampleID := s.exampleIDs(t, models.Tier100)[0]
	ctx := context.Background()

	first, err := s.progress.RecordAnswer(ctx, user.ID, exampleID, newAnswerID(), 30)
	require.NoError(t, err)
	assert.Equal(t, 30, first.Score)

	second, err := s.progress.RecordAnswer(ctx, user.ID, exampleID, newAnswerID(), 40)
	require.NoError(t, err)
	assert.Equal(t, 70, second.Score)
	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, second.Example)
	assert.Equal(t, "apple", second.Example.Word)

	var count int
	require.NoError(t, s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM progress WHERE user_id = ? AND example_id = ?", user.ID, exampleID).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestRecordAnswerConcurrentSamePair(t *testing.T) {
	s := newTestStores(t)
	s.seedContent(t)
	user := s.createUser(t, "sara")
	exampleID := s.exampleIDs(t, models.Tier100)[0]
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.progress.RecordAnswer(ctx, user.ID, exampleID, newAnswerID(), 25)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	record := s.record(t, user.ID, exampleID)
	assert.Equal(t, 200, record.Score)
}

func TestRecordAnswerRepeatedAnswerIsCountedOnce(t *testing.T) {
	s := newTestStores(t)
	s.seedContent(t)
	user := s.createUser(t, "sara")
	exampleID := s.exampleIDs(t, models.Tier100)[0]
	ctx := context.Background()
	answerID := newAnswerID()

	first, err := s.progress.RecordAnswer(ctx, user.ID, exampleID, answerID, 40)
	require.NoError(t, err)
	assert.Equal(t, 40, first.Score)

	retried, err := s.progress.RecordAnswer(ctx, user.ID, exampleID, answerID, 40)
	require.NoError(t, err)
	assert.Equal(t, 40, retried.Score)

	next, err := s.progress.RecordAnswer(ctx, user.ID, exampleID, newAnswerID(), 40)
	require.NoError(t, err)
	assert.Equal(t, 80, next.Score)
}

func TestRecordAnswerRequiresAnswerID(t *testing.T) {
	s := newTestStores(t)

	_, err := s.progress.RecordAnswer(context.Background(), 1, 1, " ", 10)
	assert.True(t, validation.IsValidationError(err))
}

func TestRecordAnswerRejectsNegativeDelta(t *testing.T) {
	s := newTestStores(t)

	_, err := s.progress.RecordAnswer(context.Background(), 1, 1, newAnswerID(), -5)
	assert.True(t, validation.IsValidationError(err))
}

func TestEnrollIsIdempotent(t *testing.T) {
	s := newTestStores(t)
	s.seedContent(t)
	user := s.createUser(t, "sara")
	ids := s.exampleIDs(t, models.Tier100)
	ctx := context.Background()

	records, err := s.progress.Enroll(ctx, user.ID, ids)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Zero(t, r.Score)
	}

	_, err = s.progress.RecordAnswer(ctx, user.ID, ids[0], newAnswerID(), 60)
	require.NoError(t, err)

	records, err = s.progress.Enroll(ctx, user.ID, append(ids, ids[0], 99999))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, ids[0], records[0].ExampleID)
	assert.Equal(t, 60, records[0].Score)
	assert.Zero(t, records[1].Score)
}

func TestEnrollRejectsEmptySelection(t *testing.T) {
	s := newTestStores(t)

	_, err := s.progress.Enroll(context.Background(), 1, nil)
	assert.True(t, validation.IsValidationError(err))
}

func TestGetUnmastered(t *testing.T) {
	s := newTestStores(t)
	s.seedContent(t)
	user := s.createUser(t, "sara")
	other := s.createUser(t, "omid")
	ctx := context.Background()

	easy := s.exampleIDs(t, models.Tier100)
	hard := s.exampleIDs(t, models.Tier1000)

	_, err := s.progress.RecordAnswer(ctx, user.ID, easy[0], newAnswerID(), 1000)
	require.NoError(t, err)
	_, err = s.progress.RecordAnswer(ctx, user.ID, easy[1], newAnswerID(), 999)
	require.NoError(t, err)
	_, err = s.progress.RecordAnswer(ctx, user.ID, hard[0], newAnswerID(), 10)
	require.NoError(t, err)
	_, err = s.progress.RecordAnswer(ctx, other.ID, easy[0], newAnswerID(), 5)
	require.NoError(t, err)

	records, err := s.progress.GetUnmastered(ctx, user.ID, models.Tier100, models.UnmasteredSampleSize)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, easy[1], records[0].ExampleID)
	assert.Equal(t, 999, records[0].Score)
	assert.Equal(t, models.Tier100, records[0].Example.Difficulty)

	limited, err := s.progress.GetUnmastered(ctx, other.ID, models.Tier100, 0)
	require.NoError(t, err)
	assert.Empty(t, limited)
}

func TestGetUnmasteredRespectsLimit(t *testing.T) {
	s := newTestStores(t)
	s.seedContent(t)
	user := s.createUser(t, "sara")
	ctx := context.Background()

	_, err := s.progress.Enroll(ctx, user.ID, s.exampleIDs(t, models.Tier100))
	require.NoError(t, err)

	records, err := s.progress.GetUnmastered(ctx, user.ID, models.Tier100, 1)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestSummaryByTier(t *testing.T) {
	s := newTestStores(t)
	s.seedContent(t)
	user := s.createUser(t, "sara")
	ctx := context.Background()

	easy := s.exampleIDs(t, models.Tier100)
	_, err := s.progress.Enroll(ctx, user.ID, easy)
	require.NoError(t, err)
	_, err = s.progress.RecordAnswer(ctx, user.ID, easy[0], newAnswerID(), 1200)
	require.NoError(t, err)

	summary, err := s.progress.SummaryByTier(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, summary, len(models.AllTiers))

	assert.Equal(t, models.TierSummary{Tier: models.Tier100, Available: 2, Enrolled: 2, Mastered: 1}, summary[0])
	assert.Equal(t, models.TierSummary{Tier: models.Tier1000, Available: 2}, summary[1])
	assert.Equal(t, models.TierSummary{Tier: models.Tier10000}, summary[4])
}

func TestExportAndMerge(t *testing.T) {
	s := newTestStores(t)
	s.seedContent(t)
	user := s.createUser(t, "sara")
	exampleID := s.exampleIDs(t, models.Tier1000)[1]
	ctx := context.Background()

	_, err := s.progress.RecordAnswer(ctx, user.ID, exampleID, newAnswerID(), 300)
	require.NoError(t, err)

	entries, err := s.progress.Export(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ProgressEntry{
		Username:   "sara",
		Word:       "weather",
		Difficulty: 1000,
		Definition: "the state of the air",
		SourceText: "هوا امروز خوب است",
		Score:      300,
	}, entries[0])

	require.NoError(t, s.progress.Merge(ctx, user.ID, exampleID, 100))
	assert.Equal(t, 300, s.record(t, user.ID, exampleID).Score)

	require.NoError(t, s.progress.Merge(ctx, user.ID, exampleID, 800))
	assert.Equal(t, 800, s.record(t, user.ID, exampleID).Score)
}

func TestStorageUnavailable(t *testing.T) {
	s := newTestStores(t)
	require.NoError(t, s.db.Close())
	ctx := context.Background()

	_, err := s.progress.GetUnmastered(ctx, 1, models.Tier100, 10)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	_, err = s.progress.RecordAnswer(ctx, 1, 1, newAnswerID(), 10)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	_, err = s.content.FindByDifficulty(ctx, models.Tier100)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
