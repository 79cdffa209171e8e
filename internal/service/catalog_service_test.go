package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/validation"
)

func newCatalog() (*CatalogService, *fakeContent, *fakeProgress) {
	content := &fakeContent{examples: sampleExamples()}
	progress := newFakeProgress(content)
	return NewCatalogService(content, progress, progress), content, progress
}

func TestCatalogLookup(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantWords []string
		wantErr   bool
	}{
		{name: "substring matches several words", query: "apple", wantWords: []string{"apple", "pineapple"}},
		{name: "case insensitive", query: "WEATH", wantWords: []string{"weather"}},
		{name: "no match", query: "zebra", wantWords: []string{}},
		{name: "blank query", query: "   ", wantWords: []string{}},
		{name: "too long", query: strings.Repeat("a", 101), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newCatalog()
			got, err := svc.Lookup(context.Background(), tt.query)
			if tt.wantErr {
				assert.True(t, validation.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			words := []string{}
			for _, e := range got {
				words = append(words, e.Word)
			}
			assert.ElementsMatch(t, tt.wantWords, words)
		})
	}
}

func TestCatalogLookup_BlankSkipsStorage(t *testing.T) {
	svc, content, _ := newCatalog()
	got, err := svc.Lookup(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, content.calls)
}

func TestCatalogEnroll(t *testing.T) {
	svc, _, progress := newCatalog()
	ctx := context.Background()

	records, err := svc.Enroll(ctx, 1, []int64{1, 2})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = progress.RecordAnswer(ctx, 1, 1, "answer-1", 60)
	require.NoError(t, err)

	// enrolling again does not reset the earned score
	records, err = svc.Enroll(ctx, 1, []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 60, records[0].Score)
	assert.Equal(t, 0, records[1].Score)
}

func TestCatalogEnroll_EmptySelection(t *testing.T) {
	svc, _, _ := newCatalog()
	_, err := svc.Enroll(context.Background(), 1, nil)
	assert.True(t, validation.IsValidationError(err))
}

func TestCatalogEnroll_StorageFailure(t *testing.T) {
	svc, _, progress := newCatalog()
	progress.recordErr = repository.ErrStorageUnavailable
	_, err := svc.Enroll(context.Background(), 1, []int64{1})
	assert.ErrorIs(t, err, repository.ErrStorageUnavailable)
}

func TestCatalogSummary(t *testing.T) {
	svc, _, progress := newCatalog()
	progress.records[progressKey{1, 1}] = models.MasteryThreshold
	progress.records[progressKey{1, 2}] = 10

	summary, err := svc.Summary(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, summary, len(models.AllTiers))

	byTier := map[models.Tier]models.TierSummary{}
	for _, s := range summary {
		byTier[s.Tier] = s
	}
	assert.Equal(t, models.TierSummary{Tier: models.Tier1000, Available: 2, Enrolled: 2, Mastered: 1}, byTier[models.Tier1000])
	assert.Equal(t, models.TierSummary{Tier: models.Tier100, Available: 1}, byTier[models.Tier100])
	assert.Equal(t, models.TierSummary{Tier: models.Tier10000}, byTier[models.Tier10000])
}
