package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabdrill/internal/models"
	"vocabdrill/internal/validation"
)

func TestFindByDifficulty(t *testing.T) {
	s := newTestStores(t)
	s.seedContent(t)
	ctx := context.Background()

	examples, err := s.content.FindByDifficulty(ctx, models.Tier1000)
	require.NoError(t, err)
	require.Len(t, examples, 2)
	for _, e := range examples {
		assert.Equal(t, models.Tier1000, e.Difficulty)
		assert.NotEmpty(t, e.Word)
		assert.NotEmpty(t, e.Definition)
		assert.Equal(t, "noun", e.WordType)
	}

	empty, err := s.content.FindByDifficulty(ctx, models.Tier10000)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = s.content.FindByDifficulty(ctx, models.Tier(42))
	assert.True(t, validation.IsValidationError(err))
}

func TestFindByWordSubstring(t *testing.T) {
	s := newTestStores(t)
	s.seedContent(t)
	ctx := context.Background()

	_, err := s.content.AddEntry(ctx, ContentEntry{Word: "Été", WordType: "noun", Difficulty: models.Tier5000,
		Definition: "summer", SourceText: "تابستان گرم است", TargetText: "L'été est chaud"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		words []string
	}{
		{name: "case insensitive", query: "APP", words: []string{"apple", "apple", "pineapple"}},
		{name: "exact word", query: "weather", words: []string{"weather"}},
		{name: "accented lowercase query", query: "été", words: []string{"Été"}},
		{name: "accented uppercase query", query: "ÉTÉ", words: []string{"Été"}},
		{name: "accented substring", query: "TÉ", words: []string{"Été"}},
		{name: "no match", query: "zebra", words: nil},
		{name: "wildcards are literal", query: "%", words: nil},
		{name: "blank query", query: "   ", words: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			examples, err := s.content.FindByWordSubstring(ctx, tt.query)
			require.NoError(t, err)
			var words []string
			for _, e := range examples {
				words = append(words, e.Word)
			}
			assert.Equal(t, tt.words, words)
		})
	}
}

func TestFindByWordSubstringBlankSkipsStorage(t *testing.T) {
	s := newTestStores(t)
	require.NoError(t, s.db.Close())

	examples, err := s.content.FindByWordSubstring(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, examples)
}

func TestAddEntryIsIdempotent(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()

	created, err := s.content.AddEntry(ctx, sampleEntries[0])
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.content.AddEntry(ctx, sampleEntries[0])
	require.NoError(t, err)
	assert.False(t, created)

	// same word and definition, new sentence
	created, err = s.content.AddEntry(ctx, sampleEntries[1])
	require.NoError(t, err)
	assert.True(t, created)

	var words, definitions int
	require.NoError(t, s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM words").Scan(&words))
	require.NoError(t, s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM definitions").Scan(&definitions))
	assert.Equal(t, 1, words)
	assert.Equal(t, 1, definitions)
}

func TestAddEntryRejectsInvalidEntries(t *testing.T) {
	s := newTestStores(t)
	valid := sampleEntries[0]

	tests := []struct {
		name  string
		edit  func(e *ContentEntry)
		field string
	}{
		{name: "unknown tier", edit: func(e *ContentEntry) { e.Difficulty = models.Tier(7) }, field: "difficulty"},
		{name: "blank word", edit: func(e *ContentEntry) { e.Word = "  " }, field: "word"},
		{name: "word too long", edit: func(e *ContentEntry) { e.Word = strings.Repeat("é", maxWordLength+1) }, field: "word"},
		{name: "blank source", edit: func(e *ContentEntry) { e.SourceText = "" }, field: "source_text"},
		{name: "blank target", edit: func(e *ContentEntry) { e.TargetText = "" }, field: "target_text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := valid
			tt.edit(&entry)
			created, err := s.content.AddEntry(context.Background(), entry)
			var ve validation.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.False(t, created)
		})
	}
}

func TestFindExampleID(t *testing.T) {
	s := newTestStores(t)
	s.seedContent(t)
	ctx := context.Background()

	entry := sampleEntries[3]
	id, err := s.content.FindExampleID(ctx, entry.Word, entry.Difficulty, entry.Definition, entry.SourceText)
	require.NoError(t, err)
	require.NotZero(t, id)

	examples, err := s.content.FindByWordSubstring(ctx, entry.Word)
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, id, examples[0].ID)
	assert.Equal(t, entry.TargetText, examples[0].TargetText)
	assert.Equal(t, entry.Pronunciation, examples[0].Pronunciation)

	id, err = s.content.FindExampleID(ctx, "nope", models.Tier100, "", "")
	require.NoError(t, err)
	assert.Zero(t, id)
}
