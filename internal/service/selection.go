package service

import (
	"context"
	"fmt"
	"math/rand/v2"

	"vocabdrill/internal/models"
	"vocabdrill/internal/validation"
)

// Picker returns a uniformly random index in [0, n)
type Picker func(n int) int

// Selector decides which example a user practices next. It prefers the
// user's unmastered examples in the tier and falls back to fresh content.
type Selector struct {
	content  ContentStore
	progress ProgressStore
	pick     Picker
}

// NewSelector creates a selector that picks with math/rand
func NewSelector(content ContentStore, progress ProgressStore) *Selector {
	return &Selector{content: content, progress: progress, pick: rand.IntN}
}

// WithPicker replaces the random source
func (s *Selector) WithPicker(pick Picker) *Selector {
	s.pick = pick
	return s
}

// SelectNext returns an example in tier for the user, or nil when the tier
// has no content at all.
func (s *Selector) SelectNext(ctx context.Context, userID int64, tier models.Tier) (*models.Example, error) {
	if !tier.Valid() {
		return nil, validation.ValidationError{Field: "tier", Message: "unknown difficulty tier"}
	}

	records, err := s.progress.GetUnmastered(ctx, userID, tier, models.UnmasteredSampleSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load unmastered examples: %w", err)
	}

	pool := make([]*models.Example, 0, len(records))
	for i := range records {
		if e := records[i].Example; e != nil && e.Difficulty == tier && !records[i].Mastered() {
			pool = append(pool, e)
		}
	}
	if len(pool) > 0 {
		return pool[s.pick(len(pool))], nil
	}

	examples, err := s.content.FindByDifficulty(ctx, tier)
	if err != nil {
		return nil, fmt.Errorf("failed to load examples: %w", err)
	}
	if len(examples) == 0 {
		return nil, nil
	}
	chosen := examples[s.pick(len(examples))]
	return &chosen, nil
}
