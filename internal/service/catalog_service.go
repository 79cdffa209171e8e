package service

import (
	"context"
	"fmt"
	"strings"

	"vocabdrill/internal/models"
	"vocabdrill/internal/validation"
)

// SummaryStore reports per-tier progress counts
type SummaryStore interface {
	SummaryByTier(ctx context.Context, userID int64) ([]models.TierSummary, error)
}

// CatalogService lets a learner browse content and add it to practice
type CatalogService struct {
	content   ContentStore
	progress  ProgressStore
	summaries SummaryStore
}

// NewCatalogService creates a new catalog service
func NewCatalogService(content ContentStore, progress ProgressStore, summaries SummaryStore) *CatalogService {
	return &CatalogService{content: content, progress: progress, summaries: summaries}
}

// Lookup returns the examples of every word containing q. A blank query
// returns an empty result.
func (s *CatalogService) Lookup(ctx context.Context, q string) ([]models.Example, error) {
	if strings.TrimSpace(q) == "" {
		return []models.Example{}, nil
	}
	if err := validation.ValidateLookupQuery(q); err != nil {
		return nil, err
	}
	examples, err := s.content.FindByWordSubstring(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %q: %w", q, err)
	}
	return examples, nil
}

// Enroll adds the examples to the user's practice pool at score zero.
// Examples already enrolled keep their score.
func (s *CatalogService) Enroll(ctx context.Context, userID int64, exampleIDs []int64) ([]models.ProgressRecord, error) {
	if err := validation.ValidateExampleIDs(exampleIDs); err != nil {
		return nil, err
	}
	records, err := s.progress.Enroll(ctx, userID, exampleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to enroll examples: %w", err)
	}
	return records, nil
}

// Summary returns the user's per-tier progress
func (s *CatalogService) Summary(ctx context.Context, userID int64) ([]models.TierSummary, error) {
	summary, err := s.summaries.SummaryByTier(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize progress: %w", err)
	}
	return summary, nil
}
