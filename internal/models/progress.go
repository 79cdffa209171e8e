package models

import "time"

// MasteryThreshold is the cumulative score at which a record counts as mastered
const MasteryThreshold = 1000

// UnmasteredSampleSize is how many unmastered records selection samples from
const UnmasteredSampleSize = 10

// ProgressRecord is a learner's cumulative score on one example.
// There is at most one record per (UserID, ExampleID).
type ProgressRecord struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ExampleID int64     `json:"example_id"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Example   *Example  `json:"example,omitempty"`
}

// Mastered reports whether the record has reached the mastery threshold
func (p ProgressRecord) Mastered() bool {
	return p.Score >= MasteryThreshold
}

// TierSummary counts a learner's records in one tier
type TierSummary struct {
	Tier      Tier `json:"tier"`
	Available int  `json:"available"`
	Enrolled  int  `json:"enrolled"`
	Mastered  int  `json:"mastered"`
}
